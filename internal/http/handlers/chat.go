package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	chatpipeline "github.com/ssingh-rookie/LeafWise-API/internal/chat"
	chatdomain "github.com/ssingh-rookie/LeafWise-API/internal/domain/chat"
	chatrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/chat"
	"github.com/ssingh-rookie/LeafWise-API/internal/http/response"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/apierr"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/ctxutil"
)

type ChatHandler struct {
	pipeline    *chatpipeline.Pipeline
	sessionRepo chatrepo.SessionRepo
}

func NewChatHandler(pipeline *chatpipeline.Pipeline, sessionRepo chatrepo.SessionRepo) *ChatHandler {
	return &ChatHandler{pipeline: pipeline, sessionRepo: sessionRepo}
}

type chatRequest struct {
	SessionID *string `json:"sessionId"`
	Message   string  `json:"message"`
	PlantID   *string `json:"plantId"`
}

func (h *ChatHandler) resolveSession(c *gin.Context, userID uuid.UUID, req chatRequest) (uuid.UUID, *uuid.UUID, error) {
	var plantID *uuid.UUID
	if req.PlantID != nil {
		p, err := uuid.Parse(*req.PlantID)
		if err != nil {
			return uuid.Nil, nil, apierr.Validation("plantId must be a valid uuid", err)
		}
		plantID = &p
	}

	if req.SessionID != nil {
		sessionID, err := uuid.Parse(*req.SessionID)
		if err != nil {
			return uuid.Nil, nil, apierr.Validation("sessionId must be a valid uuid", err)
		}
		return sessionID, plantID, nil
	}

	session, err := h.sessionRepo.Create(c.Request.Context(), nil, &chatdomain.Session{UserID: userID, PlantID: plantID})
	if err != nil {
		return uuid.Nil, nil, apierr.Internal(fmt.Errorf("create chat session: %w", err))
	}
	return session.ID, plantID, nil
}

// POST /api/v1/chat (spec §6.1)
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apierr.Validation("invalid request body", err))
		return
	}

	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.Error(c, apierr.Unauthorized("missing request identity"))
		return
	}

	sessionID, plantID, err := h.resolveSession(c, rd.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	reply, err := h.pipeline.Run(c.Request.Context(), rd.UserID, sessionID, plantID, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OKWithMeta(c, gin.H{
		"sessionId": sessionID,
		"content":   reply.Content,
	}, gin.H{
		"model":      reply.Model,
		"provider":   reply.Provider,
		"isFallback": reply.IsFallback,
	})
}

// POST /api/v1/chat/stream (spec §6.1, §9): SSE event: start|chunk|done|error.
// Grounded on the teacher's internal/sse hub pattern, repurposed here as a
// single-consumer per-request callback rather than a broadcast hub, since
// streaming is a cold, finite, non-restartable sequence with exactly one
// subscriber - the requesting connection itself.
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apierr.Validation("invalid request body", err))
		return
	}

	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.Error(c, apierr.Unauthorized("missing request identity"))
		return
	}

	sessionID, plantID, err := h.resolveSession(c, rd.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("start", gin.H{"sessionId": sessionID})
	c.Writer.Flush()

	reply, err := h.pipeline.RunStream(c.Request.Context(), rd.UserID, sessionID, plantID, req.Message, func(chunk string) {
		c.SSEvent("chunk", gin.H{"content": chunk})
		c.Writer.Flush()
	})
	if err != nil {
		apiErr := apierr.As(err)
		c.SSEvent("error", gin.H{"code": apiErr.Code, "message": apiErr.Message})
		c.Writer.Flush()
		return
	}

	c.SSEvent("done", gin.H{
		"content":    reply.Content,
		"model":      reply.Model,
		"provider":   reply.Provider,
		"isFallback": reply.IsFallback,
	})
	c.Writer.Flush()
}
