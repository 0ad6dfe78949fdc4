package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	reminderservice "github.com/ssingh-rookie/LeafWise-API/internal/reminder"
	"github.com/ssingh-rookie/LeafWise-API/internal/http/response"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/apierr"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/ctxutil"
)

// ReminderHandler is the HTTP caller the reminder state machine of spec
// §4.9 needs but spec §6.1 doesn't name explicitly (see SPEC_FULL.md
// section D).
type ReminderHandler struct {
	svc reminderservice.Service
}

func NewReminderHandler(svc reminderservice.Service) *ReminderHandler {
	return &ReminderHandler{svc: svc}
}

type createReminderRequest struct {
	PlantID   string `json:"plantId"`
	DueDate   string `json:"dueDate"`
	Recurring bool   `json:"recurring"`
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval"`
}

func (h *ReminderHandler) Create(c *gin.Context) {
	var req createReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apierr.Validation("invalid request body", err))
		return
	}
	plantID, err := uuid.Parse(req.PlantID)
	if err != nil {
		response.Error(c, apierr.Validation("plantId must be a valid uuid", err))
		return
	}
	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		response.Error(c, apierr.Validation("dueDate must be RFC3339", err))
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.Error(c, apierr.Unauthorized("missing request identity"))
		return
	}
	reminder, err := h.svc.Create(c.Request.Context(), rd.UserID, plantID, dueDate, req.Recurring, req.Frequency, req.Interval)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"reminder": reminder})
}

func (h *ReminderHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apierr.Validation("id must be a valid uuid", err))
		return
	}
	if err := h.svc.Complete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"ok": true})
}

func (h *ReminderHandler) Skip(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apierr.Validation("id must be a valid uuid", err))
		return
	}
	if err := h.svc.Skip(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"ok": true})
}

func (h *ReminderHandler) Due(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.Error(c, apierr.Unauthorized("missing request identity"))
		return
	}
	before := time.Now().Add(24 * time.Hour)
	if v := c.Query("withinHours"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil {
			before = time.Now().Add(time.Duration(hours) * time.Hour)
		}
	}
	reminders, err := h.svc.DueBefore(c.Request.Context(), rd.UserID, before)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"reminders": reminders})
}
