// Package chat implements the Chat Pipeline of spec §4.8: context
// assembly, model-tier selection, generation through the AI Router,
// atomic persistence, and post-generation memory extraction. Grounded on
// the teacher's internal/modules/chat/steps/maintain.go orchestration
// shape (context build -> generate -> persist -> extract).
package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	chatdomain "github.com/ssingh-rookie/LeafWise-API/internal/domain/chat"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/vectortype"
	chatrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/chat"
	"github.com/ssingh-rookie/LeafWise-API/internal/assembler"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/apierr"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
	"github.com/ssingh-rookie/LeafWise-API/internal/providers"
	"github.com/ssingh-rookie/LeafWise-API/internal/router"
)

type Pipeline struct {
	log         *logger.Logger
	assembler   *assembler.Assembler
	router      *router.Router
	sessionRepo chatrepo.SessionRepo
	memoryRepo  chatrepo.MemoryRepo
}

func New(asm *assembler.Assembler, rt *router.Router, sessionRepo chatrepo.SessionRepo, memoryRepo chatrepo.MemoryRepo, baseLog *logger.Logger) *Pipeline {
	return &Pipeline{
		log:         baseLog.With("component", "chat_pipeline"),
		assembler:   asm,
		router:      rt,
		sessionRepo: sessionRepo,
		memoryRepo:  memoryRepo,
	}
}

type Reply struct {
	Content    string
	Model      string
	Provider   string
	IsFallback bool
}

// Run executes the full non-streaming chat pipeline (spec §4.8 steps 1-5).
func (p *Pipeline) Run(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID, plantID *uuid.UUID, query string) (*Reply, error) {
	ctxData := p.assembler.Assemble(ctx, userID, query, plantID, &sessionID)

	tier := providers.TierSimple
	if assembler.NeedsComplexTier(query, ctxData.Plant, ctxData.Issues) {
		tier = providers.TierComplex
	}

	systemPrompt := renderSystemPrompt(ctxData)
	turns := renderTurns(ctxData.History, query)

	genResult, err := p.router.Chat(ctx, userID, tier, systemPrompt, turns)
	if err != nil {
		var aiErr *router.AIRouterError
		if ok := asAIRouterError(err, &aiErr); ok {
			return nil, apierr.AIUnavailable(aiErr.AttemptedProviders, aiErr)
		}
		return nil, apierr.Internal(err)
	}

	if err := p.persist(ctx, sessionID, query, genResult.Value); err != nil {
		p.log.Warn("session persistence failed", "error", err)
	}

	p.extractMemory(ctx, userID, sessionID, genResult.Value.Content)

	return &Reply{
		Content:    genResult.Value.Content,
		Model:      genResult.Value.Model,
		Provider:   genResult.Provider,
		IsFallback: genResult.IsFallback,
	}, nil
}

func (p *Pipeline) persist(ctx context.Context, sessionID uuid.UUID, query string, result providers.ChatResult) error {
	userMsg := &chatdomain.Message{Role: chatdomain.RoleUser, Content: query}
	assistantMsg := &chatdomain.Message{
		Role:         chatdomain.RoleAssistant,
		Content:      result.Content,
		InputTokens:  intPtr(result.InputTokens),
		OutputTokens: intPtr(result.OutputTokens),
		Model:        result.Model,
	}
	totalTokens := result.InputTokens + result.OutputTokens
	cost := estimateCostUSD(result.Model, result.InputTokens, result.OutputTokens)
	return p.sessionRepo.AppendTurn(ctx, nil, sessionID, userMsg, assistantMsg, totalTokens, cost, result.Model)
}

var diagnosisOrOutcomeRe = regexp.MustCompile(`(?i)\b(diagnosis|i (recommend|suspect)|the (cause|issue) is|outcome:|resolved by)\b`)

// extractMemory implements spec §4.8 step 5: if the assistant response
// looks like it contains a diagnosis or outcome, embed it and store a
// SemanticMemory row. A failure here is logged and swallowed — memory
// extraction never fails the chat turn itself.
func (p *Pipeline) extractMemory(ctx context.Context, userID, sessionID uuid.UUID, content string) {
	if !diagnosisOrOutcomeRe.MatchString(content) {
		return
	}
	embedded, err := p.router.Embed(ctx, userID, []string{content})
	if err != nil {
		p.log.Warn("memory extraction embedding failed (non-fatal)", "error", err)
		return
	}
	if len(embedded.Value.Vectors) == 0 {
		return
	}
	mem := &chatdomain.SemanticMemory{
		UserID:          userID,
		Embedding:       vectortype.Vector(embedded.Value.Vectors[0]),
		Excerpt:         content,
		ContentType:     chatdomain.ContentTypeDiagnosis,
		RelevanceScore:  1.0,
		SourceSessionID: sessionID,
	}
	if _, err := p.memoryRepo.Create(ctx, nil, mem); err != nil {
		p.log.Warn("memory extraction persist failed (non-fatal)", "error", err)
	}
}

func renderSystemPrompt(ctxData *assembler.Context) string {
	var b strings.Builder
	b.WriteString("You are LeafWise, a knowledgeable and encouraging plant-care assistant. ")
	b.WriteString("Answer concisely and favor concrete, actionable advice.")
	if ctxData.User != nil {
		fmt.Fprintf(&b, " The user's experience level is %s.", ctxData.User.ExperienceLevel)
	}
	if ctxData.Plant != nil {
		fmt.Fprintf(&b, " They are asking about a plant currently rated %q.", ctxData.Plant.CurrentHealth)
	}
	for _, hit := range ctxData.Memories {
		if hit.Memory != nil {
			fmt.Fprintf(&b, " Relevant history: %s", hit.Memory.Excerpt)
		}
	}
	return b.String()
}

func renderTurns(history []*chatdomain.Message, query string) []providers.ChatTurn {
	turns := make([]providers.ChatTurn, 0, len(history)+1)
	for _, m := range history {
		turns = append(turns, providers.ChatTurn{Role: m.Role, Content: m.Content})
	}
	turns = append(turns, providers.ChatTurn{Role: chatdomain.RoleUser, Content: query})
	return turns
}

func intPtr(v int) *int { return &v }

func asAIRouterError(err error, target **router.AIRouterError) bool {
	for err != nil {
		if re, ok := err.(*router.AIRouterError); ok {
			*target = re
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
