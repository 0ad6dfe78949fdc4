package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/ssingh-rookie/LeafWise-API/internal/assembler"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/apierr"
	"github.com/ssingh-rookie/LeafWise-API/internal/providers"
	"github.com/ssingh-rookie/LeafWise-API/internal/router"
)

// RunStream is the streaming variant of Run (spec §4.8): onDelta is called
// with content chunks in emission order; session aggregates and memory
// extraction only happen once the stream completes successfully. A
// mid-stream failure discards the draft assistant message entirely —
// nothing is persisted.
func (p *Pipeline) RunStream(ctx context.Context, userID, sessionID uuid.UUID, plantID *uuid.UUID, query string, onDelta func(chunk string)) (*Reply, error) {
	ctxData := p.assembler.Assemble(ctx, userID, query, plantID, &sessionID)

	tier := providers.TierSimple
	if assembler.NeedsComplexTier(query, ctxData.Plant, ctxData.Issues) {
		tier = providers.TierComplex
	}

	systemPrompt := renderSystemPrompt(ctxData)
	turns := renderTurns(ctxData.History, query)

	genResult, err := p.router.ChatStream(ctx, userID, tier, systemPrompt, turns, onDelta)
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
