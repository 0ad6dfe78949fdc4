package router

import (
	"context"

	"github.com/google/uuid"

	"github.com/ssingh-rookie/LeafWise-API/internal/providers"
)

// Identify runs the identification chain: PlantIdentifier → VisionFallback
// (spec §4.3 table). The fallback step's wire-facing provider name is
// "gemini" per spec §6.1/§8 scenario 2, independent of the gateway's
// internal provider key (providers.NewVisionFallback uses "vision-fallback"
// for its own error/log attribution).
func (rt *Router) Identify(ctx context.Context, userID uuid.UUID, imagesBase64 []string) (Result[providers.IdentificationResult], error) {
	chain := []step[providers.IdentificationResult]{
		{
			provider: "plant-id",
			call: func(ctx context.Context) (providers.IdentificationResult, int, int, error) {
				res, err := rt.plantIdentifier.Identify(ctx, imagesBase64)
				return res, 0, 0, err
			},
		},
		{
			provider: "gemini",
			call: func(ctx context.Context) (providers.IdentificationResult, int, int, error) {
				res, err := rt.visionFallback.Identify(ctx, imagesBase64)
				if err != nil {
					return providers.IdentificationResult{}, 0, 0, err
				}
				mapped := providers.IdentificationResult{
					IsPlant: true,
					Top: providers.IdentificationSuggestion{
						ScientificName: res.ScientificName,
						Confidence:     res.Confidence,
						Family:         res.Family,
						Genus:          res.Genus,
						CommonNames:    res.CommonNames,
					},
				}
				return mapped, 0, 0, nil
			},
		},
	}
	return run(ctx, rt, userID, TaskIdentification, chain)
}

// AssessHealth runs the health assessment chain: PlantIdentifier-Health →
// LLM-primary-simple (spec §4.3 table).
func (rt *Router) AssessHealth(ctx context.Context, userID uuid.UUID, imagesBase64 []string, symptomsDescription string) (Result[providers.HealthAssessment], error) {
	chain := []step[providers.HealthAssessment]{
		{
			provider: "plant-id-health",
			call: func(ctx context.Context) (providers.HealthAssessment, int, int, error) {
				res, err := rt.healthAssessor.AssessHealth(ctx, imagesBase64, symptomsDescription)
				return res, 0, 0, err
			},
		},
		{
			provider: "llm-primary-simple",
			call: func(ctx context.Context) (providers.HealthAssessment, int, int, error) {
				prompt := healthFallbackPrompt(symptomsDescription)
				res, err := rt.llmPrimary.Generate(ctx, providers.TierSimple, healthFallbackSystemPrompt, []providers.ChatTurn{
					{Role: "user", Content: prompt},
				})
				if err != nil {
					return providers.HealthAssessment{}, 0, 0, err
				}
				return parseHealthFallbackContent(res.Content), res.InputTokens, res.OutputTokens, nil
			},
		},
	}
	return run(ctx, rt, userID, TaskHealthAssessment, chain)
}

// Chat runs either the chat_simple or chat_complex chain depending on
// tier, returning the generated assistant turn (spec §4.3 table).
func (rt *Router) Chat(ctx context.Context, userID uuid.UUID, tier providers.ModelTier, systemPrompt string, turns []providers.ChatTurn) (Result[providers.ChatResult], error) {
	if tier == providers.TierComplex {
		return run(ctx, rt, userID, TaskChatComplex, []step[providers.ChatResult]{
			{provider: "llm-primary-complex", call: genStep(rt.llmPrimary, providers.TierComplex, systemPrompt, turns)},
			{provider: "llm-primary-simple", call: genStep(rt.llmPrimary, providers.TierSimple, systemPrompt, turns)},
			{provider: "llm-fallback", call: genStep(rt.llmFallback, providers.TierSimple, systemPrompt, turns)},
		})
	}
	return run(ctx, rt, userID, TaskChatSimple, []step[providers.ChatResult]{
		{provider: "llm-primary-simple", call: genStep(rt.llmPrimary, providers.TierSimple, systemPrompt, turns)},
		{provider: "llm-fallback", call: genStep(rt.llmFallback, providers.TierSimple, systemPrompt, turns)},
	})
}

// ChatStream is the streaming variant of Chat: it walks the same chain as
// Chat for the given tier and calls Stream on every step, so a fallback
// provider also delivers its chunks through onDelta (spec §4.2 item 3's
// "streaming variant" requirement applied through the same chain order).
func (rt *Router) ChatStream(ctx context.Context, userID uuid.UUID, tier providers.ModelTier, systemPrompt string, turns []providers.ChatTurn, onDelta func(string)) (Result[providers.ChatResult], error) {
	streamStep := func(llm providers.ConversationalLLM, t providers.ModelTier) func(context.Context) (providers.ChatResult, int, int, error) {
		return func(ctx context.Context) (providers.ChatResult, int, int, error) {
			res, err := llm.Stream(ctx, t, systemPrompt, turns, onDelta)
			if err != nil {
				return providers.ChatResult{}, 0, 0, err
			}
			return res, res.InputTokens, res.OutputTokens, nil
		}
	}

	if tier == providers.TierComplex {
		return run(ctx, rt, userID, TaskChatComplex, []step[providers.ChatResult]{
			{provider: "llm-primary-complex", call: streamStep(rt.llmPrimary, providers.TierComplex)},
			{provider: "llm-primary-simple", call: streamStep(rt.llmPrimary, providers.TierSimple)},
			{provider: "llm-fallback", call: streamStep(rt.llmFallback, providers.TierSimple)},
		})
	}
	return run(ctx, rt, userID, TaskChatSimple, []step[providers.ChatResult]{
		{provider: "llm-primary-simple", call: streamStep(rt.llmPrimary, providers.TierSimple)},
		{provider: "llm-fallback", call: streamStep(rt.llmFallback, providers.TierSimple)},
	})
}

func genStep(llm providers.ConversationalLLM, tier providers.ModelTier, systemPrompt string, turns []providers.ChatTurn) func(context.Context) (providers.ChatResult, int, int, error) {
	return func(ctx context.Context) (providers.ChatResult, int, int, error) {
		res, err := llm.Generate(ctx, tier, systemPrompt, turns)
		if err != nil {
			return providers.ChatResult{}, 0, 0, err
		}
		return res, res.InputTokens, res.OutputTokens, nil
	}
}

// Embed runs the embedding chain: Embedding only, no fallback (spec §4.3
// table — "embedding has no viable cross-vendor substitute").
func (rt *Router) Embed(ctx context.Context, userID uuid.UUID, inputs []string) (Result[providers.EmbeddingResult], error) {
	chain := []step[providers.EmbeddingResult]{
		{
			provider: "embedding",
			call: func(ctx context.Context) (providers.EmbeddingResult, int, int, error) {
				res, err := rt.embedder.Embed(ctx, inputs)
				if err != nil {
					return providers.EmbeddingResult{}, 0, 0, err
				}
				return res, res.Tokens, 0, nil
			},
		},
	}
	return run(ctx, rt, userID, TaskEmbedding, chain)
}
