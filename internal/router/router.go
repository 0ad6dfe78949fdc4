// Package router implements the AI Router of spec §4.3: per semantic task,
// an ordered chain of provider calls, each wrapped in the Timeout/Retry
// Harness, with a UsageLogEntry written on every attempt. Grounded on the
// teacher's internal/inference/router/router.go task-dispatch shape,
// generalized from a single-provider lookup to an ordered fallback chain.
package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	usagedomain "github.com/ssingh-rookie/LeafWise-API/internal/domain/usage"
	usagerepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/usage"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/httpx"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
	"github.com/ssingh-rookie/LeafWise-API/internal/providers"
)

// Task names the five semantic tasks of spec §4.3's chain table.
type Task string

const (
	TaskIdentification   Task = "identification"
	TaskHealthAssessment Task = "health_assessment"
	TaskChatSimple       Task = "chat_simple"
	TaskChatComplex      Task = "chat_complex"
	TaskEmbedding        Task = "embedding"
)

// Result wraps whatever a chain step produced, annotated with which
// provider actually served it.
type Result[T any] struct {
	Value      T
	Provider   string
	IsFallback bool
}

// AIRouterError is emitted when every provider in a task's chain is
// exhausted. It carries the ordered attempt history so callers (and logs)
// can see exactly what was tried.
type AIRouterError struct {
	Task               Task
	AttemptedProviders []string
	LastErr            error
}

func (e *AIRouterError) Error() string {
	return fmt.Sprintf("ai router: task %s exhausted providers %s: %v", e.Task, strings.Join(e.AttemptedProviders, ","), e.LastErr)
}

func (e *AIRouterError) Unwrap() error { return e.LastErr }

// step is one entry in a task's ordered chain: a name for logging/ledger
// purposes and the call itself.
type step[T any] struct {
	provider string
	call     func(ctx context.Context) (T, int, int, error) // returns value, inputTokens, outputTokens, err
}

// Router holds the five per-task chains, wired against the gateways built
// in internal/providers.
type Router struct {
	log       *logger.Logger
	db        *gorm.DB
	usageRepo usagerepo.Repo

	plantIdentifier providers.PlantIdentifier
	healthAssessor  providers.PlantHealthAssessor
	visionFallback  providers.VisionFallback
	llmPrimary      providers.ConversationalLLM
	llmFallback     providers.ConversationalLLM
	embedder        providers.Embedder

	policy func(task Task) httpx.Policy
}

type Deps struct {
	DB              *gorm.DB
	UsageRepo       usagerepo.Repo
	PlantIdentifier providers.PlantIdentifier
	HealthAssessor  providers.PlantHealthAssessor
	VisionFallback  providers.VisionFallback
	LLMPrimary      providers.ConversationalLLM
	LLMFallback     providers.ConversationalLLM
	Embedder        providers.Embedder
}

func New(deps Deps, baseLog *logger.Logger) *Router {
	return &Router{
		log:             baseLog.With("component", "ai_router"),
		db:              deps.DB,
		usageRepo:       deps.UsageRepo,
		plantIdentifier: deps.PlantIdentifier,
		healthAssessor:  deps.HealthAssessor,
		visionFallback:  deps.VisionFallback,
		llmPrimary:      deps.LLMPrimary,
		llmFallback:     deps.LLMFallback,
		embedder:        deps.Embedder,
		policy:          defaultPolicy,
	}
}

// defaultPolicy returns the retry policy for a task: AUTH never retries,
// everything else retries up to 3 attempts with the harness's standard
// backoff (spec §4.3's "Retryable predicate" column).
func defaultPolicy(task Task) httpx.Policy {
	return httpx.Policy{
		MaxAttempts:       3,
		PerAttemptTimeout: perAttemptTimeout(task),
		BaseDelay:         250 * time.Millisecond,
		MaxDelay:          4 * time.Second,
		Retryable: func(err error) bool {
			var gwErr *providers.GatewayError
			if ok := errorsAsGatewayError(err, &gwErr); ok {
				return gwErr.Retryable()
			}
			return httpx.IsRetryableError(err)
		},
	}
}

func perAttemptTimeout(task Task) time.Duration {
	switch task {
	case TaskChatComplex:
		return 30 * time.Second
	case TaskEmbedding:
		return 5 * time.Second
	default:
		return 15 * time.Second
	}
}

func errorsAsGatewayError(err error, target **providers.GatewayError) bool {
	for err != nil {
		if gw, ok := err.(*providers.GatewayError); ok {
			*target = gw
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

// run walks the chain in order, wrapping each step in the Harness, writing
// a UsageLogEntry for every attempt (success or terminal failure) per spec
// §4.3. The chain itself never runs two providers concurrently.
func run[T any](ctx context.Context, rt *Router, userID uuid.UUID, task Task, chain []step[T]) (Result[T], error) {
	attempted := make([]string, 0, len(chain))
	var lastErr error

	for i, s := range chain {
		attempted = append(attempted, s.provider)
		policy := rt.policy(task)

		var inTok, outTok int
		started := time.Now()
		value, err := httpx.Run(ctx, policy, func(attemptCtx context.Context, attempt int) (T, error) {
			rt.log.Debug("provider attempt", "provider", s.provider, "task", string(task), "attempt", attempt)
			v, it, ot, callErr := s.call(attemptCtx)
			if callErr == nil {
				inTok, outTok = it, ot
			}
			return v, callErr
		})
		latency := time.Since(started)

		if err == nil {
			rt.writeUsage(ctx, userID, task, s.provider, inTok, outTok, int(latency.Milliseconds()), true, "")
			rt.log.Info("provider succeeded", "provider", s.provider, "task", string(task), "fallback", i > 0)
			return Result[T]{Value: value, Provider: s.provider, IsFallback: i > 0}, nil
		}

		lastErr = err
		rt.writeUsage(ctx, userID, task, s.provider, 0, 0, int(latency.Milliseconds()), false, errorCodeOf(err))
		rt.log.Warn("provider failed", "provider", s.provider, "task", string(task), "error", err)
	}

	rt.log.Error("router exhausted chain", "task", string(task), "attempted", attempted)
	var zero Result[T]
	return zero, &AIRouterError{Task: task, AttemptedProviders: attempted, LastErr: lastErr}
}

func errorCodeOf(err error) string {
	var gwErr *providers.GatewayError
	if errorsAsGatewayError(err, &gwErr) {
		return string(gwErr.Code)
	}
	if _, ok := err.(*httpx.TimeoutError); ok {
		return "TIMEOUT"
	}
	return "SERVICE_ERROR"
}

// writeUsage is fire-and-forget from the caller's perspective: a ledger
// write failure is logged but never returned, so it can't mask the
// Router's actual result (spec §4.4).
func (rt *Router) writeUsage(ctx context.Context, userID uuid.UUID, task Task, provider string, inTok, outTok, latencyMS int, success bool, errCode string) {
	entry := &usagedomain.LogEntry{
		UserID:    userID,
		Task:      string(task),
		Provider:  provider,
		LatencyMS: latencyMS,
		Success:   success,
		ErrorCode: errCode,
		CostUSD:   costFor(provider, inTok, outTok, success),
	}
	if inTok > 0 {
		entry.InputTokens = &inTok
	}
	if outTok > 0 {
		entry.OutputTokens = &outTok
	}
	if err := rt.usageRepo.Create(ctx, rt.db, entry); err != nil {
		rt.log.Warn("usage ledger write failed", "provider", provider, "task", string(task), "error", err)
	}
}
