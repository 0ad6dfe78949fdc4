// Package assembler implements the Context Assembler of spec §4.7: four
// parallel sub-fetches joined into a token-budgeted prompt context.
// Grounded on the same errgroup fan-out idiom as the Identification
// Pipeline (internal/identify), applied to four branches instead of two.
package assembler

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	chatdomain "github.com/ssingh-rookie/LeafWise-API/internal/domain/chat"
	healthdomain "github.com/ssingh-rookie/LeafWise-API/internal/domain/health"
	plantdomain "github.com/ssingh-rookie/LeafWise-API/internal/domain/plant"
	userdomain "github.com/ssingh-rookie/LeafWise-API/internal/domain/user"

	chatrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/chat"
	healthrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/health"
	plantrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/plant"
	userrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/user"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/vectortype"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
	"github.com/ssingh-rookie/LeafWise-API/internal/router"
)

// Token budget per spec §4.7: monotonic allocation, enforced by trimming
// in this order when a section overflows its slice.
const (
	budgetUser     = 200
	budgetPlant    = 500
	budgetHistory  = 2000
	budgetMemories = 1000
	budgetReserve  = 300

	semanticSimilarityThreshold = 0.7
	semanticMemoryLimit         = 5
	recentMessageLimit          = 10
)

// EstimateTokens implements the deliberately approximate ceil(chars/4)
// estimator spec §4.7 specifies.
func EstimateTokens(s string) int {
	return int(math.Ceil(float64(len(s)) / 4))
}

type Context struct {
	User      *userdomain.User
	Plant     *plantdomain.Plant
	Issues    []*healthdomain.Issue
	History   []*chatdomain.Message
	Memories  []chatrepo.SimilarityHit
	// TotalTokens is the sum of each section's post-trim estimate plus
	// budgetReserve, useful for logging/observability but never enforced
	// beyond the per-section budgets above.
	TotalTokens int
}

type Assembler struct {
	log        *logger.Logger
	userRepo   userrepo.Repo
	plantRepo  plantrepo.Repo
	healthRepo healthrepo.Repo
	sessionRepo chatrepo.SessionRepo
	messageRepo chatrepo.MessageRepo
	memoryRepo  chatrepo.MemoryRepo
	router      *router.Router
}

type Deps struct {
	UserRepo    userrepo.Repo
	PlantRepo   plantrepo.Repo
	HealthRepo  healthrepo.Repo
	SessionRepo chatrepo.SessionRepo
	MessageRepo chatrepo.MessageRepo
	MemoryRepo  chatrepo.MemoryRepo
	Router      *router.Router
}

func New(deps Deps, baseLog *logger.Logger) *Assembler {
	return &Assembler{
		log:         baseLog.With("component", "context_assembler"),
		userRepo:    deps.UserRepo,
		plantRepo:   deps.PlantRepo,
		healthRepo:  deps.HealthRepo,
		sessionRepo: deps.SessionRepo,
		messageRepo: deps.MessageRepo,
		memoryRepo:  deps.MemoryRepo,
		router:      deps.Router,
	}
}

// Assemble runs the four sub-fetches of spec §4.7 concurrently and trims
// each section to its token budget. plantID and sessionID are optional;
// absent ones simply yield an empty section. A sub-fetch failure never
// fails the whole assembly — it yields an empty section, logged as a
// warning (spec §4.7's "retryable class after max attempts" carve-out is
// handled one layer down, inside the repo/Router calls themselves).
func (a *Assembler) Assemble(ctx context.Context, userID uuid.UUID, query string, plantID *uuid.UUID, sessionID *uuid.UUID) *Context {
	result := &Context{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		u, err := a.userRepo.GetByID(gctx, nil, userID)
		if err != nil {
			a.log.Warn("user facts fetch failed (non-fatal)", "error", err)
			return nil
		}
		result.User = u
		return nil
	})

	g.Go(func() error {
		if plantID == nil {
			return nil
		}
		p, err := a.plantRepo.GetByID(gctx, nil, *plantID)
		if err != nil {
			a.log.Warn("plant facts fetch failed (non-fatal)", "error", err)
			return nil
		}
		result.Plant = p
		issues, err := a.healthRepo.ActiveOrTreatingByPlant(gctx, nil, *plantID, 3)
		if err != nil {
			a.log.Warn("plant issues fetch failed (non-fatal)", "error", err)
			return nil
		}
		result.Issues = issues
		return nil
	})

	g.Go(func() error {
		if sessionID == nil {
			return nil
		}
		msgs, err := a.messageRepo.RecentBySession(gctx, nil, *sessionID, recentMessageLimit)
		if err != nil {
			a.log.Warn("recent history fetch failed (non-fatal)", "error", err)
			return nil
		}
		result.History = msgs
		return nil
	})

	g.Go(func() error {
		hits, err := a.fetchSemanticMemories(gctx, userID, query)
		if err != nil {
			a.log.Warn("semantic memory fetch failed (non-fatal)", "error", err)
			return nil
		}
		result.Memories = hits
		return nil
	})

	_ = g.Wait()

	a.trim(result)
	return result
}

func (a *Assembler) fetchSemanticMemories(ctx context.Context, userID uuid.UUID, query string) ([]chatrepo.SimilarityHit, error) {
	embedded, err := a.router.Embed(ctx, userID, []string{query})
	if err != nil {
		return nil, err
	}
	if len(embedded.Value.Vectors) == 0 {
		return nil, nil
	}
	queryVec := vectortype.Vector(embedded.Value.Vectors[0])
	return a.memoryRepo.SimilaritySearch(ctx, nil, userID, queryVec, semanticSimilarityThreshold, semanticMemoryLimit)
}

// trim enforces each section's token budget, dropping from the
// low-priority end: oldest messages first for history, lowest similarity
// first for memories (spec §4.7).
func (a *Assembler) trim(c *Context) {
	userTokens := 0
	if c.User != nil {
		userTokens = EstimateTokens(userFactsText(c.User))
	}
	if userTokens > budgetUser {
		userTokens = budgetUser
	}

	plantTokens := 0
	if c.Plant != nil {
		plantTokens = EstimateTokens(plantFactsText(c.Plant, c.Issues))
	}
	if plantTokens > budgetPlant {
		plantTokens = budgetPlant
	}

	for estimateHistoryTokens(c.History) > budgetHistory && len(c.History) > 0 {
		c.History = c.History[1:] // drop oldest
	}

	for estimateMemoryTokens(c.Memories) > budgetMemories && len(c.Memories) > 0 {
		// memories are already ordered by similarity desc; drop the
		// lowest-similarity (last) entry first.
		c.Memories = c.Memories[:len(c.Memories)-1]
	}

	c.TotalTokens = userTokens + plantTokens + estimateHistoryTokens(c.History) + estimateMemoryTokens(c.Memories) + budgetReserve
}

func estimateHistoryTokens(msgs []*chatdomain.Message) int {
	total := 0
	for _, m := range msgs {
		total += EstimateTokens(m.Content)
	}
	return total
}

func estimateMemoryTokens(hits []chatrepo.SimilarityHit) int {
	total := 0
	for _, h := range hits {
		if h.Memory != nil {
			total += EstimateTokens(h.Memory.Excerpt)
		}
	}
	return total
}

func userFactsText(u *userdomain.User) string {
	var b strings.Builder
	b.WriteString(u.DisplayName)
	b.WriteString(" experience=")
	b.WriteString(u.ExperienceLevel)
	if u.City != "" {
		b.WriteString(" city=")
		b.WriteString(u.City)
	}
	if u.ClimateZone != "" {
		b.WriteString(" climate=")
		b.WriteString(u.ClimateZone)
	}
	return b.String()
}

func plantFactsText(p *plantdomain.Plant, issues []*healthdomain.Issue) string {
	var b strings.Builder
	if p.Nickname != "" {
		b.WriteString(p.Nickname)
		b.WriteByte(' ')
	}
	b.WriteString("health=")
	b.WriteString(p.CurrentHealth)
	b.WriteString(" location=")
	b.WriteString(p.LocationInHome)
	for _, i := range issues {
		b.WriteString(" issue=")
		b.WriteString(i.Diagnosis)
	}
	return b.String()
}

// NeedsComplexTier implements spec §4.8 step 2's model-tier decision.
func NeedsComplexTier(query string, plant *plantdomain.Plant, issues []*healthdomain.Issue) bool {
	if len(query) > 400 {
		return true
	}
	if plant != nil && (plant.CurrentHealth == plantdomain.HealthStruggling || plant.CurrentHealth == plantdomain.HealthCritical) {
		return true
	}
	for _, i := range issues {
		if i.Status == healthdomain.StatusActive && i.Confidence >= 0.6 {
			return true
		}
	}
	return false
}
