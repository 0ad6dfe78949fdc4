// Package ledger implements the read-side of spec §4.4: the sliding-window
// per-endpoint rate limiter and the per-task monthly quota gate. Both
// decisions are made before any provider call. Grounded on the teacher's
// internal/clients/redis client-construction conventions, repurposed from
// pub/sub to sorted-set counters.
package ledger

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/google/uuid"

	usagerepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/usage"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/apierr"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

// window is one of the three concurrently enforced sliding windows of spec
// §4.4 item 1.
type window struct {
	name string
	size time.Duration
	cap  int
}

var endpointWindows = []window{
	{name: "1s", size: time.Second, cap: 3},
	{name: "10s", size: 10 * time.Second, cap: 20},
	{name: "60s", size: 60 * time.Second, cap: 100},
}

// Tier is the billing tier that selects a monthly quota row.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// monthlyQuotas maps tier -> task -> cap. -1 is the "unlimited" sentinel
// spec §4.4 item 2 defines for premium.
var monthlyQuotas = map[Tier]map[string]int{
	TierFree: {
		"identification":    5,
		"health_assessment": 2,
		"chat_simple":       10,
		"chat_complex":      10,
	},
	TierPremium: {
		"identification":    -1,
		"health_assessment": -1,
		"chat_simple":       -1,
		"chat_complex":      -1,
	},
}

type RateLimiter interface {
	// CheckEndpoint enforces the three sliding windows for (userID,
	// endpoint). Returns apierr.RateLimited on the first violated window.
	CheckEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error
	// CheckMonthlyQuota enforces the tier-dependent monthly cap for
	// (userID, task). Returns apierr.PaymentRequired when exceeded.
	CheckMonthlyQuota(ctx context.Context, userID uuid.UUID, task string, tier Tier) error
}

type limiter struct {
	log       *logger.Logger
	rdb       *goredis.Client
	usageRepo usagerepo.Repo
}

func NewRateLimiter(log *logger.Logger, usageRepo usagerepo.Repo) (RateLimiter, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &limiter{
		log:       log.With("component", "rate_limiter"),
		rdb:       rdb,
		usageRepo: usageRepo,
	}, nil
}

func endpointKey(userID uuid.UUID, endpoint, windowName string) string {
	return fmt.Sprintf("ratelimit:{%s}:%s:%s", userID.String(), endpoint, windowName)
}

// CheckEndpoint implements a sliding-window log using a Redis sorted set
// per window: every call's timestamp is scored and zero-width members
// outside the window are trimmed before counting, so the count is always
// exact rather than bucketed.
func (l *limiter) CheckEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	now := time.Now()

	for _, w := range endpointWindows {
		key := endpointKey(userID, endpoint, w.name)
		cutoff := now.Add(-w.size).UnixNano()

		pipe := l.rdb.TxPipeline()
		pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", cutoff))
		countCmd := pipe.ZCard(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("rate limiter pipeline: %w", err)
		}

		if int(countCmd.Val()) >= w.cap {
			l.log.Warn("rate limit window exceeded", "endpoint", endpoint, "window", w.name, "cap", w.cap)
			return apierr.RateLimited(int(w.size.Seconds()))
		}
	}

	// All windows passed: record this call's timestamp in each window.
	member := fmt.Sprintf("%d", now.UnixNano())
	for _, w := range endpointWindows {
		key := endpointKey(userID, endpoint, w.name)
		if err := l.rdb.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member}).Err(); err != nil {
			return fmt.Errorf("rate limiter record: %w", err)
		}
		l.rdb.Expire(ctx, key, w.size+time.Second)
	}
	return nil
}

// CheckMonthlyQuota counts successful UsageLogEntry rows since the start
// of the current UTC month via the usage repo (spec §4.4 item 2's source
// of truth) and compares against the tier's cap.
func (l *limiter) CheckMonthlyQuota(ctx context.Context, userID uuid.UUID, task string, tier Tier) error {
	caps, ok := monthlyQuotas[tier]
	if !ok {
		caps = monthlyQuotas[TierFree]
	}
	quotaCap, ok := caps[task]
	if !ok || quotaCap < 0 {
		return nil // unlimited sentinel, or task has no quota configured
	}

	monthStart := startOfUTCMonth(time.Now())
	used, err := l.usageRepo.CountSuccessSince(ctx, nil, userID, task, monthStart)
	if err != nil {
		return fmt.Errorf("check monthly quota: %w", err)
	}
	if used >= quotaCap {
		resetsAt := startOfUTCMonth(monthStart.AddDate(0, 1, 0)).Format(time.RFC3339)
		return apierr.PaymentRequired(task, used, quotaCap, resetsAt)
	}
	return nil
}

func startOfUTCMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
