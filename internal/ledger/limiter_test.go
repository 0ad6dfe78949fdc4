package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ssingh-rookie/LeafWise-API/internal/data/repos/testutil"
	usagerepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/usage"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/usage"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/apierr"
)

// CheckEndpoint needs a live Redis connection (not available to this test
// binary); CheckMonthlyQuota only touches the usage repo, so it's testable
// without rdb by constructing the limiter directly rather than through
// NewRateLimiter.

func TestCheckMonthlyQuotaAllowsUnderCap(t *testing.T) {
	db := testutil.DB(t)
	repo := usagerepo.New(db, testutil.Logger(t))
	l := &limiter{log: testutil.Logger(t), usageRepo: repo}
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 4; i++ {
		if err := repo.Create(ctx, nil, &usage.LogEntry{
			UserID: userID, Task: "identification", Provider: "plant-id", Success: true, CreatedAt: time.Now(),
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if err := l.CheckMonthlyQuota(ctx, userID, "identification", TierFree); err != nil {
		t.Fatalf("expected quota to allow a 5th call, got %v", err)
	}
}

func TestCheckMonthlyQuotaBlocksAtCap(t *testing.T) {
	db := testutil.DB(t)
	repo := usagerepo.New(db, testutil.Logger(t))
	l := &limiter{log: testutil.Logger(t), usageRepo: repo}
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		if err := repo.Create(ctx, nil, &usage.LogEntry{
			UserID: userID, Task: "identification", Provider: "plant-id", Success: true, CreatedAt: time.Now(),
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	err := l.CheckMonthlyQuota(ctx, userID, "identification", TierFree)
	if err == nil {
		t.Fatal("expected quota error at cap")
	}
	apiErr := apierr.As(err)
	if apiErr == nil {
		t.Fatalf("expected an *apierr.Error, got %v", err)
	}
	if apiErr.Status != 402 {
		t.Fatalf("expected 402 Payment Required, got %d", apiErr.Status)
	}
}

func TestCheckMonthlyQuotaUnlimitedForPremium(t *testing.T) {
	db := testutil.DB(t)
	repo := usagerepo.New(db, testutil.Logger(t))
	l := &limiter{log: testutil.Logger(t), usageRepo: repo}
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 50; i++ {
		if err := repo.Create(ctx, nil, &usage.LogEntry{
			UserID: userID, Task: "identification", Provider: "plant-id", Success: true, CreatedAt: time.Now(),
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if err := l.CheckMonthlyQuota(ctx, userID, "identification", TierPremium); err != nil {
		t.Fatalf("expected premium tier to be unlimited, got %v", err)
	}
}

func TestStartOfUTCMonth(t *testing.T) {
	got := startOfUTCMonth(time.Date(2026, 3, 17, 13, 45, 0, 0, time.UTC))
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
