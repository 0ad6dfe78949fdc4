package health

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ssingh-rookie/LeafWise-API/internal/data/repos/testutil"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/health"
)

func TestRepoCreateIssueAssignsStepSeq(t *testing.T) {
	db := testutil.DB(t)
	repo := New(db, testutil.Logger(t))
	ctx := context.Background()

	plantID := uuid.New()
	issue := &health.Issue{PlantID: plantID, Diagnosis: "leaf spot", Confidence: 0.8, Status: health.StatusActive}
	steps := []*health.Step{
		{Instruction: "isolate the plant"},
		{Instruction: "reduce watering"},
	}

	created, createdSteps, err := repo.CreateIssue(ctx, nil, issue, steps)
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected issue ID to be assigned")
	}
	for i, s := range createdSteps {
		if s.IssueID != created.ID {
			t.Fatalf("step %d: expected IssueID %v, got %v", i, created.ID, s.IssueID)
		}
		if s.Seq != i+1 {
			t.Fatalf("step %d: expected Seq %d, got %d", i, i+1, s.Seq)
		}
	}
}

func TestRepoActiveOrTreatingByPlantOrdersByReportedAtDesc(t *testing.T) {
	db := testutil.DB(t)
	repo := New(db, testutil.Logger(t))
	ctx := context.Background()
	plantID := uuid.New()

	older := &health.Issue{PlantID: plantID, Diagnosis: "older", Status: health.StatusActive,
		ReportedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := &health.Issue{PlantID: plantID, Diagnosis: "newer", Status: health.StatusTreating,
		ReportedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	resolved := &health.Issue{PlantID: plantID, Diagnosis: "resolved", Status: health.StatusResolved,
		ReportedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}

	for _, i := range []*health.Issue{older, newer, resolved} {
		if _, _, err := repo.CreateIssue(ctx, nil, i, nil); err != nil {
			t.Fatalf("CreateIssue: %v", err)
		}
	}

	got, err := repo.ActiveOrTreatingByPlant(ctx, nil, plantID, 3)
	if err != nil {
		t.Fatalf("ActiveOrTreatingByPlant: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 active/treating issues, got %d", len(got))
	}
	if got[0].Diagnosis != "newer" || got[1].Diagnosis != "older" {
		t.Fatalf("expected newer-first order, got %q then %q", got[0].Diagnosis, got[1].Diagnosis)
	}
}

func TestRepoUpdateStatus(t *testing.T) {
	db := testutil.DB(t)
	repo := New(db, testutil.Logger(t))
	ctx := context.Background()

	issue := &health.Issue{PlantID: uuid.New(), Diagnosis: "leaf spot", Status: health.StatusActive}
	created, _, err := repo.CreateIssue(ctx, nil, issue, nil)
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	if err := repo.UpdateStatus(ctx, nil, created.ID, health.StatusResolved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, err := repo.ActiveOrTreatingByPlant(ctx, nil, created.PlantID, 3)
	if err != nil {
		t.Fatalf("ActiveOrTreatingByPlant: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected resolved issue to drop out of active/treating, got %d", len(got))
	}
}
