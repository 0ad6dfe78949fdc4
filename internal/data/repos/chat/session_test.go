package chat

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/ssingh-rookie/LeafWise-API/internal/data/repos/testutil"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/chat"
)

func TestSessionRepoAppendTurnUpdatesAggregates(t *testing.T) {
	db := testutil.DB(t)
	repo := NewSessionRepo(db, testutil.Logger(t))
	ctx := context.Background()

	s, err := repo.Create(ctx, nil, &chat.Session{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	userMsg := &chat.Message{Role: chat.RoleUser, Content: "why are my leaves yellow?"}
	assistantMsg := &chat.Message{Role: chat.RoleAssistant, Content: "likely overwatering", Model: "gpt-4o-mini"}

	if err := repo.AppendTurn(ctx, nil, s.ID, userMsg, assistantMsg, 120, 0.002, "gpt-4o-mini"); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}

	got, err := repo.GetByID(ctx, nil, s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.MessageCount != 2 {
		t.Fatalf("expected MessageCount 2, got %d", got.MessageCount)
	}
	if got.TotalTokens != 120 {
		t.Fatalf("expected TotalTokens 120, got %d", got.TotalTokens)
	}
	if got.EstimatedCostUSD != 0.002 {
		t.Fatalf("expected EstimatedCostUSD 0.002, got %v", got.EstimatedCostUSD)
	}
	if userMsg.SessionID != s.ID || assistantMsg.SessionID != s.ID {
		t.Fatal("expected both messages to be stamped with the session ID")
	}

	messageRepo := NewMessageRepo(db)
	recent, err := messageRepo.RecentBySession(ctx, nil, s.ID, 10)
	if err != nil {
		t.Fatalf("RecentBySession: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(recent))
	}
	if recent[0].Role != chat.RoleUser || recent[1].Role != chat.RoleAssistant {
		t.Fatalf("expected oldest-to-newest order, got %q then %q", recent[0].Role, recent[1].Role)
	}
}

func TestSessionRepoDetachPlantNullifiesPlantID(t *testing.T) {
	db := testutil.DB(t)
	repo := NewSessionRepo(db, testutil.Logger(t))
	ctx := context.Background()

	plantID := uuid.New()
	s, err := repo.Create(ctx, nil, &chat.Session{UserID: uuid.New(), PlantID: &plantID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.DetachPlant(ctx, nil, plantID); err != nil {
		t.Fatalf("DetachPlant: %v", err)
	}

	got, err := repo.GetByID(ctx, nil, s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.PlantID != nil {
		t.Fatalf("expected PlantID to be nulled out, got %v", got.PlantID)
	}
}
