package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/ssingh-rookie/LeafWise-API/internal/data/repos/testutil"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/user"
)

func TestRepoGetByID(t *testing.T) {
	db := testutil.DB(t)
	repo := New(db, testutil.Logger(t))
	ctx := context.Background()

	u := &user.User{ID: uuid.New(), DisplayName: "Ada", ExperienceLevel: user.ExperienceBeginner, Tier: user.TierFree}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	got, err := repo.GetByID(ctx, nil, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.DisplayName != "Ada" {
		t.Fatalf("GetByID: unexpected display name %q", got.DisplayName)
	}

	if _, err := repo.GetByID(ctx, nil, uuid.New()); err == nil {
		t.Fatalf("GetByID: expected error for unknown id")
	}
}
