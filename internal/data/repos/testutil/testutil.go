package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/chat"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/health"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/photo"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/plant"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/reminder"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/species"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/usage"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/user"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

// DB returns an in-memory sqlite-backed *gorm.DB with every repository's
// table migrated. sqlite stands in for Postgres in repository unit tests;
// Postgres-only behavior (pgvector, case-insensitive unique indexes) is
// covered by narrower unit tests against mapping logic instead.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&user.User{},
		&species.Species{},
		&plant.Plant{},
		&health.Issue{},
		&health.Step{},
		&chat.Session{},
		&chat.Message{},
		&reminder.Reminder{},
		&usage.LogEntry{},
		&photo.Photo{},
		&chat.SemanticMemory{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func Logger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return log
}
