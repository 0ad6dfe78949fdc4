package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/chat"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/health"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/photo"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/plant"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/reminder"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/species"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/usage"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/user"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&species.Species{},
		&plant.Plant{},
		&health.Issue{},
		&health.Step{},
		&chat.Session{},
		&chat.Message{},
		&chat.SemanticMemory{},
		&reminder.Reminder{},
		&usage.LogEntry{},
		&photo.Photo{},
	)
}

// EnsureSchemaConstraints creates the indexes and constraints named in
// spec §6.3 that GORM's struct tags can't express directly: a
// case-insensitive uniqueness constraint on species.scientificName and the
// IVFFlat ANN index on semantic_memories.embedding.
func EnsureSchemaConstraints(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_species_scientific_name_ci
		ON species (lower(scientific_name))
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_species_scientific_name_ci: %w", err)
	}

	// IVFFlat requires a populated table to choose good centroids; this is
	// safe to run against an empty table and to re-run after growth.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_semantic_memories_embedding_cosine
		ON semantic_memories
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100);
	`).Error; err != nil {
		return fmt.Errorf("create idx_semantic_memories_embedding_cosine: %w", err)
	}

	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureSchemaConstraints(s.db); err != nil {
		s.log.Error("Schema constraint migration failed", "error", err)
		return err
	}
	return nil
}
