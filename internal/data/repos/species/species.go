package species

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/species"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

type Repo interface {
	GetByNormalizedName(ctx context.Context, tx *gorm.DB, normalizedName string) (*species.Species, error)
	Create(ctx context.Context, tx *gorm.DB, s *species.Species) (*species.Species, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*species.Species, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) Repo {
	return &repo{db: db, log: baseLog.With("repo", "SpeciesRepo")}
}

func (r *repo) GetByNormalizedName(ctx context.Context, tx *gorm.DB, normalizedName string) (*species.Species, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var s species.Species
	err := transaction.WithContext(ctx).Where("normalized_name = ?", normalizedName).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a Species row. On a unique-constraint violation (a
// concurrent insert raced this one) it re-reads and returns the winner's
// row, matching spec §5's "insert-race loser re-reads" rule.
func (r *repo) Create(ctx context.Context, tx *gorm.DB, s *species.Species) (*species.Species, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := transaction.WithContext(ctx).Create(s).Error
	if err == nil {
		return s, nil
	}
	if isUniqueViolation(err) {
		existing, getErr := r.GetByNormalizedName(ctx, tx, s.NormalizedName)
		if getErr != nil {
			return nil, getErr
		}
		if existing != nil {
			return existing, nil
		}
	}
	return nil, err
}

func (r *repo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(&species.Species{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*species.Species, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var s species.Species
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func isUniqueViolation(err error) bool {
	// Postgres unique_violation = SQLSTATE 23505; SQLite returns a message
	// containing "UNIQUE constraint failed" (used by repository unit tests).
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}
