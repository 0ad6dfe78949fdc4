package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/usage"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

type Repo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *usage.LogEntry) error
	// CountSuccessSince counts success=true rows for (userID, task) with
	// createdAt >= since, the source-of-truth query for monthly quota
	// enforcement (spec §4.4 item 2).
	CountSuccessSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, task string, since time.Time) (int, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) Repo {
	return &repo{db: db, log: baseLog.With("repo", "UsageLogRepo")}
}

func (r *repo) Create(ctx context.Context, tx *gorm.DB, entry *usage.LogEntry) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(entry).Error
}

func (r *repo) CountSuccessSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, task string, since time.Time) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&usage.LogEntry{}).
		Where("user_id = ? AND task = ? AND success = ? AND created_at >= ?", userID, task, true, since).
		Count(&count).Error
	return int(count), err
}
