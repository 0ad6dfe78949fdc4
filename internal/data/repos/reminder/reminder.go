package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/reminder"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

type Repo interface {
	Create(ctx context.Context, tx *gorm.DB, rem *reminder.Reminder) (*reminder.Reminder, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*reminder.Reminder, error)
	Complete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	Skip(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DueBefore(ctx context.Context, tx *gorm.DB, userID uuid.UUID, before time.Time) ([]*reminder.Reminder, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) Repo {
	return &repo{db: db, log: baseLog.With("repo", "ReminderRepo")}
}

func (r *repo) Create(ctx context.Context, tx *gorm.DB, rem *reminder.Reminder) (*reminder.Reminder, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if rem.ID == uuid.Nil {
		rem.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(rem).Error; err != nil {
		return nil, err
	}
	return rem, nil
}

func (r *repo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*reminder.Reminder, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rem reminder.Reminder
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&rem).Error; err != nil {
		return nil, err
	}
	return &rem, nil
}

// Complete marks a reminder completed and, if recurring, spawns the next
// pending instance in the same transaction (spec §4.9).
func (r *repo) Complete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.finish(ctx, tx, id, "completed")
}

func (r *repo) Skip(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.finish(ctx, tx, id, "skipped")
}

func (r *repo) finish(ctx context.Context, tx *gorm.DB, id uuid.UUID, outcome string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		var rem reminder.Reminder
		if err := txn.Where("id = ?", id).First(&rem).Error; err != nil {
			return err
		}
		update := map[string]any{"completed": outcome == "completed", "skipped": outcome == "skipped"}
		if err := txn.Model(&reminder.Reminder{}).Where("id = ?", id).Updates(update).Error; err != nil {
			return err
		}
		if !rem.Recurring {
			return nil
		}
		next := &reminder.Reminder{
			ID:        uuid.New(),
			UserID:    rem.UserID,
			PlantID:   rem.PlantID,
			DueDate:   rem.NextDue(),
			Recurring: rem.Recurring,
			Frequency: rem.Frequency,
			Interval:  rem.Interval,
		}
		return txn.Create(next).Error
	})
}

func (r *repo) DueBefore(ctx context.Context, tx *gorm.DB, userID uuid.UUID, before time.Time) ([]*reminder.Reminder, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rems []*reminder.Reminder
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND completed = ? AND skipped = ? AND due_date <= ?", userID, false, false, before).
		Order("due_date ASC").
		Find(&rems).Error
	return rems, err
}
