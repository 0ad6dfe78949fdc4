package health

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/health"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

type Repo interface {
	CreateIssue(ctx context.Context, tx *gorm.DB, issue *health.Issue, steps []*health.Step) (*health.Issue, []*health.Step, error)
	ActiveOrTreatingByPlant(ctx context.Context, tx *gorm.DB, plantID uuid.UUID, limit int) ([]*health.Issue, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, issueID uuid.UUID, status string) error
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) Repo {
	return &repo{db: db, log: baseLog.With("repo", "HealthRepo")}
}

func (r *repo) CreateIssue(ctx context.Context, tx *gorm.DB, issue *health.Issue, steps []*health.Step) (*health.Issue, []*health.Step, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return issue, steps, transaction.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		if issue.ID == uuid.Nil {
			issue.ID = uuid.New()
		}
		if err := txn.Create(issue).Error; err != nil {
			return err
		}
		for i, step := range steps {
			step.IssueID = issue.ID
			step.Seq = i + 1
			if step.ID == uuid.Nil {
				step.ID = uuid.New()
			}
		}
		if len(steps) > 0 {
			if err := txn.Create(&steps).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ActiveOrTreatingByPlant returns up to limit issues ordered by
// reportedAt desc, per spec §4.7 item 2 ("latest up to three active/treating
// issues sorted by reportedAt desc").
func (r *repo) ActiveOrTreatingByPlant(ctx context.Context, tx *gorm.DB, plantID uuid.UUID, limit int) ([]*health.Issue, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 3
	}
	var issues []*health.Issue
	err := transaction.WithContext(ctx).
		Where("plant_id = ? AND status IN ?", plantID, []string{health.StatusActive, health.StatusTreating}).
		Order("reported_at DESC").
		Limit(limit).
		Find(&issues).Error
	return issues, err
}

func (r *repo) UpdateStatus(ctx context.Context, tx *gorm.DB, issueID uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(&health.Issue{}).Where("id = ?", issueID).Update("status", status).Error
}
