// Package reminder is the thin service layer the spec §4.9 state machine
// needs a caller for. Grounded on the teacher's repository-and-service
// layering: the service validates/shapes input and delegates the state
// transitions themselves to the repository, which already runs them
// transactionally.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	reminderdomain "github.com/ssingh-rookie/LeafWise-API/internal/domain/reminder"
	reminderrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/reminder"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/apierr"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

type Service interface {
	Create(ctx context.Context, userID, plantID uuid.UUID, dueDate time.Time, recurring bool, frequency string, interval int) (*reminderdomain.Reminder, error)
	Complete(ctx context.Context, id uuid.UUID) error
	Skip(ctx context.Context, id uuid.UUID) error
	DueBefore(ctx context.Context, userID uuid.UUID, before time.Time) ([]*reminderdomain.Reminder, error)
}

type service struct {
	log  *logger.Logger
	repo reminderrepo.Repo
}

func New(repo reminderrepo.Repo, baseLog *logger.Logger) Service {
	return &service{log: baseLog.With("component", "reminder_service"), repo: repo}
}

func (s *service) Create(ctx context.Context, userID, plantID uuid.UUID, dueDate time.Time, recurring bool, frequency string, interval int) (*reminderdomain.Reminder, error) {
	if recurring {
		switch frequency {
		case reminderdomain.FrequencyDays, reminderdomain.FrequencyWeeks, reminderdomain.FrequencyMonths:
		default:
			return nil, apierr.Validation(fmt.Sprintf("invalid frequency %q for a recurring reminder", frequency), nil)
		}
		if interval <= 0 {
			return nil, apierr.Validation("interval must be positive for a recurring reminder", nil)
		}
	}

	return s.repo.Create(ctx, nil, &reminderdomain.Reminder{
		UserID:    userID,
		PlantID:   plantID,
		DueDate:   dueDate,
		Recurring: recurring,
		Frequency: frequency,
		Interval:  interval,
	})
}

func (s *service) Complete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Complete(ctx, nil, id)
}

func (s *service) Skip(ctx context.Context, id uuid.UUID) error {
	return s.repo.Skip(ctx, nil, id)
}

func (s *service) DueBefore(ctx context.Context, userID uuid.UUID, before time.Time) ([]*reminderdomain.Reminder, error) {
	return s.repo.DueBefore(ctx, nil, userID, before)
}
