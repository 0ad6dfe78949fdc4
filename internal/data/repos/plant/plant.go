package plant

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/plant"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

type Repo interface {
	Create(ctx context.Context, tx *gorm.DB, p *plant.Plant) (*plant.Plant, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*plant.Plant, error)
	GetOwnedByID(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID) (*plant.Plant, error)
	UpdateHealth(ctx context.Context, tx *gorm.DB, id uuid.UUID, health string) error
	RecordWatering(ctx context.Context, tx *gorm.DB, id uuid.UUID, wateredAt time.Time) error
	DetachFromSessions(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) error
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) Repo {
	return &repo{db: db, log: baseLog.With("repo", "PlantRepo")}
}

func (r *repo) Create(ctx context.Context, tx *gorm.DB, p *plant.Plant) (*plant.Plant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*plant.Plant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var p plant.Plant
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) GetOwnedByID(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID) (*plant.Plant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var p plant.Plant
	if err := transaction.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) UpdateHealth(ctx context.Context, tx *gorm.DB, id uuid.UUID, health string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(&plant.Plant{}).Where("id = ?", id).Update("current_health", health).Error
}

// RecordWatering writes lastWatered and nextWaterDue together so the
// invariant nextWaterDue = lastWatered + wateringFrequencyDays never
// observes an intermediate, inconsistent state.
func (r *repo) RecordWatering(ctx context.Context, tx *gorm.DB, id uuid.UUID, wateredAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	p, err := r.GetByID(ctx, transaction, id)
	if err != nil {
		return err
	}
	nextDue := plant.NextWaterDue(wateredAt, p.WateringFrequencyDays)
	return transaction.WithContext(ctx).Model(&plant.Plant{}).Where("id = ?", id).Updates(map[string]any{
		"last_watered":   wateredAt,
		"next_water_due": nextDue,
	}).Error
}

func (r *repo) DetachFromSessions(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Exec(
		`UPDATE conversation_sessions SET plant_id = NULL WHERE plant_id = ?`, plantID,
	).Error
}
