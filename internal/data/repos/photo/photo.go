package photo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/photo"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

type Repo interface {
	Create(ctx context.Context, tx *gorm.DB, p *photo.Photo) (*photo.Photo, error)
	AttachToPlant(ctx context.Context, tx *gorm.DB, id, plantID uuid.UUID) error
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) Repo {
	return &repo{db: db, log: baseLog.With("repo", "PhotoRepo")}
}

func (r *repo) Create(ctx context.Context, tx *gorm.DB, p *photo.Photo) (*photo.Photo, error) {
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

func (r *repo) AttachToPlant(ctx context.Context, tx *gorm.DB, id, plantID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(&photo.Photo{}).Where("id = ?", id).Update("plant_id", plantID).Error
}
