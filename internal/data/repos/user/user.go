package user

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/user"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

type Repo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*user.User, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) Repo {
	return &repo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *repo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*user.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var u user.User
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
