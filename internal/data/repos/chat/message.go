package chat

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/chat"
)

type MessageRepo interface {
	// RecentBySession returns up to limit most recent messages for a
	// session, re-ordered oldest-to-newest (spec §4.7 item 3).
	RecentBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, limit int) ([]*chat.Message, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) RecentBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, limit int) ([]*chat.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 10
	}
	var msgs []*chat.Message
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
