package chat

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/chat"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, s *chat.Session) (*chat.Session, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*chat.Session, error)
	// AppendTurn atomically appends a user+assistant message pair and
	// updates the session's aggregate counters in one transaction (spec §5
	// ordering guarantee).
	AppendTurn(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, userMsg, assistantMsg *chat.Message, tokensAdded int, costAdded float64, model string) error
	DetachPlant(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "ChatSessionRepo")}
}

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, s *chat.Session) (*chat.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.ModelsUsed == nil {
		s.ModelsUsed = datatypes.JSON([]byte(`[]`))
	}
	if err := transaction.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *sessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*chat.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var s chat.Session
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) AppendTurn(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, userMsg, assistantMsg *chat.Message, tokensAdded int, costAdded float64, model string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		for _, m := range []*chat.Message{userMsg, assistantMsg} {
			if m == nil {
				continue
			}
			if m.ID == uuid.Nil {
				m.ID = uuid.New()
			}
			m.SessionID = sessionID
			if err := txn.Create(m).Error; err != nil {
				return err
			}
		}
		var session chat.Session
		if err := txn.Where("id = ?", sessionID).First(&session).Error; err != nil {
			return err
		}
		models := mergeModelsUsed(session.ModelsUsed, model)
		return txn.Model(&chat.Session{}).Where("id = ?", sessionID).Updates(map[string]any{
			"message_count":      session.MessageCount + 2,
			"total_tokens":       session.TotalTokens + tokensAdded,
			"estimated_cost_usd": session.EstimatedCostUSD + costAdded,
			"models_used":        models,
		}).Error
	})
}

func (r *sessionRepo) DetachPlant(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(&chat.Session{}).Where("plant_id = ?", plantID).Update("plant_id", nil).Error
}
