package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/vectortype"
)

// SemanticMemory pairs a 1536-dim embedding with a text excerpt for
// retrieval-augmented chat context (spec §4.7 item 4). RelevanceScore is
// stored as written (1.0 for rows the chat pipeline extracts); no code in
// this module decays it or ranks memories by it.
type SemanticMemory struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Embedding   vectortype.Vector `gorm:"type:vector(1536);column:embedding" json:"-"`
	Excerpt     string            `gorm:"column:excerpt;type:text;not null" json:"excerpt"`
	ContentType string            `gorm:"column:content_type;not null" json:"content_type"`

	RelevanceScore  float64   `gorm:"column:relevance_score;not null;default:1.0" json:"relevance_score"`
	SourceSessionID uuid.UUID `gorm:"type:uuid;column:source_session_id;not null" json:"source_session_id"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (SemanticMemory) TableName() string { return "semantic_memories" }

const (
	ContentTypeConversation = "conversation"
	ContentTypeDiagnosis    = "diagnosis"
	ContentTypeAdvice       = "advice"
	ContentTypeOutcome      = "outcome"
)
