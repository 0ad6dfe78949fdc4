package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session is a per-user chat thread. PlantID is a nullable reference, not a
// cascading ownership edge: deleting a Plant nullifies PlantID on its
// sessions rather than deleting the session (spec §3 ownership rules).
type Session struct {
	ID      uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	PlantID *uuid.UUID `gorm:"type:uuid;index" json:"plant_id,omitempty"`

	MessageCount    int            `gorm:"column:message_count;not null;default:0" json:"message_count"`
	TotalTokens     int            `gorm:"column:total_tokens;not null;default:0" json:"total_tokens"`
	EstimatedCostUSD float64       `gorm:"column:estimated_cost_usd;not null;default:0" json:"estimated_cost_usd"`
	ModelsUsed      datatypes.JSON `gorm:"type:jsonb;column:models_used;not null;default:'[]'" json:"models_used"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Session) TableName() string { return "conversation_sessions" }

// Message is an ordered child of a Session.
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_session_created,priority:1" json:"session_id"`

	Role    string `gorm:"column:role;not null" json:"role"`
	Content string `gorm:"column:content;type:text;not null" json:"content"`

	InputTokens  *int   `gorm:"column:input_tokens" json:"input_tokens,omitempty"`
	OutputTokens *int   `gorm:"column:output_tokens" json:"output_tokens,omitempty"`
	Model        string `gorm:"column:model" json:"model,omitempty"`

	Extracted datatypes.JSON `gorm:"type:jsonb;column:extracted;not null;default:'{}'" json:"extracted,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index:idx_messages_session_created,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "messages" }

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)
