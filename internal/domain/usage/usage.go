package usage

import (
	"time"

	"github.com/google/uuid"
)

// LogEntry is an append-only record of a single provider attempt, written
// by the AI Router on every Gateway call (success or failure). It is the
// source of truth for cost accounting and quota enforcement.
type LogEntry struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_usage_logs_user_action_created,priority:1" json:"user_id"`

	Task     string `gorm:"column:task;not null;index:idx_usage_logs_user_action_created,priority:2" json:"task"`
	Provider string `gorm:"column:provider;not null" json:"provider"`
	Model    string `gorm:"column:model" json:"model,omitempty"`
	Endpoint string `gorm:"column:endpoint" json:"endpoint,omitempty"`

	InputTokens  *int `gorm:"column:input_tokens" json:"input_tokens,omitempty"`
	OutputTokens *int `gorm:"column:output_tokens" json:"output_tokens,omitempty"`

	LatencyMS int     `gorm:"column:latency_ms;not null" json:"latency_ms"`
	Success   bool    `gorm:"column:success;not null" json:"success"`
	ErrorCode string  `gorm:"column:error_code" json:"error_code,omitempty"`
	CostUSD   float64 `gorm:"column:cost_usd;not null;default:0" json:"cost_usd"`

	CreatedAt time.Time `gorm:"not null;default:now();index:idx_usage_logs_user_action_created,priority:3" json:"created_at"`
}

func (LogEntry) TableName() string { return "usage_logs" }
