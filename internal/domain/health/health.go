package health

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Issue and Step implement the state machine in spec §4.9:
// active -> treating -> (resolved | recurring); recurring -> active on
// re-report; resolved is terminal unless a new issue is created.
type Issue struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PlantID uuid.UUID `gorm:"type:uuid;not null;index" json:"plant_id"`

	Diagnosis  string  `gorm:"column:diagnosis;type:text;not null" json:"diagnosis"`
	Confidence float64 `gorm:"column:confidence;not null;default:0" json:"confidence"`
	Status     string  `gorm:"column:status;not null;default:'active';index" json:"status"`

	ReportedAt time.Time  `gorm:"column:reported_at;not null;default:now();index" json:"reported_at"`
	ResolvedAt *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Issue) TableName() string { return "health_issues" }

const (
	StatusActive    = "active"
	StatusTreating  = "treating"
	StatusResolved  = "resolved"
	StatusRecurring = "recurring"
)

type Step struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	IssueID     uuid.UUID `gorm:"type:uuid;not null;index:idx_treatment_step_issue_seq,unique,priority:1" json:"issue_id"`
	Seq         int       `gorm:"column:seq;not null;index:idx_treatment_step_issue_seq,unique,priority:2" json:"seq"`
	Instruction string    `gorm:"column:instruction;type:text;not null" json:"instruction"`
	Completed   bool      `gorm:"column:completed;not null;default:false" json:"completed"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Step) TableName() string { return "treatment_steps" }
