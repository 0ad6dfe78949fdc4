package reminder

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminder implements the state machine in spec §4.9:
// {pending} -> (completed | skipped); a recurring reminder in
// completed/skipped spawns a new pending instance at
// due + interval * frequencyUnit.
type Reminder struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index:idx_reminders_user_completed_due,priority:1" json:"user_id"`
	PlantID uuid.UUID `gorm:"type:uuid;not null;index" json:"plant_id"`

	DueDate time.Time `gorm:"column:due_date;not null;index:idx_reminders_user_completed_due,priority:3" json:"due_date"`

	Recurring    bool   `gorm:"column:recurring;not null;default:false" json:"recurring"`
	Frequency    string `gorm:"column:frequency" json:"frequency,omitempty"` // days|weeks|months
	Interval     int    `gorm:"column:interval_count" json:"interval,omitempty"`

	Completed bool `gorm:"column:completed;not null;default:false;index:idx_reminders_user_completed_due,priority:2" json:"completed"`
	Skipped   bool `gorm:"column:skipped;not null;default:false" json:"skipped"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Reminder) TableName() string { return "reminders" }

const (
	FrequencyDays   = "days"
	FrequencyWeeks  = "weeks"
	FrequencyMonths = "months"
)

// NextDue computes the spawn time for the next recurring instance.
func (r Reminder) NextDue() time.Time {
	switch r.Frequency {
	case FrequencyWeeks:
		return r.DueDate.AddDate(0, 0, 7*r.Interval)
	case FrequencyMonths:
		return r.DueDate.AddDate(0, r.Interval, 0)
	default:
		return r.DueDate.AddDate(0, 0, r.Interval)
	}
}
