package plant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plant is a user-owned instance of a Species. nextWaterDue is kept in sync
// with lastWatered + wateringFrequencyDays by the repository layer whenever
// lastWatered is written (spec invariant: nextWaterDue = lastWatered +
// wateringFrequencyDays when lastWatered is set).
type Plant struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_plants_user" json:"user_id"`
	SpeciesID uuid.UUID  `gorm:"type:uuid;not null;index" json:"species_id"`
	Nickname  string     `gorm:"column:nickname" json:"nickname,omitempty"`

	LocationInHome string `gorm:"column:location_in_home;not null" json:"location_in_home"`
	LightExposure  string `gorm:"column:light_exposure;not null" json:"light_exposure"`

	WateringFrequencyDays int        `gorm:"column:watering_frequency_days;not null;default:7" json:"watering_frequency_days"`
	LastWatered           *time.Time `gorm:"column:last_watered" json:"last_watered,omitempty"`
	NextWaterDue          *time.Time `gorm:"column:next_water_due;index:idx_plants_user_next_water_due,priority:2" json:"next_water_due,omitempty"`

	CurrentHealth string `gorm:"column:current_health;not null;default:'healthy';index:idx_plants_user_health,priority:2" json:"current_health"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Plant) TableName() string { return "plants" }

const (
	HealthThriving   = "thriving"
	HealthHealthy    = "healthy"
	HealthStruggling = "struggling"
	HealthCritical   = "critical"
)

// NextWaterDue computes the invariant value for a given lastWatered.
func NextWaterDue(lastWatered time.Time, wateringFrequencyDays int) time.Time {
	return lastWatered.AddDate(0, 0, wateringFrequencyDays)
}
