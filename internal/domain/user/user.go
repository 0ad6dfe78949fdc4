package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is created and authenticated by an external collaborator; the core
// only reads rows written elsewhere.
type User struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DisplayName      string    `gorm:"column:display_name;not null" json:"display_name"`
	ExperienceLevel  string    `gorm:"column:experience_level;not null;default:'beginner'" json:"experience_level"`
	City             string    `gorm:"column:city" json:"city,omitempty"`
	ClimateZone      string    `gorm:"column:climate_zone" json:"climate_zone,omitempty"`
	HomeType         string    `gorm:"column:home_type" json:"home_type,omitempty"`
	LightLevel       string    `gorm:"column:light_level" json:"light_level,omitempty"`
	HumidityLevel    string    `gorm:"column:humidity_level" json:"humidity_level,omitempty"`
	Tier             string    `gorm:"column:tier;not null;default:'free';index" json:"tier"`
	EnvironmentFacts datatypes.JSON `gorm:"type:jsonb;column:environment_facts;not null;default:'{}'" json:"environment_facts,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }

const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceAdvanced     = "advanced"

	TierFree    = "free"
	TierPremium = "premium"
)
