package species

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Species is deduplicated by normalized scientific name: exactly one row
// exists for a given normalize(scientificName) at any time (enforced by the
// unique index on NormalizedName below; internal/data/db adds a separate
// case-insensitive unique index on ScientificName).
type Species struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	ScientificName   string         `gorm:"column:scientific_name;not null" json:"scientific_name"`
	NormalizedName   string         `gorm:"column:normalized_name;not null;uniqueIndex:idx_species_normalized_name" json:"-"`
	CommonNames      datatypes.JSON `gorm:"type:jsonb;column:common_names;not null;default:'[]'" json:"common_names"`
	Family           string         `gorm:"column:family;not null;default:'Unknown'" json:"family"`
	Genus            string         `gorm:"column:genus;not null;default:'Unknown'" json:"genus"`
	LightCare        string         `gorm:"column:light_care;not null;default:'Unknown'" json:"light_care"`
	WaterCare         string         `gorm:"column:water_care;not null;default:'Unknown'" json:"water_care"`
	HumidityCare      string         `gorm:"column:humidity_care;not null;default:'Unknown'" json:"humidity_care"`
	TemperatureCare   string         `gorm:"column:temperature_care;not null;default:'Unknown'" json:"temperature_care"`
	Difficulty        string         `gorm:"column:difficulty;not null;default:'moderate'" json:"difficulty"`
	Toxicity          string         `gorm:"column:toxicity" json:"toxicity,omitempty"`
	Description       string         `gorm:"column:description;type:text" json:"description,omitempty"`
	PlantIDSpeciesID  string         `gorm:"column:plant_id_species_id" json:"plant_id_species_id,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Species) TableName() string { return "species" }

const (
	DifficultyEasy     = "easy"
	DifficultyModerate = "moderate"
	DifficultyHard     = "hard"
)
