package photo

import (
	"time"

	"github.com/google/uuid"
)

// Photo records a stored plant image and its generated thumbnail. PlantID
// is nullable: identification photos taken before a plant is added to a
// user's collection are orphaned until attached.
type Photo struct {
	ID      uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	PlantID *uuid.UUID `gorm:"type:uuid;index" json:"plant_id,omitempty"`

	Kind         string `gorm:"column:kind;not null" json:"kind"`
	BucketKey    string `gorm:"column:bucket_key;not null" json:"bucket_key"`
	ThumbnailKey string `gorm:"column:thumbnail_key" json:"thumbnail_key,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Photo) TableName() string { return "plant_photos" }

const (
	KindIdentification = "identification"
	KindHealth         = "health"
	KindProgress       = "progress"
)
