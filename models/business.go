package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Business lifecycle statuses. A business is created as pending, becomes
// published on admin approval and is soft deleted by flipping the status
// to deleted plus a deleted_at timestamp. Rows are never hard-removed.
const (
	BusinessStatusDraft     = "draft"
	BusinessStatusPending   = "pending"
	BusinessStatusPublished = "published"
	BusinessStatusDeleted   = "deleted"
)

// Price range tiers, cheapest to most expensive.
var ValidPriceRanges = map[string]bool{
	"$":    true,
	"$$":   true,
	"$$$":  true,
	"$$$$": true,
}

type Business struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Name        string    `gorm:"not null;index" json:"name"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	City        string    `gorm:"index" json:"city"`
	State       string    `json:"state"`
	ZipCode     string    `json:"zip_code"`
	Country     string    `json:"country"`
	Phone       string    `json:"phone"`
	Website     string    `json:"website"`
	Email       string    `json:"email"`
	SocialMedia JSONMap   `gorm:"type:text" json:"social_media,omitempty"`

	Rating      float64 `gorm:"default:0;index" json:"rating"`
	ReviewCount int     `gorm:"default:0" json:"review_count"`
	Verified    bool    `gorm:"default:false" json:"verified"`
	Featured    bool    `gorm:"default:false" json:"featured"`
	PriceRange  string  `gorm:"default:'$$'" json:"price_range"`

	Latitude  float64 `gorm:"index" json:"latitude"`
	Longitude float64 `gorm:"index" json:"longitude"`

	Status  string    `gorm:"default:pending;index" json:"status"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Categories []Category        `gorm:"many2many:business_categories" json:"categories,omitempty"`
	Features   []BusinessFeature `gorm:"foreignKey:BusinessID" json:"features,omitempty"`
	Hours      []BusinessHours   `gorm:"foreignKey:BusinessID" json:"hours,omitempty"`
	Photos     []BusinessPhoto   `gorm:"foreignKey:BusinessID" json:"photos,omitempty"`
	Metrics    *BusinessMetrics  `gorm:"foreignKey:BusinessID" json:"metrics,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BusinessFeature is one free-form tag on a business. Feature filtering uses
// "contains all" semantics, so tags live in their own table rather than a
// serialized column.
type BusinessFeature struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index" json:"business_id"`
	Tag        string    `gorm:"not null;index" json:"tag"`
	CreatedAt  time.Time `json:"created_at"`
}

func (f *BusinessFeature) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
