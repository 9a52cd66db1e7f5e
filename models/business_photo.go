package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BusinessPhoto struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index" json:"business_id"`
	URL        string    `gorm:"not null" json:"url"`
	AltText    string    `json:"alt_text"`
	Caption    string    `json:"caption"`
	IsPrimary  bool      `gorm:"default:false" json:"is_primary"`
	SortOrder  int       `gorm:"default:0" json:"order"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (p *BusinessPhoto) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
