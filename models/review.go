package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
)

type Review struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"business_id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Rating       int        `gorm:"not null" json:"rating"` // 1-5
	Title        string     `json:"title"`
	Text         string     `json:"text"`
	Photos       StringList `gorm:"type:text" json:"photos,omitempty"`
	HelpfulCount int        `gorm:"default:0" json:"helpful_count"`
	Status       string     `gorm:"default:pending;index" json:"status"`
	Response     *string    `json:"response,omitempty"`
	ResponseDate *time.Time `json:"response_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
