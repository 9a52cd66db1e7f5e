package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BusinessHours holds one row per day of week per business. The set is
// replaced wholesale on update, inside a transaction.
type BusinessHours struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index" json:"business_id"`
	DayOfWeek  int       `gorm:"not null" json:"day_of_week"` // 0=Sunday, 6=Saturday
	OpenTime   string    `gorm:"not null;default:'09:00'" json:"open_time"`
	CloseTime  string    `gorm:"not null;default:'17:00'" json:"close_time"`
	IsClosed   bool      `gorm:"default:false" json:"is_closed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (h *BusinessHours) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
