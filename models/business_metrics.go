package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BusinessMetrics is a rolling counters row, one per business. It is
// initialized to zero at business creation and incremented by
// fire-and-forget view/interaction events.
type BusinessMetrics struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"business_id"`
	ViewsToday      int       `gorm:"default:0" json:"views_today"`
	ViewsThisWeek   int       `gorm:"default:0" json:"views_this_week"`
	ViewsThisMonth  int       `gorm:"default:0" json:"views_this_month"`
	ClicksToday     int       `gorm:"default:0" json:"clicks_today"`
	CallsToday      int       `gorm:"default:0" json:"calls_today"`
	DirectionsToday int       `gorm:"default:0" json:"directions_today"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (m *BusinessMetrics) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
