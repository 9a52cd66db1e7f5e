package search

import (
	"math"
	"time"

	"thorbis-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Caller is the identity the visibility rules run against. The zero value is
// an anonymous caller.
type Caller struct {
	ID            uuid.UUID
	Role          string
	Authenticated bool
}

func (c Caller) IsAdmin() bool {
	return c.Authenticated && c.Role == "admin"
}

// ApplyFilters maps the validated params onto the business relation. Each
// present filter contributes exactly one predicate; absent filters contribute
// none beyond the baseline visibility rule. Predicate order is fixed so
// identical inputs compile to identical queries.
func ApplyFilters(db *gorm.DB, p *Params, caller Caller, now time.Time) *gorm.DB {
	q := db.Where("businesses.status <> ?", models.BusinessStatusDeleted)

	// Non-privileged callers only ever see published businesses. Owners also
	// see their own pending/draft listings.
	if caller.IsAdmin() {
		// no further status predicate
	} else if caller.Authenticated {
		q = q.Where("(businesses.status = ? OR businesses.owner_id = ?)", models.BusinessStatusPublished, caller.ID)
	} else {
		q = q.Where("businesses.status = ?", models.BusinessStatusPublished)
	}

	if p.Query != "" {
		like := "%" + p.Query + "%"
		q = q.Where("(LOWER(businesses.name) LIKE LOWER(?) OR LOWER(businesses.description) LIKE LOWER(?))", like, like)
	}

	if p.Location != "" {
		like := "%" + p.Location + "%"
		q = q.Where("(LOWER(businesses.city) LIKE LOWER(?) OR LOWER(businesses.state) LIKE LOWER(?) OR LOWER(businesses.address) LIKE LOWER(?))", like, like, like)
	}

	if len(p.Categories) > 0 {
		q = q.Where(`businesses.id IN (
			SELECT bc.business_id FROM business_categories bc
			JOIN categories c ON c.id = bc.category_id
			WHERE c.slug IN ?)`, p.Categories)
	}

	if p.Rating > 0 {
		q = q.Where("businesses.rating >= ?", p.Rating)
	}

	if p.PriceRange != "" {
		q = q.Where("businesses.price_range = ?", p.PriceRange)
	}

	// Feature tags use contains-all semantics: one subquery predicate per tag.
	for _, tag := range p.Features {
		q = q.Where("businesses.id IN (SELECT business_id FROM business_features WHERE tag = ?)", tag)
	}

	if p.Verified != nil {
		q = q.Where("businesses.verified = ?", *p.Verified)
	}
	if p.Featured != nil {
		q = q.Where("businesses.featured = ?", *p.Featured)
	}

	switch p.Open {
	case "now":
		day := int(now.Weekday())
		clock := now.Format("15:04")
		q = q.Where(`businesses.id IN (
			SELECT business_id FROM business_hours
			WHERE day_of_week = ? AND is_closed = ? AND open_time <= ? AND close_time >= ?)`,
			day, false, clock, clock)
	case "today":
		// Open at some point today: an hours row for today's weekday that is
		// not marked closed, regardless of the current clock.
		day := int(now.Weekday())
		q = q.Where(`businesses.id IN (
			SELECT business_id FROM business_hours
			WHERE day_of_week = ? AND is_closed = ?)`, day, false)
	}

	if p.Bounds != nil {
		b := p.Bounds
		q = q.Where("businesses.latitude BETWEEN ? AND ?", b.South, b.North).
			Where("businesses.longitude BETWEEN ? AND ?", b.West, b.East)
	}

	// Center queries get a bounding-box prefilter here; the assembler applies
	// the exact great-circle cut so the radius boundary stays inclusive.
	if p.Center != nil {
		latDelta, lngDelta := boundingBoxDeltas(p.Center.Lat, p.Center.Radius)
		q = q.Where("businesses.latitude BETWEEN ? AND ?", p.Center.Lat-latDelta, p.Center.Lat+latDelta).
			Where("businesses.longitude BETWEEN ? AND ?", p.Center.Lng-lngDelta, p.Center.Lng+lngDelta)
	}

	return q
}

// ApplySort adds the deterministic order for the requested sort key. The id
// column is always the final tie-break so re-running the same query yields
// the same order. Distance ordering is applied in the assembler since it
// needs the great-circle computation.
func ApplySort(db *gorm.DB, p *Params) *gorm.DB {
	sort := p.Sort
	if sort == "distance" && p.Center == nil {
		sort = "relevance"
	}

	switch sort {
	case "rating":
		return db.Order("businesses.rating DESC, businesses.review_count DESC, businesses.id")
	case "newest":
		return db.Order("businesses.created_at DESC, businesses.id")
	case "popular":
		return db.Order("businesses.review_count DESC, businesses.rating DESC, businesses.id")
	case "distance":
		// ordered after the exact distance computation
		return db.Order("businesses.id")
	default: // relevance
		return db.Order("businesses.featured DESC, businesses.rating DESC, businesses.review_count DESC, businesses.id")
	}
}

// ApplyRange adds the offset/limit window for the requested page.
func ApplyRange(db *gorm.DB, p *Params) *gorm.DB {
	return db.Offset((p.Page - 1) * p.Limit).Limit(p.Limit)
}

// boundingBoxDeltas converts a radius in kilometers to degree deltas around
// the given latitude. One degree of latitude is ~111.045 km; longitude
// degrees shrink with the cosine of the latitude.
func boundingBoxDeltas(lat, radiusKm float64) (latDelta, lngDelta float64) {
	const kmPerDegree = 111.045
	latDelta = radiusKm / kmPerDegree
	cos := math.Cos(lat * math.Pi / 180)
	if cos < 0.01 {
		cos = 0.01
	}
	lngDelta = radiusKm / (kmPerDegree * cos)
	return latDelta, lngDelta
}
