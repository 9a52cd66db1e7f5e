package search

import (
	"math"
	"sort"
	"time"

	"thorbis-backend/models"
	"thorbis-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coordinates is the stable client-facing shape for a business location,
// regardless of the storage columns behind it.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type CategoryView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Slug  string    `json:"slug"`
	Icon  string    `json:"icon,omitempty"`
	Color string    `json:"color,omitempty"`
}

// BusinessView is the normalized business shape every read endpoint returns.
type BusinessView struct {
	ID          string            `json:"id"`
	Slug        string            `json:"slug"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Address     string            `json:"address,omitempty"`
	City        string            `json:"city,omitempty"`
	State       string            `json:"state,omitempty"`
	ZipCode     string            `json:"zip_code,omitempty"`
	Country     string            `json:"country,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Website     string            `json:"website,omitempty"`
	Email       string            `json:"email,omitempty"`
	SocialMedia map[string]string `json:"social_media,omitempty"`

	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Verified    bool     `json:"verified"`
	Featured    bool     `json:"featured"`
	PriceRange  string   `json:"price_range"`
	Features    []string `json:"features,omitempty"`

	Coordinates Coordinates `json:"coordinates"`
	Distance    *float64    `json:"distance,omitempty"` // km from the query center

	Status     string                  `json:"status"`
	Categories []CategoryView          `json:"categories,omitempty"`
	Photos     []models.BusinessPhoto  `json:"photos,omitempty"`
	Hours      []models.BusinessHours  `json:"hours,omitempty"`
	Reviews    []models.Review         `json:"reviews,omitempty"`
	Metrics    *models.BusinessMetrics `json:"metrics,omitempty"`
	Owner      *models.User            `json:"owner,omitempty"`
	Similar    []BusinessView          `json:"similar,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// NewPagination computes the metadata invariants: pages = ceil(total/limit),
// hasNext = page < pages, hasPrev = page > 1.
func NewPagination(page, limit int, total int64) Pagination {
	pages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

type Performance struct {
	QueryTime int64 `json:"query_time_ms"`
	CacheHit  bool  `json:"cache_hit"`
}

// Result is the normalized success envelope for list/search reads.
type Result struct {
	Businesses  []BusinessView `json:"businesses"`
	Facets      Facets         `json:"facets"`
	Pagination  Pagination     `json:"pagination"`
	Performance Performance    `json:"performance"`
	Filters     *Params        `json:"filters"`
	Source      string         `json:"source"`
}

// Execute runs the compiled query, attaches requested includes and shapes the
// response. For center-radius queries the page window is applied after the
// exact great-circle cut so the boundary stays inclusive and totals stay
// correct.
func Execute(db *gorm.DB, p *Params, caller Caller, now time.Time) (*Result, error) {
	started := time.Now()

	base := ApplyFilters(db.Model(&models.Business{}), p, caller, now)

	var rows []models.Business
	var total int64

	if p.Center != nil {
		candidates := ApplyPreloads(ApplySort(base.Session(&gorm.Session{}), p), p.Include, caller.IsAdmin())
		var all []models.Business
		if err := candidates.Find(&all).Error; err != nil {
			return nil, err
		}

		kept := all[:0]
		distances := make(map[uuid.UUID]float64, len(all))
		for _, b := range all {
			d := utils.HaversineKm(p.Center.Lat, p.Center.Lng, b.Latitude, b.Longitude)
			if d <= p.Center.Radius {
				distances[b.ID] = d
				kept = append(kept, b)
			}
		}

		if p.Sort == "distance" {
			sort.SliceStable(kept, func(i, j int) bool {
				return distances[kept[i].ID] < distances[kept[j].ID]
			})
		}

		total = int64(len(kept))
		start := (p.Page - 1) * p.Limit
		if start > len(kept) {
			start = len(kept)
		}
		end := start + p.Limit
		if end > len(kept) {
			end = len(kept)
		}
		rows = kept[start:end]

		views := assembleViews(db, rows, p, caller)
		for i := range views {
			id, err := uuid.Parse(views[i].ID)
			if err == nil {
				if d, ok := distances[id]; ok {
					dist := d
					views[i].Distance = &dist
				}
			}
		}

		facets, err := ComputeFacets(db, businessIDs(kept))
		if err != nil {
			return nil, err
		}

		return &Result{
			Businesses:  views,
			Facets:      facets,
			Pagination:  NewPagination(p.Page, p.Limit, total),
			Performance: Performance{QueryTime: time.Since(started).Milliseconds()},
			Filters:     p,
			Source:      SourceDatabase,
		}, nil
	}

	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	page := ApplyPreloads(ApplyRange(ApplySort(base.Session(&gorm.Session{}), p), p), p.Include, caller.IsAdmin())
	if err := page.Find(&rows).Error; err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	if err := ApplyFilters(db.Model(&models.Business{}), p, caller, now).
		Pluck("businesses.id", &ids).Error; err != nil {
		return nil, err
	}
	facets, err := ComputeFacets(db, ids)
	if err != nil {
		return nil, err
	}

	return &Result{
		Businesses:  assembleViews(db, rows, p, caller),
		Facets:      facets,
		Pagination:  NewPagination(p.Page, p.Limit, total),
		Performance: Performance{QueryTime: time.Since(started).Milliseconds()},
		Filters:     p,
		Source:      SourceDatabase,
	}, nil
}

func businessIDs(rows []models.Business) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, b := range rows {
		ids = append(ids, b.ID)
	}
	return ids
}

func assembleViews(db *gorm.DB, rows []models.Business, p *Params, caller Caller) []BusinessView {
	views := make([]BusinessView, 0, len(rows))
	for i := range rows {
		views = append(views, AssembleView(db, &rows[i], p, caller))
	}
	return views
}

// AssembleView normalizes one business row plus its requested includes into
// the stable client shape.
func AssembleView(db *gorm.DB, b *models.Business, p *Params, caller Caller) BusinessView {
	v := BusinessView{
		ID:          b.ID.String(),
		Slug:        b.Slug,
		Name:        b.Name,
		Description: b.Description,
		Address:     b.Address,
		City:        b.City,
		State:       b.State,
		ZipCode:     b.ZipCode,
		Country:     b.Country,
		Phone:       b.Phone,
		Website:     b.Website,
		Email:       b.Email,
		SocialMedia: b.SocialMedia,
		Rating:      b.Rating,
		ReviewCount: b.ReviewCount,
		Verified:    b.Verified,
		Featured:    b.Featured,
		PriceRange:  b.PriceRange,
		Coordinates: Coordinates{Lat: b.Latitude, Lng: b.Longitude},
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}

	for _, f := range b.Features {
		v.Features = append(v.Features, f.Tag)
	}

	if p.Include["categories"] {
		for _, c := range b.Categories {
			v.Categories = append(v.Categories, CategoryView{
				ID: c.ID, Name: c.Name, Slug: c.Slug, Icon: c.Icon, Color: c.Color,
			})
		}
	}
	if p.Include["photos"] {
		v.Photos = b.Photos
	}
	if p.Include["hours"] {
		v.Hours = b.Hours
	}
	if p.Include["metrics"] {
		v.Metrics = b.Metrics
	}
	if p.Include["owner"] && caller.IsAdmin() {
		owner := b.Owner
		v.Owner = &owner
	}

	if p.Include["reviews"] && db != nil {
		v.Reviews = loadReviews(db, b.ID, p)
	}
	if p.Include["similar"] && db != nil {
		v.Similar = loadSimilar(db, b, p)
	}

	return v
}
