package search

import (
	"strings"
	"time"
)

// Response provenance tags. Consumers branch on Source, not HTTP status, to
// detect degradation: reads always answer 200.
const (
	SourceDatabase  = "database"
	SourceFallback  = "fallback"
	SourceMock      = "mock"
	SourceEmergency = "emergency_fallback"
)

// FallbackDataset is the small fixed in-memory directory served when the
// backend is unreachable or the unfiltered directory is empty.
func FallbackDataset() []BusinessView {
	created := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return []BusinessView{
		{
			ID:          "fallback-1",
			Slug:        "wades-plumbing-septic",
			Name:        "Wade's Plumbing & Septic",
			Description: "Professional plumbing services for residential and commercial properties.",
			Address:     "123 Main St",
			City:        "Raleigh",
			State:       "NC",
			Phone:       "(919) 555-0142",
			Rating:      4.8,
			ReviewCount: 127,
			Verified:    true,
			PriceRange:  "$$",
			Features:    []string{"emergency-service", "licensed", "insured"},
			Coordinates: Coordinates{Lat: 35.7796, Lng: -78.6382},
			Status:      "published",
			Categories:  []CategoryView{{Name: "Plumbing", Slug: "plumbing"}},
			CreatedAt:   created,
			UpdatedAt:   created,
		},
		{
			ID:          "fallback-2",
			Slug:        "sunrise-cafe-bakery",
			Name:        "Sunrise Cafe & Bakery",
			Description: "Fresh baked goods and locally roasted coffee every morning.",
			Address:     "456 Oak Ave",
			City:        "Raleigh",
			State:       "NC",
			Phone:       "(919) 555-0187",
			Rating:      4.6,
			ReviewCount: 89,
			Verified:    true,
			PriceRange:  "$",
			Features:    []string{"outdoor-seating", "wifi"},
			Coordinates: Coordinates{Lat: 35.7821, Lng: -78.6414},
			Status:      "published",
			Categories:  []CategoryView{{Name: "Restaurants", Slug: "restaurants"}},
			CreatedAt:   created,
			UpdatedAt:   created,
		},
		{
			ID:          "fallback-3",
			Slug:        "elite-auto-repair",
			Name:        "Elite Auto Repair",
			Description: "Full-service auto repair with certified technicians.",
			Address:     "789 Garage Rd",
			City:        "Durham",
			State:       "NC",
			Phone:       "(919) 555-0199",
			Rating:      4.4,
			ReviewCount: 52,
			Verified:    false,
			PriceRange:  "$$$",
			Features:    []string{"certified", "warranty"},
			Coordinates: Coordinates{Lat: 35.9940, Lng: -78.8986},
			Status:      "published",
			Categories:  []CategoryView{{Name: "Automotive", Slug: "automotive"}},
			CreatedAt:   created,
			UpdatedAt:   created,
		},
	}
}

// FallbackResult builds a degraded-but-usable response. The fixed dataset is
// sliced by free-text query only; every other filter is ignored in degraded
// mode.
func FallbackResult(p *Params, source string) *Result {
	dataset := FallbackDataset()

	query := ""
	page, limit := 1, DefaultLimit
	if p != nil {
		query = p.Query
		page, limit = p.Page, p.Limit
	}

	businesses := dataset
	if query != "" {
		q := strings.ToLower(query)
		businesses = businesses[:0:0]
		for _, b := range dataset {
			if strings.Contains(strings.ToLower(b.Name), q) ||
				strings.Contains(strings.ToLower(b.Description), q) {
				businesses = append(businesses, b)
			}
		}
	}

	return &Result{
		Businesses: businesses,
		Facets:     emptyFacets(),
		Pagination: NewPagination(page, limit, int64(len(businesses))),
		Filters:    p,
		Source:     source,
	}
}
