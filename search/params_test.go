package search

import (
	"net/url"
	"strings"
	"testing"
)

func parseQuery(t *testing.T, raw string, endpoint Endpoint) (*Params, error) {
	t.Helper()
	values, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("bad query string: %v", err)
	}
	return Parse(values, endpoint)
}

func TestParseDefaults(t *testing.T) {
	p, err := parseQuery(t, "", EndpointList)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != 1 || p.Limit != DefaultLimit {
		t.Errorf("expected page 1 limit %d, got %d/%d", DefaultLimit, p.Page, p.Limit)
	}
	if p.Sort != "relevance" || p.Open != "any" {
		t.Errorf("unexpected defaults sort=%s open=%s", p.Sort, p.Open)
	}
	if !p.Include["photos"] || !p.Include["categories"] {
		t.Error("list endpoint defaults to photos+categories includes")
	}
	if p.Include["hours"] {
		t.Error("list endpoint must not default to hours")
	}
	if p.HasFilters() {
		t.Error("empty query must report no filters")
	}
}

func TestParseDetailDefaults(t *testing.T) {
	p, err := parseQuery(t, "", EndpointDetail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Include["hours"] {
		t.Error("detail endpoint defaults include hours")
	}
	if p.ReviewsLimit != DefaultReviewsLimit || p.ReviewsSort != "newest" {
		t.Errorf("unexpected review defaults: %d/%s", p.ReviewsLimit, p.ReviewsSort)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"rating too high", "rating=6"},
		{"rating not a number", "rating=five"},
		{"bad price range", "priceRange=$$$$$"},
		{"bad open mode", "open=tomorrow"},
		{"bad sort", "sort=alphabetical"},
		{"zero page", "page=0"},
		{"limit above cap", "limit=101"},
		{"unknown include", "include=secrets"},
		{"bad verified", "verified=maybe"},
		{"reviewsLimit above cap", "reviewsLimit=51"},
		{"lat out of range", "lat=91&lng=0"},
		{"lng without lat", "lng=-78"},
		{"negative radius", "lat=35&lng=-78&radius=-5"},
		{"inverted bounds", "north=30&south=40&east=10&west=0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseQuery(t, tc.query, EndpointList); err == nil {
				t.Errorf("expected %q to be rejected", tc.query)
			}
		})
	}
}

func TestParseAccumulatesErrors(t *testing.T) {
	_, err := parseQuery(t, "rating=9&page=0&sort=bogus", EndpointList)
	if err == nil {
		t.Fatal("expected an error")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Messages) != 3 {
		t.Errorf("expected 3 accumulated messages, got %d: %v", len(verr.Messages), verr.Messages)
	}
}

func TestParsePartialBoundsRejected(t *testing.T) {
	_, err := parseQuery(t, "north=36&south=35&east=-78", EndpointList)
	if err == nil {
		t.Fatal("three of four bounds corners must be rejected")
	}
	if !strings.Contains(err.Error(), "north, south, east and west") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestParseCenterDefaultsRadius(t *testing.T) {
	p, err := parseQuery(t, "lat=35.78&lng=-78.64", EndpointList)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Center == nil {
		t.Fatal("expected a center")
	}
	if p.Center.Radius != DefaultRadiusKm {
		t.Errorf("expected default radius %v, got %v", DefaultRadiusKm, p.Center.Radius)
	}
	if !p.HasFilters() {
		t.Error("a center counts as a filter")
	}
}

func TestParseCategoriesMerged(t *testing.T) {
	p, err := parseQuery(t, "category=plumbing&categories=restaurants,automotive", EndpointList)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Categories) != 3 {
		t.Errorf("expected 3 category slugs, got %v", p.Categories)
	}
}

func TestParseIncludeOverride(t *testing.T) {
	p, err := parseQuery(t, "include=metrics,reviews", EndpointDetail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Include["metrics"] || !p.Include["reviews"] {
		t.Error("explicit includes must be honored")
	}
	if p.Include["photos"] {
		t.Error("explicit include list replaces the defaults")
	}
}

func TestBoundsContainsInclusive(t *testing.T) {
	b := Bounds{North: 36, South: 35, East: -78, West: -79}
	if !b.Contains(36, -78) {
		t.Error("edge points are inside")
	}
	if !b.Contains(35, -79) {
		t.Error("opposite edge points are inside")
	}
	if b.Contains(36.0001, -78.5) {
		t.Error("points beyond the edge are outside")
	}
}

func TestPaginationMetadata(t *testing.T) {
	p := NewPagination(1, 2, 5)
	if p.Pages != 3 {
		t.Errorf("expected ceil(5/2)=3 pages, got %d", p.Pages)
	}
	if !p.HasNext || p.HasPrev {
		t.Error("page 1 of 3: has_next true, has_prev false")
	}

	p = NewPagination(3, 2, 5)
	if p.HasNext || !p.HasPrev {
		t.Error("page 3 of 3: has_next false, has_prev true")
	}

	p = NewPagination(1, 20, 0)
	if p.Pages != 0 || p.HasNext || p.HasPrev {
		t.Error("empty result: zero pages, no next/prev")
	}
}
