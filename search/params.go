package search

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Endpoint selects the include defaults for the endpoint being served.
type Endpoint int

const (
	EndpointList Endpoint = iota
	EndpointDetail
)

const (
	DefaultLimit        = 20
	MaxLimit            = 100
	DefaultRadiusKm     = 10.0
	DefaultReviewsLimit = 10
	MaxReviewsLimit     = 50
)

var validSorts = map[string]bool{
	"relevance": true,
	"rating":    true,
	"distance":  true,
	"newest":    true,
	"popular":   true,
}

var validReviewsSorts = map[string]bool{
	"newest":      true,
	"oldest":      true,
	"rating_high": true,
	"rating_low":  true,
	"helpful":     true,
}

var validOpenModes = map[string]bool{
	"now":   true,
	"today": true,
	"any":   true,
}

var validIncludes = map[string]bool{
	"photos":     true,
	"reviews":    true,
	"categories": true,
	"hours":      true,
	"metrics":    true,
	"owner":      true,
	"similar":    true,
}

// Bounds is a rectangular geographic viewport. All four corners are required
// together.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Contains reports whether the point lies inside the bounds (inclusive).
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.South && lat <= b.North && lng >= b.West && lng <= b.East
}

// Key serializes the bounds for use as a cache key.
func (b Bounds) Key() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.North, b.South, b.East, b.West)
}

// Center is a center-plus-radius geographic filter. Radius is in kilometers.
type Center struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Radius float64 `json:"radius"`
}

// Params is the validated, bounded search parameter structure. Absent fields
// hold their zero value; pointer fields distinguish "unset" from "false".
type Params struct {
	Query      string   `json:"query,omitempty"`
	Location   string   `json:"location,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	PriceRange string   `json:"price_range,omitempty"`
	Features   []string `json:"features,omitempty"`
	Open       string   `json:"open,omitempty"`
	Verified   *bool    `json:"verified,omitempty"`
	Featured   *bool    `json:"featured,omitempty"`
	Bounds     *Bounds  `json:"bounds,omitempty"`
	Center     *Center  `json:"center,omitempty"`
	Sort       string   `json:"sort"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`

	Include      map[string]bool `json:"-"`
	ReviewsLimit int             `json:"-"`
	ReviewsSort  string          `json:"-"`
}

// HasFilters reports whether any filter beyond defaults was supplied. An
// empty unfiltered directory is treated as a degraded state; an empty
// filtered result is a valid success.
func (p *Params) HasFilters() bool {
	return p.Query != "" || p.Location != "" || len(p.Categories) > 0 ||
		p.Rating > 0 || p.PriceRange != "" || len(p.Features) > 0 ||
		p.Open != "any" || p.Verified != nil || p.Featured != nil ||
		p.Bounds != nil || p.Center != nil
}

// ValidationError is a fail-fast rejection of the whole parameter bag.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

type paramErrors struct {
	messages []string
}

func (pe *paramErrors) addf(format string, args ...interface{}) {
	pe.messages = append(pe.messages, fmt.Sprintf(format, args...))
}

// Parse validates and normalizes a raw query string into Params. Malformed or
// out-of-range values fail the whole request; there is no best-effort
// coercion beyond unambiguous string-to-scalar conversion.
func Parse(values url.Values, endpoint Endpoint) (*Params, error) {
	pe := &paramErrors{}

	p := &Params{
		Open:         "any",
		Sort:         "relevance",
		Page:         1,
		Limit:        DefaultLimit,
		ReviewsLimit: DefaultReviewsLimit,
		ReviewsSort:  "newest",
	}

	p.Query = strings.TrimSpace(values.Get("query"))
	if p.Query == "" {
		p.Query = strings.TrimSpace(values.Get("q"))
	}
	p.Location = strings.TrimSpace(values.Get("location"))

	if cat := strings.TrimSpace(values.Get("category")); cat != "" {
		p.Categories = append(p.Categories, cat)
	}
	if cats := strings.TrimSpace(values.Get("categories")); cats != "" {
		for _, c := range strings.Split(cats, ",") {
			if c = strings.TrimSpace(c); c != "" {
				p.Categories = append(p.Categories, c)
			}
		}
	}

	if s := values.Get("rating"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			pe.addf("rating must be a number")
		} else if v < 1 || v > 5 {
			pe.addf("rating must be between 1 and 5")
		} else {
			p.Rating = v
		}
	}

	if s := values.Get("priceRange"); s != "" {
		switch s {
		case "$", "$$", "$$$", "$$$$":
			p.PriceRange = s
		default:
			pe.addf("priceRange must be one of $ $$ $$$ $$$$")
		}
	}

	if s := strings.TrimSpace(values.Get("features")); s != "" {
		for _, f := range strings.Split(s, ",") {
			if f = strings.TrimSpace(f); f != "" {
				p.Features = append(p.Features, f)
			}
		}
	}

	if s := values.Get("open"); s != "" {
		if !validOpenModes[s] {
			pe.addf("open must be one of now today any")
		} else {
			p.Open = s
		}
	}

	p.Verified = parseOptionalBool(values.Get("verified"), "verified", pe)
	p.Featured = parseOptionalBool(values.Get("featured"), "featured", pe)

	parseBounds(values, p, pe)
	parseCenter(values, p, pe)

	if s := values.Get("sort"); s != "" {
		if !validSorts[s] {
			pe.addf("sort must be one of relevance rating distance newest popular")
		} else {
			p.Sort = s
		}
	}

	if s := values.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			pe.addf("page must be an integer >= 1")
		} else {
			p.Page = v
		}
	}

	if s := values.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > MaxLimit {
			pe.addf("limit must be an integer between 1 and %d", MaxLimit)
		} else {
			p.Limit = v
		}
	}

	p.Include = defaultIncludes(endpoint)
	if s := strings.TrimSpace(values.Get("include")); s != "" {
		inc := make(map[string]bool)
		for _, k := range strings.Split(s, ",") {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			if !validIncludes[k] {
				pe.addf("include %q is not recognized", k)
				continue
			}
			inc[k] = true
		}
		if len(inc) > 0 {
			p.Include = inc
		}
	}

	if s := values.Get("reviewsLimit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > MaxReviewsLimit {
			pe.addf("reviewsLimit must be an integer between 1 and %d", MaxReviewsLimit)
		} else {
			p.ReviewsLimit = v
		}
	}

	if s := values.Get("reviewsSort"); s != "" {
		if !validReviewsSorts[s] {
			pe.addf("reviewsSort must be one of newest oldest rating_high rating_low helpful")
		} else {
			p.ReviewsSort = s
		}
	}

	if len(pe.messages) > 0 {
		return nil, &ValidationError{Messages: pe.messages}
	}
	return p, nil
}

func defaultIncludes(endpoint Endpoint) map[string]bool {
	if endpoint == EndpointDetail {
		return map[string]bool{"photos": true, "categories": true, "hours": true}
	}
	return map[string]bool{"photos": true, "categories": true}
}

func parseOptionalBool(s, field string, pe *paramErrors) *bool {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		pe.addf("%s must be a boolean", field)
		return nil
	}
	return &v
}

func parseBounds(values url.Values, p *Params, pe *paramErrors) {
	raw := map[string]string{
		"north": values.Get("north"),
		"south": values.Get("south"),
		"east":  values.Get("east"),
		"west":  values.Get("west"),
	}

	present := 0
	for _, v := range raw {
		if v != "" {
			present++
		}
	}
	if present == 0 {
		return
	}
	if present < 4 {
		pe.addf("bounds requires north, south, east and west together")
		return
	}

	parsed := make(map[string]float64, 4)
	for k, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) {
			pe.addf("bounds %s must be a number", k)
			return
		}
		parsed[k] = f
	}
	if parsed["north"] < parsed["south"] {
		pe.addf("bounds north must be >= south")
		return
	}

	p.Bounds = &Bounds{
		North: parsed["north"],
		South: parsed["south"],
		East:  parsed["east"],
		West:  parsed["west"],
	}
}

func parseCenter(values url.Values, p *Params, pe *paramErrors) {
	latStr, lngStr := values.Get("lat"), values.Get("lng")
	if latStr == "" && lngStr == "" {
		return
	}
	if latStr == "" || lngStr == "" {
		pe.addf("center requires both lat and lng")
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		pe.addf("lat must be a number between -90 and 90")
		return
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil || lng < -180 || lng > 180 {
		pe.addf("lng must be a number between -180 and 180")
		return
	}

	radius := DefaultRadiusKm
	if s := values.Get("radius"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			pe.addf("radius must be a positive number")
			return
		}
		radius = v
	}

	p.Center = &Center{Lat: lat, Lng: lng, Radius: radius}
}
