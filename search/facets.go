package search

import (
	"thorbis-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Facets are aggregate count breakdowns over the filtered (pre-pagination)
// result set, meant to drive filter UI.
type Facets struct {
	Categories  map[string]int64 `json:"categories"`
	PriceRanges map[string]int64 `json:"price_ranges"`
	Features    map[string]int64 `json:"features"`
}

func emptyFacets() Facets {
	return Facets{
		Categories:  map[string]int64{},
		PriceRanges: map[string]int64{},
		Features:    map[string]int64{},
	}
}

// ComputeFacets aggregates category, price-range and feature counts for the
// given business ids.
func ComputeFacets(db *gorm.DB, ids []uuid.UUID) (Facets, error) {
	facets := emptyFacets()
	if len(ids) == 0 {
		return facets, nil
	}

	type slugCount struct {
		Slug  string `gorm:"column:slug"`
		Count int64  `gorm:"column:count"`
	}

	var catCounts []slugCount
	err := db.Table("business_categories bc").
		Select("c.slug AS slug, COUNT(*) AS count").
		Joins("JOIN categories c ON c.id = bc.category_id").
		Where("bc.business_id IN ?", ids).
		Group("c.slug").
		Find(&catCounts).Error
	if err != nil {
		return facets, err
	}
	for _, c := range catCounts {
		facets.Categories[c.Slug] = c.Count
	}

	type priceCount struct {
		PriceRange string `gorm:"column:price_range"`
		Count      int64  `gorm:"column:count"`
	}
	var priceCounts []priceCount
	err = db.Model(&models.Business{}).
		Select("price_range, COUNT(*) AS count").
		Where("id IN ?", ids).
		Group("price_range").
		Find(&priceCounts).Error
	if err != nil {
		return facets, err
	}
	for _, p := range priceCounts {
		facets.PriceRanges[p.PriceRange] = p.Count
	}

	type tagCount struct {
		Tag   string `gorm:"column:tag"`
		Count int64  `gorm:"column:count"`
	}
	var tagCounts []tagCount
	err = db.Model(&models.BusinessFeature{}).
		Select("tag, COUNT(*) AS count").
		Where("business_id IN ?", ids).
		Group("tag").
		Find(&tagCounts).Error
	if err != nil {
		return facets, err
	}
	for _, t := range tagCounts {
		facets.Features[t.Tag] = t.Count
	}

	return facets, nil
}
