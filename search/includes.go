package search

import (
	"log"

	"thorbis-backend/models"

	"gorm.io/gorm"
)

// SimilarLimit caps the similar-businesses include.
const SimilarLimit = 6

// ApplyPreloads attaches the relation preloads for the requested includes.
// Each include is an independently composable fragment; nothing is joined
// unless asked for. The owner include is admin-only and is silently dropped
// for everyone else.
func ApplyPreloads(db *gorm.DB, include map[string]bool, isAdmin bool) *gorm.DB {
	q := db.Preload("Features")
	if include["photos"] {
		q = q.Preload("Photos", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("business_photos.sort_order")
		})
	}
	if include["categories"] {
		q = q.Preload("Categories")
	}
	if include["hours"] {
		q = q.Preload("Hours", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("business_hours.day_of_week")
		})
	}
	if include["metrics"] {
		q = q.Preload("Metrics")
	}
	if include["owner"] && isAdmin {
		q = q.Preload("Owner")
	}
	return q
}

// loadReviews fetches the approved reviews for one business with the
// independent reviews pagination/sort.
func loadReviews(db *gorm.DB, businessID interface{}, p *Params) []models.Review {
	order := "created_at DESC"
	switch p.ReviewsSort {
	case "oldest":
		order = "created_at ASC"
	case "rating_high":
		order = "rating DESC, created_at DESC"
	case "rating_low":
		order = "rating ASC, created_at DESC"
	case "helpful":
		order = "helpful_count DESC, created_at DESC"
	}

	var reviews []models.Review
	err := db.Preload("User").
		Where("business_id = ? AND status = ?", businessID, models.ReviewStatusApproved).
		Order(order).
		Limit(p.ReviewsLimit).
		Find(&reviews).Error
	if err != nil {
		log.Printf("reviews include failed for business %v: %v", businessID, err)
		return nil
	}
	return reviews
}

// loadSimilar derives businesses sharing at least one category with the
// subject, excluding the subject itself, ordered by rating descending and
// capped at SimilarLimit. A business with no categories yields an empty list.
func loadSimilar(db *gorm.DB, b *models.Business, p *Params) []BusinessView {
	var rows []models.Business
	err := db.Model(&models.Business{}).
		Preload("Features").
		Preload("Categories").
		Where("businesses.status = ?", models.BusinessStatusPublished).
		Where("businesses.id <> ?", b.ID).
		Where(`businesses.id IN (
			SELECT business_id FROM business_categories
			WHERE category_id IN (SELECT category_id FROM business_categories WHERE business_id = ?))`, b.ID).
		Order("businesses.rating DESC, businesses.review_count DESC, businesses.id").
		Limit(SimilarLimit).
		Find(&rows).Error
	if err != nil {
		log.Printf("similar include failed for business %s: %v", b.ID, err)
		return nil
	}

	sub := &Params{Include: map[string]bool{"categories": true}}
	views := make([]BusinessView, 0, len(rows))
	for i := range rows {
		views = append(views, AssembleView(nil, &rows[i], sub, Caller{}))
	}
	return views
}
