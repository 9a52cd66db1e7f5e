package handlers

import (
	"log"
	"net/http"
	"time"

	"thorbis-backend/models"
	"thorbis-backend/search"
	"thorbis-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReviewHandler struct {
	DB *gorm.DB
}

type createReviewPayload struct {
	Rating int      `json:"rating" binding:"required,min=1,max=5"`
	Title  string   `json:"title"`
	Text   string   `json:"text" binding:"required,min=10"`
	Photos []string `json:"photos"`
}

// CreateReview submits a review for moderation. New reviews start pending and
// do not affect the business rating until approved.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req createReviewPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, utils.SanitizeValidationError(err))
		return
	}

	caller := callerFrom(c)

	var business models.Business
	if err := h.DB.Where("id = ?", c.Param("id")).First(&business).Error; err != nil {
		respondError(c, http.StatusNotFound, CodeNotFound, "Business not found")
		return
	}
	if !visibleTo(&business, caller) {
		respondError(c, http.StatusNotFound, CodeNotFound, "Business not found")
		return
	}

	var existing int64
	h.DB.Model(&models.Review{}).
		Where("business_id = ? AND user_id = ?", business.ID, caller.ID).
		Count(&existing)
	if existing > 0 {
		respondError(c, http.StatusConflict, CodeConflict, "You have already reviewed this business")
		return
	}

	review := models.Review{
		BusinessID: business.ID,
		UserID:     caller.ID,
		Rating:     req.Rating,
		Title:      req.Title,
		Text:       req.Text,
		Photos:     req.Photos,
		Status:     models.ReviewStatusPending,
	}
	if err := h.DB.Create(&review).Error; err != nil {
		log.Printf("review create failed for business %s: %v", business.ID, err)
		respondError(c, http.StatusInternalServerError, CodeConflict, "Failed to create review")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"review":  review,
		"message": "Review submitted and awaiting moderation",
	})
}

// GetReviews lists approved reviews for a business.
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	params, err := search.Parse(c.Request.URL.Query(), search.EndpointDetail)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	var business models.Business
	if err := h.DB.Where("id = ?", c.Param("id")).First(&business).Error; err != nil {
		respondError(c, http.StatusNotFound, CodeNotFound, "Business not found")
		return
	}
	if !visibleTo(&business, callerFrom(c)) {
		respondError(c, http.StatusNotFound, CodeNotFound, "Business not found")
		return
	}

	q := h.DB.Where("business_id = ? AND status = ?", business.ID, models.ReviewStatusApproved)

	var total int64
	if err := q.Session(&gorm.Session{}).Model(&models.Review{}).Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to count reviews")
		return
	}

	var reviews []models.Review
	err = q.Preload("User").
		Order(reviewOrder(params.ReviewsSort)).
		Offset((params.Page - 1) * params.ReviewsLimit).
		Limit(params.ReviewsLimit).
		Find(&reviews).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to fetch reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"reviews":    reviews,
		"pagination": search.NewPagination(params.Page, params.ReviewsLimit, total),
	})
}

func reviewOrder(sort string) string {
	switch sort {
	case "oldest":
		return "created_at ASC, id"
	case "rating_high":
		return "rating DESC, created_at DESC, id"
	case "rating_low":
		return "rating ASC, created_at DESC, id"
	case "helpful":
		return "helpful_count DESC, created_at DESC, id"
	default:
		return "created_at DESC, id"
	}
}

// ApproveReview publishes a pending review and folds it into the business
// aggregate rating. The review flip and the aggregate recompute happen in one
// transaction so the counts never drift.
func (h *ReviewHandler) ApproveReview(c *gin.Context) {
	var review models.Review
	if err := h.DB.Where("id = ?", c.Param("reviewId")).First(&review).Error; err != nil {
		respondError(c, http.StatusNotFound, CodeNotFound, "Review not found")
		return
	}

	if review.Status == models.ReviewStatusApproved {
		respondError(c, http.StatusBadRequest, CodeValidation, "Review is already approved")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&review).Update("status", models.ReviewStatusApproved).Error; err != nil {
			return err
		}
		return recomputeRating(tx, review.BusinessID)
	})
	if err != nil {
		log.Printf("review approve failed for %s: %v", review.ID, err)
		respondError(c, http.StatusInternalServerError, CodeConflict, "Failed to approve review")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Review approved"})
}

func recomputeRating(tx *gorm.DB, businessID interface{}) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("business_id = ? AND status = ?", businessID, models.ReviewStatusApproved).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	return tx.Model(&models.Business{}).
		Where("id = ?", businessID).
		Updates(map[string]interface{}{
			"rating":       agg.Avg,
			"review_count": agg.Count,
		}).Error
}

// RespondToReview attaches an owner response to an approved review.
func (h *ReviewHandler) RespondToReview(c *gin.Context) {
	var req struct {
		Response string `json:"response" binding:"required,min=2"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, utils.SanitizeValidationError(err))
		return
	}

	var review models.Review
	if err := h.DB.Where("id = ?", c.Param("reviewId")).First(&review).Error; err != nil {
		respondError(c, http.StatusNotFound, CodeNotFound, "Review not found")
		return
	}

	caller := callerFrom(c)
	if !caller.IsAdmin() {
		var business models.Business
		if err := h.DB.Where("id = ?", review.BusinessID).First(&business).Error; err != nil {
			respondError(c, http.StatusNotFound, CodeNotFound, "Business not found")
			return
		}
		if business.OwnerID != caller.ID {
			respondError(c, http.StatusForbidden, CodeForbidden, "Only the business owner can respond to reviews")
			return
		}
	}

	now := time.Now()
	err := h.DB.Model(&review).Updates(map[string]interface{}{
		"response":      req.Response,
		"response_date": now,
	}).Error
	if err != nil {
		log.Printf("review response failed for %s: %v", review.ID, err)
		respondError(c, http.StatusInternalServerError, CodeConflict, "Failed to save response")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Response saved"})
}

// MarkHelpful increments the helpful counter on an approved review.
func (h *ReviewHandler) MarkHelpful(c *gin.Context) {
	result := h.DB.Model(&models.Review{}).
		Where("id = ? AND status = ?", c.Param("reviewId"), models.ReviewStatusApproved).
		Update("helpful_count", gorm.Expr("helpful_count + 1"))
	if result.Error != nil {
		respondError(c, http.StatusInternalServerError, CodeConflict, "Failed to update review")
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, CodeNotFound, "Review not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
