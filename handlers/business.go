package handlers

import (
	"log"
	"net/http"
	"time"

	"thorbis-backend/models"
	"thorbis-backend/search"
	"thorbis-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BusinessHandler struct {
	DB *gorm.DB
}

type hoursPayload struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	IsClosed  bool   `json:"is_closed"`
}

type photoPayload struct {
	URL       string `json:"url" binding:"required"`
	AltText   string `json:"alt_text"`
	Caption   string `json:"caption"`
	IsPrimary bool   `json:"is_primary"`
	Order     int    `json:"order"`
}

type createBusinessPayload struct {
	Name        string            `json:"name" binding:"required,min=2"`
	Description string            `json:"description"`
	Address     string            `json:"address"`
	City        string            `json:"city"`
	State       string            `json:"state"`
	ZipCode     string            `json:"zip_code"`
	Country     string            `json:"country"`
	Phone       string            `json:"phone"`
	Website     string            `json:"website"`
	Email       string            `json:"email" binding:"omitempty,email"`
	SocialMedia map[string]string `json:"social_media"`
	PriceRange  string            `json:"price_range"`
	Features    []string          `json:"features"`
	Latitude    *float64          `json:"latitude"`
	Longitude   *float64          `json:"longitude"`
	Categories  []string          `json:"categories" binding:"required,min=1,max=5"`
	Hours       []hoursPayload    `json:"hours"`
	Photos      []photoPayload    `json:"photos"`
}

type updateBusinessPayload struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Address     *string           `json:"address"`
	City        *string           `json:"city"`
	State       *string           `json:"state"`
	ZipCode     *string           `json:"zip_code"`
	Country     *string           `json:"country"`
	Phone       *string           `json:"phone"`
	Website     *string           `json:"website"`
	Email       *string           `json:"email"`
	SocialMedia map[string]string `json:"social_media"`
	PriceRange  *string           `json:"price_range"`
	Features    []string          `json:"features"`
	Latitude    *float64          `json:"latitude"`
	Longitude   *float64          `json:"longitude"`
	Categories  []string          `json:"categories"`
	Hours       []hoursPayload    `json:"hours"`
	Photos      []photoPayload    `json:"photos"`
}

// GetBusiness serves the business detail endpoint with opt-in includes. A
// successful fetch of a published business bumps the view counters
// fire-and-forget.
func (h *BusinessHandler) GetBusiness(c *gin.Context) {
	params, err := search.Parse(c.Request.URL.Query(), search.EndpointDetail)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	caller := callerFrom(c)

	var business models.Business
	q := search.ApplyPreloads(h.DB.Preload("Owner"), params.Include, caller.IsAdmin())
	if err := q.Where("id = ?", c.Param("id")).First(&business).Error; err != nil {
		respondError(c, http.StatusNotFound, CodeNotFound, "Business not found")
		return
	}

	if !visibleTo(&business, caller) {
		respondError(c, http.StatusNotFound, CodeNotFound, "Business not found")
		return
	}

	if business.Status == models.BusinessStatusPublished {
		h.recordView(business.ID)
	}

	view := search.AssembleView(h.DB, &business, params, caller)

	resp := gin.H{"success": true, "business": view}
	if caller.IsAdmin() || (caller.Authenticated && caller.ID == business.OwnerID) {
		resp["permissions"] = gin.H{
			"can_edit":               true,
			"can_delete":             caller.IsAdmin(),
			"can_manage_photos":      true,
			"can_manage_hours":       true,
			"can_respond_to_reviews": true,
			"can_view_analytics":     true,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func visibleTo(b *models.Business, caller search.Caller) bool {
	if b.Status == models.BusinessStatusDeleted {
		return caller.IsAdmin()
	}
	if b.Status == models.BusinessStatusPublished {
		return true
	}
	return caller.IsAdmin() || (caller.Authenticated && caller.ID == b.OwnerID)
}

// recordView bumps the view counters and emits an analytics event without
// ever blocking or failing the read that triggered it.
func (h *BusinessHandler) recordView(businessID uuid.UUID) {
	db := h.DB
	go func() {
		err := db.Model(&models.BusinessMetrics{}).
			Where("business_id = ?", businessID).
			Updates(map[string]interface{}{
				"views_today":      gorm.Expr("views_today + 1"),
				"views_this_week":  gorm.Expr("views_this_week + 1"),
				"views_this_month": gorm.Expr("views_this_month + 1"),
				"updated_at":       time.Now(),
			}).Error
		if err != nil {
			log.Printf("view increment failed for business %s: %v", businessID, err)
		}
		utils.Analytics.Record(businessID, "view")
	}()
}

// CreateBusiness registers a new pending listing owned by the caller.
// Category membership is validated before any write; missing coordinates are
// resolved through the geocoding service when an address is present.
func (h *BusinessHandler) CreateBusiness(c *gin.Context) {
	var req createBusinessPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, utils.SanitizeValidationError(err))
		return
	}

	if req.PriceRange != "" && !models.ValidPriceRanges[req.PriceRange] {
		respondError(c, http.StatusBadRequest, CodeValidation, "price_range must be one of $ $$ $$$ $$$$")
		return
	}

	caller := callerFrom(c)

	var categories []models.Category
	if err := h.DB.Where("slug IN ?", req.Categories).Find(&categories).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeConflict, "Failed to resolve categories")
		return
	}
	if len(categories) != len(uniqueStrings(req.Categories)) {
		respondError(c, http.StatusBadRequest, CodeInvalidCategories, "One or more categories do not exist")
		return
	}

	slug, err := utils.UniqueSlug(h.DB, "businesses", req.Name)
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeConflict, "Failed to generate slug")
		return
	}

	business := models.Business{
		ID:          uuid.New(),
		Slug:        slug,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Country:     req.Country,
		Phone:       req.Phone,
		Website:     req.Website,
		Email:       req.Email,
		SocialMedia: req.SocialMedia,
		PriceRange:  req.PriceRange,
		Status:      models.BusinessStatusPending,
		OwnerID:     caller.ID,
	}
	if business.PriceRange == "" {
		business.PriceRange = "$$"
	}

	if req.Latitude != nil && req.Longitude != nil {
		business.Latitude = *req.Latitude
		business.Longitude = *req.Longitude
	} else if req.Address != "" {
		if loc, err := utils.GeocodeAddress(req.Address + ", " + req.City + ", " + req.State); err == nil {
			business.Latitude = loc.Lat
			business.Longitude = loc.Lng
		} else {
			log.Printf("geocode failed for new business %q: %v", req.Name, err)
		}
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&business).Error; err != nil {
			return err
		}
		if err := tx.Model(&business).Association("Categories").Append(&categories); err != nil {
			return err
		}
		if err := replaceFeatures(tx, business.ID, req.Features); err != nil {
			return err
		}
		if err := replaceHours(tx, business.ID, req.Hours); err != nil {
			return err
		}
		if err := replacePhotos(tx, business.ID, req.Photos); err != nil {
			return err
		}
		// Metrics row starts at zero; interaction events increment it later.
		return tx.Create(&models.BusinessMetrics{BusinessID: business.ID}).Error
	})
	if err != nil {
		log.Printf("business create failed for %q: %v", req.Name, err)
		respondError(c, http.StatusInternalServerError, CodeConflict, "Failed to create business")
		return
	}

	// First listing promotes a plain user to business_owner.
	h.DB.Model(&models.User{}).
		Where("id = ? AND role = ?", caller.ID, "user").
		Update("role", "business_owner")

	h.reloadAndRespond(c, http.StatusCreated, business.ID, caller)
}

// UpdateBusiness applies a partial update. Owner or admin only; an admin
// updating a pending business auto-publishes it. Child sets (categories,
// hours, photos, features) are replaced wholesale inside the transaction.
func (h *BusinessHandler) UpdateBusiness(c *gin.Context) {
	caller := callerFrom(c)

	var business models.Business
	if err := h.DB.Where("id = ?", c.Param("id")).First(&business).Error; err != nil {
		respondError(c, http.StatusNotFound, CodeNotFound, "Business not found")
		return
	}

	if !caller.IsAdmin() && business.OwnerID != caller.ID {
		respondError(c, http.StatusForbidden, CodeForbidden, "Only the owner or an admin can edit this business")
		return
	}

	var req updateBusinessPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, utils.SanitizeValidationError(err))
		return
	}

	if req.PriceRange != nil && !models.ValidPriceRanges[*req.PriceRange] {
		respondError(c, http.StatusBadRequest, CodeValidation, "price_range must be one of $ $$ $$$ $$$$")
		return
	}

	var categories []models.Category
	if req.Categories != nil {
		if len(req.Categories) < 1 || len(req.Categories) > 5 {
			respondError(c, http.StatusBadRequest, CodeValidation, "categories must contain between 1 and 5 slugs")
			return
		}
		if err := h.DB.Where("slug IN ?", req.Categories).Find(&categories).Error; err != nil {
			respondError(c, http.StatusInternalServerError, CodeConflict, "Failed to resolve categories")
			return
		}
		if len(categories) != len(uniqueStrings(req.Categories)) {
			respondError(c, http.StatusBadRequest, CodeInvalidCategories, "One or more categories do not exist")
			return
		}
	}

	applyStringUpdates(&business, &req)

	if req.SocialMedia != nil {
		business.SocialMedia = req.SocialMedia
	}
	if req.Latitude != nil && req.Longitude != nil {
		business.Latitude = *req.Latitude
		business.Longitude = *req.Longitude
	} else if req.Address != nil {
		if loc, err := utils.GeocodeAddress(business.Address + ", " + business.City + ", " + business.State); err == nil {
			business.Latitude = loc.Lat
			business.Longitude = loc.Lng
		} else {
			log.Printf("geocode failed for business %s: %v", business.ID, err)
		}
	}

	// An admin touching a pending listing approves it in the same action.
	autoPublished := false
	if caller.IsAdmin() && business.Status == models.BusinessStatusPending {
		business.Status = models.BusinessStatusPublished
		autoPublished = true
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&business).Error; err != nil {
			return err
		}
		if req.Categories != nil {
			if err := tx.Model(&business).Association("Categories").Replace(&categories); err != nil {
				return err
			}
		}
		if req.Features != nil {
			if err := replaceFeatures(tx, business.ID, req.Features); err != nil {
				return err
			}
		}
		if req.Hours != nil {
			if err := replaceHours(tx, business.ID, req.Hours); err != nil {
				return err
			}
		}
		if req.Photos != nil {
			if err := replacePhotos(tx, business.ID, req.Photos); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("business update failed for %s: %v", business.ID, err)
		respondError(c, http.StatusInternalServerError, CodeConflict, "Failed to update business")
		return
	}

	if autoPublished {
		h.notifyApproval(&business)
	}

	h.reloadAndRespond(c, http.StatusOK, business.ID, caller)
}

// DeleteBusiness soft-deletes: status flips to deleted with a timestamp, the
// row is never removed. Admin only (enforced at the route).
func (h *BusinessHandler) DeleteBusiness(c *gin.Context) {
	var business models.Business
	if err := h.DB.Where("id = ?", c.Param("id")).First(&business).Error; err != nil {
		respondError(c, http.StatusNotFound, CodeNotFound, "Business not found")
		return
	}

	now := time.Now()
	err := h.DB.Model(&business).Updates(map[string]interface{}{
		"status":     models.BusinessStatusDeleted,
		"deleted_at": now,
	}).Error
	if err != nil {
		log.Printf("business delete failed for %s: %v", business.ID, err)
		respondError(c, http.StatusInternalServerError, CodeConflict, "Failed to delete business")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Business deleted successfully"})
}

// TrackInteraction records a click/call/directions event fire-and-forget.
func (h *BusinessHandler) TrackInteraction(c *gin.Context) {
	var req struct {
		Type string `json:"type" binding:"required,oneof=click call directions view"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, utils.SanitizeValidationError(err))
		return
	}

	businessID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "Invalid business id")
		return
	}

	column := map[string]string{
		"click":      "clicks_today",
		"call":       "calls_today",
		"directions": "directions_today",
	}[req.Type]

	db := h.DB
	eventType := req.Type
	go func() {
		if column != "" {
			err := db.Model(&models.BusinessMetrics{}).
				Where("business_id = ?", businessID).
				Updates(map[string]interface{}{
					column:       gorm.Expr(column + " + 1"),
					"updated_at": time.Now(),
				}).Error
			if err != nil {
				log.Printf("%s increment failed for business %s: %v", eventType, businessID, err)
			}
		}
		utils.Analytics.Record(businessID, eventType)
	}()

	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

// ListAllBusinesses is the admin view: every status, deleted included.
func (h *BusinessHandler) ListAllBusinesses(c *gin.Context) {
	params, err := search.Parse(c.Request.URL.Query(), search.EndpointList)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	q := h.DB.Model(&models.Business{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to count businesses")
		return
	}

	var businesses []models.Business
	err = q.Preload("Categories").Preload("Owner").
		Order("created_at DESC, id").
		Offset((params.Page - 1) * params.Limit).Limit(params.Limit).
		Find(&businesses).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to fetch businesses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"businesses": businesses,
		"pagination": search.NewPagination(params.Page, params.Limit, total),
	})
}

// ApproveBusiness publishes a pending listing and notifies the owner.
func (h *BusinessHandler) ApproveBusiness(c *gin.Context) {
	var business models.Business
	if err := h.DB.Where("id = ?", c.Param("id")).First(&business).Error; err != nil {
		respondError(c, http.StatusNotFound, CodeNotFound, "Business not found")
		return
	}

	if business.Status != models.BusinessStatusPending {
		respondError(c, http.StatusBadRequest, CodeValidation, "Only pending businesses can be approved")
		return
	}

	if err := h.DB.Model(&business).Update("status", models.BusinessStatusPublished).Error; err != nil {
		log.Printf("business approve failed for %s: %v", business.ID, err)
		respondError(c, http.StatusInternalServerError, CodeConflict, "Failed to approve business")
		return
	}

	business.Status = models.BusinessStatusPublished
	h.notifyApproval(&business)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Business approved"})
}

func (h *BusinessHandler) notifyApproval(business *models.Business) {
	var owner models.User
	if err := h.DB.Where("id = ?", business.OwnerID).First(&owner).Error; err != nil {
		log.Printf("approval notification skipped, owner %s not found: %v", business.OwnerID, err)
		return
	}
	utils.SendApprovalEmail(owner.Email, business.Name)
}

func (h *BusinessHandler) reloadAndRespond(c *gin.Context, status int, id uuid.UUID, caller search.Caller) {
	params := &search.Params{
		Include:      map[string]bool{"photos": true, "categories": true, "hours": true},
		ReviewsLimit: search.DefaultReviewsLimit,
		ReviewsSort:  "newest",
	}

	var business models.Business
	q := search.ApplyPreloads(h.DB, params.Include, caller.IsAdmin())
	if err := q.Where("id = ?", id).First(&business).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to load business")
		return
	}

	c.JSON(status, gin.H{"success": true, "business": search.AssembleView(h.DB, &business, params, caller)})
}

func replaceFeatures(tx *gorm.DB, businessID uuid.UUID, tags []string) error {
	if err := tx.Where("business_id = ?", businessID).Delete(&models.BusinessFeature{}).Error; err != nil {
		return err
	}
	for _, tag := range uniqueStrings(tags) {
		if err := tx.Create(&models.BusinessFeature{BusinessID: businessID, Tag: tag}).Error; err != nil {
			return err
		}
	}
	return nil
}

func replaceHours(tx *gorm.DB, businessID uuid.UUID, hours []hoursPayload) error {
	if err := tx.Where("business_id = ?", businessID).Delete(&models.BusinessHours{}).Error; err != nil {
		return err
	}
	for _, hp := range hours {
		row := models.BusinessHours{
			BusinessID: businessID,
			DayOfWeek:  hp.DayOfWeek,
			OpenTime:   hp.OpenTime,
			CloseTime:  hp.CloseTime,
			IsClosed:   hp.IsClosed,
		}
		if row.OpenTime == "" {
			row.OpenTime = "09:00"
		}
		if row.CloseTime == "" {
			row.CloseTime = "17:00"
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func replacePhotos(tx *gorm.DB, businessID uuid.UUID, photos []photoPayload) error {
	if err := tx.Where("business_id = ?", businessID).Delete(&models.BusinessPhoto{}).Error; err != nil {
		return err
	}
	for i, pp := range photos {
		row := models.BusinessPhoto{
			BusinessID: businessID,
			URL:        pp.URL,
			AltText:    pp.AltText,
			Caption:    pp.Caption,
			IsPrimary:  pp.IsPrimary || i == 0,
			SortOrder:  pp.Order,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func applyStringUpdates(b *models.Business, req *updateBusinessPayload) {
	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.Address != nil {
		b.Address = *req.Address
	}
	if req.City != nil {
		b.City = *req.City
	}
	if req.State != nil {
		b.State = *req.State
	}
	if req.ZipCode != nil {
		b.ZipCode = *req.ZipCode
	}
	if req.Country != nil {
		b.Country = *req.Country
	}
	if req.Phone != nil {
		b.Phone = *req.Phone
	}
	if req.Website != nil {
		b.Website = *req.Website
	}
	if req.Email != nil {
		b.Email = *req.Email
	}
	if req.PriceRange != nil {
		b.PriceRange = *req.PriceRange
	}
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
