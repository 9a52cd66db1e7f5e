package handlers

import (
	"log"
	"net/http"

	"thorbis-backend/models"
	"thorbis-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CategoryHandler struct {
	DB *gorm.DB
}

type categoryWithCount struct {
	models.Category
	BusinessCount int64 `json:"business_count"`
}

// ListCategories returns every category with its published-business count.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := h.DB.Order("name").Find(&categories).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to fetch categories")
		return
	}

	type countRow struct {
		CategoryID string
		Count      int64
	}
	var counts []countRow
	err := h.DB.Table("business_categories").
		Select("business_categories.category_id AS category_id, COUNT(*) AS count").
		Joins("JOIN businesses ON businesses.id = business_categories.business_id").
		Where("businesses.status = ?", models.BusinessStatusPublished).
		Group("business_categories.category_id").
		Scan(&counts).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to count businesses")
		return
	}

	byID := make(map[string]int64, len(counts))
	for _, row := range counts {
		byID[row.CategoryID] = row.Count
	}

	out := make([]categoryWithCount, 0, len(categories))
	for _, cat := range categories {
		out = append(out, categoryWithCount{Category: cat, BusinessCount: byID[cat.ID.String()]})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "categories": out})
}

// GetCategory fetches one category by slug.
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	var category models.Category
	if err := h.DB.Where("slug = ?", c.Param("slug")).First(&category).Error; err != nil {
		respondError(c, http.StatusNotFound, CodeNotFound, "Category not found")
		return
	}

	var count int64
	h.DB.Table("business_categories").
		Joins("JOIN businesses ON businesses.id = business_categories.business_id").
		Where("business_categories.category_id = ? AND businesses.status = ?",
			category.ID, models.BusinessStatusPublished).
		Count(&count)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"category": categoryWithCount{Category: category, BusinessCount: count},
	})
}

type categoryPayload struct {
	Name  string `json:"name" binding:"required,min=2"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// CreateCategory adds a new category. Admin only; the slug is derived from
// the name.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, utils.SanitizeValidationError(err))
		return
	}

	slug, err := utils.UniqueSlug(h.DB, "categories", req.Name)
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeConflict, "Failed to generate slug")
		return
	}

	category := models.Category{
		Name:  req.Name,
		Slug:  slug,
		Icon:  req.Icon,
		Color: req.Color,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		log.Printf("category create failed for %q: %v", req.Name, err)
		respondError(c, http.StatusConflict, CodeConflict, "Category already exists")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "category": category})
}

// UpdateCategory renames or restyles a category. The slug is stable; renames
// do not change existing links.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var category models.Category
	if err := h.DB.Where("slug = ?", c.Param("slug")).First(&category).Error; err != nil {
		respondError(c, http.StatusNotFound, CodeNotFound, "Category not found")
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Icon  *string `json:"icon"`
		Color *string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, utils.SanitizeValidationError(err))
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.Color != nil {
		category.Color = *req.Color
	}

	if err := h.DB.Save(&category).Error; err != nil {
		log.Printf("category update failed for %s: %v", category.Slug, err)
		respondError(c, http.StatusConflict, CodeConflict, "Failed to update category")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "category": category})
}

// DeleteCategory removes a category. Refused while businesses still link to
// it, so listings never silently lose a facet.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	var category models.Category
	if err := h.DB.Where("slug = ?", c.Param("slug")).First(&category).Error; err != nil {
		respondError(c, http.StatusNotFound, CodeNotFound, "Category not found")
		return
	}

	var linked int64
	h.DB.Table("business_categories").Where("category_id = ?", category.ID).Count(&linked)
	if linked > 0 {
		respondError(c, http.StatusConflict, CodeConflict, "Category still has businesses assigned")
		return
	}

	if err := h.DB.Delete(&category).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeConflict, "Failed to delete category")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted"})
}
