package handlers

import (
	"log"
	"net/http"

	"thorbis-backend/models"
	"thorbis-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB *gorm.DB
}

type registerPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,min=2"`
}

type loginPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a user account, sends the verification email and returns
// a session token. Email stays unverified until the token link is followed.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, utils.SanitizeValidationError(err))
		return
	}

	var existing int64
	h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing)
	if existing > 0 {
		respondError(c, http.StatusConflict, CodeConflict, "An account with this email already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to process password")
		return
	}

	user := models.User{
		Email:             req.Email,
		Password:          string(hashed),
		Name:              req.Name,
		Role:              "user",
		VerificationToken: uuid.New().String(),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		log.Printf("user create failed for %s: %v", req.Email, err)
		respondError(c, http.StatusConflict, CodeConflict, "Failed to create account")
		return
	}

	utils.SendWelcomeEmail(user.Email, user.Name)
	utils.SendVerificationEmail(user.Email, user.VerificationToken)

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, user.EmailVerified)
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "user": user})
}

// Login authenticates by email and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, utils.SanitizeValidationError(err))
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, user.EmailVerified)
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": user})
}

// VerifyEmail consumes the emailed verification token.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		respondError(c, http.StatusBadRequest, CodeValidation, "token is required")
		return
	}

	var user models.User
	if err := h.DB.Where("verification_token = ?", token).First(&user).Error; err != nil {
		respondError(c, http.StatusNotFound, CodeNotFound, "Invalid or expired verification token")
		return
	}

	err := h.DB.Model(&user).Updates(map[string]interface{}{
		"email_verified":     true,
		"verification_token": "",
	}).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to verify email")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email verified"})
}

// GetProfile returns the authenticated user's account plus their businesses.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	caller := callerFrom(c)

	var user models.User
	if err := h.DB.Where("id = ?", caller.ID).First(&user).Error; err != nil {
		respondError(c, http.StatusNotFound, CodeNotFound, "User not found")
		return
	}

	var businesses []models.Business
	h.DB.Where("owner_id = ? AND status <> ?", user.ID, models.BusinessStatusDeleted).
		Order("created_at DESC").Find(&businesses)

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user, "businesses": businesses})
}
