package database

import (
	"fmt"
	"log"
	"os"

	"thorbis-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=thorbis_directory port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Business{},
		&models.BusinessFeature{},
		&models.BusinessHours{},
		&models.BusinessPhoto{},
		&models.BusinessMetrics{},
		&models.Review{},
	); err != nil {
		return err
	}

	return nil
}

func CreateDefaultAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@thorbis.com"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	var existingUser models.User
	result := db.Where("email = ?", adminEmail).First(&existingUser)
	if result.Error == nil {
		// Admin already exists
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:         adminEmail,
		Password:      string(hashedPassword),
		Role:          "admin",
		Name:          "Admin User",
		EmailVerified: true,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Default admin created: %s", adminEmail)
	return nil
}

// SeedDefaultCategories inserts the starter category set on first boot so the
// directory is never empty of facets. Existing slugs are left untouched.
func SeedDefaultCategories(db *gorm.DB) error {
	defaults := []models.Category{
		{Name: "Restaurants", Slug: "restaurants", Icon: "utensils", Color: "#E74C3C"},
		{Name: "Plumbing", Slug: "plumbing", Icon: "wrench", Color: "#3498DB"},
		{Name: "Automotive", Slug: "automotive", Icon: "car", Color: "#2C3E50"},
		{Name: "Health & Medical", Slug: "health-medical", Icon: "heart-pulse", Color: "#27AE60"},
		{Name: "Home Services", Slug: "home-services", Icon: "house", Color: "#F39C12"},
		{Name: "Beauty & Spas", Slug: "beauty-spas", Icon: "sparkles", Color: "#9B59B6"},
		{Name: "Professional Services", Slug: "professional-services", Icon: "briefcase", Color: "#34495E"},
		{Name: "Shopping", Slug: "shopping", Icon: "bag", Color: "#16A085"},
	}

	for _, cat := range defaults {
		var count int64
		db.Model(&models.Category{}).Where("slug = ?", cat.Slug).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&cat).Error; err != nil {
			return fmt.Errorf("failed to seed category %q: %w", cat.Slug, err)
		}
	}

	return nil
}
