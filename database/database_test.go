package database

import (
	"os"
	"testing"

	"thorbis-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS "users" (
			"id" TEXT PRIMARY KEY,
			"email" TEXT NOT NULL UNIQUE,
			"password" TEXT NOT NULL,
			"name" TEXT,
			"role" TEXT DEFAULT 'user',
			"email_verified" INTEGER DEFAULT 0,
			"verification_token" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "categories" (
			"id" TEXT PRIMARY KEY,
			"name" TEXT NOT NULL UNIQUE,
			"slug" TEXT NOT NULL UNIQUE,
			"icon" TEXT,
			"color" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			t.Fatal(err)
		}
	}
	return db
}

func TestCreateDefaultAdminNew(t *testing.T) {
	db := setupTestDB(t)
	os.Setenv("ADMIN_EMAIL", "testadmin@test.com")
	os.Setenv("ADMIN_PASSWORD", "testpassword123")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer os.Unsetenv("ADMIN_PASSWORD")

	err := CreateDefaultAdmin(db)
	if err != nil {
		t.Fatal(err)
	}

	var user models.User
	if err := db.Where("email = ?", "testadmin@test.com").First(&user).Error; err != nil {
		t.Fatal("admin user not created")
	}
	if user.Role != "admin" {
		t.Errorf("expected role 'admin', got '%s'", user.Role)
	}
	if !user.EmailVerified {
		t.Error("seeded admin should start verified")
	}
}

func TestCreateDefaultAdminAlreadyExists(t *testing.T) {
	db := setupTestDB(t)
	os.Setenv("ADMIN_EMAIL", "existing@test.com")
	os.Setenv("ADMIN_PASSWORD", "password123")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer os.Unsetenv("ADMIN_PASSWORD")

	// Create admin first time
	err := CreateDefaultAdmin(db)
	if err != nil {
		t.Fatal(err)
	}

	// Second call should skip (no error)
	err = CreateDefaultAdmin(db)
	if err != nil {
		t.Fatal(err)
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", "existing@test.com").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 admin, got %d", count)
	}
}

func TestSeedDefaultCategories(t *testing.T) {
	db := setupTestDB(t)

	if err := SeedDefaultCategories(db); err != nil {
		t.Fatal(err)
	}

	var count int64
	db.Model(&models.Category{}).Count(&count)
	if count == 0 {
		t.Fatal("expected seeded categories")
	}

	var plumbing models.Category
	if err := db.Where("slug = ?", "plumbing").First(&plumbing).Error; err != nil {
		t.Fatal("expected the plumbing category to be seeded")
	}

	// Re-seeding is idempotent.
	if err := SeedDefaultCategories(db); err != nil {
		t.Fatal(err)
	}
	var after int64
	db.Model(&models.Category{}).Count(&after)
	if after != count {
		t.Errorf("re-seed must not duplicate categories: %d vs %d", count, after)
	}
}
