package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestBusinessBeforeCreateAssignsID(t *testing.T) {
	b := Business{}
	if err := b.BeforeCreate(nil); err != nil {
		t.Fatal(err)
	}
	if b.ID == uuid.Nil {
		t.Error("expected a generated id")
	}

	fixed := uuid.New()
	b2 := Business{ID: fixed}
	b2.BeforeCreate(nil)
	if b2.ID != fixed {
		t.Error("preset ids must be preserved")
	}
}

func TestValidPriceRanges(t *testing.T) {
	for _, ok := range []string{"$", "$$", "$$$", "$$$$"} {
		if !ValidPriceRanges[ok] {
			t.Errorf("%s should be valid", ok)
		}
	}
	for _, bad := range []string{"", "$$$$$", "cheap"} {
		if ValidPriceRanges[bad] {
			t.Errorf("%s should be invalid", bad)
		}
	}
}

func TestJSONMapRoundTrip(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	db.Exec(`CREATE TABLE "social_rows" ("id" TEXT PRIMARY KEY, "data" TEXT)`)

	type socialRow struct {
		ID   string  `gorm:"primary_key"`
		Data JSONMap `gorm:"type:text"`
	}

	in := socialRow{ID: "a", Data: JSONMap{"instagram": "@wades", "facebook": "wadesplumbing"}}
	if err := db.Table("social_rows").Create(&in).Error; err != nil {
		t.Fatal(err)
	}

	var out socialRow
	if err := db.Table("social_rows").Where("id = ?", "a").First(&out).Error; err != nil {
		t.Fatal(err)
	}
	if out.Data["instagram"] != "@wades" {
		t.Errorf("unexpected round-trip value: %v", out.Data)
	}
}

func TestStringListRoundTrip(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	db.Exec(`CREATE TABLE "photo_rows" ("id" TEXT PRIMARY KEY, "photos" TEXT)`)

	type photoRow struct {
		ID     string     `gorm:"primary_key"`
		Photos StringList `gorm:"type:text"`
	}

	in := photoRow{ID: "a", Photos: StringList{"one.jpg", "two.jpg"}}
	if err := db.Table("photo_rows").Create(&in).Error; err != nil {
		t.Fatal(err)
	}

	var out photoRow
	if err := db.Table("photo_rows").Where("id = ?", "a").First(&out).Error; err != nil {
		t.Fatal(err)
	}
	if len(out.Photos) != 2 || out.Photos[1] != "two.jpg" {
		t.Errorf("unexpected round-trip value: %v", out.Photos)
	}
}

func TestUserJSONHidesSecrets(t *testing.T) {
	u := User{
		ID:                uuid.New(),
		Email:             "user@test.com",
		Password:          "hashed-password",
		VerificationToken: "secret-token",
	}
	raw, err := json.Marshal(u)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]interface{}
	json.Unmarshal(raw, &out)
	if _, ok := out["password"]; ok {
		t.Error("password must not serialize")
	}
	for k := range out {
		if k == "verification_token" {
			t.Error("verification token must not serialize")
		}
	}
}

func TestBusinessPhotoJSONOrderField(t *testing.T) {
	p := BusinessPhoto{SortOrder: 3}
	raw, _ := json.Marshal(p)
	var out map[string]interface{}
	json.Unmarshal(raw, &out)
	if out["order"].(float64) != 3 {
		t.Errorf("sort_order serializes as order, got %v", out["order"])
	}
}
