package utils

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses every non-alphanumeric run into
// a single hyphen: "Joe's Pizza" -> "joes-pizza".
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "'", "")
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// UniqueSlug resolves collisions by appending an incrementing integer
// suffix: joes-pizza, joes-pizza-1, joes-pizza-2.
func UniqueSlug(db *gorm.DB, table, name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "business"
	}

	slug := base
	for i := 0; ; i++ {
		if i > 0 {
			slug = fmt.Sprintf("%s-%d", base, i)
		}
		var count int64
		if err := db.Table(table).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
	}
}
