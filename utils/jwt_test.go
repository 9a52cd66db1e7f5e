package utils

import (
	"os"
	"testing"

	"github.com/google/uuid"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")
	os.Exit(m.Run())
}

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateToken(userID, "user@test.com", "business_owner", true)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id mismatch: %v vs %v", claims.UserID, userID)
	}
	if claims.Role != "business_owner" {
		t.Errorf("role mismatch: %v", claims.Role)
	}
	if !claims.EmailVerified {
		t.Error("email_verified flag lost")
	}
	if claims.Issuer != "thorbis-backend" {
		t.Errorf("unexpected issuer %v", claims.Issuer)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("garbage token must be rejected")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "user@test.com", "user", false)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	os.Setenv("JWT_SECRET", "a-different-secret")
	defer os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")

	if _, err := ValidateToken(token); err == nil {
		t.Error("token signed with another secret must be rejected")
	}
}
