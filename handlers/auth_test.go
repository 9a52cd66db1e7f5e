package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"thorbis-backend/models"
)

func TestRegister(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", map[string]interface{}{
		"email":    "new@test.com",
		"password": "password123",
		"name":     "New User",
	}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["token"] == nil || resp["token"] == "" {
		t.Error("expected a session token")
	}
	user := resp["user"].(map[string]interface{})
	if user["role"] != "user" {
		t.Errorf("new accounts start as user, got %v", user["role"])
	}
	if user["email_verified"] != false {
		t.Error("new accounts start unverified")
	}

	// Password hash and verification token never leak.
	if _, ok := user["password"]; ok {
		t.Error("password must not be serialized")
	}

	var stored models.User
	db.Where("email = ?", "new@test.com").First(&stored)
	if stored.VerificationToken == "" {
		t.Error("expected a verification token to be issued")
	}
	if stored.Password == "password123" {
		t.Error("password must be stored hashed")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := freshDB()
	seedTestUser(db, "taken@test.com", "user", true)
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", map[string]interface{}{
		"email":    "taken@test.com",
		"password": "password123",
		"name":     "Dup User",
	}))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", map[string]interface{}{
		"email":    "not-an-email",
		"password": "short",
		"name":     "X",
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	db := freshDB()
	seedTestUser(db, "login@test.com", "user", true)
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]interface{}{
		"email":    "login@test.com",
		"password": "password123",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["token"] == nil {
		t.Error("expected a session token")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]interface{}{
		"email":    "login@test.com",
		"password": "wrong-password",
	}))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", w.Code)
	}
}

func TestVerifyEmail(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", map[string]interface{}{
		"email":    "verify@test.com",
		"password": "password123",
		"name":     "Verify User",
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", w.Code)
	}

	var user models.User
	db.Where("email = ?", "verify@test.com").First(&user)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/auth/verify?token="+user.VerificationToken, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.User
	db.Where("email = ?", "verify@test.com").First(&reloaded)
	if !reloaded.EmailVerified {
		t.Error("expected email_verified true after verification")
	}
	if reloaded.VerificationToken != "" {
		t.Error("verification token must be cleared after use")
	}

	// The consumed token no longer works.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/auth/verify?token="+user.VerificationToken, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("reused token: expected 404, got %d", w.Code)
	}
}

func TestGetProfile(t *testing.T) {
	db := freshDB()
	user, token := seedTestUser(db, "profile@test.com", "business_owner", true)
	seedBusiness(db, "My Biz", user.ID, bizOpts{})
	seedBusiness(db, "Gone Biz", user.ID, bizOpts{status: models.BusinessStatusDeleted})
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/profile", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["user"].(map[string]interface{})["email"] != "profile@test.com" {
		t.Error("unexpected profile email")
	}
	businesses := resp["businesses"].([]interface{})
	if len(businesses) != 1 {
		t.Errorf("profile must exclude deleted listings, got %d", len(businesses))
	}

	// Without a token the endpoint rejects.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/auth/profile", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}
