package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"thorbis-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")
	os.Exit(m.Run())
}

func protectedRouter() *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.MustGet("user_id")})
	})
	r.GET("/optional", OptionalAuthMiddleware(), func(c *gin.Context) {
		_, authed := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"authenticated": authed})
	})
	r.GET("/admin", AuthMiddleware(), AdminMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/verified", AuthMiddleware(), VerifiedEmailMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	r := protectedRouter()
	if w := doGet(r, "/protected", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without header, got %d", w.Code)
	}
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	r := protectedRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for non-bearer scheme, got %d", w.Code)
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	token, _ := utils.GenerateToken(uuid.New(), "user@test.com", "user", true)
	r := protectedRouter()
	if w := doGet(r, "/protected", token); w.Code != http.StatusOK {
		t.Errorf("expected 200 with valid token, got %d", w.Code)
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	r := protectedRouter()

	// Anonymous passes through.
	if w := doGet(r, "/optional", ""); w.Code != http.StatusOK {
		t.Errorf("anonymous must pass, got %d", w.Code)
	}

	// Garbage token also passes through, just without an identity.
	if w := doGet(r, "/optional", "garbage"); w.Code != http.StatusOK {
		t.Errorf("bad token must not reject on optional routes, got %d", w.Code)
	}

	token, _ := utils.GenerateToken(uuid.New(), "user@test.com", "user", true)
	if w := doGet(r, "/optional", token); w.Code != http.StatusOK {
		t.Errorf("valid token must pass, got %d", w.Code)
	}
}

func TestAdminMiddleware(t *testing.T) {
	r := protectedRouter()

	userToken, _ := utils.GenerateToken(uuid.New(), "user@test.com", "user", true)
	if w := doGet(r, "/admin", userToken); w.Code != http.StatusForbidden {
		t.Errorf("non-admin must be forbidden, got %d", w.Code)
	}

	adminToken, _ := utils.GenerateToken(uuid.New(), "admin@test.com", "admin", true)
	if w := doGet(r, "/admin", adminToken); w.Code != http.StatusOK {
		t.Errorf("admin must pass, got %d", w.Code)
	}
}

func TestVerifiedEmailMiddleware(t *testing.T) {
	r := protectedRouter()

	unverified, _ := utils.GenerateToken(uuid.New(), "user@test.com", "user", false)
	if w := doGet(r, "/verified", unverified); w.Code != http.StatusForbidden {
		t.Errorf("unverified email must be forbidden, got %d", w.Code)
	}

	verified, _ := utils.GenerateToken(uuid.New(), "user@test.com", "user", true)
	if w := doGet(r, "/verified", verified); w.Code != http.StatusOK {
		t.Errorf("verified email must pass, got %d", w.Code)
	}
}
