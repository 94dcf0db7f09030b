package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/medisync/hospital-api/config"
	"github.com/medisync/hospital-api/model"
)

// newInMemoryDB creates an in-memory sqlite DB and runs required migrations for tests.
func newInMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Session{}, &model.Role{}); err != nil {
		t.Fatalf("failed to auto-migrate: %v", err)
	}
	if err := model.SeedRoles(db); err != nil {
		t.Fatalf("failed to seed roles: %v", err)
	}
	return db
}

type testSessionParams struct {
	role      string
	token     string
	expiresAt time.Time
}

// createTestUserAndSession creates a user and associated session in the provided DB.
func createTestUserAndSession(t *testing.T, db *gorm.DB, params testSessionParams) (model.User, model.Session) {
	t.Helper()
	roleID, err := model.RoleIDByName(db, params.role)
	if err != nil {
		t.Fatalf("failed to resolve role %s: %v", params.role, err)
	}
	user := model.User{
		FullName: "Test User",
		Email:    "test@example.com",
		Password: "argon2id$hash",
		RoleID:   roleID,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	if params.expiresAt.IsZero() {
		params.expiresAt = time.Now().Add(time.Hour)
	}
	session := model.Session{
		SessionToken: params.token,
		UserID:       user.ID,
		ExpiresAt:    params.expiresAt,
		ClientIP:     "127.0.0.1",
		Browser:      "test-browser",
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}
	return user, session
}

func runAuthRequest(db *gorm.DB, token string, handlers ...gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)
	if db != nil {
		r.Use(DatabaseMiddleware(db))
	}
	chain := append(handlers, func(c *gin.Context) {
		userID, _ := GetUserID(c)
		role, _ := GetRoleName(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
	})
	r.GET("/test", chain...)
	req := httptest.NewRequest("GET", "/test", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestSessionAuth_ValidToken(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	db := newInMemoryDB(t)
	createTestUserAndSession(t, db, testSessionParams{role: model.RolePatient, token: "tok-valid"})

	w := runAuthRequest(db, "tok-valid", SessionAuth())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSessionAuth_MissingToken(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	db := newInMemoryDB(t)

	w := runAuthRequest(db, "", SessionAuth())
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSessionAuth_ExpiredToken(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	db := newInMemoryDB(t)
	createTestUserAndSession(t, db, testSessionParams{
		role:      model.RolePatient,
		token:     "tok-expired",
		expiresAt: time.Now().Add(-time.Hour),
	})

	w := runAuthRequest(db, "tok-expired", SessionAuth())
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired session, got %d", w.Code)
	}
}

func TestRequireRole_Mismatch(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	db := newInMemoryDB(t)
	createTestUserAndSession(t, db, testSessionParams{role: model.RolePatient, token: "tok-patient"})

	w := runAuthRequest(db, "tok-patient", SessionAuth(), RequireRole(model.RoleHospitalAdmin))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for role mismatch, got %d", w.Code)
	}
}

func TestRequireRole_Match(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	db := newInMemoryDB(t)
	createTestUserAndSession(t, db, testSessionParams{role: model.RoleDoctor, token: "tok-doctor"})

	w := runAuthRequest(db, "tok-doctor", SessionAuth(), RequireRole(model.RoleDoctor))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestOptionalSessionAuth_Guest(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	db := newInMemoryDB(t)

	w := runAuthRequest(db, "", OptionalSessionAuth())
	if w.Code != http.StatusOK {
		t.Fatalf("expected guest request to pass, got %d", w.Code)
	}
}
