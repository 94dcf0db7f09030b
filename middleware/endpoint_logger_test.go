package middleware

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/medisync/hospital-api/util"
)

// newLoggedRouter wires the database and endpoint-call middleware in front of
// the given handler and captures the security log output.
func newLoggedRouter(t *testing.T, method, path string, handler gin.HandlerFunc) (*gin.Engine, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	original := util.GetSecurityLoggerForTest()
	util.SetSecurityLoggerForTest(log.New(buf, "[SECURITY] ", log.LstdFlags|log.Lmsgprefix))
	t.Cleanup(func() { util.SetSecurityLoggerForTest(original) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DatabaseMiddleware(db))
	r.Use(EndpointCallLogger())
	r.Handle(method, path, handler)
	return r, buf
}

func TestEndpointCallLoggerRecordsRequestLine(t *testing.T) {
	r, buf := newLoggedRouter(t, http.MethodGet, "/api/v1/hospital", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/hospital?city=jakarta", nil)
	req.RemoteAddr = "203.0.113.40:51000"
	req.Header.Set("User-Agent", "medisync-web/2.1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}

	out := buf.String()
	for _, want := range []string{
		"Event=ENDPOINT_CALL",
		"GET /api/v1/hospital -> 200",
		"203.0.113.40",
		"medisync-web/2.1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q\ngot: %s", want, out)
		}
	}
}

func TestEndpointCallLoggerResolvesUserEmail(t *testing.T) {
	r, buf := newLoggedRouter(t, http.MethodGet, "/api/v1/appointments", func(c *gin.Context) {
		c.Set(UserIDKey, uint(42))
		c.Set(RoleIDKey, uint32(2))
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	})

	// the resolver consults the LRU cache before the users table
	util.InitUserEmailCache(10)
	util.UserEmailCacheSet(42, "admin@cityhospital.test")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	r.ServeHTTP(w, req)

	out := buf.String()
	if !strings.Contains(out, "UserID=42") {
		t.Errorf("log missing UserID=42\ngot: %s", out)
	}
	if !strings.Contains(out, "admin@cityhospital.test") {
		t.Errorf("log missing resolved email\ngot: %s", out)
	}
}

func TestEndpointCallLoggerAnonymousRequest(t *testing.T) {
	r, buf := newLoggedRouter(t, http.MethodGet, "/api/v1/donors", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/donors", nil))

	out := buf.String()
	if !strings.Contains(out, "Event=ENDPOINT_CALL") {
		t.Errorf("log missing endpoint event\ngot: %s", out)
	}
	if !strings.Contains(out, "UserID=0") {
		t.Errorf("anonymous request should log UserID=0\ngot: %s", out)
	}
}

func TestEndpointCallLoggerStatusCodes(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		status  int
		logLine string
	}{
		{"created", http.MethodPost, http.StatusCreated, "POST /api/v1/appointment -> 201"},
		{"not found", http.MethodGet, http.StatusNotFound, "GET /api/v1/appointment -> 404"},
		{"server error", http.MethodGet, http.StatusInternalServerError, "GET /api/v1/appointment -> 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, buf := newLoggedRouter(t, tt.method, "/api/v1/appointment", func(c *gin.Context) {
				c.JSON(tt.status, gin.H{})
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, "/api/v1/appointment", strings.NewReader("{}")))

			if w.Code != tt.status {
				t.Fatalf("status %d, want %d", w.Code, tt.status)
			}
			if out := buf.String(); !strings.Contains(out, tt.logLine) {
				t.Errorf("log missing %q\ngot: %s", tt.logLine, out)
			}
		})
	}
}
