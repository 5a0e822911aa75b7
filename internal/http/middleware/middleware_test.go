package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/marketplace-service/internal/model"
)

type stubParser struct {
	id  uuid.UUID
	err error
}

func (s stubParser) Parse(string) (uuid.UUID, error) {
	return s.id, s.err
}

type stubProfiles map[uuid.UUID]model.Profile

func (s stubProfiles) GetProfile(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	profile, ok := s[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

func newAuthRouter(parser TokenParser, profiles ProfileResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()), Auth(parser, profiles))
	r.GET("/me", func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": principal.ProfileID, "role": principal.Role})
	})
	return r
}

func TestAuthResolvesPrincipal(t *testing.T) {
	profileID := uuid.New()
	r := newAuthRouter(stubParser{id: profileID}, stubProfiles{
		profileID: {ID: profileID, Role: model.RoleContractor},
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	want := `{"id":"` + profileID.String() + `","role":"contractor"}`
	if rec.Body.String() != want {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthRejections(t *testing.T) {
	profileID := uuid.New()
	adminID := uuid.New()
	cases := []struct {
		name   string
		header string
		parser stubParser
	}{
		{name: "missing header", header: "", parser: stubParser{id: profileID}},
		{name: "wrong scheme", header: "Basic abc", parser: stubParser{id: profileID}},
		{name: "invalid token", header: "Bearer bad", parser: stubParser{err: errors.New("bad")}},
		{name: "unknown profile", header: "Bearer token", parser: stubParser{id: uuid.New()}},
		{name: "unknown role", header: "Bearer token", parser: stubParser{id: adminID}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			r := newAuthRouter(tc.parser, stubProfiles{
				profileID: {ID: profileID, Role: model.RoleClient},
				adminID:   {ID: adminID, Role: model.Role("admin")},
			})
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.OPTIONS("/jobs/unpaid", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/jobs/unpaid", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin header: got=%q", got)
	}
}
