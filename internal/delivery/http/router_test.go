package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers"
	"github.com/mahmoodhamdi/sounds-api/internal/service"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

func newTestRouter(checks map[string]controllers.HealthCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return InitRoutes(logger.NewDiscard(), service.Collection{}, Options{
		AllowOrigins: []string{"http://localhost:5173"},
		HealthChecks: checks,
	})
}

func TestRoutesRegistered(t *testing.T) {
	r := newTestRouter(nil)

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /v1/auth/register",
		"POST /v1/auth/login",
		"GET /v1/me",
		"GET /v1/levels",
		"GET /v1/admin/levels",
		"GET /v1/levels/search",
		"GET /v1/levels/:level_id",
		"PATCH /v1/levels/:level_id/videos/swap",
		"POST /v1/users/:user_id/levels/:level_id/purchase",
		"PATCH /v1/users/:user_id/levels/:level_id/videos/:video_id/complete",
		"POST /v1/exams/:level_id/initial",
		"POST /v1/exams/:level_id/final",
		"POST /v1/admin/users/:user_id/levels/:level_id/assign",
		"GET /v1/admin/statistics",
		"GET /v1/report",
		"GET /healthz",
	} {
		if !registered[want] {
			t.Errorf("route %q not registered", want)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v1/me"},
		{http.MethodPost, "/v1/levels"},
		{http.MethodGet, "/v1/admin/users"},
		{http.MethodGet, "/v1/admin/levels"},
		{http.MethodGet, "/v1/report"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", tc.method, tc.path, w.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]controllers.HealthCheck
		want   int
	}{
		{
			name: "healthy",
			checks: map[string]controllers.HealthCheck{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return nil },
			},
			want: http.StatusOK,
		},
		{
			name: "redis down",
			checks: map[string]controllers.HealthCheck{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return errors.New("connection refused") },
			},
			want: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newTestRouter(tt.checks).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
