package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DjordjeVuckovic/probe-report/internal/apperr"
	pkgserver "github.com/DjordjeVuckovic/probe-report/pkg/server"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_HealthChecks(t *testing.T) {
	tests := []struct {
		name    string
		healthy bool
		want    int
	}{
		{"healthy", true, http.StatusOK},
		{"unhealthy", false, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := pkgserver.HealthFunc(func(context.Context) bool { return tt.healthy })
			s := New(&Config{Port: DefaultPort, CorsOrigins: []string{"*"}}, hc).
				SetupMiddlewares().
				SetupErrorHandler().
				SetupHealthChecks("/health")

			rec := httptest.NewRecorder()
			s.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestServer_ErrorHandlerMapsValidation(t *testing.T) {
	s := New(&Config{Port: DefaultPort, CorsOrigins: []string{"*"}}, pkgserver.NewOkHealthChecker()).
		SetupErrorHandler()
	s.Echo.GET("/boom", func(echo.Context) error {
		return apperr.NewValidation("bad input")
	})

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad input")
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("ENV_PATH", t.TempDir()+"/none.env")
	t.Setenv("APP_ENV", "")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("CORS_ORIGINS", "")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, DefaultPort, cfg.Port)
		assert.Equal(t, []string{"*"}, cfg.CorsOrigins)
		assert.False(t, cfg.UseHttp2)
	})

	t.Run("origins", func(t *testing.T) {
		t.Setenv("PORT", "9000")
		t.Setenv("CORS_ORIGINS", "http://a, ,http://b")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "9000", cfg.Port)
		assert.Equal(t, []string{"http://a", "http://b"}, cfg.CorsOrigins)
	})

	t.Run("invalid port", func(t *testing.T) {
		t.Setenv("PORT", "70000")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
