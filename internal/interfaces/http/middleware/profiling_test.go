package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestResourceFromRoute(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/api/v1/credit-customers/:id", "credit-customers"},
		{"/api/v1/trash/:type/:deletedId/restore", "trash"},
		{"/api/v2/sales", "sales"},
		{"/health", "health"},
		{"/api/v1/:id", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			assert.Equal(t, tt.want, resourceFromRoute(tt.route))
		})
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("V12"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("vendors"))
	assert.False(t, isVersionSegment("1"))
}

func TestProfiling(t *testing.T) {
	tests := []struct {
		name string
		cfg  ProfilingConfig
		path string
	}{
		{"disabled", ProfilingConfig{}, "/api/v1/sales/42"},
		{"enabled", ProfilingConfig{Enabled: true}, "/api/v1/sales/42"},
		{"skipped path", ProfilingConfig{Enabled: true, SkipPaths: []string{"/health"}}, "/health"},
		{"unmatched route", ProfilingConfig{Enabled: true}, "/nowhere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Profiling(tt.cfg))
			router.GET("/api/v1/sales/:id", func(c *gin.Context) {
				assert.NotNil(t, c.Request.Context())
				c.Status(http.StatusOK)
			})
			router.GET("/health", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if tt.path == "/nowhere" {
				assert.Equal(t, http.StatusNotFound, w.Code)
				return
			}
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}
