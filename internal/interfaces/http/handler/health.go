package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

// HealthHandler serves the liveness check
type HealthHandler struct {
	db  Pinger
	now func() time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, now: time.Now}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	status, database, code := "healthy", "ok", http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			logger.L(c.Request.Context()).Warn("health check failed", zap.Error(err))
			status, database, code = "unhealthy", "error", http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{
		"status":   status,
		"time":     h.now().UTC().Format(time.RFC3339),
		"database": database,
	})
}
