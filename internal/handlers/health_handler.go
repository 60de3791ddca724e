package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler reports service liveness, uptime, and version.
type HealthHandler struct {
	db        *gorm.DB
	version   string
	startedAt time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *gorm.DB, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version, startedAt: time.Now()}
}

// Health handles the health check endpoint.
// @Summary     Health check
// @Description Report service status, version, uptime, and database connectivity
// @Tags        health
// @Produce     json
// @Success     200 {object} map[string]interface{} "Service is healthy"
// @Failure     503 {object} map[string]interface{} "Database unreachable"
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	overall := "ok"
	dbStatus := "ok"

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		status = http.StatusServiceUnavailable
		overall = "degraded"
		dbStatus = "unreachable"
	}

	c.JSON(status, gin.H{
		"status":         overall,
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"database":       dbStatus,
	})
}
