package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports process and backing-store health.
type HealthHandler struct {
	version string
	checks  map[string]func() error
}

// NewHealthHandler creates a health handler. checks maps a component name
// to its liveness probe.
func NewHealthHandler(version string, checks map[string]func() error) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(); err != nil {
			components[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}
	c.JSON(status, gin.H{
		"status":     http.StatusText(status),
		"version":    h.version,
		"components": components,
	})
}
