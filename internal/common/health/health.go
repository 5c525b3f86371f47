package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handler serves liveness and readiness checks.
type Handler struct {
	service string
	checks  map[string]Pinger
}

// NewHandler creates a health handler. checks are consulted by the readiness endpoint.
func NewHandler(service string, checks map[string]Pinger) *Handler {
	return &Handler{service: service, checks: checks}
}

// RegisterRoutes registers /health and /health/ready.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Live)
	r.GET("/health/ready", h.Ready)
}

// Live always reports ok while the process is serving.
func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   h.service,
		"timestamp": time.Now().UTC(),
	})
}

// Ready pings every dependency with a short timeout.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	failures := gin.H{}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unavailable",
			"service":   h.service,
			"failures":  failures,
			"timestamp": time.Now().UTC(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   h.service,
		"timestamp": time.Now().UTC(),
	})
}
