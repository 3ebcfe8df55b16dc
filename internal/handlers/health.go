package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Checker reports whether a dependency is reachable
type Checker func(ctx context.Context) error

// HealthHandler reports service liveness
type HealthHandler struct {
	env     string
	storage string
	checks  map[string]Checker
}

// NewHealthHandler creates a health handler. checks are run on every call.
func NewHealthHandler(env, storage string, checks map[string]Checker) *HealthHandler {
	return &HealthHandler{env: env, storage: storage, checks: checks}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := gin.H{
		"status":  status,
		"env":     h.env,
		"storage": h.storage,
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	c.JSON(code, body)
}
