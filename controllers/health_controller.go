package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Check pings one backing store.
type Check func(ctx context.Context) error

// HealthController reports liveness, which integrations are live, and the
// reachability of the optional stores.
type HealthController struct {
	integrations map[string]bool
	checks       map[string]Check
}

func NewHealthController(integrations map[string]bool, checks map[string]Check) *HealthController {
	return &HealthController{integrations: integrations, checks: checks}
}

// Health handles GET /health
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := hc.checks[name](ctx); err != nil {
			deps[name] = "down: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	integrations := gin.H{}
	for name, live := range hc.integrations {
		mode := "mock"
		if live {
			mode = "live"
		}
		integrations[name] = mode
	}

	body := gin.H{"status": "healthy", "service": "landco", "integrations": integrations}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
