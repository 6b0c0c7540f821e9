package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"shareregistry/pkg/platform/httputil"
)

// Check is one readiness probe, such as a database or broker ping.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

const readyTimeout = 3 * time.Second

type healthHandler struct {
	logger *slog.Logger
	checks []Check
}

func newHealthHandler(logger *slog.Logger, checks []Check) *healthHandler {
	return &healthHandler{logger: logger, checks: checks}
}

// HandleHealth reports liveness only.
func (h *healthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReady runs every check concurrently and answers 503 if any fails.
func (h *healthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	results := make([]string, len(h.checks))
	var g errgroup.Group
	for i, c := range h.checks {
		g.Go(func() error {
			if err := c.Ping(ctx); err != nil {
				h.logger.WarnContext(ctx, "readiness check failed", "check", c.Name, "error", err)
				results[i] = "down"
				return err
			}
			results[i] = "up"
			return nil
		})
	}
	err := g.Wait()

	status := make(map[string]string, len(h.checks))
	for i, c := range h.checks {
		status[c.Name] = results[i]
	}
	code := http.StatusOK
	overall := "ready"
	if err != nil {
		code = http.StatusServiceUnavailable
		overall = "degraded"
	}
	httputil.WriteJSON(w, code, map[string]any{"status": overall, "checks": status})
}
