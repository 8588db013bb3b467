package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crewrelief/crewrelief/internal/application/ports"
)

// HealthHandler serves /health with a document store check and an optional Redis check.
type HealthHandler struct {
	store ports.DocumentStore
	redis redis.UniversalClient
}

// NewHealthHandler creates a health handler (redis optional).
func NewHealthHandler(store ports.DocumentStore, redisClient redis.UniversalClient) *HealthHandler {
	return &HealthHandler{store: store, redis: redisClient}
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Message string            `json:"message,omitempty"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allOK := true
	check := func(name string, err error) {
		if err != nil {
			checks[name] = "down: " + err.Error()
			allOK = false
			return
		}
		checks[name] = "ok"
	}

	check("store", h.store.Ping(ctx))
	if h.redis != nil {
		check("redis", h.redis.Ping(ctx).Err())
	}

	if !allOK {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:  "unhealthy",
			Checks:  checks,
			Message: "one or more checks failed",
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Checks: checks})
}
