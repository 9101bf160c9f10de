package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"cartographix/internal/geo"
	"cartographix/internal/infra"
	"cartographix/internal/jobs"
	"cartographix/internal/ratelimit"
	"cartographix/internal/storage"
)

// App bundles the handler dependencies.
type App struct {
	Log    zerolog.Logger
	Config *infra.Config

	Store *jobs.Store
	Orch  *jobs.Orchestrator

	Geocoder geo.Geocoder
	Files    *storage.FileStore

	EmailLimiter *ratelimit.SlidingWindow
	IPLimiter    *ratelimit.SlidingWindow
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, detail string) {
	a.json(w, code, map[string]string{"error": errCode, "detail": detail})
}
