// Package handler exposes the HTTP API: manual analysis triggers, analysis
// state lookups, scheduler status, and the zone list.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/zonewatch/zonewatch/internal/domain"
	"github.com/zonewatch/zonewatch/internal/metrics"
	"github.com/zonewatch/zonewatch/internal/registry"
	"github.com/zonewatch/zonewatch/internal/scheduler"
	"github.com/zonewatch/zonewatch/internal/tracker"
)

// API routes HTTP requests to the scheduler, tracker, and registry.
type API struct {
	sched    *scheduler.Scheduler
	tracker  tracker.Tracker
	registry *registry.Registry
	logger   *slog.Logger
}

// NewAPI creates the API handler set.
func NewAPI(sched *scheduler.Scheduler, tr tracker.Tracker, reg *registry.Registry, logger *slog.Logger) *API {
	return &API{
		sched:    sched,
		tracker:  tr,
		registry: reg,
		logger:   logger,
	}
}

// Router builds the chi router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", a.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", a.handleStatus)
		r.Get("/zones", a.handleListZones)
		r.Post("/zones/{zone}/analyze", a.handleAnalyzeZone)
		r.Get("/analyses/{id}", a.handleGetAnalysis)
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus returns a snapshot of scheduler activity.
func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.sched.Status())
}

// zonePayload is the JSON shape of a zone in list responses.
type zonePayload struct {
	Name         string `json:"name"`
	Context      string `json:"context,omitempty"`
	ScanInterval string `json:"scan_interval,omitempty"`
	Enabled      bool   `json:"enabled"`
}

func (a *API) handleListZones(w http.ResponseWriter, r *http.Request) {
	zones := a.registry.List()
	out := make([]zonePayload, 0, len(zones))
	for _, z := range zones {
		p := zonePayload{
			Name:    z.Name,
			Context: z.Context,
			Enabled: z.Enabled,
		}
		if z.ScanInterval > 0 {
			p.ScanInterval = z.ScanInterval.String()
		}
		out = append(out, p)
	}
	respondJSON(w, http.StatusOK, map[string]any{"zones": out})
}

// handleAnalyzeZone validates the zone against the registry and enqueues a
// manual analysis. Responds 202 with the analysis ID; the analysis itself
// runs asynchronously.
func (a *API) handleAnalyzeZone(w http.ResponseWriter, r *http.Request) {
	zoneName := chi.URLParam(r, "zone")

	zone, err := a.registry.Lookup(zoneName)
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown zone")
		return
	}
	if !zone.Enabled {
		respondError(w, http.StatusConflict, "zone is disabled")
		return
	}

	id, err := a.sched.QueueAnalysis(r.Context(), zone.Name, domain.PriorityManual)
	if err != nil {
		if errors.Is(err, scheduler.ErrInvalidRequest) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.logger.Error("Failed to queue analysis", "zone", zone.Name, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to queue analysis")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"analysis_id": id.String(),
		"zone":        zone.Name,
	})
}

// handleGetAnalysis returns the current lifecycle state of an analysis.
func (a *API) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid analysis id")
		return
	}

	state, err := a.tracker.GetState(r.Context(), id)
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			respondError(w, http.StatusNotFound, "analysis not found")
			return
		}
		a.logger.Error("Failed to read analysis state", "analysis_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to read analysis state")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"analysis_id": id.String(),
		"state":       state,
	})
}
