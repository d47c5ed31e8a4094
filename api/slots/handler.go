// Package slots exposes the analytics queries over HTTP.
package slots

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kilianp07/rideslots/core/aggregate"
	"github.com/kilianp07/rideslots/core/analytics"
	"github.com/kilianp07/rideslots/core/model"
	coremon "github.com/kilianp07/rideslots/core/monitoring"
	"github.com/kilianp07/rideslots/core/occupancy"
	"github.com/kilianp07/rideslots/infra/logger"
)

// APIVersion is reported by the root endpoint.
const APIVersion = "2.0.0"

// Analytics is the query surface served by the handlers.
type Analytics interface {
	Timestamps() []string
	Snapshot(raw string) ([]occupancy.SlotSnapshot, error)
	Stats(raw string) (occupancy.Stats, error)
	StatsDetailed(raw string) (aggregate.DetailedStats, error)
	SlotsByPlate(raw string) ([]occupancy.SlotPlate, error)
	VehiclesAt(raw string) ([]analytics.Vehicle, error)
	Utilization() []aggregate.SlotUsage
	ServiceMix() map[string]map[string]int
	OccupancyTimeline() []aggregate.OccupancyCount
	DwellTime() aggregate.DwellTime
	DwellHistogram(bins int) []aggregate.HistogramBin
	Summary() aggregate.Summary
}

type handler struct {
	q   Analytics
	log logger.Logger
	mon coremon.Monitor
}

type errorBody struct {
	Detail string `json:"detail"`
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("encode response: %v", err)
	}
}

// writeError maps domain errors onto status codes. Details keep the wording
// the dashboard expects.
func (h *handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidTimestamp):
		h.writeJSON(w, http.StatusBadRequest, errorBody{Detail: "Invalid timestamp format"})
	case errors.Is(err, model.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, errorBody{Detail: "Timestamp not found"})
	default:
		h.log.Errorf("query failed: %v", err)
		h.mon.CaptureException(err, map[string]string{"component": "api"})
		h.writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "Internal server error"})
	}
}

// scoped adapts a timestamp-scoped query to an http.HandlerFunc.
func scoped[T any](h *handler, query func(string) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := query(mux.Vars(r)["ts"])
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, out)
	}
}

// static adapts a dataset-wide query to an http.HandlerFunc.
func static[T any](h *handler, query func() T) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		h.writeJSON(w, http.StatusOK, query())
	}
}

func (h *handler) root(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Ride-Hailing Analytics API",
		"version": APIVersion,
	})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) dwellHistogram(w http.ResponseWriter, r *http.Request) {
	bins := analytics.DefaultHistogramBins
	if raw := r.URL.Query().Get("bins"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			h.writeJSON(w, http.StatusBadRequest, errorBody{Detail: "bins must be an integer between 1 and 1000"})
			return
		}
		bins = n
	}
	h.writeJSON(w, http.StatusOK, h.q.DwellHistogram(bins))
}

func (h *handler) notFound(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusNotFound, errorBody{Detail: "Not Found"})
}

func (h *handler) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusMethodNotAllowed, errorBody{Detail: "Method Not Allowed"})
}
