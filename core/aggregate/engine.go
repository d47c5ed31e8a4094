// Package aggregate derives whole-dataset metrics from the event log. Every
// static aggregate is computed once when the Engine is built.
package aggregate

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/kilianp07/rideslots/core/eventlog"
	"github.com/kilianp07/rideslots/core/model"
	"github.com/kilianp07/rideslots/core/occupancy"
	"github.com/kilianp07/rideslots/core/timeline"
)

// SlotUsage counts the distinct timestamps a slot was occupied.
type SlotUsage struct {
	SlotID     model.SlotID `json:"slot_id"`
	UsageCount int          `json:"usage_count"`
}

// OccupancyCount is the number of rows sampled at a timestamp.
type OccupancyCount struct {
	Timestamp      string `json:"timestamp"`
	OccupancyCount int    `json:"occupancy_count"`
}

// DwellTime summarises vehicle dwell times over the whole dataset.
type DwellTime struct {
	AvgDwellTime *float64  `json:"avg_dwell_time"`
	MaxDwellTime *float64  `json:"max_dwell_time"`
	Distribution []float64 `json:"distribution"`
}

// Summary is the dataset-wide overview.
type Summary struct {
	TotalVehicles          int      `json:"total_vehicles"`
	PeakOccupancy          *int     `json:"peak_occupancy"`
	PeakTimestamp          *string  `json:"peak_timestamp"`
	AvgDwellTime           *float64 `json:"avg_dwell_time"`
	MaxDwellTime           *float64 `json:"max_dwell_time"`
	UniqueReservations     *int     `json:"unique_reservations"`
	AvgReservationDuration *float64 `json:"avg_reservation_duration"`
}

// DetailedStats restricts the vehicle and reservation metrics to the entities
// present at one timestamp.
type DetailedStats struct {
	TotalVehicles          int      `json:"total_vehicles"`
	CurrentOccupancy       int      `json:"current_occupancy"`
	AvgDwellTime           *float64 `json:"avg_dwell_time"`
	MaxDwellTime           *float64 `json:"max_dwell_time"`
	UniqueReservations     int      `json:"unique_reservations"`
	AvgReservationDuration *float64 `json:"avg_reservation_duration"`
}

// Engine serves memoized aggregates. Accessors return copies.
type Engine struct {
	store    *eventlog.Store
	timeline *timeline.Index

	utilization []SlotUsage
	serviceMix  map[string]map[string]int
	occupancy   []OccupancyCount
	dwell       DwellTime
	summary     Summary
}

// New computes every static aggregate over store.
func New(store *eventlog.Store, tl *timeline.Index) *Engine {
	e := &Engine{store: store, timeline: tl}
	e.utilization = computeUtilization(store)
	e.serviceMix = computeServiceMix(store)
	e.occupancy = computeOccupancyTimeline(store)
	e.dwell = computeDwell(tl)
	e.summary = e.computeSummary()
	return e
}

func computeUtilization(store *eventlog.Store) []SlotUsage {
	type pair struct {
		slot model.SlotID
		sec  int64
		nsec int
	}
	seen := make(map[pair]struct{})
	counts := make(map[model.SlotID]int)
	store.Each(func(o model.Observation) {
		if !o.Occupied() {
			return
		}
		p := pair{o.SlotID, o.Timestamp.Unix(), o.Timestamp.Nanosecond()}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		counts[o.SlotID]++
	})
	out := make([]SlotUsage, 0, len(counts))
	for id, n := range counts {
		out = append(out, SlotUsage{SlotID: id, UsageCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].SlotID.Less(out[j].SlotID)
	})
	return out
}

func computeServiceMix(store *eventlog.Store) map[string]map[string]int {
	mix := make(map[string]map[string]int)
	store.Each(func(o model.Observation) {
		if o.Service == nil {
			return
		}
		ts := model.FormatTimestamp(o.Timestamp)
		if mix[ts] == nil {
			mix[ts] = make(map[string]int)
		}
		mix[ts][*o.Service]++
	})
	return mix
}

func computeOccupancyTimeline(store *eventlog.Store) []OccupancyCount {
	idx := store.Timestamps()
	out := make([]OccupancyCount, idx.Len())
	for i, t := range idx.All() {
		out[i] = OccupancyCount{Timestamp: model.FormatTimestamp(t), OccupancyCount: len(store.At(t))}
	}
	return out
}

func computeDwell(tl *timeline.Index) DwellTime {
	dist := tl.DwellMinutes()
	d := Describe(dist)
	return DwellTime{AvgDwellTime: d.Mean, MaxDwellTime: d.Max, Distribution: dist}
}

func (e *Engine) computeSummary() Summary {
	s := Summary{
		TotalVehicles: e.timeline.Vehicles(),
		AvgDwellTime:  e.dwell.AvgDwellTime,
		MaxDwellTime:  e.dwell.MaxDwellTime,
	}
	for _, c := range e.occupancy {
		if s.PeakOccupancy == nil || c.OccupancyCount > *s.PeakOccupancy {
			n, ts := c.OccupancyCount, c.Timestamp
			s.PeakOccupancy, s.PeakTimestamp = &n, &ts
		}
	}
	if e.store.HasReservations() {
		n := e.timeline.Reservations()
		s.UniqueReservations = &n
		s.AvgReservationDuration = Describe(e.timeline.ReservationMinutes()).Mean
	}
	return s
}

// Utilization returns the per-slot usage, most used first.
func (e *Engine) Utilization() []SlotUsage { return slices.Clone(e.utilization) }

// ServiceMix returns row counts keyed by ISO timestamp then service.
func (e *Engine) ServiceMix() map[string]map[string]int {
	out := make(map[string]map[string]int, len(e.serviceMix))
	for ts, m := range e.serviceMix {
		out[ts] = maps.Clone(m)
	}
	return out
}

// OccupancyTimeline returns the row count per timestamp in time order.
func (e *Engine) OccupancyTimeline() []OccupancyCount { return slices.Clone(e.occupancy) }

// DwellTime returns the dwell summary and per-vehicle distribution.
func (e *Engine) DwellTime() DwellTime {
	d := e.dwell
	d.Distribution = slices.Clone(d.Distribution)
	return d
}

// DwellHistogram buckets the dwell distribution.
func (e *Engine) DwellHistogram(bins int) []HistogramBin { return Histogram(e.dwell.Distribution, bins) }

// Summary returns the dataset-wide overview.
func (e *Engine) Summary() Summary { return e.summary }

// DetailedStatsAt computes vehicle and reservation metrics for the entities
// present at t, using each entity's full history for durations.
func (e *Engine) DetailedStatsAt(t time.Time) (DetailedStats, error) {
	if !e.store.HasTimestamp(t) {
		return DetailedStats{}, fmt.Errorf("%w: %s", model.ErrNotFound, model.FormatTimestamp(t))
	}
	plates := e.timeline.PlatesAt(t)
	dwell := make([]float64, 0, len(plates))
	for _, p := range plates {
		if sp, ok := e.timeline.Vehicle(p); ok {
			dwell = append(dwell, sp.Minutes())
		}
	}
	d := Describe(dwell)
	out := DetailedStats{
		TotalVehicles:    len(plates),
		CurrentOccupancy: occupancy.OccupiedSlots(e.store.At(t)),
		AvgDwellTime:     d.Mean,
		MaxDwellTime:     d.Max,
	}
	if e.store.HasReservations() {
		ids := e.timeline.ReservationsAt(t)
		durations := make([]float64, 0, len(ids))
		for _, id := range ids {
			if sp, ok := e.timeline.Reservation(id); ok {
				durations = append(durations, sp.Minutes())
			}
		}
		out.UniqueReservations = len(ids)
		out.AvgReservationDuration = Describe(durations).Mean
	}
	return out, nil
}
