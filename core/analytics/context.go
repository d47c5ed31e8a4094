// Package analytics exposes the read-only query surface over a loaded event
// log. A Context is built once at startup and shared by every handler.
package analytics

import (
	"time"

	"github.com/kilianp07/rideslots/core/aggregate"
	"github.com/kilianp07/rideslots/core/eventlog"
	"github.com/kilianp07/rideslots/core/model"
	"github.com/kilianp07/rideslots/core/occupancy"
	"github.com/kilianp07/rideslots/core/timeline"
)

// DefaultHistogramBins matches the bucket count used by the dashboard.
const DefaultHistogramBins = 30

// Vehicle is a vehicle present at a query timestamp.
type Vehicle struct {
	PlateNumber             string   `json:"plate_number"`
	Service                 string   `json:"service"`
	EntryTime               string   `json:"entry_time"`
	EntryTimeDisplay        string   `json:"entry_time_display"`
	CurrentDwellTimeMinutes float64  `json:"current_dwell_time_minutes"`
	X                       *float64 `json:"x"`
	Y                       *float64 `json:"y"`
}

// Dataset describes the loaded log.
type Dataset struct {
	Rows         int
	Slots        int
	Timestamps   int
	Vehicles     int
	Reservations int
}

// Context composes the store, its indices and the aggregate engine. It holds
// no mutable state, so it is safe for concurrent use.
type Context struct {
	store     *eventlog.Store
	occupancy *occupancy.Reconstructor
	timeline  *timeline.Index
	engine    *aggregate.Engine
}

// New builds every index and eager aggregate over store.
func New(store *eventlog.Store) *Context {
	tl := timeline.New(store)
	return &Context{
		store:     store,
		occupancy: occupancy.New(store),
		timeline:  tl,
		engine:    aggregate.New(store, tl),
	}
}

// Resolve parses raw and checks it against the timestamp index. It fails with
// model.ErrInvalidTimestamp or model.ErrNotFound.
func (c *Context) Resolve(raw string) (time.Time, error) {
	t, err := model.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, err
	}
	if !c.store.HasTimestamp(t) {
		return time.Time{}, notFound(t)
	}
	return t, nil
}

// Dataset reports the size of the loaded log.
func (c *Context) Dataset() Dataset {
	return Dataset{
		Rows:         c.store.Len(),
		Slots:        c.store.Registry().Len(),
		Timestamps:   c.store.Timestamps().Len(),
		Vehicles:     c.timeline.Vehicles(),
		Reservations: c.timeline.Reservations(),
	}
}

// Timestamps lists every sampled instant as ISO-8601.
func (c *Context) Timestamps() []string { return c.store.Timestamps().Strings() }

// Instants lists every sampled instant.
func (c *Context) Instants() []time.Time { return c.store.Timestamps().All() }

// Snapshot returns the densified slot state at raw.
func (c *Context) Snapshot(raw string) ([]occupancy.SlotSnapshot, error) {
	t, err := c.Resolve(raw)
	if err != nil {
		return nil, err
	}
	return c.occupancy.SnapshotAt(t)
}

// SnapshotAt returns the densified slot state at a resolved instant.
func (c *Context) SnapshotAt(t time.Time) ([]occupancy.SlotSnapshot, error) {
	return c.occupancy.SnapshotAt(t)
}

// Stats returns slot counts at raw.
func (c *Context) Stats(raw string) (occupancy.Stats, error) {
	t, err := c.Resolve(raw)
	if err != nil {
		return occupancy.Stats{}, err
	}
	return c.occupancy.StatsAt(t)
}

// StatsAt returns slot counts at a resolved instant.
func (c *Context) StatsAt(t time.Time) (occupancy.Stats, error) { return c.occupancy.StatsAt(t) }

// StatsDetailed returns vehicle and reservation metrics at raw.
func (c *Context) StatsDetailed(raw string) (aggregate.DetailedStats, error) {
	t, err := c.Resolve(raw)
	if err != nil {
		return aggregate.DetailedStats{}, err
	}
	return c.engine.DetailedStatsAt(t)
}

// SlotsByPlate lists plates per slot at raw.
func (c *Context) SlotsByPlate(raw string) ([]occupancy.SlotPlate, error) {
	t, err := c.Resolve(raw)
	if err != nil {
		return nil, err
	}
	return c.occupancy.SlotsByPlate(t)
}

// VehiclesAt lists the vehicles present at raw, earliest entry first.
func (c *Context) VehiclesAt(raw string) ([]Vehicle, error) {
	t, err := c.Resolve(raw)
	if err != nil {
		return nil, err
	}
	present, err := c.timeline.VehiclesAt(t)
	if err != nil {
		return nil, err
	}
	out := make([]Vehicle, len(present))
	for i, p := range present {
		service := "Unknown"
		if p.Service != nil {
			service = *p.Service
		}
		out[i] = Vehicle{
			PlateNumber:             p.Plate,
			Service:                 service,
			EntryTime:               model.FormatTimestamp(p.Entry),
			EntryTimeDisplay:        model.FormatClock(p.Entry),
			CurrentDwellTimeMinutes: p.DwellMinutes,
			X:                       p.X,
			Y:                       p.Y,
		}
	}
	return out, nil
}

// Utilization returns per-slot usage counts, most used first.
func (c *Context) Utilization() []aggregate.SlotUsage { return c.engine.Utilization() }

// ServiceMix returns row counts per timestamp and service.
func (c *Context) ServiceMix() map[string]map[string]int { return c.engine.ServiceMix() }

// OccupancyTimeline returns the row count per timestamp.
func (c *Context) OccupancyTimeline() []aggregate.OccupancyCount {
	return c.engine.OccupancyTimeline()
}

// DwellTime returns the dataset dwell distribution.
func (c *Context) DwellTime() aggregate.DwellTime { return c.engine.DwellTime() }

// DwellHistogram buckets the dwell distribution; bins <= 0 selects the default.
func (c *Context) DwellHistogram(bins int) []aggregate.HistogramBin {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	return c.engine.DwellHistogram(bins)
}

// Summary returns the dataset-wide overview.
func (c *Context) Summary() aggregate.Summary { return c.engine.Summary() }
