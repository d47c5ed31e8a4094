// Package occupancy rebuilds the full slot state of the fleet at a sampled
// instant.
package occupancy

import (
	"fmt"
	"time"

	"github.com/kilianp07/rideslots/core/eventlog"
	"github.com/kilianp07/rideslots/core/model"
)

// SlotSnapshot is the state of one slot at one timestamp.
type SlotSnapshot struct {
	SlotID   model.SlotID `json:"slot_id" yaml:"slot_id"`
	X        *float64     `json:"x" yaml:"x"`
	Y        *float64     `json:"y" yaml:"y"`
	Occupied bool         `json:"occupied" yaml:"occupied"`
	Plate    *string      `json:"plate" yaml:"plate"`
	Service  *string      `json:"service" yaml:"service"`
}

// Stats summarises a snapshot.
type Stats struct {
	TotalSlots int `json:"total_slots"`
	Occupied   int `json:"occupied"`
	Vacant     int `json:"vacant"`
}

// SlotPlate is the per-slot plate listing at a timestamp.
type SlotPlate struct {
	SlotID    model.SlotID `json:"slot_id"`
	Plate     *string      `json:"plate"`
	Service   *string      `json:"service"`
	Occupied  bool         `json:"occupied"`
	Timestamp string       `json:"timestamp"`
}

// Reconstructor answers point-in-time slot queries.
type Reconstructor struct {
	store *eventlog.Store
}

// New returns a Reconstructor over store.
func New(store *eventlog.Store) *Reconstructor { return &Reconstructor{store: store} }

// SnapshotAt densifies the rows at t against the slot registry. Slots without
// a row at t are reported vacant.
func (r *Reconstructor) SnapshotAt(t time.Time) ([]SlotSnapshot, error) {
	rows, err := r.slotRows(t)
	if err != nil {
		return nil, err
	}
	slots := r.store.Registry().Slots()
	out := make([]SlotSnapshot, len(slots))
	for i, sl := range slots {
		snap := SlotSnapshot{SlotID: sl.ID, X: sl.X, Y: sl.Y}
		if o, ok := rows[sl.ID]; ok {
			snap.Occupied = o.Occupied()
			snap.Plate = o.PlateNumber
			snap.Service = o.Service
		}
		out[i] = snap
	}
	return out, nil
}

// StatsAt counts distinct occupied slots at t.
func (r *Reconstructor) StatsAt(t time.Time) (Stats, error) {
	if !r.store.HasTimestamp(t) {
		return Stats{}, notFound(t)
	}
	occupied := OccupiedSlots(r.store.At(t))
	total := r.store.Registry().Len()
	return Stats{TotalSlots: total, Occupied: occupied, Vacant: total - occupied}, nil
}

// SlotsByPlate lists every registry slot with its plate at t, by slot id.
func (r *Reconstructor) SlotsByPlate(t time.Time) ([]SlotPlate, error) {
	rows, err := r.slotRows(t)
	if err != nil {
		return nil, err
	}
	ts := model.FormatTimestamp(t)
	slots := r.store.Registry().Slots()
	out := make([]SlotPlate, len(slots))
	for i, sl := range slots {
		sp := SlotPlate{SlotID: sl.ID, Timestamp: ts}
		if o, ok := rows[sl.ID]; ok {
			sp.Plate = o.PlateNumber
			sp.Service = o.Service
			sp.Occupied = o.Occupied()
		}
		out[i] = sp
	}
	return out, nil
}

// OccupiedSlots counts distinct slot ids with a plate among rows.
func OccupiedSlots(rows []model.Observation) int {
	seen := make(map[model.SlotID]struct{})
	for _, o := range rows {
		if o.Occupied() {
			seen[o.SlotID] = struct{}{}
		}
	}
	return len(seen)
}

// slotRows maps each slot to its row at t. When a slot has duplicate rows the
// first occupied one wins, so snapshots agree with StatsAt.
func (r *Reconstructor) slotRows(t time.Time) (map[model.SlotID]model.Observation, error) {
	if !r.store.HasTimestamp(t) {
		return nil, notFound(t)
	}
	rows := r.store.At(t)
	out := make(map[model.SlotID]model.Observation, len(rows))
	for _, o := range rows {
		prev, ok := out[o.SlotID]
		if !ok || (!prev.Occupied() && o.Occupied()) {
			out[o.SlotID] = o
		}
	}
	return out, nil
}

func notFound(t time.Time) error {
	return fmt.Errorf("%w: %s", model.ErrNotFound, model.FormatTimestamp(t))
}
