// Package timeline tracks when each vehicle and reservation was first and
// last observed.
package timeline

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kilianp07/rideslots/core/eventlog"
	"github.com/kilianp07/rideslots/core/model"
)

// Span is the observed lifetime of an entity.
type Span struct {
	First time.Time
	Last  time.Time
}

// Minutes returns the span length in minutes; a single sighting is 0.
func (s Span) Minutes() float64 { return s.Last.Sub(s.First).Seconds() / 60 }

func (s *Span) extend(t time.Time) {
	if t.Before(s.First) {
		s.First = t
	}
	if t.After(s.Last) {
		s.Last = t
	}
}

// Presence describes a vehicle occupying a slot at a query instant.
type Presence struct {
	Plate   string
	Service *string
	X       *float64
	Y       *float64
	Entry   time.Time
	// DwellMinutes is the time elapsed since Entry, in minutes.
	DwellMinutes float64
}

// Index holds first/last sightings for every plate and reservation. A plate
// that disappears and reappears is one continuous entity.
type Index struct {
	store        *eventlog.Store
	plates       map[string]*Span
	plateOrder   []string
	reservations map[string]*Span
	resOrder     []string
}

// New scans store once.
func New(store *eventlog.Store) *Index {
	ix := &Index{
		store:        store,
		plates:       make(map[string]*Span),
		reservations: make(map[string]*Span),
	}
	store.Each(func(o model.Observation) {
		if o.PlateNumber != nil {
			ix.plateOrder = track(ix.plates, ix.plateOrder, *o.PlateNumber, o.Timestamp)
		}
		if o.ReservationID != nil {
			ix.resOrder = track(ix.reservations, ix.resOrder, *o.ReservationID, o.Timestamp)
		}
	})
	sort.Strings(ix.plateOrder)
	sort.Strings(ix.resOrder)
	return ix
}

func track(m map[string]*Span, order []string, key string, t time.Time) []string {
	if sp, ok := m[key]; ok {
		sp.extend(t)
		return order
	}
	m[key] = &Span{First: t, Last: t}
	return append(order, key)
}

// Vehicle returns the span of a plate.
func (ix *Index) Vehicle(plate string) (Span, bool) {
	sp, ok := ix.plates[plate]
	if !ok {
		return Span{}, false
	}
	return *sp, true
}

// Reservation returns the span of a reservation id.
func (ix *Index) Reservation(id string) (Span, bool) {
	sp, ok := ix.reservations[id]
	if !ok {
		return Span{}, false
	}
	return *sp, true
}

// Vehicles returns the number of distinct plates.
func (ix *Index) Vehicles() int { return len(ix.plateOrder) }

// Reservations returns the number of distinct reservation ids.
func (ix *Index) Reservations() int { return len(ix.resOrder) }

// DwellMinutes returns the dwell time of every plate, ordered by plate.
func (ix *Index) DwellMinutes() []float64 { return minutes(ix.plates, ix.plateOrder) }

// ReservationMinutes returns the duration of every reservation, ordered by id.
func (ix *Index) ReservationMinutes() []float64 { return minutes(ix.reservations, ix.resOrder) }

func minutes(m map[string]*Span, order []string) []float64 {
	out := make([]float64, len(order))
	for i, k := range order {
		out[i] = m[k].Minutes()
	}
	return out
}

// PlatesAt returns the distinct plates on rows at t, in row order.
func (ix *Index) PlatesAt(t time.Time) []string {
	return distinct(ix.store.At(t), func(o model.Observation) *string { return o.PlateNumber })
}

// ReservationsAt returns the distinct reservation ids on rows at t.
func (ix *Index) ReservationsAt(t time.Time) []string {
	return distinct(ix.store.At(t), func(o model.Observation) *string { return o.ReservationID })
}

func distinct(rows []model.Observation, key func(model.Observation) *string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range rows {
		k := key(o)
		if k == nil {
			continue
		}
		if _, ok := seen[*k]; ok {
			continue
		}
		seen[*k] = struct{}{}
		out = append(out, *k)
	}
	return out
}

// VehiclesAt lists the vehicles present at t with the time elapsed since their
// global first sighting, earliest entry first. When a plate occupies several
// slots, its first row at t is used.
func (ix *Index) VehiclesAt(t time.Time) ([]Presence, error) {
	if !ix.store.HasTimestamp(t) {
		return nil, fmt.Errorf("%w: %s", model.ErrNotFound, model.FormatTimestamp(t))
	}
	seen := make(map[string]struct{})
	var out []Presence
	for _, o := range ix.store.At(t) {
		if o.PlateNumber == nil {
			continue
		}
		plate := *o.PlateNumber
		if _, ok := seen[plate]; ok {
			continue
		}
		seen[plate] = struct{}{}
		entry := ix.plates[plate].First
		out = append(out, Presence{
			Plate:        plate,
			Service:      o.Service,
			X:            o.X,
			Y:            o.Y,
			Entry:        entry,
			DwellMinutes: math.Round(t.Sub(entry).Seconds()/60*10) / 10,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Entry.Before(out[j].Entry) })
	return out, nil
}
