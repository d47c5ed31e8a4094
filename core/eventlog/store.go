// Package eventlog holds the immutable observation log and the indices
// derived from it at load time.
package eventlog

import (
	"slices"
	"time"

	"github.com/kilianp07/rideslots/core/model"
)

// Store is the loaded event log. It is built once and never mutated, so all
// methods are safe for concurrent use without locking.
type Store struct {
	rows          []model.Observation
	byTime        map[instant][]int
	bySlot        map[model.SlotID][]int
	byPlate       map[string][]int
	byReservation map[string][]int

	registry *Registry
	times    *TimeIndex
}

// New indexes rows in a single pass. Row order is preserved and Row is
// rewritten to each observation's position.
func New(rows []model.Observation) *Store {
	s := &Store{
		rows:          make([]model.Observation, len(rows)),
		byTime:        make(map[instant][]int),
		bySlot:        make(map[model.SlotID][]int),
		byPlate:       make(map[string][]int),
		byReservation: make(map[string][]int),
	}
	for i, o := range rows {
		o.Row = i
		s.rows[i] = o
		k := timeKey(o.Timestamp)
		s.byTime[k] = append(s.byTime[k], i)
		s.bySlot[o.SlotID] = append(s.bySlot[o.SlotID], i)
		if o.PlateNumber != nil {
			s.byPlate[*o.PlateNumber] = append(s.byPlate[*o.PlateNumber], i)
		}
		if o.ReservationID != nil {
			s.byReservation[*o.ReservationID] = append(s.byReservation[*o.ReservationID], i)
		}
	}
	s.registry = newRegistry(s.rows)
	s.times = newTimeIndex(s.rows)
	return s
}

// instant identifies a sampling time independently of location and
// monotonic reading. It covers the whole time.Time range, unlike UnixNano.
type instant struct {
	sec  int64
	nsec int
}

func timeKey(t time.Time) instant { return instant{sec: t.Unix(), nsec: t.Nanosecond()} }

// Len returns the number of rows.
func (s *Store) Len() int { return len(s.rows) }

// Row returns the i-th observation.
func (s *Store) Row(i int) model.Observation { return s.rows[i] }

// Rows returns a copy of every observation in source order.
func (s *Store) Rows() []model.Observation { return slices.Clone(s.rows) }

// Each calls fn for every row in source order without copying the log.
func (s *Store) Each(fn func(model.Observation)) {
	for _, o := range s.rows {
		fn(o)
	}
}

// At returns the rows sampled at t in source order.
func (s *Store) At(t time.Time) []model.Observation { return s.pick(s.byTime[timeKey(t)]) }

// BySlot returns every row recorded for the slot.
func (s *Store) BySlot(id model.SlotID) []model.Observation { return s.pick(s.bySlot[id]) }

// ByPlate returns every row on which the plate was recorded.
func (s *Store) ByPlate(plate string) []model.Observation { return s.pick(s.byPlate[plate]) }

// ByReservation returns every row carrying the reservation id.
func (s *Store) ByReservation(id string) []model.Observation {
	return s.pick(s.byReservation[id])
}

// HasTimestamp reports whether any row was sampled at t.
func (s *Store) HasTimestamp(t time.Time) bool { return s.times.Contains(t) }

// HasReservations reports whether the source populated reservation ids at all.
func (s *Store) HasReservations() bool { return len(s.byReservation) > 0 }

// Plates returns the number of distinct plates in the log.
func (s *Store) Plates() int { return len(s.byPlate) }

// Reservations returns the number of distinct reservation ids in the log.
func (s *Store) Reservations() int { return len(s.byReservation) }

// Registry exposes the slot registry derived at load.
func (s *Store) Registry() *Registry { return s.registry }

// Timestamps exposes the timestamp index derived at load.
func (s *Store) Timestamps() *TimeIndex { return s.times }

func (s *Store) pick(idx []int) []model.Observation {
	out := make([]model.Observation, len(idx))
	for i, j := range idx {
		out[i] = s.rows[j]
	}
	return out
}
