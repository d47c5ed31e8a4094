// Package eventlogtest builds small in-memory event logs for tests.
package eventlogtest

import (
	"fmt"
	"time"

	"github.com/kilianp07/rideslots/core/eventlog"
	"github.com/kilianp07/rideslots/core/model"
)

// Fixture timestamps used by Fleet.
const (
	T0 = "2024-01-01T08:00:00"
	T1 = "2024-01-01T08:15:00"
	T2 = "2024-01-01T08:30:00"
)

// Builder accumulates observations in row order.
type Builder struct {
	rows []model.Observation
}

// New returns an empty Builder.
func New() *Builder { return &Builder{} }

// Vacant appends an empty slot row.
func (b *Builder) Vacant(ts string, slot any, x, y float64) *Builder {
	return b.Add(model.Observation{Timestamp: MustTime(ts), SlotID: ID(slot), X: Float(x), Y: Float(y)})
}

// Occupied appends a row with a plate and service.
func (b *Builder) Occupied(ts string, slot any, x, y float64, plate, service string) *Builder {
	return b.Add(model.Observation{
		Timestamp:   MustTime(ts),
		SlotID:      ID(slot),
		X:           Float(x),
		Y:           Float(y),
		PlateNumber: Str(plate),
		Service:     Str(service),
	})
}

// Reserved appends an occupied row that also carries a reservation id.
func (b *Builder) Reserved(ts string, slot any, x, y float64, plate, service, reservation string) *Builder {
	return b.Add(model.Observation{
		Timestamp:     MustTime(ts),
		SlotID:        ID(slot),
		X:             Float(x),
		Y:             Float(y),
		PlateNumber:   Str(plate),
		Service:       Str(service),
		ReservationID: Str(reservation),
	})
}

// Add appends an arbitrary observation.
func (b *Builder) Add(o model.Observation) *Builder {
	o.Row = len(b.rows)
	b.rows = append(b.rows, o)
	return b
}

// Observations returns the accumulated rows.
func (b *Builder) Observations() []model.Observation { return b.rows }

// Store indexes the accumulated rows.
func (b *Builder) Store() *eventlog.Store { return eventlog.New(b.rows) }

// Fleet is a three-slot, three-timestamp log:
//
//	T0: 1=A/Uber/R1  2=vacant       3=B/Lyft
//	T1: 1=A/Uber/R1  2=C/Uber/R2    3=vacant   (slot 1 recorded at x=1.5)
//	T2: 1=B/Lyft     2=C/Uber/R2    (no row for slot 3)
func Fleet() *Builder {
	return New().
		Reserved(T0, 1, 1, 1, "A", "Uber", "R1").
		Vacant(T0, 2, 2, 2).
		Occupied(T0, 3, 3, 3, "B", "Lyft").
		Reserved(T1, 1, 1.5, 1, "A", "Uber", "R1").
		Reserved(T1, 2, 2, 2, "C", "Uber", "R2").
		Vacant(T1, 3, 3, 3).
		Occupied(T2, 1, 1, 1, "B", "Lyft").
		Reserved(T2, 2, 2, 2, "C", "Uber", "R2")
}

// MustTime parses ts or panics.
func MustTime(ts string) time.Time {
	t, err := model.ParseTimestamp(ts)
	if err != nil {
		panic(err)
	}
	return t
}

// ID converts an int or string into a slot id.
func ID(v any) model.SlotID {
	switch id := v.(type) {
	case int:
		return model.IntSlot(int64(id))
	case int64:
		return model.IntSlot(id)
	case string:
		return model.StringSlot(id)
	case model.SlotID:
		return id
	default:
		panic(fmt.Sprintf("unsupported slot id %T", v))
	}
}

// Str returns a pointer to s.
func Str(s string) *string { return &s }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }
