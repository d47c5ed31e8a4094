package model

import "time"

// Observation is one row of the event log: the state of a slot at a sampled
// instant. Nil occupancy fields mean the value was absent in the source.
type Observation struct {
	// Row is the zero-based position of the row in the source.
	Row           int
	Timestamp     time.Time
	SlotID        SlotID
	X             *float64
	Y             *float64
	ReservationID *string
	RiderID       *string
	DriverID      *string
	PlateNumber   *string
	Service       *string
}

// Occupied reports whether a vehicle plate was recorded on the row.
func (o Observation) Occupied() bool { return o.PlateNumber != nil }
