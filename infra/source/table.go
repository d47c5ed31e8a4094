// Package source reads the observation log from tabular files.
package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kilianp07/rideslots/core/model"
)

// Columns every source has to provide.
const (
	ColCurrentTime   = "current_time"
	ColSlotID        = "slot_id"
	ColX             = "x"
	ColY             = "y"
	ColReservationID = "reservation_id"
	ColRiderID       = "rider_id"
	ColDriverID      = "driver_id"
	ColPlateNumber   = "plate_number"
	ColService       = "service"
)

// RequiredColumns lists the column contract of the source data.
var RequiredColumns = []string{
	ColCurrentTime, ColSlotID, ColX, ColY, ColReservationID,
	ColRiderID, ColDriverID, ColPlateNumber, ColService,
}

// Markers read as missing values.
var nullMarkers = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "NaN": {}, "nan": {}, "NULL": {}, "null": {}, "None": {},
}

// Cell is one value of a table; nil means missing.
type Cell = *string

// Table is the raw content of a source before decoding.
type Table struct {
	Header []string
	Rows   [][]Cell
}

// TextCell wraps a raw string, mapping null markers to nil.
func TextCell(s string) Cell {
	if _, ok := nullMarkers[strings.TrimSpace(s)]; ok {
		return nil
	}
	return &s
}

// Decode validates the header and converts every row into an observation.
func (t Table) Decode() ([]model.Observation, error) {
	cols := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, c := range RequiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing required column %q", c)
		}
	}

	out := make([]model.Observation, 0, len(t.Rows))
	for i, row := range t.Rows {
		get := func(name string) Cell {
			j := cols[name]
			if j >= len(row) {
				return nil
			}
			return row[j]
		}
		o, err := decodeRow(get)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		o.Row = i
		out = append(out, o)
	}
	return out, nil
}

func decodeRow(get func(string) Cell) (model.Observation, error) {
	var o model.Observation
	raw := get(ColCurrentTime)
	if raw == nil {
		return o, fmt.Errorf("%w: empty %s", model.ErrInvalidTimestamp, ColCurrentTime)
	}
	ts, err := model.ParseTimestamp(*raw)
	if err != nil {
		return o, err
	}
	o.Timestamp = ts

	slot := get(ColSlotID)
	if slot == nil {
		return o, fmt.Errorf("empty %s", ColSlotID)
	}
	if o.SlotID, err = model.ParseSlotID(*slot); err != nil {
		return o, err
	}
	if o.X, err = number(get(ColX), ColX); err != nil {
		return o, err
	}
	if o.Y, err = number(get(ColY), ColY); err != nil {
		return o, err
	}
	o.ReservationID = text(get(ColReservationID))
	o.RiderID = text(get(ColRiderID))
	o.DriverID = text(get(ColDriverID))
	o.PlateNumber = text(get(ColPlateNumber))
	o.Service = text(get(ColService))
	return o, nil
}

func number(c Cell, col string) (*float64, error) {
	if c == nil {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*c), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", col, *c)
	}
	return &f, nil
}

// text normalises identifiers: surrounding blanks are dropped and integral
// floats such as "42.0" lose their fraction.
func text(c Cell) *string {
	if c == nil {
		return nil
	}
	s := strings.TrimSpace(*c)
	if strings.HasSuffix(s, ".0") {
		if _, err := strconv.ParseInt(strings.TrimSuffix(s, ".0"), 10, 64); err == nil {
			s = strings.TrimSuffix(s, ".0")
		}
	}
	return &s
}
