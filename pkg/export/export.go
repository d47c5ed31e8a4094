// Package export writes lot snapshots in interchange formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/rideslots/core/occupancy"
)

// CSVHeader is the first record written by WriteCSV.
var CSVHeader = []string{"slot_id", "x", "y", "occupied", "plate", "service"}

// WriteJSON writes the snapshot to w as a JSON array.
func WriteJSON(w io.Writer, slots []occupancy.SlotSnapshot) error {
	if slots == nil {
		slots = []occupancy.SlotSnapshot{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(slots)
}

// WriteYAML writes the snapshot to w as a YAML sequence. Missing values are null.
func WriteYAML(w io.Writer, slots []occupancy.SlotSnapshot) error {
	if slots == nil {
		slots = []occupancy.SlotSnapshot{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(slots); err != nil {
		return err
	}
	return enc.Close()
}

// WriteCSV writes the snapshot to w in CSV format. Missing values are empty
// fields.
func WriteCSV(w io.Writer, slots []occupancy.SlotSnapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, s := range slots {
		rec := []string{
			s.SlotID.String(),
			float(s.X),
			float(s.Y),
			strconv.FormatBool(s.Occupied),
			str(s.Plate),
			str(s.Service),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func float(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
