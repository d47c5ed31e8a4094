package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SlotID identifies a slot. Sources carry either integer or string ids; an
// integer id keeps its numeric form on the wire.
type SlotID struct {
	num   int64
	str   string
	isNum bool
}

// IntSlot returns a numeric slot id.
func IntSlot(n int64) SlotID { return SlotID{num: n, isNum: true} }

// StringSlot returns a textual slot id.
func StringSlot(s string) SlotID { return SlotID{str: s} }

// ParseSlotID interprets a raw cell. Integral numbers (including "3.0") become
// numeric ids, anything else is kept verbatim.
func ParseSlotID(raw string) (SlotID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return SlotID{}, fmt.Errorf("empty slot id")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntSlot(n), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return IntSlot(int64(f)), nil
	}
	return StringSlot(s), nil
}

// IsNumeric reports whether the id is an integer id.
func (s SlotID) IsNumeric() bool { return s.isNum }

func (s SlotID) String() string {
	if s.isNum {
		return strconv.FormatInt(s.num, 10)
	}
	return s.str
}

// Less orders numeric ids by value before textual ids, which sort lexically.
func (s SlotID) Less(o SlotID) bool {
	switch {
	case s.isNum && o.isNum:
		return s.num < o.num
	case s.isNum != o.isNum:
		return s.isNum
	default:
		return s.str < o.str
	}
}

// Compare returns -1, 0 or +1 following Less.
func (s SlotID) Compare(o SlotID) int {
	switch {
	case s.Less(o):
		return -1
	case o.Less(s):
		return 1
	default:
		return 0
	}
}

func (s SlotID) MarshalJSON() ([]byte, error) {
	if s.isNum {
		return []byte(strconv.FormatInt(s.num, 10)), nil
	}
	return json.Marshal(s.str)
}

// MarshalYAML keeps numeric ids as YAML integers.
func (s SlotID) MarshalYAML() (any, error) {
	if s.isNum {
		return s.num, nil
	}
	return s.str, nil
}

func (s *SlotID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = StringSlot(str)
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("slot id %s: %w", b, err)
	}
	*s = IntSlot(n)
	return nil
}
