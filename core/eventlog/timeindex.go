package eventlog

import (
	"slices"
	"time"

	"github.com/kilianp07/rideslots/core/model"
)

// TimeIndex is the sorted set of distinct sampling instants.
type TimeIndex struct {
	ts  []time.Time
	pos map[instant]int
}

func newTimeIndex(rows []model.Observation) *TimeIndex {
	seen := make(map[instant]struct{})
	var ts []time.Time
	for _, o := range rows {
		k := timeKey(o.Timestamp)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		ts = append(ts, o.Timestamp)
	}
	slices.SortFunc(ts, time.Time.Compare)
	idx := &TimeIndex{ts: ts, pos: make(map[instant]int, len(ts))}
	for i, t := range ts {
		idx.pos[timeKey(t)] = i
	}
	return idx
}

// Len returns the number of distinct timestamps.
func (x *TimeIndex) Len() int { return len(x.ts) }

// All returns the timestamps in ascending order.
func (x *TimeIndex) All() []time.Time { return slices.Clone(x.ts) }

// At returns the i-th timestamp.
func (x *TimeIndex) At(i int) time.Time { return x.ts[i] }

// Contains reports whether t is a sampled instant.
func (x *TimeIndex) Contains(t time.Time) bool {
	_, ok := x.pos[timeKey(t)]
	return ok
}

// Position returns the rank of t in the index.
func (x *TimeIndex) Position(t time.Time) (int, bool) {
	i, ok := x.pos[timeKey(t)]
	return i, ok
}

// Strings renders every timestamp as ISO-8601.
func (x *TimeIndex) Strings() []string {
	out := make([]string, len(x.ts))
	for i, t := range x.ts {
		out[i] = model.FormatTimestamp(t)
	}
	return out
}
