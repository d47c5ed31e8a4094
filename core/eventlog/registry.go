package eventlog

import (
	"slices"
	"sort"

	"github.com/kilianp07/rideslots/core/model"
)

// Slot is a registry entry: a slot id and its canonical position.
type Slot struct {
	ID model.SlotID
	X  *float64
	Y  *float64
}

// Registry lists every slot seen in the log, ordered by id. Its content is
// fixed at load.
type Registry struct {
	slots []Slot
	pos   map[model.SlotID]int
}

// newRegistry derives canonical positions: rows are stably sorted by
// timestamp and the first non-null coordinate of each slot wins.
func newRegistry(rows []model.Observation) *Registry {
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rows[order[a]].Timestamp.Before(rows[order[b]].Timestamp)
	})

	first := make(map[model.SlotID]*Slot)
	var ids []model.SlotID
	for _, i := range order {
		o := rows[i]
		sl, ok := first[o.SlotID]
		if !ok {
			sl = &Slot{ID: o.SlotID}
			first[o.SlotID] = sl
			ids = append(ids, o.SlotID)
		}
		if sl.X == nil && o.X != nil {
			x := *o.X
			sl.X = &x
		}
		if sl.Y == nil && o.Y != nil {
			y := *o.Y
			sl.Y = &y
		}
	}
	slices.SortFunc(ids, model.SlotID.Compare)

	r := &Registry{slots: make([]Slot, len(ids)), pos: make(map[model.SlotID]int, len(ids))}
	for i, id := range ids {
		r.slots[i] = *first[id]
		r.pos[id] = i
	}
	return r
}

// Len returns the total slot count.
func (r *Registry) Len() int { return len(r.slots) }

// Slots returns the registry in id order.
func (r *Registry) Slots() []Slot { return slices.Clone(r.slots) }

// Lookup returns the registry entry for id.
func (r *Registry) Lookup(id model.SlotID) (Slot, bool) {
	i, ok := r.pos[id]
	if !ok {
		return Slot{}, false
	}
	return r.slots[i], true
}
