// Package agenda groups loaded events by day and finds same-day time
// conflicts.
package agenda

import (
	"slices"

	"monthcal/internal/calendar"
	"monthcal/internal/model"
)

// Index maps date keys to the events on that day. It is built once per load
// and never modified afterwards; a reload produces a new Index.
type Index struct {
	byDate map[string][]model.Event
	total  int
}

// BuildIndex groups events by their Date key in a single pass. Events sharing
// a key keep their relative input order.
func BuildIndex(events []model.Event) *Index {
	idx := &Index{
		byDate: make(map[string][]model.Event),
		total:  len(events),
	}
	for _, ev := range events {
		idx.byDate[ev.Date] = append(idx.byDate[ev.Date], ev)
	}
	return idx
}

// Lookup returns the events stored under key. Absent keys yield an empty
// slice. The result is a copy and may be modified by the caller.
func (x *Index) Lookup(key string) []model.Event {
	if x == nil {
		return nil
	}
	return slices.Clone(x.byDate[key])
}

// On returns the events for a calendar day.
func (x *Index) On(d calendar.Date) []model.Event {
	return x.Lookup(d.Key())
}

// Len is the number of indexed events.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return x.total
}

// Keys returns the distinct date keys in ascending order.
func (x *Index) Keys() []string {
	if x == nil {
		return nil
	}
	keys := make([]string, 0, len(x.byDate))
	for k := range x.byDate {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
