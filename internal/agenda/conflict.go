package agenda

import (
	"slices"

	"monthcal/internal/model"
)

// ConflictSet holds positions within one day's event list that share their
// time label with at least one other event of that day.
type ConflictSet map[int]struct{}

func (c ConflictSet) Has(i int) bool {
	_, ok := c[i]
	return ok
}

func (c ConflictSet) Len() int { return len(c) }

// Indices returns the members in ascending order.
func (c ConflictSet) Indices() []int {
	out := make([]int, 0, len(c))
	for i := range c {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// DetectConflicts compares every pair of events of a single day and marks
// both when their time labels are non-empty and equal. Labels are compared
// as exact strings; "14:00" and "14:00 " do not collide.
func DetectConflicts(day []model.Event) ConflictSet {
	conflicts := ConflictSet{}
	if len(day) < 2 {
		return conflicts
	}

	for i := 0; i < len(day); i++ {
		for j := i + 1; j < len(day); j++ {
			a, b := day[i], day[j]
			if a.HasTime() && b.HasTime() && a.Time == b.Time {
				conflicts[i] = struct{}{}
				conflicts[j] = struct{}{}
			}
		}
	}
	return conflicts
}

// ConflictGroups buckets a day's events by time label and returns only the
// buckets holding two or more events. Its union equals DetectConflicts(day)
// but it runs in linear time and tells which events collide together.
func ConflictGroups(day []model.Event) map[string][]int {
	byTime := make(map[string][]int)
	for i, ev := range day {
		if !ev.HasTime() {
			continue
		}
		byTime[ev.Time] = append(byTime[ev.Time], i)
	}

	for label, idxs := range byTime {
		if len(idxs) < 2 {
			delete(byTime, label)
		}
	}
	return byTime
}
