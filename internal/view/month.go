// Package view turns the month grid and the agenda index into the data a
// renderer draws: day cells with their visible events, conflict flags and
// overflow counts.
package view

import (
	"monthcal/internal/agenda"
	"monthcal/internal/calendar"
	"monthcal/internal/model"
)

// LabelLayout formats the month heading.
const LabelLayout = "January 2006"

// Entry is one event as drawn in a day cell.
type Entry struct {
	model.Event
	Conflict bool `json:"conflict"`
}

// Day is one grid cell.
type Day struct {
	Date    calendar.Date `json:"date"`
	Number  int           `json:"number"`
	InMonth bool          `json:"in_month"`
	IsToday bool          `json:"is_today"`
	// Events are the visible entries, at most the configured cap.
	Events []Entry `json:"events"`
	// More is the number of events hidden behind the cap.
	More  int `json:"more"`
	Total int `json:"total"`
}

// Month is a whole month view.
type Month struct {
	Ref      calendar.Date `json:"ref"`
	Label    string        `json:"label"`
	Prev     string        `json:"prev"`
	Next     string        `json:"next"`
	Weekdays [7]string     `json:"weekdays"`
	Weeks    [][]Day       `json:"weeks"`
	Total    int           `json:"total"`
}

// BuildMonth lays out ref's month. Conflicts are detected over each day's
// full event list, but only entries inside the visible cap carry a flag;
// hidden events never surface a conflict.
func BuildMonth(ref, today calendar.Date, idx *agenda.Index, maxVisible int) Month {
	if maxVisible <= 0 {
		maxVisible = 1
	}

	matrix := calendar.BuildMonthMatrix(ref)
	m := Month{
		Ref:      ref,
		Label:    ref.Format(LabelLayout),
		Prev:     ref.AddMonths(-1).MonthKey(),
		Next:     ref.AddMonths(1).MonthKey(),
		Weekdays: calendar.WeekdayLabels,
		Weeks:    make([][]Day, 0, len(matrix)),
	}

	for _, week := range matrix {
		row := make([]Day, 0, len(week))
		for _, d := range week {
			cell := buildDay(d, idx.On(d), maxVisible)
			cell.InMonth = d.SameMonth(ref)
			cell.IsToday = d.SameDay(today)
			if cell.InMonth {
				m.Total += cell.Total
			}
			row = append(row, cell)
		}
		m.Weeks = append(m.Weeks, row)
	}
	return m
}

func buildDay(d calendar.Date, events []model.Event, maxVisible int) Day {
	conflicts := agenda.DetectConflicts(events)

	visible := min(len(events), maxVisible)
	entries := make([]Entry, 0, visible)
	for i, ev := range events[:visible] {
		entries = append(entries, Entry{Event: ev, Conflict: conflicts.Has(i)})
	}

	return Day{
		Date:   d,
		Number: d.Day,
		Events: entries,
		More:   len(events) - visible,
		Total:  len(events),
	}
}

// Days returns all cells in grid order.
func (m Month) Days() []Day {
	out := make([]Day, 0, len(m.Weeks)*7)
	for _, w := range m.Weeks {
		out = append(out, w...)
	}
	return out
}

// DayDetail is the unabridged event list of a single day.
type DayDetail struct {
	Date      calendar.Date    `json:"date"`
	Events    []model.Event    `json:"events"`
	Conflicts []int            `json:"conflicts"`
	Groups    map[string][]int `json:"groups,omitempty"`
}

// BuildDay returns every event of d with its conflicting indices.
func BuildDay(d calendar.Date, idx *agenda.Index) DayDetail {
	events := idx.On(d)
	if events == nil {
		events = []model.Event{}
	}
	groups := agenda.ConflictGroups(events)
	if len(groups) == 0 {
		groups = nil
	}
	return DayDetail{
		Date:      d,
		Events:    events,
		Conflicts: agenda.DetectConflicts(events).Indices(),
		Groups:    groups,
	}
}
