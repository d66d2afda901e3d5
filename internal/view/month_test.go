package view

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"monthcal/internal/agenda"
	"monthcal/internal/calendar"
	"monthcal/internal/model"
)

func feb(day int) calendar.Date {
	return calendar.Date{Year: 2024, Month: time.February, Day: day}
}

func sampleIndex() *agenda.Index {
	return agenda.BuildIndex([]model.Event{
		{Date: "2024-02-10", Title: "Standup", Time: "10:00"},
		{Date: "2024-02-10", Title: "Dentist", Time: "10:00"},
		{Date: "2024-02-10", Title: "Lunch", Time: "11:00"},
		{Date: "2024-01-30", Title: "Padding day"},
		// Five events: two visible, conflicts only among hidden ones.
		{Date: "2024-02-20", Title: "A", Time: "08:00"},
		{Date: "2024-02-20", Title: "B", Time: "09:00"},
		{Date: "2024-02-20", Title: "C", Time: "15:00"},
		{Date: "2024-02-20", Title: "D", Time: "15:00"},
		{Date: "2024-02-20", Title: "E", Time: "08:00"},
	})
}

func findDay(t *testing.T, m Month, d calendar.Date) Day {
	t.Helper()
	for _, day := range m.Days() {
		if day.Date == d {
			return day
		}
	}
	t.Fatalf("day %v not in month view", d)
	return Day{}
}

func TestBuildMonthLayout(t *testing.T) {
	m := BuildMonth(feb(1), feb(14), sampleIndex(), 3)

	if m.Label != "February 2024" || m.Prev != "2024-01" || m.Next != "2024-03" {
		t.Errorf("header = %q prev=%q next=%q", m.Label, m.Prev, m.Next)
	}
	if m.Weekdays[0] != "Sun" {
		t.Errorf("weekdays = %v", m.Weekdays)
	}
	if len(m.Weeks) != 5 {
		t.Fatalf("weeks = %d, want 5", len(m.Weeks))
	}

	inMonth, today := 0, 0
	for _, d := range m.Days() {
		if d.InMonth {
			inMonth++
		}
		if d.IsToday {
			today++
			if d.Date != feb(14) {
				t.Errorf("today flag on %v", d.Date)
			}
		}
	}
	if inMonth != 29 || today != 1 {
		t.Errorf("inMonth=%d today=%d", inMonth, today)
	}

	padding := findDay(t, m, calendar.Date{Year: 2024, Month: time.January, Day: 30})
	if padding.InMonth || padding.Total != 1 {
		t.Errorf("padding day = %+v", padding)
	}
	if m.Total != 8 {
		t.Errorf("in-month total = %d, want 8", m.Total)
	}
}

func TestBuildMonthConflicts(t *testing.T) {
	m := BuildMonth(feb(1), feb(1), sampleIndex(), 3)

	day := findDay(t, m, feb(10))
	var flags []bool
	for _, e := range day.Events {
		flags = append(flags, e.Conflict)
	}
	if !reflect.DeepEqual(flags, []bool{true, true, false}) {
		t.Errorf("conflict flags = %v", flags)
	}
	if day.More != 0 {
		t.Errorf("More = %d", day.More)
	}
}

func TestBuildMonthHiddenConflictsStayHidden(t *testing.T) {
	m := BuildMonth(feb(1), feb(1), sampleIndex(), 2)
	day := findDay(t, m, feb(20))

	if len(day.Events) != 2 || day.More != 3 || day.Total != 5 {
		t.Fatalf("cell = %d visible, %d more, %d total", len(day.Events), day.More, day.Total)
	}
	// A (08:00) conflicts with hidden E, so it is flagged; B has no partner.
	if !day.Events[0].Conflict || day.Events[1].Conflict {
		t.Errorf("flags = %v, %v", day.Events[0].Conflict, day.Events[1].Conflict)
	}
}

func TestBuildMonthNilIndex(t *testing.T) {
	m := BuildMonth(feb(1), feb(1), nil, 0)
	for _, d := range m.Days() {
		if d.Total != 0 || len(d.Events) != 0 {
			t.Fatalf("unexpected events on %v", d.Date)
		}
	}
}

func TestBuildDay(t *testing.T) {
	detail := BuildDay(feb(20), sampleIndex())
	if len(detail.Events) != 5 {
		t.Fatalf("events = %d", len(detail.Events))
	}
	if !reflect.DeepEqual(detail.Conflicts, []int{0, 2, 3, 4}) {
		t.Errorf("conflicts = %v", detail.Conflicts)
	}
	if !reflect.DeepEqual(detail.Groups, map[string][]int{"08:00": {0, 4}, "15:00": {2, 3}}) {
		t.Errorf("groups = %v", detail.Groups)
	}

	empty := BuildDay(feb(2), sampleIndex())
	if empty.Events == nil || len(empty.Conflicts) != 0 || empty.Groups != nil {
		t.Errorf("empty day = %+v", empty)
	}
}

func TestMonthJSON(t *testing.T) {
	m := BuildMonth(feb(1), feb(10), sampleIndex(), 3)
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"ref":"2024-02-01"`, `"label":"February 2024"`, `"date":"2024-02-10"`, `"conflict":true`, `"title":"Standup"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s", want)
		}
	}
}
