package calendar

import (
	"testing"
	"time"
)

func TestNavigatorTwelveStepsIsOneYear(t *testing.T) {
	starts := []Date{
		{2024, time.January, 31},
		{2024, time.February, 29},
		{2023, time.June, 15},
		{2025, time.December, 1},
	}

	for _, start := range starts {
		nav := NewNavigator(start)
		startLabel := nav.Label()
		for i := 0; i < 12; i++ {
			nav.Next()
		}

		want := start.Format("January ") + itoa(start.Year+1)
		if nav.Label() != want {
			t.Errorf("from %v: label after 12 steps = %q, want %q (started at %q)", start, nav.Label(), want, startLabel)
		}

		for i := 0; i < 12; i++ {
			nav.Prev()
		}
		if nav.Label() != startLabel {
			t.Errorf("from %v: label after returning = %q, want %q", start, nav.Label(), startLabel)
		}
	}
}

func TestNavigatorPrevNext(t *testing.T) {
	nav := NewNavigator(Date{2024, time.January, 10})

	if got := nav.Prev(); got != (Date{2023, time.December, 10}) {
		t.Errorf("Prev = %v", got)
	}
	if got := nav.Next(); got != (Date{2024, time.January, 10}) {
		t.Errorf("Next = %v", got)
	}
	if nav.Label() != "January 2024" {
		t.Errorf("Label = %q", nav.Label())
	}
	if !nav.Matrix().Contains(Date{2024, time.January, 31}) {
		t.Error("matrix does not contain January 31")
	}

	nav.Set(Date{2030, time.May, 5})
	if nav.Ref() != (Date{2030, time.May, 5}) {
		t.Errorf("Set/Ref = %v", nav.Ref())
	}
}

func TestNewNavigatorDefaultsToToday(t *testing.T) {
	nav := NewNavigator(Date{})
	if nav.Ref().IsZero() {
		t.Fatal("zero reference date")
	}
	if nav.Ref().DaysUntil(Today()) > 1 {
		t.Errorf("ref %v is not today", nav.Ref())
	}
}

func itoa(n int) string {
	return time.Date(n, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
}
