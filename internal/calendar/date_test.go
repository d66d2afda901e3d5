package calendar

import (
	"errors"
	"testing"
	"time"
)

func TestNewDateNormalizes(t *testing.T) {
	got := NewDate(2024, time.January, 32)
	want := Date{Year: 2024, Month: time.February, Day: 1}
	if got != want {
		t.Errorf("NewDate(2024-01-32) = %v, want %v", got, want)
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2024-02-10", want: Date{2024, time.February, 10}},
		{in: "2024-02-29", want: Date{2024, time.February, 29}},
		{in: "2023-02-29", wantErr: true},
		{in: "2024-2-10", wantErr: true},
		{in: "", wantErr: true},
		{in: "2024-02-10T10:00", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseKey(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidKey) {
				t.Errorf("ParseKey(%q) error = %v, want ErrInvalidKey", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseKey(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKey(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if got.Key() != tt.in {
			t.Errorf("Key() round trip = %q, want %q", got.Key(), tt.in)
		}
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2024-02")
	if err != nil {
		t.Fatalf("ParseMonth: %v", err)
	}
	if got != (Date{2024, time.February, 1}) {
		t.Errorf("ParseMonth = %v", got)
	}
	if got.MonthKey() != "2024-02" {
		t.Errorf("MonthKey = %q", got.MonthKey())
	}
	if _, err := ParseMonth("2024-13"); err == nil {
		t.Error("expected error for month 13")
	}
}

func TestAddMonthsClampsDay(t *testing.T) {
	tests := []struct {
		from Date
		n    int
		want Date
	}{
		{Date{2024, time.January, 31}, 1, Date{2024, time.February, 29}},
		{Date{2023, time.January, 31}, 1, Date{2023, time.February, 28}},
		{Date{2024, time.March, 31}, -1, Date{2024, time.February, 29}},
		{Date{2024, time.December, 15}, 1, Date{2025, time.January, 15}},
		{Date{2024, time.January, 15}, -1, Date{2023, time.December, 15}},
		{Date{2024, time.February, 29}, 12, Date{2025, time.February, 28}},
	}

	for _, tt := range tests {
		if got := tt.from.AddMonths(tt.n); got != tt.want {
			t.Errorf("%v.AddMonths(%d) = %v, want %v", tt.from, tt.n, got, tt.want)
		}
	}
}

func TestWeekBoundaries(t *testing.T) {
	// 2024-02-01 is a Thursday.
	d := Date{2024, time.February, 1}
	if got := d.StartOfWeek(); got != (Date{2024, time.January, 28}) {
		t.Errorf("StartOfWeek = %v", got)
	}
	if got := d.EndOfWeek(); got != (Date{2024, time.February, 3}) {
		t.Errorf("EndOfWeek = %v", got)
	}

	// A Sunday is its own week start.
	sunday := Date{2024, time.September, 1}
	if sunday.Weekday() != time.Sunday {
		t.Fatalf("fixture is not a Sunday: %v", sunday.Weekday())
	}
	if got := sunday.StartOfWeek(); got != sunday {
		t.Errorf("StartOfWeek(Sunday) = %v, want %v", got, sunday)
	}
}

func TestMonthBoundaries(t *testing.T) {
	d := Date{2024, time.February, 17}
	if got := d.StartOfMonth(); got != (Date{2024, time.February, 1}) {
		t.Errorf("StartOfMonth = %v", got)
	}
	if got := d.EndOfMonth(); got != (Date{2024, time.February, 29}) {
		t.Errorf("EndOfMonth = %v", got)
	}
	if got := (Date{1900, time.February, 3}).EndOfMonth(); got.Day != 28 {
		t.Errorf("1900 is not a leap year, got %v", got)
	}
}

func TestCompare(t *testing.T) {
	a := Date{2023, time.December, 31}
	b := Date{2024, time.January, 1}
	if !a.Before(b) || !b.After(a) || a.Compare(a) != 0 {
		t.Errorf("ordering broken for %v and %v", a, b)
	}
	if !a.SameMonth(Date{2023, time.December, 1}) || a.SameMonth(b) {
		t.Error("SameMonth mismatch")
	}
	if a.DaysUntil(b) != 1 || b.DaysUntil(a) != -1 {
		t.Errorf("DaysUntil = %d / %d", a.DaysUntil(b), b.DaysUntil(a))
	}
}

func TestTextMarshalling(t *testing.T) {
	var d Date
	if err := d.UnmarshalText([]byte("2024-02-10")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	b, _ := d.MarshalText()
	if string(b) != "2024-02-10" {
		t.Errorf("MarshalText = %s", b)
	}
	if err := d.UnmarshalText([]byte("nope")); err == nil {
		t.Error("expected error for malformed key")
	}
}
