// Package calendar holds the date arithmetic and month grid used by every
// month view.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// KeyLayout is the canonical date key format, e.g. "2024-02-10".
const KeyLayout = "2006-01-02"

// MonthLayout is the format of month references in URLs and flags.
const MonthLayout = "2006-01"

// WeekStart is the fixed first column of every week row.
const WeekStart = time.Sunday

var ErrInvalidKey = errors.New("calendar: invalid date key")

// Date is a calendar day with no time component. Values are always
// normalized, so two Dates naming the same day compare equal with ==.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes out-of-range components the way time.Date does
// (e.g. January 32 becomes February 1).
func NewDate(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime takes the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the host's local calendar day.
func Today() Date {
	return FromTime(time.Now())
}

// ParseKey parses a "yyyy-mm-dd" key.
func ParseKey(s string) (Date, error) {
	t, err := time.Parse(KeyLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return FromTime(t), nil
}

// ParseMonth parses a "yyyy-mm" month reference into the first day of that
// month.
func ParseMonth(s string) (Date, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: month %q", ErrInvalidKey, s)
	}
	return FromTime(t), nil
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Key returns the canonical "yyyy-mm-dd" form used for event lookups.
func (d Date) Key() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MonthKey returns the "yyyy-mm" form of d's month.
func (d Date) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}

func (d Date) String() string { return d.Key() }

// Format formats d with a time layout, e.g. "January 2006".
func (d Date) Format(layout string) string {
	return d.utc().Format(layout)
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) Weekday() time.Weekday {
	return d.utc().Weekday()
}

func (d Date) AddDays(n int) Date {
	return FromTime(d.utc().AddDate(0, 0, n))
}

// AddMonths moves n months, clamping the day to the end of the target month
// (January 31 + 1 month is the last day of February).
func (d Date) AddMonths(n int) Date {
	first := time.Date(d.Year, d.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := min(d.Day, DaysIn(first.Year(), first.Month()))
	return Date{Year: first.Year(), Month: first.Month(), Day: day}
}

func (d Date) StartOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

func (d Date) EndOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: DaysIn(d.Year, d.Month)}
}

// StartOfWeek returns the WeekStart day on or before d.
func (d Date) StartOfWeek() Date {
	offset := (int(d.Weekday()) - int(WeekStart) + 7) % 7
	return d.AddDays(-offset)
}

// EndOfWeek returns the last day of d's week.
func (d Date) EndOfWeek() Date {
	return d.StartOfWeek().AddDays(6)
}

func (d Date) SameDay(o Date) bool { return d == o }

func (d Date) SameMonth(o Date) bool {
	return d.Year == o.Year && d.Month == o.Month
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// DaysUntil returns the number of days from d to o (negative if o is earlier).
func (d Date) DaysUntil(o Date) int {
	return int(o.utc().Sub(d.utc()).Hours() / 24)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.Key()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseKey(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
