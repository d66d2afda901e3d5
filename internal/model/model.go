package model

// Event is a single dated calendar entry as loaded from a source. Events are
// treated as immutable once loaded.
type Event struct {
	// Date is the canonical "yyyy-mm-dd" date key. It is used verbatim for
	// grouping; a malformed key simply never matches a displayed day.
	Date string `json:"date" yaml:"date"`

	Title string `json:"title" yaml:"title"`

	// Time is an optional free-form time-of-day label such as "14:00".
	// Untimed events leave it empty.
	Time string `json:"time,omitempty" yaml:"time,omitempty"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty"`

	// Source is the ID of the configured source the event came from.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// HasTime reports whether the event carries a time label.
func (e Event) HasTime() bool {
	return e.Time != ""
}
