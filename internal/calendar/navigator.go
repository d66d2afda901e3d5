package calendar

// Navigator holds the reference date of the month currently on display. It is
// the only mutable state behind a month view; everything else is derived
// from Ref on each render.
type Navigator struct {
	ref Date
}

// NewNavigator starts at ref, or at today when ref is the zero Date.
func NewNavigator(ref Date) *Navigator {
	if ref.IsZero() {
		ref = Today()
	}
	return &Navigator{ref: ref}
}

func (n *Navigator) Ref() Date { return n.ref }

// Label is the visible month label, e.g. "February 2024".
func (n *Navigator) Label() string {
	return n.ref.Format("January 2006")
}

// Matrix builds the grid for the current reference month.
func (n *Navigator) Matrix() Matrix {
	return BuildMonthMatrix(n.ref)
}

func (n *Navigator) Next() Date {
	n.ref = n.ref.AddMonths(1)
	return n.ref
}

func (n *Navigator) Prev() Date {
	n.ref = n.ref.AddMonths(-1)
	return n.ref
}

// Set jumps to an arbitrary reference date.
func (n *Navigator) Set(d Date) {
	n.ref = d
}

func (n *Navigator) Today() Date {
	n.ref = Today()
	return n.ref
}
