package calendar

// Week is one row of the month grid, starting on WeekStart.
type Week [7]Date

// Matrix is the ordered list of week rows shown for one month. The first and
// last rows may contain days of the neighbouring months.
type Matrix []Week

// BuildMonthMatrix returns the weeks covering ref's month, padded to whole
// weeks: from the start of the week containing the 1st to the end of the week
// containing the last day.
func BuildMonthMatrix(ref Date) Matrix {
	startDate := ref.StartOfMonth().StartOfWeek()
	endDate := ref.EndOfMonth().EndOfWeek()

	rows := make(Matrix, 0, (startDate.DaysUntil(endDate)+1)/7)
	day := startDate
	for !day.After(endDate) {
		var week Week
		for i := range week {
			week[i] = day
			day = day.AddDays(1)
		}
		rows = append(rows, week)
	}
	return rows
}

// Days flattens the matrix into a single ordered slice.
func (m Matrix) Days() []Date {
	out := make([]Date, 0, len(m)*7)
	for _, w := range m {
		out = append(out, w[:]...)
	}
	return out
}

// First returns the first cell, or the zero Date for an empty matrix.
func (m Matrix) First() Date {
	if len(m) == 0 {
		return Date{}
	}
	return m[0][0]
}

// Last returns the last cell, or the zero Date for an empty matrix.
func (m Matrix) Last() Date {
	if len(m) == 0 {
		return Date{}
	}
	return m[len(m)-1][6]
}

// Contains reports whether d falls inside the displayed range.
func (m Matrix) Contains(d Date) bool {
	if len(m) == 0 {
		return false
	}
	return !d.Before(m.First()) && !d.After(m.Last())
}

// WeekdayLabels are the column headers matching WeekStart.
var WeekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
