package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"monthcal/internal/agenda"
	"monthcal/internal/calendar"
	"monthcal/internal/view"
)

// Agenda prints the in-month days that have events, one row per event.
// Unlike the grid, nothing is hidden, so every conflicting entry is marked.
type Agenda struct {
	// MaxTitle truncates long titles; zero leaves them alone.
	MaxTitle uint
}

func (a *Agenda) Print(w io.Writer, month view.Month, idx *agenda.Index) {
	bold := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint, color.Italic)
	conflict := color.New(color.FgRed, color.Bold)
	today := color.New(color.FgYellow, color.Bold)

	_, _ = bold.Fprintf(w, "%s - %d events\n", month.Label, month.Total)

	if month.Total == 0 {
		_, _ = faint.Fprintln(w, " none")
		_, _ = fmt.Fprintln(w)
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	if a.MaxTitle > 0 {
		tbl.MaxColWidth = a.MaxTitle
	}
	tbl.AddRow(bold.Sprint("Date"), bold.Sprint("Time"), bold.Sprint("Title"), "")

	for _, d := range month.Days() {
		if !d.InMonth || d.Total == 0 {
			continue
		}
		events := idx.On(d.Date)
		conflicts := agenda.DetectConflicts(events)

		for i, ev := range events {
			date := ""
			if i == 0 {
				date = dayLabel(d.Date)
				if d.IsToday {
					date = today.Sprint(date)
				}
			}

			timeLabel := ev.Time
			if timeLabel == "" {
				timeLabel = faint.Sprint("-")
			}

			title, mark := ev.Title, ""
			if conflicts.Has(i) {
				title = conflict.Sprint(title)
				mark = conflict.Sprint("conflict")
			}
			tbl.AddRow(date, timeLabel, title, mark)
		}
	}

	_, _ = fmt.Fprintln(w, tbl)
	_, _ = fmt.Fprintln(w)
}

func dayLabel(d calendar.Date) string {
	return d.Format("Mon Jan _2")
}

// Summary is a one-line count of conflicting days, e.g. for logs.
func Summary(month view.Month, idx *agenda.Index) string {
	var days []string
	for _, d := range month.Days() {
		if !d.InMonth || d.Total < 2 {
			continue
		}
		if agenda.DetectConflicts(idx.On(d.Date)).Len() > 0 {
			days = append(days, d.Date.Key())
		}
	}
	if len(days) == 0 {
		return "no conflicts"
	}
	return fmt.Sprintf("%d conflicting days: %s", len(days), strings.Join(days, ", "))
}
