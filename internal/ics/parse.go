package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"monthcal/internal/calendar"
	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// TimeLabelLayout is the time label given to timed ICS events.
const TimeLabelLayout = "15:04"

var (
	errMissingUID   = errors.New("missing UID")
	errMissingStart = errors.New("missing DTSTART")
)

// ParseICS parses a single ICS payload into date-keyed events.
//
//   - The date key is the calendar day of DTSTART in the host's local zone;
//     all-day events keep their floating date as written.
//   - Timed events get a "15:04" label; all-day events stay untimed.
//   - Only the first occurrence of a recurring VEVENT is kept and
//     RECURRENCE-ID overrides are dropped.
//   - Broken VEVENTs are logged and skipped.
func ParseICS(src Source, body []byte) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]model.Event, 0)
	for _, comp := range cal.Events() {
		if comp.GetProperty("RECURRENCE-ID") != nil {
			appLog.Debug("ics override skipped", "id", src.ID)
			continue
		}
		ev, perr := parseVEvent(src, comp)
		if perr != nil {
			appLog.Error("ics vevent parse failed", perr, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "url", redactURL(src.URL), "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (model.Event, error) {
	out := model.Event{Source: src.ID}

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errMissingUID
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || strings.TrimSpace(dtStart.Value) == "" {
		return out, errMissingStart
	}

	if isAllDay(dtStart) {
		d, err := parseICSDate(dtStart.Value)
		if err != nil {
			return out, err
		}
		out.Date = d.Key()
		return out, nil
	}

	start, err := startTime(ve, dtStart)
	if err != nil {
		return out, err
	}
	local := start.In(time.Local)
	out.Date = calendar.FromTime(local).Key()
	out.Time = local.Format(TimeLabelLayout)
	return out, nil
}

// isAllDay reports VALUE=DATE or a date-only DTSTART value.
func isAllDay(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// startTime resolves a timed DTSTART. Floating values (no TZID, no Z) are
// read in the host zone; everything else goes through the library's
// VTIMEZONE/TZID handling.
func startTime(ve *ical.VEvent, p *ical.IANAProperty) (time.Time, error) {
	v := strings.TrimSpace(p.Value)
	if _, hasTZ := p.ICalParameters["TZID"]; !hasTZ && !strings.HasSuffix(v, "Z") {
		return time.ParseInLocation("20060102T150405", v, time.Local)
	}
	return ve.GetStartAt()
}

// parseICSDate parses a date-only value such as 20250101.
func parseICSDate(v string) (calendar.Date, error) {
	v = strings.TrimSpace(v)
	if len(v) > 8 {
		v = v[:8]
	}
	t, err := time.Parse("20060102", v)
	if err != nil {
		return calendar.Date{}, err
	}
	return calendar.FromTime(t), nil
}
