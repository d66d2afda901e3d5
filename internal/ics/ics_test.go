package ics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//monthcal//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup@example\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART:20240210T100000\r\n" +
	"DTEND:20240210T103000\r\n" +
	"SUMMARY:Standup\r\n" +
	"LOCATION:Room 1\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:holiday@example\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20240212\r\n" +
	"SUMMARY:Holiday\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART:20240213T090000\r\n" +
	"SUMMARY:No UID\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup@example\r\n" +
	"RECURRENCE-ID:20240210T100000\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART:20240210T110000\r\n" +
	"SUMMARY:Moved standup\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseICS(t *testing.T) {
	events, err := ParseICS(Source{ID: "work"}, []byte(sampleICS))
	if err != nil {
		t.Fatalf("ParseICS: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}

	standup := events[0]
	if standup.Title != "Standup" || standup.Date != "2024-02-10" || standup.Time != "10:00" {
		t.Errorf("standup = %+v", standup)
	}
	if standup.Location != "Room 1" || standup.Source != "work" {
		t.Errorf("standup metadata = %+v", standup)
	}

	holiday := events[1]
	if holiday.Date != "2024-02-12" || holiday.Time != "" || holiday.HasTime() {
		t.Errorf("holiday = %+v", holiday)
	}
}

func TestParseICSEmpty(t *testing.T) {
	if _, err := ParseICS(Source{ID: "x"}, nil); err == nil {
		t.Error("expected error for empty body")
	}
}

func TestFetcherCachesAndRevalidates(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), srv.Client())
	src := Source{ID: "remote", URL: srv.URL + "/private.ics?token=secret"}

	body, fromCache, err := f.Fetch(context.Background(), src)
	if err != nil || fromCache || !strings.Contains(string(body), "Standup") {
		t.Fatalf("first fetch: cache=%v err=%v", fromCache, err)
	}

	body, fromCache, err = f.Fetch(context.Background(), src)
	if err != nil || !fromCache || !strings.Contains(string(body), "Standup") {
		t.Fatalf("second fetch: cache=%v err=%v", fromCache, err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
}

func TestFetcherFallsBackOnServerError(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), &http.Client{Timeout: 5 * time.Second})
	src := Source{ID: "remote", URL: srv.URL}

	if _, _, err := f.Fetch(context.Background(), src); err != nil {
		t.Fatalf("warm fetch: %v", err)
	}
	fail.Store(true)
	body, fromCache, err := f.Fetch(context.Background(), src)
	if err != nil || !fromCache || len(body) == 0 {
		t.Fatalf("fallback fetch: cache=%v err=%v", fromCache, err)
	}

	cold := NewFetcher(t.TempDir(), nil)
	if _, _, err := cold.Fetch(context.Background(), src); err == nil {
		t.Error("expected error without cache")
	}
}

func TestFetcherNotModifiedWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), nil)
	_, _, err := f.Fetch(context.Background(), Source{ID: "x", URL: srv.URL})
	if !errors.Is(err, ErrNoCachedBody) {
		t.Errorf("err = %v, want ErrNoCachedBody", err)
	}
}

func TestRedactURL(t *testing.T) {
	tests := map[string]string{
		"https://calendar.example.com/private/abc.ics?token=x": "https://calendar.example.com/...(redacted)",
		"not a url": "ics://...(redacted)",
		"":          "",
	}
	for in, want := range tests {
		if got := redactURL(in); got != want {
			t.Errorf("redactURL(%q) = %q, want %q", in, got, want)
		}
	}
}
