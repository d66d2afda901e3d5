// Package source reads events from the configured files and feeds and keeps
// the current agenda index up to date.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"monthcal/internal/config"
	"monthcal/internal/ics"
	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// Supported file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatICS  = "ics"
)

var ErrUnknownFormat = errors.New("source: unknown file format")

// DetectFormat maps a file extension to a format name.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".ics", ".ical":
		return FormatICS, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// LoadFile reads one events file. An empty format is detected from the
// extension.
func LoadFile(path, format string) ([]model.Event, error) {
	if format == "" {
		var err error
		if format, err = DetectFormat(path); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, format, filepath.Base(path))
}

// Decode parses events in the given format. id is used for ICS logging and
// as the default Source of ICS events.
func Decode(data []byte, format, id string) ([]model.Event, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML, "yml":
		return decodeYAML(data)
	case FormatICS:
		return ics.ParseICS(ics.Source{ID: id}, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// eventsDoc is the wrapped file shape {"events": [...]}.
type eventsDoc struct {
	Events []model.Event `json:"events" yaml:"events"`
}

func decodeJSON(data []byte) ([]model.Event, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []model.Event{}, nil
	}
	if trimmed[0] == '{' {
		var doc eventsDoc
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
		return doc.Events, nil
	}
	var events []model.Event
	if err := json.Unmarshal(trimmed, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func decodeYAML(data []byte) ([]model.Event, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return []model.Event{}, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.MappingNode {
		var doc eventsDoc
		if err := root.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Events, nil
	}
	var events []model.Event
	if err := root.Decode(&events); err != nil {
		return nil, err
	}
	return events, nil
}

// Load reads all sources in order and concatenates their events, stamping
// each with its source ID. A failing source is logged and skipped; the
// joined errors are returned next to whatever did load.
func Load(ctx context.Context, sources []config.SourceConfig, fetcher *ics.Fetcher) ([]model.Event, error) {
	all := make([]model.Event, 0)
	var errs []error

	for _, src := range sources {
		events, err := loadOne(ctx, src, fetcher)
		if err != nil {
			appLog.Error("source load failed", err, "id", src.ID)
			errs = append(errs, fmt.Errorf("source %s: %w", src.ID, err))
			continue
		}
		for i := range events {
			events[i].Source = src.ID
		}
		appLog.Debug("source loaded", "id", src.ID, "event_count", len(events))
		all = append(all, events...)
	}

	return all, errors.Join(errs...)
}

func loadOne(ctx context.Context, src config.SourceConfig, fetcher *ics.Fetcher) ([]model.Event, error) {
	if src.URL != "" {
		if fetcher == nil {
			return nil, errors.New("no fetcher for url source")
		}
		body, _, err := fetcher.Fetch(ctx, ics.Source{ID: src.ID, URL: src.URL})
		if err != nil {
			return nil, err
		}
		return ics.ParseICS(ics.Source{ID: src.ID, URL: src.URL}, body)
	}

	path, err := src.ResolvedPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path, src.Format)
}
