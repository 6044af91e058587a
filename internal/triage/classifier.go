// Package triage turns raw SOS reports into validated, prioritised tickets.
package triage

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/terminal-bench/reliefops/internal/anomaly"
	"github.com/terminal-bench/reliefops/internal/models"
)

// Classifier validates and scores incoming reports. It performs no I/O.
type Classifier struct {
	now      func() time.Time
	newID    func() uuid.UUID
	recorder anomaly.Recorder
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

// WithIDGenerator overrides system id allocation.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(c *Classifier) { c.newID = gen }
}

// WithRecorder sets where clamped inputs are reported.
func WithRecorder(r anomaly.Recorder) Option {
	return func(c *Classifier) { c.recorder = r }
}

func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		now:      time.Now,
		newID:    uuid.New,
		recorder: anomaly.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Classify returns a Pending ticket for r, or a *ValidationError when the
// coordinates are missing, non-numeric, non-finite or out of range.
func (c *Classifier) Classify(r models.RawReport) (models.Ticket, error) {
	lat, err := parseCoordinate("lat", r.Lat, 90)
	if err != nil {
		return models.Ticket{}, err
	}
	lon, err := parseCoordinate("lon", r.Lon, 180)
	if err != nil {
		return models.Ticket{}, err
	}

	now := c.now().UTC()
	category := models.NormalizeCategory(r.Category)
	t := models.Ticket{
		ID:         c.newID(),
		ExternalID: externalID(r.ID),
		Status:     models.StatusPending,
		People:     r.People,
		Latitude:   lat,
		Longitude:  lon,
		Region:     RegionOf(lon),
		Category:   category,
		Text:       r.Text,
		Place:      strings.TrimSpace(r.Place),
		ReportedAt: parseTimestamp(r.Timestamp),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if t.People < 0 {
		c.recorder.Record(anomaly.Anomaly{
			Kind:   anomaly.KindRange,
			Entity: "ticket",
			ID:     t.ID,
			Field:  "people",
			Detail: fmt.Sprintf("negative people count %d clamped to 0", r.People),
		})
		t.People = 0
	}

	t.Priority = Priority(category, t.People, r.Text)
	return t, nil
}

func parseCoordinate(field string, raw any, limit float64) (float64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, &ValidationError{Field: field, Value: raw, Reason: "missing"}
	case bool:
		return 0, &ValidationError{Field: field, Value: raw, Reason: "not a number"}
	case string:
		raw = strings.TrimSpace(v)
		if raw == "" {
			return 0, &ValidationError{Field: field, Value: v, Reason: "missing"}
		}
	}

	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, &ValidationError{Field: field, Value: raw, Reason: "not a number"}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ValidationError{Field: field, Value: raw, Reason: "not finite"}
	}
	if f < -limit || f > limit {
		return 0, &ValidationError{Field: field, Value: raw, Reason: fmt.Sprintf("out of range [-%g, %g]", limit, limit)}
	}
	return f, nil
}

func externalID(raw any) string {
	if raw == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(raw))
}

func parseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}
	return nil
}
