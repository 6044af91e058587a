// Package anomaly surfaces recoverable data-quality problems without failing
// the operation that found them.
package anomaly

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Kind classifies an anomaly.
type Kind string

const (
	// KindRange is an out-of-range input that was clamped, such as a negative people count.
	KindRange Kind = "range"
	// KindIntegrity is a stored record that violates an entity invariant.
	KindIntegrity Kind = "integrity"
)

// Anomaly describes one recoverable problem.
type Anomaly struct {
	Kind   Kind
	Entity string
	ID     uuid.UUID
	Field  string
	Detail string
}

// Recorder receives anomalies.
type Recorder interface {
	Record(a Anomaly)
}

// Discard drops everything.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(Anomaly) {}

// LogRecorder writes anomalies as logrus warnings.
type LogRecorder struct {
	logger *logrus.Logger
}

func NewLogRecorder(logger *logrus.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(a Anomaly) {
	fields := logrus.Fields{
		"anomaly": string(a.Kind),
		"entity":  a.Entity,
		"field":   a.Field,
	}
	if a.ID != uuid.Nil {
		fields["id"] = a.ID.String()
	}
	r.logger.WithFields(fields).Warn(a.Detail)
}

// Multi fans an anomaly out to several recorders.
func Multi(recorders ...Recorder) Recorder {
	return multi(recorders)
}

type multi []Recorder

func (m multi) Record(a Anomaly) {
	for _, r := range m {
		r.Record(a)
	}
}

// Collector keeps anomalies in memory. Safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Anomaly
}

func (c *Collector) Record(a Anomaly) {
	c.mu.Lock()
	c.items = append(c.items, a)
	c.mu.Unlock()
}

// All returns a copy of the recorded anomalies.
func (c *Collector) All() []Anomaly {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Anomaly, len(c.items))
	copy(out, c.items)
	return out
}
