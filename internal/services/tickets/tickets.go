// Package tickets ingests SOS reports and manages ticket updates.
package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/terminal-bench/reliefops/internal/aggregate"
	"github.com/terminal-bench/reliefops/internal/filter"
	"github.com/terminal-bench/reliefops/internal/models"
	"github.com/terminal-bench/reliefops/internal/triage"
	"github.com/terminal-bench/reliefops/pkg/geo"
	"github.com/terminal-bench/reliefops/pkg/messaging"
)

// Event subjects.
const (
	SubjectCreated = "sos.created"
	SubjectUpdated = "sos.updated"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrInvalidStatus  = errors.New("invalid status")
)

// Store persists tickets.
type Store interface {
	Create(ctx context.Context, t *models.Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	List(ctx context.Context) ([]models.Ticket, error)
	Update(ctx context.Context, t *models.Ticket, history []models.TicketUpdate) error
	History(ctx context.Context, id uuid.UUID) ([]models.TicketUpdate, error)
}

// Alerter receives newly ingested critical tickets.
type Alerter interface {
	NotifyCritical(ctx context.Context, t models.Ticket) error
}

// Invalidator drops derived views after a write.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Observer counts ingestion outcomes.
type Observer interface {
	SOSIngested(priority int, region string)
	SOSRejected(field string)
}

// Event is published on every ticket write.
type Event struct {
	Type       string        `json:"type"`
	Ticket     models.Ticket `json:"ticket"`
	Changes    []string      `json:"changes,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Deps wires a Service. Store and Classifier are required.
type Deps struct {
	Store       Store
	Classifier  *triage.Classifier
	Publisher   messaging.Publisher
	Alerts      Alerter
	Invalidator Invalidator
	Observer    Observer
	Logger      *logrus.Logger
	Now         func() time.Time
}

// Service handles ticket ingestion and updates.
type Service struct {
	store      Store
	classifier *triage.Classifier
	publisher  messaging.Publisher
	alerts     Alerter
	invalidate Invalidator
	observer   Observer
	logger     *logrus.Logger
	now        func() time.Time
}

func NewService(d Deps) *Service {
	s := &Service{
		store:      d.Store,
		classifier: d.Classifier,
		publisher:  d.Publisher,
		alerts:     d.Alerts,
		invalidate: d.Invalidator,
		observer:   d.Observer,
		logger:     d.Logger,
		now:        d.Now,
	}
	if s.publisher == nil {
		s.publisher = messaging.Nop{}
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Ingest classifies and stores a raw report. A *triage.ValidationError means
// nothing was stored.
func (s *Service) Ingest(ctx context.Context, raw models.RawReport) (*models.Ticket, error) {
	t, err := s.classifier.Classify(raw)
	if err != nil {
		var verr *triage.ValidationError
		if errors.As(err, &verr) && s.observer != nil {
			s.observer.SOSRejected(verr.Field)
		}
		s.logger.WithError(err).WithField("external_id", raw.ID).Warn("rejected sos report")
		return nil, err
	}

	if err := s.store.Create(ctx, &t); err != nil {
		return nil, fmt.Errorf("failed to store ticket: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"ticket_id": t.ID.String(),
		"priority":  t.Priority,
		"region":    string(t.Region),
		"category":  string(t.Category),
	})
	log.Info("sos ticket created")

	if s.observer != nil {
		s.observer.SOSIngested(t.Priority, string(t.Region))
	}
	s.publish(ctx, Event{Type: SubjectCreated, Ticket: t, OccurredAt: t.CreatedAt})
	if t.Priority >= aggregate.CriticalPriority && s.alerts != nil {
		if err := s.alerts.NotifyCritical(ctx, t); err != nil {
			log.WithError(err).Error("failed to push critical alert")
		}
	}
	s.afterWrite(ctx)
	return &t, nil
}

// Get returns ErrTicketNotFound when id is unknown.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTicketNotFound
	}
	return t, nil
}

// List returns one page of tickets matching c and the total match count.
func (s *Service) List(ctx context.Context, c filter.TicketCriteria) ([]models.Ticket, int, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	page, total := filter.Tickets(all, c)
	return page, total, nil
}

// Map returns open tickets as map points, optionally limited to bounds.
func (s *Service) Map(ctx context.Context, bounds *geo.Bounds) ([]models.MapPoint, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter.MapPoints(all, bounds), nil
}

// Update applies patch and records one history row per changed field. Any
// status may move to any other status.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch models.TicketPatch) (*models.Ticket, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var history []models.TicketUpdate
	record := func(field, oldValue, newValue string) {
		history = append(history, models.TicketUpdate{
			ID:         uuid.New(),
			TicketID:   t.ID,
			UpdatedBy:  patch.UpdatedBy,
			FieldName:  field,
			OldValue:   oldValue,
			NewValue:   newValue,
			UpdateTime: now,
		})
	}

	if patch.Status != nil {
		status, ok := models.ParseStatus(*patch.Status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *patch.Status)
		}
		if status != t.Status {
			record("status", string(t.Status), string(status))
			t.Status = status
		}
	}
	if patch.Notes != nil && deref(t.Notes) != *patch.Notes {
		record("notes", deref(t.Notes), *patch.Notes)
		t.Notes = optional(*patch.Notes)
	}
	if patch.AssignedTo != nil && deref(t.AssignedTo) != strings.TrimSpace(*patch.AssignedTo) {
		assignee := strings.TrimSpace(*patch.AssignedTo)
		record("assigned_to", deref(t.AssignedTo), assignee)
		t.AssignedTo = optional(assignee)
	}

	if len(history) == 0 {
		return t, nil
	}

	t.UpdatedAt = now
	if err := s.store.Update(ctx, t, history); err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}

	changes := make([]string, len(history))
	for i, h := range history {
		changes[i] = h.FieldName
	}
	s.logger.WithFields(logrus.Fields{
		"ticket_id":  t.ID.String(),
		"status":     string(t.Status),
		"changes":    changes,
		"updated_by": patch.UpdatedBy,
	}).Info("sos ticket updated")

	s.publish(ctx, Event{Type: SubjectUpdated, Ticket: *t, Changes: changes, OccurredAt: now})
	s.afterWrite(ctx)
	return t, nil
}

// History returns the update trail of a ticket, oldest first.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]models.TicketUpdate, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.History(ctx, id)
}

func (s *Service) publish(ctx context.Context, e Event) {
	if err := s.publisher.Publish(ctx, e.Type, e); err != nil {
		s.logger.WithError(err).WithField("subject", e.Type).Warn("failed to publish ticket event")
	}
}

func (s *Service) afterWrite(ctx context.Context) {
	if s.invalidate != nil {
		s.invalidate.Invalidate(ctx)
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// optional maps "" to nil so cleared fields are stored as NULL.
func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
