package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/terminal-bench/reliefops/internal/models"
)

const (
	feedKey  = "alerts:critical"
	feedSize = 100
)

// Alert is one entry of the critical alert feed.
type Alert struct {
	ID        uuid.UUID     `json:"id"`
	Type      string        `json:"type"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Ticket    models.Ticket `json:"ticket"`
	CreatedAt time.Time     `json:"created_at"`
}

// Service keeps the latest critical alerts, in Redis when a client is given
// and in memory otherwise.
type Service struct {
	redis  *redis.Client
	logger *logrus.Logger
	now    func() time.Time

	mu    sync.Mutex
	local []Alert
}

// NewService creates a new notification service. rdb may be nil.
func NewService(rdb *redis.Client, logger *logrus.Logger) *Service {
	return &Service{
		redis:  rdb,
		logger: logger,
		now:    time.Now,
	}
}

// NotifyCritical pushes an alert for a newly ingested critical ticket.
func (s *Service) NotifyCritical(ctx context.Context, t models.Ticket) error {
	alert := Alert{
		ID:        uuid.New(),
		Type:      "critical_sos",
		Title:     fmt.Sprintf("Priority %d %s", t.Priority, t.Category),
		Message:   fmt.Sprintf("%d people affected near %s (%s)", t.People, placeOrCoordinates(t), t.Region),
		Ticket:    t,
		CreatedAt: s.now().UTC(),
	}

	if s.redis != nil {
		data, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("failed to marshal alert: %w", err)
		}
		pipe := s.redis.TxPipeline()
		pipe.LPush(ctx, feedKey, data)
		pipe.LTrim(ctx, feedKey, 0, feedSize-1) // Keep last 100 alerts
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to store alert: %w", err)
		}
		return nil
	}

	s.mu.Lock()
	s.local = append([]Alert{alert}, s.local...)
	if len(s.local) > feedSize {
		s.local = s.local[:feedSize]
	}
	s.mu.Unlock()
	return nil
}

// Recent returns up to limit alerts, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Alert, error) {
	if limit <= 0 || limit > feedSize {
		limit = feedSize
	}

	if s.redis != nil {
		data, err := s.redis.LRange(ctx, feedKey, 0, int64(limit-1)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to get alerts: %w", err)
		}
		alerts := make([]Alert, 0, len(data))
		for _, item := range data {
			var a Alert
			if err := json.Unmarshal([]byte(item), &a); err != nil {
				s.logger.WithError(err).Warn("skipping malformed alert feed entry")
				continue
			}
			alerts = append(alerts, a)
		}
		return alerts, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(limit, len(s.local))
	out := make([]Alert, n)
	copy(out, s.local[:n])
	return out, nil
}

func placeOrCoordinates(t models.Ticket) string {
	if t.Place != "" {
		return t.Place
	}
	return fmt.Sprintf("%.4f,%.4f", t.Latitude, t.Longitude)
}
