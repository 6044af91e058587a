// Package dashboard serves cached aggregate views over a snapshot of tickets,
// shelters and hospitals.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/terminal-bench/reliefops/internal/aggregate"
	"github.com/terminal-bench/reliefops/internal/cache"
	"github.com/terminal-bench/reliefops/internal/models"
)

const (
	keyStats      = "dashboard:stats"
	keyRegions    = "dashboard:regions"
	keyCategories = "dashboard:categories"
	keyAlerts     = "dashboard:alerts"
	keyOverview   = "dashboard:overview"
	keyRecent     = "dashboard:recent"

	// MaxRecent bounds the recent activity list.
	MaxRecent = 100
)

var allKeys = []string{keyStats, keyRegions, keyCategories, keyAlerts, keyOverview, keyRecent}

type TicketLister interface {
	List(ctx context.Context) ([]models.Ticket, error)
}

type ShelterLister interface {
	List(ctx context.Context) ([]models.Shelter, error)
}

type HospitalLister interface {
	List(ctx context.Context) ([]models.Hospital, error)
}

// Observer counts cache results.
type Observer interface {
	CacheHit()
	CacheMiss()
}

// Regions pairs the ticket breakdown with per-region resource capacity.
type Regions struct {
	Tickets  []models.RegionRow      `json:"regions"`
	Capacity []models.RegionCapacity `json:"capacity"`
}

// View is the full dashboard at one instant.
type View struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Stats       models.Stats            `json:"stats"`
	Regions     Regions                 `json:"regions"`
	Categories  []models.CategoryRow    `json:"categories"`
	Alerts      models.AlertSet         `json:"alerts"`
	Overview    models.ResourceOverview `json:"overview"`
}

type Deps struct {
	Tickets   TicketLister
	Shelters  ShelterLister
	Hospitals HospitalLister
	Engine    *aggregate.Engine
	Cache     cache.Cache
	TTL       time.Duration
	Observer  Observer
	Logger    *logrus.Logger
	Now       func() time.Time
}

type Service struct {
	tickets   TicketLister
	shelters  ShelterLister
	hospitals HospitalLister
	engine    *aggregate.Engine
	cache     cache.Cache
	ttl       time.Duration
	observer  Observer
	logger    *logrus.Logger
	now       func() time.Time

	// generation changes on every Invalidate. A view computed across a
	// change is returned but not stored.
	mu         sync.RWMutex
	generation atomic.Uint64
}

// NewService creates a dashboard service. A nil Cache disables caching.
func NewService(d Deps) *Service {
	s := &Service{
		tickets:   d.Tickets,
		shelters:  d.Shelters,
		hospitals: d.Hospitals,
		engine:    d.Engine,
		cache:     d.Cache,
		ttl:       d.TTL,
		observer:  d.Observer,
		logger:    d.Logger,
		now:       d.Now,
	}
	if s.engine == nil {
		s.engine = aggregate.NewEngine(nil)
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Snapshot reads the three collections concurrently. The reads are not
// transactional with each other.
func (s *Service) Snapshot(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tickets.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to load tickets: %w", err)
		}
		snap.Tickets = t
		return nil
	})
	g.Go(func() error {
		sh, err := s.shelters.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to load shelters: %w", err)
		}
		snap.Shelters = sh
		return nil
	})
	g.Go(func() error {
		h, err := s.hospitals.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to load hospitals: %w", err)
		}
		snap.Hospitals = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	return cached(ctx, s, keyStats, func(snap models.Snapshot) models.Stats {
		return s.engine.SummaryStats(snap.Tickets, snap.Shelters, snap.Hospitals)
	})
}

func (s *Service) Regions(ctx context.Context) (Regions, error) {
	return cached(ctx, s, keyRegions, func(snap models.Snapshot) Regions {
		return Regions{
			Tickets:  s.engine.RegionalBreakdown(snap.Tickets),
			Capacity: s.engine.RegionalCapacity(snap.Shelters, snap.Hospitals),
		}
	})
}

func (s *Service) Categories(ctx context.Context) ([]models.CategoryRow, error) {
	return cached(ctx, s, keyCategories, func(snap models.Snapshot) []models.CategoryRow {
		return s.engine.CategoryBreakdown(snap.Tickets)
	})
}

// Alerts returns the requested alert lists, all of them when kinds is empty.
// Lists that were not requested are nil.
func (s *Service) Alerts(ctx context.Context, kinds ...models.AlertKind) (models.AlertSet, error) {
	full, err := cached(ctx, s, keyAlerts, func(snap models.Snapshot) models.AlertSet {
		return s.engine.CriticalAlerts(snap.Tickets, snap.Shelters, snap.Hospitals)
	})
	if err != nil {
		return models.AlertSet{}, err
	}
	return only(full, kinds), nil
}

func (s *Service) Overview(ctx context.Context) (models.ResourceOverview, error) {
	return cached(ctx, s, keyOverview, func(snap models.Snapshot) models.ResourceOverview {
		return s.engine.ResourceOverview(snap.Shelters, snap.Hospitals)
	})
}

// Recent returns up to limit tickets, most recently updated first.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.Ticket, error) {
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}
	recent, err := cached(ctx, s, keyRecent, func(snap models.Snapshot) []models.Ticket {
		return aggregate.RecentActivity(snap.Tickets, MaxRecent)
	})
	if err != nil {
		return nil, err
	}
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}

// View computes every dashboard view from one fresh snapshot, bypassing the
// cache.
func (s *Service) View(ctx context.Context) (View, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return View{}, err
	}
	return View{
		GeneratedAt: s.now().UTC(),
		Stats:       s.engine.SummaryStats(snap.Tickets, snap.Shelters, snap.Hospitals),
		Regions: Regions{
			Tickets:  s.engine.RegionalBreakdown(snap.Tickets),
			Capacity: s.engine.RegionalCapacity(snap.Shelters, snap.Hospitals),
		},
		Categories: s.engine.CategoryBreakdown(snap.Tickets),
		Alerts:     s.engine.CriticalAlerts(snap.Tickets, snap.Shelters, snap.Hospitals),
		Overview:   s.engine.ResourceOverview(snap.Shelters, snap.Hospitals),
	}, nil
}

// Invalidate drops every cached view. Failures are logged.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation.Add(1)
	if err := s.cache.Delete(ctx, allKeys...); err != nil {
		s.logger.WithError(err).Warn("failed to invalidate dashboard cache")
	}
}

// cached returns the view at key, computing it from a fresh snapshot on a
// miss. Cache errors degrade to a recompute.
func cached[T any](ctx context.Context, s *Service, key string, compute func(models.Snapshot) T) (T, error) {
	var v T
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, key, &v)
		if err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("dashboard cache read failed")
		}
		if ok && err == nil {
			s.hit()
			return v, nil
		}
		s.miss()
	}

	gen := s.generation.Load()
	snap, err := s.Snapshot(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	v = compute(snap)

	if s.cache != nil {
		s.store(ctx, gen, key, v)
	}
	return v, nil
}

// store writes v unless an Invalidate happened since gen was read.
func (s *Service) store(ctx context.Context, gen uint64, key string, v any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.generation.Load() != gen {
		s.logger.WithField("key", key).Debug("dashboard view went stale during compute")
		return
	}
	if err := s.cache.Set(ctx, key, v, s.ttl); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("dashboard cache write failed")
	}
}

func (s *Service) hit() {
	if s.observer != nil {
		s.observer.CacheHit()
	}
}

func (s *Service) miss() {
	if s.observer != nil {
		s.observer.CacheMiss()
	}
}

func only(full models.AlertSet, kinds []models.AlertKind) models.AlertSet {
	if len(kinds) == 0 {
		return full
	}
	var out models.AlertSet
	for _, k := range kinds {
		switch k {
		case models.AlertCriticalSOS:
			out.CriticalSOS = full.CriticalSOS
		case models.AlertFullShelters:
			out.FullShelters = full.FullShelters
		case models.AlertLowBedHospitals:
			out.LowBedHospitals = full.LowBedHospitals
		}
	}
	return out
}
