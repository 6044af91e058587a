// Package filter applies immutable criteria to ticket, shelter and hospital
// collections. Criteria values are plain structs; the zero value matches
// everything.
package filter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/terminal-bench/reliefops/internal/models"
	"github.com/terminal-bench/reliefops/internal/triage"
	"github.com/terminal-bench/reliefops/pkg/geo"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

var (
	ErrUnknownStatus = errors.New("unknown status")
	ErrUnknownRegion = errors.New("unknown region")
	ErrBadPriority   = errors.New("priority must be between 1 and 5")
	ErrBadPage       = errors.New("limit and offset must not be negative")
)

// TicketCriteria selects tickets for list views.
type TicketCriteria struct {
	Status   models.TicketStatus
	Category models.Category
	Region   models.Region
	Priority int
	Search   string
	Limit    int
	Offset   int
}

// TicketQuery is the raw form of TicketCriteria as it arrives from a request.
type TicketQuery struct {
	Status   string
	Category string
	Region   string
	Priority int
	Search   string
	Limit    int
	Offset   int
}

// ParseTicketQuery validates q. An empty category filter matches all
// tickets; an unrecognised one matches none.
func ParseTicketQuery(q TicketQuery) (TicketCriteria, error) {
	c := TicketCriteria{
		Priority: q.Priority,
		Search:   strings.TrimSpace(q.Search),
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if q.Status != "" {
		s, ok := models.ParseStatus(q.Status)
		if !ok {
			return c, fmt.Errorf("%w: %q", ErrUnknownStatus, q.Status)
		}
		c.Status = s
	}
	if q.Region != "" {
		r, ok := models.ParseRegion(q.Region)
		if !ok {
			return c, fmt.Errorf("%w: %q", ErrUnknownRegion, q.Region)
		}
		c.Region = r
	}
	if strings.TrimSpace(q.Category) != "" {
		c.Category = models.NormalizeCategory(q.Category)
	}
	if c.Priority < 0 || c.Priority > 5 {
		return c, ErrBadPriority
	}
	if c.Limit < 0 || c.Offset < 0 {
		return c, ErrBadPage
	}
	if c.Limit == 0 {
		c.Limit = DefaultLimit
	}
	if c.Limit > MaxLimit {
		c.Limit = MaxLimit
	}
	return c, nil
}

// Match reports whether t satisfies every set field of c. Pagination is ignored.
func (c TicketCriteria) Match(t models.Ticket) bool {
	if c.Status != "" && t.Status != c.Status {
		return false
	}
	if c.Category != "" && (!c.Category.Known() || t.Category != c.Category) {
		return false
	}
	if c.Region != "" && triage.RegionOf(t.Longitude) != c.Region {
		return false
	}
	if c.Priority != 0 && t.Priority != c.Priority {
		return false
	}
	if c.Search != "" {
		needle := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(t.Text), needle) &&
			!strings.Contains(strings.ToLower(t.Place), needle) &&
			!strings.Contains(strings.ToLower(t.ExternalID), needle) {
			return false
		}
	}
	return true
}

// Tickets returns the page of matching tickets, highest priority first and
// newest first within a priority, plus the total number of matches.
func Tickets(tickets []models.Ticket, c TicketCriteria) ([]models.Ticket, int) {
	matched := make([]models.Ticket, 0)
	for _, t := range tickets {
		if c.Match(t) {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority > matched[j].Priority
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	return page(matched, c.Offset, c.Limit), total
}

// MapPoints returns open tickets inside bounds. A nil bounds means everywhere.
func MapPoints(tickets []models.Ticket, bounds *geo.Bounds) []models.MapPoint {
	out := make([]models.MapPoint, 0)
	for _, t := range tickets {
		if !t.Status.Open() {
			continue
		}
		if bounds != nil && !bounds.Contains(t.Latitude, t.Longitude) {
			continue
		}
		out = append(out, t.Point())
	}
	return out
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
