// Package aggregate derives dashboard views from a snapshot of tickets,
// shelters and hospitals. Every function is a pure read of its inputs;
// invariant violations are clamped and reported instead of returned.
package aggregate

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/terminal-bench/reliefops/internal/anomaly"
	"github.com/terminal-bench/reliefops/internal/models"
	"github.com/terminal-bench/reliefops/internal/triage"
)

// Engine computes aggregate views. The zero value is not usable; call NewEngine.
type Engine struct {
	recorder anomaly.Recorder
}

// NewEngine returns an Engine reporting to rec. A nil rec discards anomalies.
func NewEngine(rec anomaly.Recorder) *Engine {
	if rec == nil {
		rec = anomaly.Discard
	}
	return &Engine{recorder: rec}
}

// SummaryStats counts tickets by status and totals people and free capacity.
// Unknown statuses are counted as pending so the status counts always sum to
// TotalSOS.
func (e *Engine) SummaryStats(tickets []models.Ticket, shelters []models.Shelter, hospitals []models.Hospital) models.Stats {
	var s models.Stats
	s.TotalSOS = len(tickets)
	for _, t := range tickets {
		switch t.Status {
		case models.StatusPending:
			s.PendingSOS++
		case models.StatusInProgress:
			s.InProgressSOS++
		case models.StatusDone:
			s.CompletedSOS++
		case models.StatusCancelled:
			s.CancelledSOS++
		default:
			e.flagTicket(t, "status", "unknown status %q counted as pending", t.Status)
			s.PendingSOS++
		}
		if t.Status != models.StatusCancelled {
			s.TotalPeopleAffected += e.people(t)
		}
	}

	s.TotalShelters = len(shelters)
	for _, sh := range shelters {
		capacity, free := e.shelterCapacity(sh)
		s.TotalShelterCapacity += capacity
		if !sh.Inactive() {
			s.AvailableShelterCapacity += free
		}
	}

	s.TotalHospitals = len(hospitals)
	for _, h := range hospitals {
		total, available := e.beds(h)
		s.TotalHospitalBeds += total
		s.AvailableHospitalBeds += available
	}
	return s
}

// RegionalBreakdown groups tickets by the region of their longitude. Rows appear
// in models.Regions order and only for regions with at least one ticket.
// PeopleAffected excludes cancelled tickets.
func (e *Engine) RegionalBreakdown(tickets []models.Ticket) []models.RegionRow {
	rows := make(map[models.Region]*models.RegionRow, len(models.Regions))
	for _, t := range tickets {
		region := triage.RegionOf(t.Longitude)
		row, ok := rows[region]
		if !ok {
			row = &models.RegionRow{Region: region}
			rows[region] = row
		}
		row.SOSCount++
		if t.Status != models.StatusCancelled {
			row.PeopleAffected += e.people(t)
		}
	}

	out := make([]models.RegionRow, 0, len(rows))
	for _, region := range models.Regions {
		if row, ok := rows[region]; ok {
			out = append(out, *row)
		}
	}
	return out
}

// CategoryBreakdown counts tickets per canonical category. Unrecognised
// categories are grouped under "Other", listed last.
func (e *Engine) CategoryBreakdown(tickets []models.Ticket) []models.CategoryRow {
	const other = models.Category("Other")
	rows := make(map[models.Category]*models.CategoryRow)
	for _, t := range tickets {
		c := t.Category
		if !c.Known() {
			c = other
		}
		row, ok := rows[c]
		if !ok {
			row = &models.CategoryRow{Category: c}
			rows[c] = row
		}
		row.Count++
		if t.Status != models.StatusCancelled {
			row.PeopleAffected += e.people(t)
		}
	}

	out := make([]models.CategoryRow, 0, len(rows))
	order := make([]models.Category, 0, len(models.Categories)+1)
	order = append(order, models.Categories...)
	for _, c := range append(order, other) {
		if row, ok := rows[c]; ok {
			out = append(out, *row)
		}
	}
	return out
}

func (e *Engine) people(t models.Ticket) int {
	if t.People < 0 {
		e.flagTicket(t, "people", "negative people count %d treated as 0", t.People)
		return 0
	}
	return t.People
}

// shelterCapacity returns the capacity and free places of sh, both clamped at 0.
func (e *Engine) shelterCapacity(sh models.Shelter) (capacity, free int) {
	capacity = sh.Capacity
	if capacity < 0 {
		e.flagShelter(sh, "capacity", "negative capacity %d treated as 0", capacity)
		capacity = 0
	}
	occupancy := sh.CurrentOccupancy
	if occupancy < 0 {
		e.flagShelter(sh, "current_occupancy", "negative occupancy %d treated as 0", occupancy)
		occupancy = 0
	}
	if occupancy > capacity {
		e.flagShelter(sh, "current_occupancy", "occupancy %d exceeds capacity %d", occupancy, capacity)
		return capacity, 0
	}
	return capacity, capacity - occupancy
}

// beds returns total and available beds with available clamped to [0, total].
func (e *Engine) beds(h models.Hospital) (total, available int) {
	total, available = h.TotalBeds, h.AvailableBeds
	if total < 0 {
		e.flagHospital(h, "total_beds", "negative total beds %d treated as 0", total)
		total = 0
	}
	if available < 0 {
		e.flagHospital(h, "available_beds", "negative available beds %d treated as 0", available)
		available = 0
	}
	if available > total {
		e.flagHospital(h, "available_beds", "available beds %d exceed total %d", available, total)
		available = total
	}
	return total, available
}

func (e *Engine) flagTicket(t models.Ticket, field, format string, args ...any) {
	e.record("ticket", t.ID, field, format, args...)
}

func (e *Engine) flagShelter(s models.Shelter, field, format string, args ...any) {
	e.record("shelter", s.ID, field, format, args...)
}

func (e *Engine) flagHospital(h models.Hospital, field, format string, args ...any) {
	e.record("hospital", h.ID, field, format, args...)
}

func (e *Engine) record(entity string, id uuid.UUID, field, format string, args ...any) {
	e.recorder.Record(anomaly.Anomaly{
		Kind:   anomaly.KindIntegrity,
		Entity: entity,
		ID:     id,
		Field:  field,
		Detail: fmt.Sprintf(format, args...),
	})
}
