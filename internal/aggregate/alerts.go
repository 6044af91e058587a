package aggregate

import (
	"sort"

	"github.com/terminal-bench/reliefops/internal/models"
)

// CriticalPriority is the lowest priority that raises an SOS alert.
const CriticalPriority = 4

// CriticalSOS returns open tickets with priority >= CriticalPriority, most
// urgent first and oldest first within a priority. Ties on both fall back to
// the system id so the order is total.
func (e *Engine) CriticalSOS(tickets []models.Ticket) []models.Ticket {
	out := make([]models.Ticket, 0)
	for _, t := range tickets {
		if t.Priority >= CriticalPriority && t.Status.Open() {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out
}

// FullShelters returns shelters whose occupancy has reached capacity,
// whatever their status says.
func (e *Engine) FullShelters(shelters []models.Shelter) []models.Shelter {
	out := make([]models.Shelter, 0)
	for _, s := range shelters {
		if s.CurrentOccupancy >= s.Capacity {
			if s.CurrentOccupancy > s.Capacity {
				e.flagShelter(s, "current_occupancy", "occupancy %d exceeds capacity %d", s.CurrentOccupancy, s.Capacity)
			}
			out = append(out, s)
		}
	}
	return out
}

// LowBedHospitals returns hospitals with no free beds or with free beds at or
// below a tenth of the total, rounded down. A hospital with no beds at all is
// included.
func (e *Engine) LowBedHospitals(hospitals []models.Hospital) []models.Hospital {
	out := make([]models.Hospital, 0)
	for _, h := range hospitals {
		total, available := e.beds(h)
		if available == 0 || available <= total/10 {
			out = append(out, h)
		}
	}
	return out
}

// CriticalAlerts computes the requested alert lists. With no kinds, all three
// are computed; lists that were not requested stay nil.
func (e *Engine) CriticalAlerts(tickets []models.Ticket, shelters []models.Shelter, hospitals []models.Hospital, kinds ...models.AlertKind) models.AlertSet {
	if len(kinds) == 0 {
		kinds = models.AlertKinds
	}

	var set models.AlertSet
	for _, k := range kinds {
		switch k {
		case models.AlertCriticalSOS:
			if set.CriticalSOS == nil {
				set.CriticalSOS = e.CriticalSOS(tickets)
			}
		case models.AlertFullShelters:
			if set.FullShelters == nil {
				set.FullShelters = e.FullShelters(shelters)
			}
		case models.AlertLowBedHospitals:
			if set.LowBedHospitals == nil {
				set.LowBedHospitals = e.LowBedHospitals(hospitals)
			}
		}
	}
	return set
}
