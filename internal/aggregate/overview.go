package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/terminal-bench/reliefops/internal/models"
	"github.com/terminal-bench/reliefops/internal/triage"
)

// Percent returns part/whole as a percentage rounded to two decimals, or 0
// when whole is not positive.
func Percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole))).
		Round(2).
		InexactFloat64()
}

// ResourceOverview summarises shelter occupancy and hospital bed usage.
func (e *Engine) ResourceOverview(shelters []models.Shelter, hospitals []models.Hospital) models.ResourceOverview {
	so := models.ShelterOverview{
		Total:    len(shelters),
		ByStatus: make(map[string]int),
		ByType:   make(map[string]models.TypeBreakdown),
	}
	for _, s := range shelters {
		capacity, free := e.shelterCapacity(s)
		so.TotalCapacity += capacity
		if !s.Inactive() {
			so.Available += free
		}
		so.CurrentOccupancy += capacity - free

		status := s.Status
		if canonical, ok := models.ParseShelterStatus(status); ok {
			status = canonical
		}
		so.ByStatus[status]++

		tb := so.ByType[s.Type]
		tb.Count++
		tb.TotalCapacity += capacity
		so.ByType[s.Type] = tb
	}
	so.UtilizationRate = Percent(so.CurrentOccupancy, so.TotalCapacity)

	ho := models.HospitalOverview{
		Total:    len(hospitals),
		ByRegion: make(map[models.Region]int),
	}
	for _, h := range hospitals {
		total, available := e.beds(h)
		ho.TotalBeds += total
		ho.AvailableBeds += available

		icu, icuFree := h.ICUBeds, h.AvailableICU
		if icu < 0 {
			icu = 0
		}
		if icuFree < 0 || icuFree > icu {
			e.flagHospital(h, "available_icu", "available ICU beds %d outside [0, %d]", h.AvailableICU, icu)
			icuFree = max(0, min(icuFree, icu))
		}
		ho.ICUBeds += icu
		ho.AvailableICU += icuFree
		ho.ByRegion[triage.RegionOf(h.Longitude)]++
	}
	ho.OccupiedBeds = ho.TotalBeds - ho.AvailableBeds
	ho.UtilizationRate = Percent(ho.OccupiedBeds, ho.TotalBeds)
	ho.ICUUtilizationRate = Percent(ho.ICUBeds-ho.AvailableICU, ho.ICUBeds)

	return models.ResourceOverview{Shelters: so, Hospitals: ho}
}

// RegionalCapacity summarises shelters and hospitals per region, in
// models.Regions order, for regions holding at least one resource.
func (e *Engine) RegionalCapacity(shelters []models.Shelter, hospitals []models.Hospital) []models.RegionCapacity {
	rows := make(map[models.Region]*models.RegionCapacity)
	row := func(r models.Region) *models.RegionCapacity {
		if rc, ok := rows[r]; ok {
			return rc
		}
		rc := &models.RegionCapacity{Region: r}
		rows[r] = rc
		return rc
	}

	for _, s := range shelters {
		rc := row(triage.RegionOf(s.Longitude))
		capacity, free := e.shelterCapacity(s)
		rc.Shelters++
		rc.ShelterCapacity += capacity
		if !s.Inactive() {
			rc.ShelterAvailable += free
		}
	}
	for _, h := range hospitals {
		rc := row(triage.RegionOf(h.Longitude))
		total, available := e.beds(h)
		rc.Hospitals++
		rc.TotalBeds += total
		rc.AvailableBeds += available
	}

	out := make([]models.RegionCapacity, 0, len(rows))
	for _, r := range models.Regions {
		if rc, ok := rows[r]; ok {
			rc.BedUtilization = Percent(rc.TotalBeds-rc.AvailableBeds, rc.TotalBeds)
			out = append(out, *rc)
		}
	}
	return out
}

// RecentActivity returns up to limit tickets, most recently updated first.
func RecentActivity(tickets []models.Ticket, limit int) []models.Ticket {
	out := make([]models.Ticket, len(tickets))
	copy(out, tickets)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
