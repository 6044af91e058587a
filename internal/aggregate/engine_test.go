package aggregate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminal-bench/reliefops/internal/anomaly"
	"github.com/terminal-bench/reliefops/internal/models"
)

var t0 = time.Date(2025, 7, 14, 6, 0, 0, 0, time.UTC)

func ticket(status models.TicketStatus, priority, people int, lon float64, created time.Duration) models.Ticket {
	return models.Ticket{
		ID:        uuid.New(),
		Status:    status,
		Priority:  priority,
		People:    people,
		Latitude:  19,
		Longitude: lon,
		Category:  models.CategoryRescue,
		CreatedAt: t0.Add(created),
		UpdatedAt: t0.Add(created),
	}
}

func sampleSnapshot() models.Snapshot {
	return models.Snapshot{
		Tickets: []models.Ticket{
			ticket(models.StatusPending, 5, 10, 73.8, 0),
			ticket(models.StatusInProgress, 4, 25, 76.1, time.Minute),
			ticket(models.StatusDone, 5, 3, 79.0, 2*time.Minute),
			ticket(models.StatusCancelled, 2, 40, 73.1, 3*time.Minute),
			ticket(models.StatusPending, 2, 7, 95.0, 4*time.Minute),
		},
		Shelters: []models.Shelter{
			{ID: uuid.New(), Longitude: 73.9, Capacity: 100, CurrentOccupancy: 40, Status: models.ShelterActive, Type: models.ShelterRelief},
			{ID: uuid.New(), Longitude: 76.4, Capacity: 50, CurrentOccupancy: 50, Status: models.ShelterAvailable, Type: models.ShelterEmergency},
			{ID: uuid.New(), Longitude: 79.2, Capacity: 30, CurrentOccupancy: 0, Status: models.ShelterInactive, Type: models.ShelterRelief},
		},
		Hospitals: []models.Hospital{
			{ID: uuid.New(), Longitude: 73.8, TotalBeds: 200, AvailableBeds: 50, ICUBeds: 20, AvailableICU: 5},
			{ID: uuid.New(), Longitude: 79.1, TotalBeds: 40, AvailableBeds: 4, ICUBeds: 4, AvailableICU: 0},
		},
	}
}

func TestSummaryStats(t *testing.T) {
	snap := sampleSnapshot()
	e := NewEngine(nil)

	s := e.SummaryStats(snap.Tickets, snap.Shelters, snap.Hospitals)

	assert.Equal(t, 5, s.TotalSOS)
	assert.Equal(t, 2, s.PendingSOS)
	assert.Equal(t, 1, s.InProgressSOS)
	assert.Equal(t, 1, s.CompletedSOS)
	assert.Equal(t, 1, s.CancelledSOS)
	assert.Equal(t, 10+25+3+7, s.TotalPeopleAffected, "cancelled tickets are excluded")
	assert.Equal(t, 60, s.AvailableShelterCapacity, "inactive shelters are excluded")
	assert.Equal(t, 180, s.TotalShelterCapacity)
	assert.Equal(t, 54, s.AvailableHospitalBeds)
	assert.Equal(t, 240, s.TotalHospitalBeds)
}

func TestSummaryStatsStatusCountsSumToTotal(t *testing.T) {
	rec := &anomaly.Collector{}
	e := NewEngine(rec)
	tickets := sampleSnapshot().Tickets
	tickets = append(tickets, ticket(models.TicketStatus("Archived"), 3, 1, 74, 0))

	s := e.SummaryStats(tickets, nil, nil)

	assert.Equal(t, s.TotalSOS, s.PendingSOS+s.InProgressSOS+s.CompletedSOS+s.CancelledSOS)
	require.Len(t, rec.All(), 1)
	assert.Equal(t, "status", rec.All()[0].Field)
}

func TestSummaryStatsClampsBrokenRecords(t *testing.T) {
	rec := &anomaly.Collector{}
	e := NewEngine(rec)

	s := e.SummaryStats(
		[]models.Ticket{ticket(models.StatusPending, 3, -5, 74, 0)},
		[]models.Shelter{{ID: uuid.New(), Capacity: 10, CurrentOccupancy: 14, Status: models.ShelterActive}},
		[]models.Hospital{
			{ID: uuid.New(), TotalBeds: 10, AvailableBeds: 12},
			{ID: uuid.New(), TotalBeds: 10, AvailableBeds: -3},
		},
	)

	assert.Equal(t, 0, s.TotalPeopleAffected)
	assert.Equal(t, 0, s.AvailableShelterCapacity)
	assert.Equal(t, 10, s.AvailableHospitalBeds)
	assert.Len(t, rec.All(), 4)
	for _, a := range rec.All() {
		assert.Equal(t, anomaly.KindIntegrity, a.Kind)
	}
}

func TestRegionalBreakdown(t *testing.T) {
	e := NewEngine(nil)

	rows := e.RegionalBreakdown(sampleSnapshot().Tickets)

	assert.Equal(t, []models.RegionRow{
		{Region: models.RegionWestern, SOSCount: 2, PeopleAffected: 10},
		{Region: models.RegionCentral, SOSCount: 1, PeopleAffected: 25},
		{Region: models.RegionVidarbha, SOSCount: 1, PeopleAffected: 3},
		{Region: models.RegionUnknown, SOSCount: 1, PeopleAffected: 7},
	}, rows)

	t.Run("should omit regions without tickets", func(t *testing.T) {
		rows := e.RegionalBreakdown([]models.Ticket{ticket(models.StatusPending, 1, 2, 80, 0)})
		require.Len(t, rows, 1)
		assert.Equal(t, models.RegionVidarbha, rows[0].Region)
	})

	t.Run("should return an empty list for no tickets", func(t *testing.T) {
		rows := e.RegionalBreakdown(nil)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})
}

func TestCategoryBreakdown(t *testing.T) {
	e := NewEngine(nil)
	tickets := []models.Ticket{
		{Category: models.CategoryMedical, People: 2, Status: models.StatusPending},
		{Category: models.CategoryRescue, People: 5, Status: models.StatusPending},
		{Category: models.CategoryRescue, People: 1, Status: models.StatusCancelled},
		{Category: "Lost pet", People: 1, Status: models.StatusDone},
	}

	assert.Equal(t, []models.CategoryRow{
		{Category: models.CategoryRescue, Count: 2, PeopleAffected: 5},
		{Category: models.CategoryMedical, Count: 1, PeopleAffected: 2},
		{Category: "Other", Count: 1, PeopleAffected: 1},
	}, e.CategoryBreakdown(tickets))
}

func TestEngineIsIdempotent(t *testing.T) {
	snap := sampleSnapshot()
	e := NewEngine(nil)

	assert.Equal(t,
		e.SummaryStats(snap.Tickets, snap.Shelters, snap.Hospitals),
		e.SummaryStats(snap.Tickets, snap.Shelters, snap.Hospitals))
	assert.Equal(t, e.RegionalBreakdown(snap.Tickets), e.RegionalBreakdown(snap.Tickets))
	assert.Equal(t,
		e.CriticalAlerts(snap.Tickets, snap.Shelters, snap.Hospitals),
		e.CriticalAlerts(snap.Tickets, snap.Shelters, snap.Hospitals))
	assert.Equal(t,
		e.ResourceOverview(snap.Shelters, snap.Hospitals),
		e.ResourceOverview(snap.Shelters, snap.Hospitals))
}
