package aggregate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminal-bench/reliefops/internal/models"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.Equal(t, 33.33, Percent(1, 3))
	assert.Equal(t, 66.67, Percent(2, 3))
	assert.Equal(t, 100.0, Percent(7, 7))
}

func TestResourceOverview(t *testing.T) {
	snap := sampleSnapshot()
	o := NewEngine(nil).ResourceOverview(snap.Shelters, snap.Hospitals)

	assert.Equal(t, 3, o.Shelters.Total)
	assert.Equal(t, 180, o.Shelters.TotalCapacity)
	assert.Equal(t, 90, o.Shelters.CurrentOccupancy)
	assert.Equal(t, 60, o.Shelters.Available, "inactive shelters offer no capacity")
	assert.Equal(t, 50.0, o.Shelters.UtilizationRate)
	assert.Equal(t, models.TypeBreakdown{Count: 2, TotalCapacity: 130}, o.Shelters.ByType[models.ShelterRelief])
	assert.Equal(t, models.TypeBreakdown{Count: 1, TotalCapacity: 50}, o.Shelters.ByType[models.ShelterEmergency])
	assert.Equal(t, 1, o.Shelters.ByStatus[models.ShelterInactive])

	assert.Equal(t, 2, o.Hospitals.Total)
	assert.Equal(t, 240, o.Hospitals.TotalBeds)
	assert.Equal(t, 186, o.Hospitals.OccupiedBeds)
	assert.Equal(t, 77.5, o.Hospitals.UtilizationRate)
	assert.Equal(t, 24, o.Hospitals.ICUBeds)
	assert.Equal(t, 79.17, o.Hospitals.ICUUtilizationRate)
	assert.Equal(t, 1, o.Hospitals.ByRegion[models.RegionVidarbha])
}

func TestShelterAvailabilityAgreesAcrossViews(t *testing.T) {
	shelters := []models.Shelter{
		{ID: uuid.New(), Longitude: 73.9, Capacity: 100, CurrentOccupancy: 0, Status: "inactive"},
		{ID: uuid.New(), Longitude: 73.8, Capacity: 40, CurrentOccupancy: 10, Status: models.ShelterActive},
	}
	e := NewEngine(nil)

	stats := e.SummaryStats(nil, shelters, nil)
	overview := e.ResourceOverview(shelters, nil)
	rows := e.RegionalCapacity(shelters, nil)

	assert.Equal(t, 30, stats.AvailableShelterCapacity)
	assert.Equal(t, 30, overview.Shelters.Available)
	assert.Equal(t, 1, overview.Shelters.ByStatus[models.ShelterInactive], "legacy casing is counted canonically")
	require.NotEmpty(t, rows)
	assert.Equal(t, 30, rows[0].ShelterAvailable)
}

func TestRegionalCapacity(t *testing.T) {
	snap := sampleSnapshot()
	rows := NewEngine(nil).RegionalCapacity(snap.Shelters, snap.Hospitals)

	require.Len(t, rows, 3)
	assert.Equal(t, models.RegionWestern, rows[0].Region)
	assert.Equal(t, 60, rows[0].ShelterAvailable)
	assert.Equal(t, 75.0, rows[0].BedUtilization)
	assert.Equal(t, models.RegionCentral, rows[1].Region)
	assert.Equal(t, 0, rows[1].Hospitals)
	assert.Equal(t, 0.0, rows[1].BedUtilization)
	assert.Equal(t, models.RegionVidarbha, rows[2].Region)
	assert.Equal(t, 0, rows[2].ShelterAvailable, "inactive shelters offer no capacity")
	assert.Equal(t, 30, rows[2].ShelterCapacity)
}

func TestRecentActivity(t *testing.T) {
	a := ticket(models.StatusPending, 1, 1, 74, 0)
	b := ticket(models.StatusPending, 1, 1, 74, time.Hour)
	c := ticket(models.StatusPending, 1, 1, 74, 2*time.Hour)
	in := []models.Ticket{a, c, b}

	got := RecentActivity(in, 2)

	require.Len(t, got, 2)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
	assert.Equal(t, a.ID, in[0].ID, "input is left untouched")
}
