package aggregate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminal-bench/reliefops/internal/models"
)

func TestCriticalSOS(t *testing.T) {
	e := NewEngine(nil)

	t.Run("should order by priority then creation time", func(t *testing.T) {
		t1 := ticket(models.StatusPending, 5, 1, 74, 0)
		t2 := ticket(models.StatusPending, 4, 1, 74, time.Minute)
		t3 := ticket(models.StatusInProgress, 5, 1, 74, 2*time.Minute)

		got := e.CriticalSOS([]models.Ticket{t2, t3, t1})

		require.Len(t, got, 3)
		assert.Equal(t, []uuid.UUID{t1.ID, t3.ID, t2.ID}, []uuid.UUID{got[0].ID, got[1].ID, got[2].ID})
	})

	t.Run("should never include closed or low priority tickets", func(t *testing.T) {
		got := e.CriticalSOS(sampleSnapshot().Tickets)
		for _, tk := range got {
			assert.GreaterOrEqual(t, tk.Priority, CriticalPriority)
			assert.True(t, tk.Status.Open())
		}
		assert.Len(t, got, 2)
	})

	t.Run("should not reorder the input", func(t *testing.T) {
		in := []models.Ticket{
			ticket(models.StatusPending, 4, 1, 74, time.Minute),
			ticket(models.StatusPending, 5, 1, 74, 0),
		}
		first := in[0].ID
		e.CriticalSOS(in)
		assert.Equal(t, first, in[0].ID)
	})
}

func TestFullShelters(t *testing.T) {
	e := NewEngine(nil)
	full := models.Shelter{ID: uuid.New(), Capacity: 50, CurrentOccupancy: 50, Status: models.ShelterAvailable}
	flaggedFull := models.Shelter{ID: uuid.New(), Capacity: 50, CurrentOccupancy: 10, Status: models.ShelterFull}

	got := e.FullShelters([]models.Shelter{full, flaggedFull})

	require.Len(t, got, 1, "occupancy decides, not the status label")
	assert.Equal(t, full.ID, got[0].ID)
}

func TestLowBedHospitals(t *testing.T) {
	e := NewEngine(nil)
	tests := []struct {
		name      string
		total     int
		available int
		want      bool
	}{
		{"degenerate zero beds", 0, 0, true},
		{"no free beds", 100, 0, true},
		{"exactly ten percent", 100, 10, true},
		{"above ten percent", 100, 11, false},
		{"rounded down threshold", 19, 1, true},
		{"rounded down threshold exceeded", 19, 2, false},
		{"small hospital with one bed free", 5, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := models.Hospital{ID: uuid.New(), TotalBeds: tt.total, AvailableBeds: tt.available}
			got := e.LowBedHospitals([]models.Hospital{h})
			assert.Equal(t, tt.want, len(got) == 1)
		})
	}
}

func TestCriticalAlerts(t *testing.T) {
	snap := sampleSnapshot()
	e := NewEngine(nil)

	t.Run("should compute every list by default", func(t *testing.T) {
		set := e.CriticalAlerts(snap.Tickets, snap.Shelters, snap.Hospitals)
		assert.Len(t, set.CriticalSOS, 2)
		assert.Len(t, set.FullShelters, 1)
		assert.Len(t, set.LowBedHospitals, 1)
	})

	t.Run("should compute only the requested subset", func(t *testing.T) {
		set := e.CriticalAlerts(snap.Tickets, snap.Shelters, snap.Hospitals, models.AlertFullShelters)
		assert.Nil(t, set.CriticalSOS)
		assert.Nil(t, set.LowBedHospitals)
		assert.Len(t, set.FullShelters, 1)
	})

	t.Run("should return empty lists rather than nil when nothing alerts", func(t *testing.T) {
		set := e.CriticalAlerts(nil, nil, nil)
		assert.NotNil(t, set.CriticalSOS)
		assert.NotNil(t, set.FullShelters)
		assert.NotNil(t, set.LowBedHospitals)
	})
}
