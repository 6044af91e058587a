package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminal-bench/reliefops/internal/models"
)

func TestShelters(t *testing.T) {
	shelters := []models.Shelter{
		{Name: "B School", Type: models.ShelterRelief, Status: models.ShelterActive, Longitude: 73.8, Capacity: 10, CurrentOccupancy: 10},
		{Name: "A Hall", Type: models.ShelterEmergency, Status: models.ShelterAvailable, Longitude: 73.9, Capacity: 10, CurrentOccupancy: 2},
		{Name: "C Camp", Type: models.ShelterRelief, Status: models.ShelterActive, Longitude: 79.0, Capacity: 10},
	}
	yes, no := true, false

	got := Shelters(shelters, ShelterCriteria{})
	require.Len(t, got, 3)
	assert.Equal(t, "A Hall", got[0].Name)

	got = Shelters(shelters, ShelterCriteria{Type: "relief", Region: models.RegionWestern})
	require.Len(t, got, 1)
	assert.Equal(t, "B School", got[0].Name)

	assert.Len(t, Shelters(shelters, ShelterCriteria{HasCapacity: &yes}), 2)
	assert.Len(t, Shelters(shelters, ShelterCriteria{HasCapacity: &no}), 1)
}

func TestShelterStatusFilter(t *testing.T) {
	shelters := []models.Shelter{
		{Name: "Old", Status: "inactive"},
		{Name: "New", Status: models.ShelterInactive},
		{Name: "Open", Status: models.ShelterAvailable},
		{Name: "Odd", Status: "Bogus"},
	}

	t.Run("should match stored casings by canonical status", func(t *testing.T) {
		status, err := ParseShelterStatusFilter("INACTIVE")
		require.NoError(t, err)
		assert.Equal(t, models.ShelterInactive, status)

		got := Shelters(shelters, ShelterCriteria{Status: status})
		require.Len(t, got, 2)
		assert.Equal(t, "New", got[0].Name)
		assert.Equal(t, "Old", got[1].Name)
	})

	t.Run("should reject unknown statuses", func(t *testing.T) {
		_, err := ParseShelterStatusFilter("closed")
		assert.ErrorIs(t, err, models.ErrUnknownShelterStatus)

		status, err := ParseShelterStatusFilter(" ")
		require.NoError(t, err)
		assert.Empty(t, status)
		assert.Empty(t, Shelters(shelters, ShelterCriteria{Status: "Bogus"}))
	})
}

func TestHospitals(t *testing.T) {
	hospitals := []models.Hospital{
		{Name: "Civil", Longitude: 79.1, TotalBeds: 10, AvailableBeds: 0},
		{Name: "Ruby", Longitude: 73.9, TotalBeds: 10, AvailableBeds: 3},
	}
	yes := true

	got := Hospitals(hospitals, HospitalCriteria{HasBeds: &yes})
	require.Len(t, got, 1)
	assert.Equal(t, "Ruby", got[0].Name)

	got = Hospitals(hospitals, HospitalCriteria{Region: models.RegionVidarbha})
	require.Len(t, got, 1)
	assert.Equal(t, "Civil", got[0].Name)
}

func TestNearby(t *testing.T) {
	shelters := []models.Shelter{
		{Name: "Far", Latitude: 19.0760, Longitude: 72.8777},
		{Name: "Near", Latitude: 18.5300, Longitude: 73.8500},
		{Name: "Here", Latitude: 18.5204, Longitude: 73.8567},
	}

	t.Run("should return shelters in radius, closest first", func(t *testing.T) {
		q, err := NearbyQuery{Latitude: 18.5204, Longitude: 73.8567}.Normalize()
		require.NoError(t, err)
		assert.Equal(t, DefaultNearbyRadiusKm, q.RadiusKm)

		got := NearbyShelters(shelters, q)
		require.Len(t, got, 2)
		assert.Equal(t, "Here", got[0].Name)
		assert.Equal(t, 0.0, got[0].DistanceKm)
		assert.Equal(t, "Near", got[1].Name)
	})

	t.Run("should respect the limit", func(t *testing.T) {
		q, err := NearbyQuery{Latitude: 18.5204, Longitude: 73.8567, RadiusKm: 500, Limit: 1}.Normalize()
		require.NoError(t, err)
		assert.Len(t, NearbyShelters(shelters, q), 1)
	})

	t.Run("should cap the limit and reject bad coordinates", func(t *testing.T) {
		q, err := NearbyQuery{Latitude: 1, Longitude: 1, Limit: 500}.Normalize()
		require.NoError(t, err)
		assert.Equal(t, MaxNearbyLimit, q.Limit)

		_, err = NearbyQuery{Latitude: 91}.Normalize()
		assert.ErrorIs(t, err, models.ErrInvalidCoordinates)
	})

	t.Run("should find hospitals", func(t *testing.T) {
		hospitals := []models.Hospital{{Name: "Sassoon", Latitude: 18.5270, Longitude: 73.8710}}
		q, _ := NearbyQuery{Latitude: 18.5204, Longitude: 73.8567}.Normalize()
		got := NearbyHospitals(hospitals, q)
		require.Len(t, got, 1)
		assert.Greater(t, got[0].DistanceKm, 0.0)
	})
}
