package triage

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminal-bench/reliefops/internal/anomaly"
	"github.com/terminal-bench/reliefops/internal/models"
)

var fixedNow = time.Date(2025, 7, 14, 9, 30, 0, 0, time.UTC)

func newTestClassifier(rec anomaly.Recorder) *Classifier {
	return NewClassifier(
		WithClock(func() time.Time { return fixedNow }),
		WithRecorder(rec),
	)
}

func TestClassify(t *testing.T) {
	c := newTestClassifier(anomaly.Discard)

	t.Run("should classify a large rescue report", func(t *testing.T) {
		ticket, err := c.Classify(models.RawReport{
			ID:       float64(1042),
			People:   60,
			Category: "Needs Rescue",
			Lat:      19.5,
			Lon:      76.5,
			Text:     "trapped under debris",
			Place:    " Aurangabad ",
		})
		require.NoError(t, err)
		assert.Equal(t, 5, ticket.Priority)
		assert.Equal(t, models.RegionCentral, ticket.Region)
		assert.Equal(t, models.StatusPending, ticket.Status)
		assert.Equal(t, "1042", ticket.ExternalID)
		assert.Equal(t, "Aurangabad", ticket.Place)
		assert.NotEqual(t, uuid.Nil, ticket.ID)
		assert.Equal(t, fixedNow, ticket.CreatedAt)
		assert.Equal(t, ticket.CreatedAt, ticket.UpdatedAt)
	})

	t.Run("should parse coordinates sent as strings", func(t *testing.T) {
		ticket, err := c.Classify(models.RawReport{
			ID:        "src-7",
			Status:    "Done",
			Category:  "food",
			Lat:       " 18.52 ",
			Lon:       "73.85",
			Timestamp: "2025-07-14T08:00:00Z",
		})
		require.NoError(t, err)
		assert.InDelta(t, 18.52, ticket.Latitude, 1e-9)
		assert.InDelta(t, 73.85, ticket.Longitude, 1e-9)
		assert.Equal(t, models.RegionWestern, ticket.Region)
		assert.Equal(t, models.CategoryFoodWater, ticket.Category)
		assert.Equal(t, models.StatusPending, ticket.Status, "incoming status is ignored")
		require.NotNil(t, ticket.ReportedAt)
		assert.Equal(t, time.Date(2025, 7, 14, 8, 0, 0, 0, time.UTC), *ticket.ReportedAt)
	})

	t.Run("should keep unrecognised categories verbatim", func(t *testing.T) {
		ticket, err := c.Classify(models.RawReport{Category: "Missing person", Lat: 21.1, Lon: 79.1})
		require.NoError(t, err)
		assert.Equal(t, models.Category("Missing person"), ticket.Category)
		assert.Equal(t, 1, ticket.Priority)
	})

	t.Run("should tolerate unparseable timestamps", func(t *testing.T) {
		ticket, err := c.Classify(models.RawReport{Lat: 20, Lon: 75, Timestamp: "yesterday"})
		require.NoError(t, err)
		assert.Nil(t, ticket.ReportedAt)
	})
}

func TestClassifyValidation(t *testing.T) {
	c := newTestClassifier(anomaly.Discard)

	tests := []struct {
		name  string
		lat   any
		lon   any
		field string
	}{
		{"missing lat", nil, 75.0, "lat"},
		{"empty lat", "  ", 75.0, "lat"},
		{"garbage lon", 19.0, "east-ish", "lon"},
		{"bool lat", true, 75.0, "lat"},
		{"lat out of range", 90.5, 75.0, "lat"},
		{"lon out of range", 19.0, "-180.01", "lon"},
		{"nan lon", 19.0, math.NaN(), "lon"},
		{"nan string lat", "NaN", 75.0, "lat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Classify(models.RawReport{Lat: tt.lat, Lon: tt.lon, Category: "Medical"})
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestClassifyClampsNegativePeople(t *testing.T) {
	rec := &anomaly.Collector{}
	c := newTestClassifier(rec)

	ticket, err := c.Classify(models.RawReport{People: -4, Category: "Shelter", Lat: 19, Lon: 74})
	require.NoError(t, err)
	assert.Equal(t, 0, ticket.People)
	assert.Equal(t, 2, ticket.Priority)

	got := rec.All()
	require.Len(t, got, 1)
	assert.Equal(t, anomaly.KindRange, got[0].Kind)
	assert.Equal(t, "people", got[0].Field)
	assert.Equal(t, ticket.ID, got[0].ID)
}
