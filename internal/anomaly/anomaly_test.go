package anomaly

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRecorder(t *testing.T) {
	logger, hook := test.NewNullLogger()
	id := uuid.New()

	NewLogRecorder(logger).Record(Anomaly{
		Kind:   KindIntegrity,
		Entity: "shelter",
		ID:     id,
		Field:  "current_occupancy",
		Detail: "occupancy exceeds capacity",
	})

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "occupancy exceeds capacity", entry.Message)
	assert.Equal(t, "integrity", entry.Data["anomaly"])
	assert.Equal(t, id.String(), entry.Data["id"])
}

func TestMulti(t *testing.T) {
	var a, b Collector
	Multi(&a, &b, Discard).Record(Anomaly{Kind: KindRange, Entity: "ticket"})

	assert.Len(t, a.All(), 1)
	assert.Len(t, b.All(), 1)
}
