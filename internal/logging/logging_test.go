package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("UTC+2", 2*60*60)

	l := New(&buf, "debug", loc)
	l.WithFields(log.Fields{"component": "test"}).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "test", entry["component"])

	ts, ok := entry["ts"].(string)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	require.NoError(t, err)
	_, offset := parsed.Zone()
	assert.Equal(t, 2*60*60, offset)
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer

	l := New(&buf, "warn", nil)
	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")

	assert.Equal(t, log.InfoLevel, New(&buf, "nonsense", nil).GetLevel())
}
