package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lectern/internal/platform/logger"
)

func TestJSONLoggerCarriesComponentAndFiltersLevel(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	log := logger.New(buf, "json", "warn").With("component", "sync")

	log.Info("dropped")
	log.Warn("remote unreachable", "attempt", 2)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	entry := map[string]any{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "remote unreachable", entry["msg"])
	assert.Equal(t, "sync", entry["component"])
	assert.Equal(t, float64(2), entry["attempt"])
	assert.Equal(t, "WARN", entry["level"])
}
