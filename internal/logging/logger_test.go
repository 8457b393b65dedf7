package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fivetwenty-io/renku-client/internal/logging"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ renku.Logger = (*logging.Logger)(nil)

func TestLogger_Levels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(&buf, "warn")
	logger.Debug("hidden", nil)
	logger.Info("hidden", nil)
	logger.Warn("Session expired, starting renewal", map[string]interface{}{"target": "https://renku.example.com/ui-server/auth/login"})
	logger.Error("Failed to send alert", map[string]interface{}{"status": 500})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}

	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Session expired, starting renewal", entry["message"])
	assert.Equal(t, "https://renku.example.com/ui-server/auth/login", entry["target"])

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.InDelta(t, 500, entry["status"], 0)
}

func TestLogger_UnknownLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(&buf, "chatty")
	logger.Debug("hidden", nil)
	logger.Info("shown", nil)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
