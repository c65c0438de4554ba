package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLast(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestAuditLogger_LogCredit(t *testing.T) {
	var buf bytes.Buffer
	a := NewAuditLogger(zerolog.New(&buf))

	a.LogCredit("SUP-abc", "fan-1", "creator-1", 50000, "gateway")

	entry := decodeLast(t, &buf)
	assert.Equal(t, "AUDIT", entry["message"])
	assert.Equal(t, "CREDIT", entry["event_type"])
	assert.Equal(t, "SUP-abc", entry["order_id"])
	assert.Equal(t, "creator-1", entry["account_id"])
	assert.Equal(t, float64(50000), entry["amount"])
	details := entry["details"].(map[string]any)
	assert.Equal(t, "fan-1", details["fan_id"])
	assert.Equal(t, "gateway", details["source"])
}

func TestAuditLogger_LogAnomaly(t *testing.T) {
	var buf bytes.Buffer
	a := NewAuditLogger(zerolog.New(&buf))

	a.LogAnomaly("SUP-abc", "recipient_not_found", nil)

	entry := decodeLast(t, &buf)
	assert.Equal(t, "ANOMALY", entry["event_type"])
	assert.Equal(t, "IGNORED", entry["status"])
	assert.Equal(t, "recipient_not_found", entry["details"].(map[string]any)["reason"])
}

func TestAuditLogger_LogError(t *testing.T) {
	var buf bytes.Buffer
	a := NewAuditLogger(zerolog.New(&buf))

	a.LogError("SUP-abc", "creator-1", errors.New("connection reset"))

	entry := decodeLast(t, &buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "FAILED", entry["status"])
	assert.Equal(t, "connection reset", entry["details"].(map[string]any)["error"])
}
