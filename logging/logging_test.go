// ABOUTME: Tests for logger configuration and context helpers
// ABOUTME: Captures output in a buffer
package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSON(t *testing.T) {
	prev := log.Default()
	t.Cleanup(func() { log.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, InitWriter(&buf, "info", "json"))

	log.Debug("hidden")
	log.Info("partner created", "name", "Lincoln High")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "partner created", line["msg"])
	assert.Equal(t, "Lincoln High", line["name"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestInitRejectsUnknown(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, InitWriter(&buf, "loud", "text"))
	assert.Error(t, InitWriter(&buf, "info", "xml"))
}

func TestRequestLogger(t *testing.T) {
	prev := log.Default()
	t.Cleanup(func() { log.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, InitWriter(&buf, "debug", "logfmt"))

	ctx := WithRequestID(context.Background(), "01HREQ")
	FromContext(ctx).Info("handled")
	assert.Contains(t, buf.String(), "request_id=01HREQ")

	assert.Same(t, log.Default(), FromContext(context.Background()))
}
