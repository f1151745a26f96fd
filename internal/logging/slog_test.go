package logging

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, "info", FormatJSON)
		require.NoError(t, err)

		logger.Info("hello", Status(StatusSuccess))
		assert.Contains(t, buf.String(), `"msg":"hello"`)
		assert.Contains(t, buf.String(), `"status":"success"`)
	})

	t.Run("text format filters below level", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, "warn", "")
		require.NoError(t, err)

		logger.Info("dropped")
		logger.Warn("kept")
		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := New(&bytes.Buffer{}, "info", "xml")
		assert.ErrorContains(t, err, `unsupported log format "xml"`)
	})
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
}

func TestSanitizeHost(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{name: "empty host", host: "", expected: "<empty>"},
		{name: "hostname without IP", host: "https://kind-control-plane:6443", expected: "https://kind-control-plane:6443"},
		{name: "IP address URL", host: "https://192.168.1.100:6443", expected: "https://<redacted-ip>:6443"},
		{name: "bare IP address", host: "192.168.1.100", expected: "<redacted-ip>"},
		{name: "IP with port no scheme", host: "10.0.0.1:6443", expected: "<redacted-ip>:6443"},
		{name: "IPv6 address URL with brackets", host: "https://[2001:db8::1]:6443", expected: "https://<redacted-ip>:6443"},
		{name: "bare IPv6 address", host: "2001:db8::1", expected: "<redacted-ip>"},
		{name: "docker host alias", host: "https://host.docker.internal:6443", expected: "https://host.docker.internal:6443"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeHost(tt.host))
		})
	}
}

func TestSlogAttributes(t *testing.T) {
	t.Run("Operation", func(t *testing.T) {
		attr := Operation("list")
		assert.Equal(t, KeyOperation, attr.Key)
		assert.Equal(t, "list", attr.Value.String())
	})

	t.Run("Namespace", func(t *testing.T) {
		attr := Namespace("hlf-operator")
		assert.Equal(t, KeyNamespace, attr.Key)
		assert.Equal(t, "hlf-operator", attr.Value.String())
	})

	t.Run("Method", func(t *testing.T) {
		attr := Method("tools/call")
		assert.Equal(t, KeyMethod, attr.Key)
		assert.Equal(t, "tools/call", attr.Value.String())
	})

	t.Run("Duration", func(t *testing.T) {
		attr := Duration(2 * time.Second)
		assert.Equal(t, KeyDuration, attr.Key)
		assert.Equal(t, 2*time.Second, attr.Value.Duration())
	})

	t.Run("Err with nil", func(t *testing.T) {
		attr := Err(nil)
		assert.Equal(t, KeyError, attr.Key)
		assert.Equal(t, "", attr.Value.String())
	})

	t.Run("Err with error", func(t *testing.T) {
		attr := Err(fmt.Errorf("test error message"))
		assert.Equal(t, "test error message", attr.Value.String())
	})

	t.Run("SanitizedErr with IP in error message", func(t *testing.T) {
		attr := SanitizedErr(fmt.Errorf("dial https://192.168.1.100:6443: connection refused"))
		assert.NotContains(t, attr.Value.String(), "192.168.1.100")
		assert.Contains(t, attr.Value.String(), "<redacted-ip>")
		assert.Contains(t, attr.Value.String(), "connection refused")
	})

	t.Run("Host", func(t *testing.T) {
		attr := Host("https://192.168.1.1:6443")
		assert.Equal(t, KeyHost, attr.Key)
		assert.NotContains(t, attr.Value.String(), "192.168")
	})
}

func TestWithToolLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	WithTool(logger, "hlf-list-peers").Info("test message")

	assert.Contains(t, buf.String(), `"tool":"hlf-list-peers"`)
}

func TestWithSessionLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	WithSession(logger, "abc123").Info("test message")

	assert.Contains(t, buf.String(), `"session":"abc123"`)
}
