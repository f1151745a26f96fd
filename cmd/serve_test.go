package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmdProperties(t *testing.T) {
	cmd := newServeCmd()

	assert.Equal(t, "serve", cmd.Use)
	assert.Equal(t, "Start the MCP gateway", cmd.Short)
	assert.Contains(t, cmd.Long, "Model Context Protocol")
	assert.Contains(t, cmd.Long, "stdio")
	assert.Contains(t, cmd.Long, "streamable-http")
	assert.NotContains(t, cmd.Long, "sse")
}

func TestServeCmdFlagDefaults(t *testing.T) {
	cmd := newServeCmd()

	tests := []struct {
		flagName string
		expected string
	}{
		{"transport", "stdio"},
		{"http-addr", ""},
		{"http-endpoint", "/mcp"},
		{"kubeconfig", ""},
		{"context", ""},
		{"in-cluster", "false"},
		{"qps", "20"},
		{"burst", "30"},
		{"timeout", "30s"},
		{"debug", "false"},
		{"log-level", "info"},
		{"log-format", "text"},
		{"env-file", ""},
		{"metrics-addr", ":9090"},
		{"enable-metrics", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.flagName)
			require.NotNil(t, flag, "flag %s should exist", tt.flagName)
			assert.Equal(t, tt.expected, flag.DefValue)
		})
	}
}

func TestServeCmdRejectsArgs(t *testing.T) {
	cmd := newServeCmd()
	cmd.SetArgs([]string{"extra"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}

// disabledSettings loads settings for a gateway that never contacts a cluster.
func disabledSettings(t *testing.T, args ...string) serveSettings {
	t.Helper()
	clearServeEnv(t)
	t.Setenv("K8S_DISABLED", "true")

	cmd, f := parsedServeCmd(t, args...)
	s, err := loadServeSettings(cmd, *f)
	require.NoError(t, err)
	return s
}

func TestRunServeStdioDisabledCluster(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	s := disabledSettings(t, "--log-level", "error")

	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"prompts/list"}`,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"k8s-list-namespaces","arguments":{}}}`,
	}, "\n") + "\n")
	var out, stderr bytes.Buffer

	err := runServe(context.Background(), s, in, &out, &stderr)
	require.NoError(t, err)

	responses := map[float64]map[string]any{}
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var msg map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &msg), "stdout must only carry JSON-RPC frames: %q", line)
		id, ok := msg["id"].(float64)
		require.True(t, ok)
		responses[id] = msg
	}
	require.Len(t, responses, 4)

	initResult, ok := responses[1]["result"].(map[string]any)
	require.True(t, ok)
	serverInfo, _ := initResult["serverInfo"].(map[string]any)
	assert.Equal(t, "bevel-operator-fabric", serverInfo["name"])

	toolsResult, ok := responses[2]["result"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, toolsResult["tools"])

	promptsResult, ok := responses[3]["result"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, promptsResult["prompts"])

	// Tools stay listed without a cluster and fail per call.
	callResult, ok := responses[4]["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, callResult["isError"])
}

func TestRunServeInvalidLogFormat(t *testing.T) {
	s := disabledSettings(t)
	s.Serve.LogFormat = "xml"

	err := runServe(context.Background(), s, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunServeBootstrapFailure(t *testing.T) {
	s := disabledSettings(t, "--log-level", "error")
	s.Bootstrap.Disabled = false
	s.Bootstrap.KubeconfigPath = t.TempDir() + "/missing-kubeconfig"

	err := runServe(context.Background(), s, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bootstrap kubernetes connection")
}

func TestRunServeUnsupportedTransport(t *testing.T) {
	s := disabledSettings(t, "--log-level", "error")
	s.Serve.Transport = "sse"

	err := runServe(context.Background(), s, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport type")
}

// parsedServeCmd returns a serve command whose flags were parsed from args,
// together with the flag values it bound.
func parsedServeCmd(t *testing.T, args ...string) (*cobra.Command, *serveFlags) {
	t.Helper()
	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, flagsFromCmd(t, cmd)
}

func flagsFromCmd(t *testing.T, cmd *cobra.Command) *serveFlags {
	t.Helper()
	fs := cmd.Flags()
	var f serveFlags
	var err error

	f.transport, err = fs.GetString("transport")
	require.NoError(t, err)
	f.httpAddr, _ = fs.GetString("http-addr")
	f.httpEndpoint, _ = fs.GetString("http-endpoint")
	f.kubeconfig, _ = fs.GetString("kubeconfig")
	f.kubeContext, _ = fs.GetString("context")
	f.inCluster, _ = fs.GetBool("in-cluster")
	f.qps, _ = fs.GetFloat32("qps")
	f.burst, _ = fs.GetInt("burst")
	f.timeout, _ = fs.GetDuration("timeout")
	f.debug, _ = fs.GetBool("debug")
	f.envFile, _ = fs.GetString("env-file")
	f.metricsAddr, _ = fs.GetString("metrics-addr")
	f.enableMetrics, _ = fs.GetBool("enable-metrics")
	f.logLevel, _ = fs.GetString("log-level")
	f.logFormat, _ = fs.GetString("log-format")
	return &f
}
