package toolstest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/dispatch"
)

// Engine registers contributors and returns an engine without a protocol core.
func Engine(contributors ...dispatch.Contributor) *dispatch.Engine {
	regs := dispatch.NewRegistries(nil)
	regs.RegisterContributors(contributors...)
	return dispatch.NewEngine(regs, nil)
}

// Invoke calls a tool through the engine and returns its result.
func Invoke(t *testing.T, e *dispatch.Engine, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result := e.Invoke(context.Background(), name, args)
	require.NotNil(t, result)
	return result
}

// Text returns the single text content of a result.
func Text(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, r.Content, 1)
	text, ok := mcp.AsTextContent(r.Content[0])
	require.True(t, ok, "expected text content")
	return text.Text
}

// Decode invokes name, requires success and decodes the JSON text into out.
func Decode(t *testing.T, e *dispatch.Engine, name string, args map[string]any, out any) {
	t.Helper()
	r := Invoke(t, e, name, args)
	require.False(t, r.IsError, "unexpected failure: %s", Text(t, r))
	require.NoError(t, json.Unmarshal([]byte(Text(t, r)), out))
}

// Failure invokes name, requires a failure result and returns its text.
func Failure(t *testing.T, e *dispatch.Engine, name string, args map[string]any) string {
	t.Helper()
	r := Invoke(t, e, name, args)
	require.True(t, r.IsError, "expected failure, got: %s", Text(t, r))
	return Text(t, r)
}
