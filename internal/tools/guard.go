package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/dispatch"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
)

// DisabledResult is the failure returned by every cluster-touching tool while
// cluster access is disabled.
type DisabledResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Disabled builds the failure result for disabled mode.
func Disabled() *mcp.CallToolResult {
	body, _ := json.MarshalIndent(DisabledResult{Error: k8s.DisabledMessage}, "", "  ")
	return mcp.NewToolResultError(string(body))
}

// RequireCluster short-circuits h when the connection is disabled. The
// client is never touched in that case.
func RequireCluster(conn k8s.ConnectionInfo, h dispatch.CapabilityHandler) dispatch.CapabilityHandler {
	return func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
		if conn.Connection().Disabled {
			return Disabled(), nil
		}
		return h(ctx, req)
	}
}
