// Package utility registers helper capabilities: YAML conversion, manifest
// dry runs, cluster usage summaries, resource snapshots and Fabric connection
// profile generation.
package utility

import (
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/dispatch"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools"
)

// Tools is the utility capability group.
type Tools struct {
	client k8s.Client
	now    func() time.Time
}

// Option configures Tools.
type Option func(*Tools)

// WithClock overrides the clock used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tools) { t.now = now }
}

// New returns the group. Only the cluster-touching tools use client.
func New(client k8s.Client, opts ...Option) *Tools {
	t := &Tools{client: client, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tools) Group() dispatch.Group { return dispatch.GroupUtility }

func (t *Tools) Capabilities() []dispatch.Capability {
	local := func(tool mcp.Tool, h dispatch.CapabilityHandler) dispatch.Capability {
		return dispatch.Capability{Tool: tool, Group: dispatch.GroupUtility, Handler: h}
	}
	cluster := func(tool mcp.Tool, h dispatch.CapabilityHandler) dispatch.Capability {
		return dispatch.Capability{Tool: tool, Group: dispatch.GroupUtility, Handler: tools.RequireCluster(t.client, h)}
	}

	return []dispatch.Capability{
		local(mcp.NewTool("parse-yaml",
			mcp.WithDescription("Parse YAML content and return as JSON"),
			mcp.WithString("content", mcp.Required(), mcp.Description("YAML content to parse")),
		), parseYAML),
		local(mcp.NewTool("generate-yaml",
			mcp.WithDescription("Generate YAML content from JSON object"),
			mcp.WithObject("data", mcp.Required(), mcp.Description("JSON object to convert to YAML")),
		), generateYAML),
		local(mcp.NewTool("k8s-apply-manifest",
			mcp.WithDescription("Validate a Kubernetes manifest and report what would be applied. Resources are never modified."),
			mcp.WithString("manifest", mcp.Required(), mcp.Description("YAML manifest content")),
			mcp.WithBoolean("dryRun", mcp.Description("Perform a dry run (default: true for safety)")),
		), applyManifest),
		cluster(mcp.NewTool("k8s-resource-usage",
			mcp.WithDescription("Get resource usage information for the cluster"),
			mcp.WithString("namespace", mcp.Description("Namespace to check (default: all namespaces)")),
		), t.resourceUsage),
		cluster(mcp.NewTool("k8s-watch-resources",
			mcp.WithDescription("Get current state of resources (simplified watch)"),
			mcp.WithString("resource",
				mcp.Required(),
				mcp.Enum(watchable...),
				mcp.Description("Resource type to watch"),
			),
			mcp.WithString("namespace", mcp.Description("Namespace to watch (default: current namespace)")),
		), t.watchResources),
		local(mcp.NewTool("hlf-generate-network-config",
			mcp.WithDescription("Generate a network configuration template for Hyperledger Fabric"),
			mcp.WithString("organizationName", mcp.Required(), mcp.Description("Name of the organization")),
			mcp.WithString("mspId", mcp.Required(), mcp.Description("MSP ID for the organization")),
			mcp.WithString("domain", mcp.Required(), mcp.Description("Domain for the organization (e.g., org1.example.com)")),
		), generateNetworkConfig),
	}
}
