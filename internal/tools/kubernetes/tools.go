// Package kubernetes registers the cluster-primitive capabilities: namespaces,
// pods, services, deployments, logs, exec and policy listings.
package kubernetes

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/dispatch"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools"
)

// Tools is the cluster-primitive capability group.
type Tools struct {
	client k8s.Client
}

// New returns the group backed by client.
func New(client k8s.Client) *Tools {
	return &Tools{client: client}
}

func (t *Tools) Group() dispatch.Group { return dispatch.GroupCluster }

func namespaceArg(what string) mcp.ToolOption {
	return mcp.WithString("namespace",
		mcp.Description("Namespace to list "+what+" from (default: current namespace)"),
	)
}

func dummyArg() mcp.ToolOption {
	return mcp.WithString("random_string",
		mcp.Description("Dummy parameter for no-parameter tools"),
	)
}

// Capabilities returns the group's tools. Every one of them needs the cluster.
func (t *Tools) Capabilities() []dispatch.Capability {
	defs := []struct {
		tool    mcp.Tool
		handler dispatch.CapabilityHandler
	}{
		{
			mcp.NewTool("k8s-test-connection",
				mcp.WithDescription("Test connection to Kubernetes cluster and get basic info"),
				dummyArg(),
			),
			t.testConnection,
		},
		{
			mcp.NewTool("k8s-list-namespaces",
				mcp.WithDescription("List all namespaces in the cluster"),
				dummyArg(),
			),
			t.listNamespaces,
		},
		{
			mcp.NewTool("k8s-list-pods",
				mcp.WithDescription("List pods in a namespace (default: current namespace)"),
				namespaceArg("pods"),
				mcp.WithString("labelSelector", mcp.Description("Label selector to filter pods")),
			),
			t.listPods,
		},
		{
			mcp.NewTool("k8s-get-pod",
				mcp.WithDescription("Get detailed information about a specific pod"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Pod name")),
				mcp.WithString("namespace", mcp.Description("Namespace (default: current namespace)")),
			),
			t.getPod,
		},
		{
			mcp.NewTool("k8s-list-services",
				mcp.WithDescription("List services in a namespace"),
				namespaceArg("services"),
			),
			t.listServices,
		},
		{
			mcp.NewTool("k8s-list-deployments",
				mcp.WithDescription("List deployments in a namespace"),
				namespaceArg("deployments"),
			),
			t.listDeployments,
		},
		{
			mcp.NewTool("k8s-get-logs",
				mcp.WithDescription("Get logs from a pod"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Pod name")),
				mcp.WithString("namespace", mcp.Description("Namespace (default: current namespace)")),
				mcp.WithString("container", mcp.Description("Container name (for multi-container pods)")),
				mcp.WithNumber("tailLines", mcp.Description("Number of lines to tail (default: 100)")),
				mcp.WithBoolean("previous", mcp.Description("Return logs of the previous container instance")),
			),
			t.getLogs,
		},
		{
			mcp.NewTool("k8s-exec",
				mcp.WithDescription("Execute a command in a pod and return its output"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Pod name")),
				mcp.WithString("namespace", mcp.Description("Namespace (default: current namespace)")),
				mcp.WithString("container", mcp.Description("Container name (for multi-container pods)")),
				mcp.WithArray("command",
					mcp.Required(),
					mcp.Description("Command to execute (as array)"),
					mcp.WithStringItems(),
				),
			),
			t.exec,
		},
		{
			mcp.NewTool("k8s-list-network-policies",
				mcp.WithDescription("List network policies in a namespace"),
				namespaceArg("network policies"),
			),
			t.listNetworkPolicies,
		},
		{
			mcp.NewTool("k8s-list-role-bindings",
				mcp.WithDescription("List RBAC role bindings in a namespace"),
				namespaceArg("role bindings"),
			),
			t.listRoleBindings,
		},
	}

	caps := make([]dispatch.Capability, 0, len(defs))
	for _, d := range defs {
		caps = append(caps, dispatch.Capability{
			Tool:    d.tool,
			Group:   dispatch.GroupCluster,
			Handler: tools.RequireCluster(t.client, d.handler),
		})
	}
	return caps
}
