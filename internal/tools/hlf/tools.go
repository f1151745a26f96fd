// Package hlf registers the capabilities that read Hyperledger Fabric custom
// resources managed by the HLF operator, and the operator itself.
package hlf

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/dispatch"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools"
)

// Tools is the domain-resource capability group.
type Tools struct {
	client k8s.Client
}

// New returns the group backed by client.
func New(client k8s.Client) *Tools {
	return &Tools{client: client}
}

func (t *Tools) Group() dispatch.Group { return dispatch.GroupDomain }

func (t *Tools) Capabilities() []dispatch.Capability {
	caps := make([]dispatch.Capability, 0, len(listings)+2)
	for _, l := range listings {
		caps = append(caps, dispatch.Capability{
			Tool: mcp.NewTool(l.tool,
				mcp.WithDescription(l.description),
				mcp.WithString("namespace",
					mcp.Description("Namespace to list "+l.noun+" from (default: current namespace)"),
				),
			),
			Group:   dispatch.GroupDomain,
			Handler: tools.RequireCluster(t.client, t.lister(l)),
		})
	}

	caps = append(caps,
		dispatch.Capability{
			Tool: mcp.NewTool("hlf-get-resource",
				mcp.WithDescription("Get detailed information about a specific Hyperledger Fabric resource"),
				mcp.WithString("type",
					mcp.Required(),
					mcp.Enum(resourceTypes...),
					mcp.Description("Type of Fabric resource"),
				),
				mcp.WithString("name", mcp.Required(), mcp.Description("Name of the resource")),
				mcp.WithString("namespace", mcp.Description("Namespace (default: current namespace)")),
			),
			Group:   dispatch.GroupDomain,
			Handler: tools.RequireCluster(t.client, t.getResource),
		},
		dispatch.Capability{
			Tool: mcp.NewTool("hlf-check-operator",
				mcp.WithDescription("Check the status of the Hyperledger Fabric Operator"),
				mcp.WithString("namespace",
					mcp.Description("Namespace where operator is deployed (default: "+OperatorNamespace+")"),
				),
			),
			Group:   dispatch.GroupDomain,
			Handler: tools.RequireCluster(t.client, t.checkOperator),
		},
	)
	return caps
}
