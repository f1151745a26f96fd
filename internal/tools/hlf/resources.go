package hlf

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/dispatch"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools"
)

// listing describes one list-* tool over an operator CRD.
type listing struct {
	tool        string
	description string
	noun        string
	plural      string
	// key names the items array in the result.
	key     string
	project func(obj map[string]any) map[string]any
}

var listings = []listing{
	{
		tool:        "hlf-list-cas",
		description: "List Hyperledger Fabric Certificate Authorities (FabricCA CRDs)",
		noun:        "CAs",
		plural:      k8s.FabricCAs,
		key:         "cas",
		project: func(obj map[string]any) map[string]any {
			return map[string]any{
				"status":    str(obj, tools.Unknown, "status", "status"),
				"url":       str(obj, tools.NotApplicable, "status", "url"),
				"caName":    str(obj, tools.NotApplicable, "spec", "ca", "name"),
				"tlsCAName": str(obj, tools.NotApplicable, "spec", "tlsca", "name"),
				"version":   str(obj, tools.Unknown, "spec", "version"),
			}
		},
	},
	{
		tool:        "hlf-list-peers",
		description: "List Hyperledger Fabric Peers (FabricPeer CRDs)",
		noun:        "peers",
		plural:      k8s.FabricPeers,
		key:         "peers",
		project: func(obj map[string]any) map[string]any {
			return map[string]any{
				"status":           str(obj, tools.Unknown, "status", "status"),
				"mspID":            str(obj, tools.Unknown, "spec", "mspID"),
				"externalEndpoint": str(obj, tools.NotApplicable, "status", "url"),
				"stateDB":          str(obj, str(obj, "leveldb", "spec", "stateDB"), "spec", "stateDb"),
				"version":          str(obj, tools.Unknown, "spec", "version"),
			}
		},
	},
	{
		tool:        "hlf-list-orderers",
		description: "List Hyperledger Fabric Orderers (FabricOrderer CRDs)",
		noun:        "orderers",
		plural:      k8s.FabricOrderers,
		key:         "orderers",
		project: func(obj map[string]any) map[string]any {
			return map[string]any{
				"status":           str(obj, tools.Unknown, "status", "status"),
				"mspID":            str(obj, tools.Unknown, "spec", "mspID"),
				"externalEndpoint": str(obj, tools.NotApplicable, "status", "url"),
				"version":          str(obj, tools.Unknown, "spec", "version"),
			}
		},
	},
	{
		tool:        "hlf-list-ordnodes",
		description: "List Hyperledger Fabric Orderer Nodes (FabricOrdererNode CRDs)",
		noun:        "orderer nodes",
		plural:      k8s.FabricOrdererNodes,
		key:         "ordererNodes",
		project: func(obj map[string]any) map[string]any {
			return map[string]any{
				"status":           str(obj, tools.Unknown, "status", "status"),
				"mspID":            str(obj, tools.Unknown, "spec", "mspID"),
				"externalEndpoint": str(obj, tools.NotApplicable, "status", "url"),
				"adminEndpoint":    str(obj, tools.NotApplicable, "status", "adminUrl"),
				"version":          str(obj, tools.Unknown, "spec", "version"),
			}
		},
	},
	{
		tool:        "hlf-list-main-channels",
		description: "List Hyperledger Fabric Main Channels (FabricMainChannel CRDs)",
		noun:        "main channels",
		plural:      k8s.FabricMainChannels,
		key:         "mainChannels",
		project: func(obj map[string]any) map[string]any {
			return map[string]any{
				"channelName":      str(obj, tools.Unknown, "spec", "name"),
				"status":           str(obj, tools.Unknown, "status", "status"),
				"adminOrdererOrgs": fieldOfEach(obj, "mspID", "spec", "adminOrdererOrganizations"),
				"adminPeerOrgs":    fieldOfEach(obj, "mspID", "spec", "adminPeerOrganizations"),
			}
		},
	},
	{
		tool:        "hlf-list-follower-channels",
		description: "List Hyperledger Fabric Follower Channels (FabricFollowerChannel CRDs)",
		noun:        "follower channels",
		plural:      k8s.FabricFollowerChannels,
		key:         "followerChannels",
		project: func(obj map[string]any) map[string]any {
			return map[string]any{
				"channelName": str(obj, tools.Unknown, "spec", "name"),
				"mspId":       str(obj, tools.Unknown, "spec", "mspId"),
				"status":      str(obj, tools.Unknown, "status", "status"),
				"anchorPeers": slice(obj, "spec", "anchorPeers"),
				"peersToJoin": fieldOfEach(obj, "name", "spec", "peersToJoin"),
			}
		},
	},
	{
		tool:        "hlf-list-chaincode",
		description: "List Hyperledger Fabric Chaincode (FabricChaincode CRDs)",
		noun:        "chaincode",
		plural:      k8s.FabricChaincodes,
		key:         "chaincodes",
		project: func(obj map[string]any) map[string]any {
			return map[string]any{
				"status":    str(obj, tools.Unknown, "status", "status"),
				"packageId": str(obj, tools.Unknown, "spec", "packageId"),
				"image":     str(obj, tools.Unknown, "spec", "image"),
				"version":   str(obj, tools.Unknown, "spec", "version"),
			}
		},
	},
}

func (t *Tools) lister(l listing) dispatch.CapabilityHandler {
	return func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
		args, err := tools.Bind[namespaceArgs](req)
		if err != nil {
			return nil, err
		}
		namespace := tools.OrDefault(args.Namespace, t.client.CurrentNamespace())

		items, err := t.client.ListCustomObjects(ctx, k8s.FabricGVR(l.plural), namespace)
		if err != nil {
			return nil, err
		}

		projected := make([]map[string]any, 0, len(items))
		for i := range items {
			projected = append(projected, project(&items[i], l.project))
		}
		return map[string]any{
			"namespace": namespace,
			"count":     len(items),
			l.key:       projected,
		}, nil
	}
}

// project merges the common metadata fields with the kind-specific ones.
func project(u *unstructured.Unstructured, fn func(map[string]any) map[string]any) map[string]any {
	out := fn(u.Object)
	out["name"] = u.GetName()
	out["namespace"] = u.GetNamespace()
	out["creationTimestamp"] = tools.Timestamp(u.GetCreationTimestamp())
	out["labels"] = tools.Labels(u.GetLabels())
	return out
}

func str(obj map[string]any, fallback string, fields ...string) string {
	v, found, err := unstructured.NestedString(obj, fields...)
	if err != nil || !found || v == "" {
		return fallback
	}
	return v
}

func slice(obj map[string]any, fields ...string) []any {
	v, found, err := unstructured.NestedSlice(obj, fields...)
	if err != nil || !found {
		return []any{}
	}
	return v
}

// fieldOfEach collects key from every object in the slice at fields.
func fieldOfEach(obj map[string]any, key string, fields ...string) []string {
	out := []string{}
	for _, item := range slice(obj, fields...) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := m[key].(string); ok {
			out = append(out, s)
		}
	}
	return out
}
