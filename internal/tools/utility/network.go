package utility

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"sigs.k8s.io/yaml"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools"
)

// Ports used in generated connection profiles.
const (
	peerPort    = 7051
	ordererPort = 7050
	caPort      = 7054

	// connectionTimeout is in seconds, as Fabric SDKs expect.
	connectionTimeout = "300"
)

type networkArgs struct {
	OrganizationName string `json:"organizationName" validate:"required"`
	MSPID            string `json:"mspId" validate:"required"`
	Domain           string `json:"domain" validate:"required,hostname_rfc1123"`
}

type networkResult struct {
	OrganizationName string         `json:"organizationName"`
	MSPID            string         `json:"mspId"`
	Domain           string         `json:"domain"`
	Config           map[string]any `json:"config"`
	YAML             string         `json:"yaml"`
}

func generateNetworkConfig(_ context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[networkArgs](req)
	if err != nil {
		return nil, err
	}

	cfg := connectionProfile(args.OrganizationName, args.MSPID, args.Domain)
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("render connection profile: %w", err)
	}

	return networkResult{
		OrganizationName: args.OrganizationName,
		MSPID:            args.MSPID,
		Domain:           args.Domain,
		Config:           cfg,
		YAML:             string(out),
	}, nil
}

// connectionProfile builds a Fabric SDK connection profile for one
// organization with two peers, one orderer and one CA.
func connectionProfile(org, mspID, domain string) map[string]any {
	peers := []string{"peer0." + domain, "peer1." + domain}
	orderer := "orderer." + domain
	ca := "ca." + domain

	grpc := func(host string) map[string]any {
		return map[string]any{
			"ssl-target-name-override": host,
			"hostnameOverride":         host,
		}
	}

	peerEntries := map[string]any{}
	for _, p := range peers {
		peerEntries[p] = map[string]any{
			"url":         fmt.Sprintf("grpcs://%s:%d", p, peerPort),
			"grpcOptions": grpc(p),
			"tlsCACerts": map[string]any{
				"path": fmt.Sprintf("crypto-config/peerOrganizations/%s/peers/%s/msp/tlscacerts/tlsca.%s-cert.pem", domain, p, domain),
			},
		}
	}

	return map[string]any{
		"name":    org + "-network",
		"version": "1.0.0",
		"client": map[string]any{
			"organization": org,
			"connection": map[string]any{
				"timeout": map[string]any{
					"peer": map[string]any{
						"endorser": connectionTimeout,
						"eventHub": connectionTimeout,
						"eventReg": connectionTimeout,
					},
					"orderer": connectionTimeout,
				},
			},
		},
		"organizations": map[string]any{
			org: map[string]any{
				"mspid":                  mspID,
				"peers":                  peers,
				"certificateAuthorities": []string{ca},
			},
		},
		"orderers": map[string]any{
			orderer: map[string]any{
				"url":         fmt.Sprintf("grpcs://%s:%d", orderer, ordererPort),
				"grpcOptions": grpc(orderer),
				"tlsCACerts": map[string]any{
					"path": fmt.Sprintf("crypto-config/ordererOrganizations/%s/orderers/%s/msp/tlscacerts/tlsca.%s-cert.pem", domain, orderer, domain),
				},
			},
		},
		"peers": peerEntries,
		"certificateAuthorities": map[string]any{
			ca: map[string]any{
				"url":         fmt.Sprintf("https://%s:%d", ca, caPort),
				"httpOptions": map[string]any{"verify": false},
				"tlsCACerts": map[string]any{
					"path": fmt.Sprintf("crypto-config/peerOrganizations/%s/ca/%s-cert.pem", domain, ca),
				},
				"registrar": []map[string]any{
					{"enrollId": "admin", "enrollSecret": "adminpw"},
				},
			},
		},
	}
}
