// Package cmd provides the command-line interface for bevel-mcp, an MCP
// gateway exposing Kubernetes and Hyperledger Fabric operator resources.
//
// Command structure:
//
//	bevel-mcp [flags]          # Starts the gateway (same as serve)
//	bevel-mcp serve [flags]    # Explicitly starts the gateway
//	bevel-mcp version          # Shows version information
//	bevel-mcp self-update      # Updates to the latest GitHub release
//
// The serve command reads its configuration from the environment, an optional
// .env file and command-line flags, in increasing order of precedence.
//
//	bevel-mcp serve --transport stdio
//	bevel-mcp serve --transport streamable-http --http-addr :3000 --http-endpoint /mcp
//	K8S_DISABLED=true bevel-mcp serve
package cmd
