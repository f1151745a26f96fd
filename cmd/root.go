package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// binaryName is the command name shown in help and version output.
const binaryName = "bevel-mcp"

// rootCmd is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   binaryName,
	Short: "MCP gateway for Kubernetes and Hyperledger Fabric",
	Long: `bevel-mcp is a Model Context Protocol (MCP) server that exposes a
Kubernetes cluster and the Hyperledger Fabric resources managed by the HLF
operator to AI agents. It offers cluster inspection tools, Fabric resource
listings, YAML helpers and guided deployment prompts.

When run without subcommands, it starts the MCP server (equivalent to 'bevel-mcp serve').`,
	SilenceUsage: true,
}

// SetVersion sets the version reported by the version command and the
// initialize handshake. It is called from main with the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "` + binaryName + ` version %s\n" .Version}}`)

	// No subcommand means serve.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newServeCmd())
}
