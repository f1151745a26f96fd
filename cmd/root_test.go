package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmdProperties(t *testing.T) {
	assert.Equal(t, "bevel-mcp", rootCmd.Use)
	assert.Equal(t, "MCP gateway for Kubernetes and Hyperledger Fabric", rootCmd.Short)
	assert.True(t, strings.Contains(rootCmd.Long, "Model Context Protocol"))
	assert.True(t, strings.Contains(rootCmd.Long, "Hyperledger Fabric"))
	assert.True(t, rootCmd.SilenceUsage)
}

func TestSetVersion(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() {
		rootCmd.Version = originalVersion
	}()

	SetVersion("v1.2.3-test")

	assert.Equal(t, "v1.2.3-test", rootCmd.Version)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	var found []string
	for _, c := range rootCmd.Commands() {
		found = append(found, c.Use)
	}

	assert.Contains(t, found, "version")
	assert.Contains(t, found, "self-update")
	assert.Contains(t, found, "serve")
}
