package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfUpdateCmd(t *testing.T) {
	tests := []struct {
		name          string
		version       string
		errorContains string
	}{
		{
			name:          "dev version is refused",
			version:       "dev",
			errorContains: "cannot self-update a development version",
		},
		{
			name:          "empty version is refused",
			version:       "",
			errorContains: "cannot self-update a development version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalVersion := rootCmd.Version
			defer func() {
				rootCmd.Version = originalVersion
			}()
			rootCmd.Version = tt.version

			cmd := newSelfUpdateCmd()
			cmd.SetArgs([]string{})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestSelfUpdateCmdProperties(t *testing.T) {
	cmd := newSelfUpdateCmd()

	assert.Equal(t, "self-update", cmd.Use)
	assert.Equal(t, "Update bevel-mcp to the latest version", cmd.Short)
	assert.True(t, strings.Contains(cmd.Long, "GitHub"))
	assert.True(t, strings.Contains(cmd.Long, githubRepoSlug))
}

func TestGithubRepoSlug(t *testing.T) {
	assert.Equal(t, "GeorgeNiotis/bevel-operator-fabric", githubRepoSlug)
}
