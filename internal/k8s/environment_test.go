package k8s

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLoopbackHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"LOCALHOST", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"[::1]", true},
		{"0.0.0.0", true},
		{"host.docker.internal", false},
		{"10.0.0.1", false},
		{"api.example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, isLoopbackHost(tt.host))
		})
	}
}

func TestRewriteLoopback(t *testing.T) {
	tests := []struct {
		name         string
		server       string
		wantHost     string
		wantOriginal string
		wantRewrite  bool
	}{
		{"localhost with port", "https://localhost:6443", "host.docker.internal:6443", "localhost", true},
		{"ipv4 loopback", "https://127.0.0.1:44321", "host.docker.internal:44321", "127.0.0.1", true},
		{"ipv6 loopback", "https://[::1]:6443", "host.docker.internal:6443", "::1", true},
		{"no port", "https://localhost", "host.docker.internal", "localhost", true},
		{"remote host", "https://api.example.com:6443", "api.example.com:6443", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.server)
			require.NoError(t, err)

			original, rewritten := rewriteLoopback(u)
			assert.Equal(t, tt.wantRewrite, rewritten)
			assert.Equal(t, tt.wantOriginal, original)
			assert.Equal(t, tt.wantHost, u.Host)
		})
	}
}

func TestIsDevelopmentCluster(t *testing.T) {
	tests := []struct {
		name   string
		server string
		names  []string
		want   bool
	}{
		{"plain http", "http://10.1.2.3:8080", nil, true},
		{"bare loopback", "https://127.0.0.1:6443", []string{"edge", "edge"}, false},
		{"container alias", "https://host.docker.internal:6443", nil, false},
		{"kind on loopback", "https://127.0.0.1:41235", []string{"kind-fabric", "kind-fabric"}, true},
		{"k3d on any address", "https://0.0.0.0:35111", []string{"k3d-fabric"}, true},
		{"kind context", "https://10.1.2.3:6443", []string{"kind-fabric"}, true},
		{"docker desktop", "https://kubernetes.docker.internal:6443", []string{"docker-desktop"}, true},
		{"rancher desktop", "https://10.1.2.3:6443", []string{"", "rancher-desktop"}, true},
		{"orbstack host", "https://k8s.orbstack.local:26443", nil, true},
		{"mixed case name", "https://10.1.2.3:6443", []string{"MicroK8s-Cluster"}, true},
		{"managed cluster", "https://abc123.eks.amazonaws.com", []string{"arn:aws:eks:eu-west-1:1:cluster/prod"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.server)
			require.NoError(t, err)
			assert.Equal(t, tt.want, isDevelopmentCluster(u, tt.names...))
		})
	}
}

func TestIsDevelopmentCluster_NilEndpoint(t *testing.T) {
	assert.True(t, isDevelopmentCluster(nil, "minikube"))
	assert.False(t, isDevelopmentCluster(nil, "prod"))
}

func TestFileProbe(t *testing.T) {
	marker := filepath.Join(t.TempDir(), ".dockerenv")

	assert.False(t, fileProbe(marker)())

	require.NoError(t, os.WriteFile(marker, nil, 0o600))
	assert.True(t, fileProbe(marker)())
}
