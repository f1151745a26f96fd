package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/logging"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools/kubernetes"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools/toolstest"
)

// newTestContext builds a ServerContext over a stub client serving the
// cluster tool group.
func newTestContext(t *testing.T, client *toolstest.Client, opts ...Option) *ServerContext {
	t.Helper()

	base := []Option{
		WithEngine(toolstest.Engine(kubernetes.New(client))),
		WithK8sClient(client),
		WithLogger(logging.Discard()),
	}
	sc, err := NewServerContext(context.Background(), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}
