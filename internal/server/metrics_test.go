package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/instrumentation"
)

func newTestProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName:       "test",
		Enabled:           true,
		MetricsExporter:   instrumentation.ExporterPrometheus,
		TracingExporter:   instrumentation.ExporterNone,
		TraceSamplingRate: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider
}

func TestNewMetricsServer(t *testing.T) {
	tests := []struct {
		name     string
		config   MetricsServerConfig
		wantErr  bool
		wantAddr string
	}{
		{name: "nil provider", config: MetricsServerConfig{Addr: ":9090"}, wantErr: true},
		{name: "default addr", config: MetricsServerConfig{InstrumentationProvider: newTestProvider(t)}, wantAddr: DefaultMetricsAddr},
		{name: "custom addr", config: MetricsServerConfig{Addr: ":9191", InstrumentationProvider: newTestProvider(t)}, wantAddr: ":9191"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, err := NewMetricsServer(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, srv.Addr())
		})
	}
}

func TestMetricsServer_ServeAndShutdown(t *testing.T) {
	srv, err := NewMetricsServer(MetricsServerConfig{InstrumentationProvider: newTestProvider(t)})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	base := "http://" + ln.Addr().String()
	for _, path := range []string{"/metrics", "/healthz"} {
		resp, err := http.Get(base + path)
		require.NoError(t, err, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		_ = resp.Body.Close()
	}
	assert.Equal(t, ln.Addr().String(), srv.ListenAddr())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, http.ErrServerClosed))
	case <-time.After(2 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}

func TestMetricsServer_ShutdownWithoutStart(t *testing.T) {
	srv, err := NewMetricsServer(MetricsServerConfig{InstrumentationProvider: newTestProvider(t)})
	require.NoError(t, err)

	assert.NoError(t, srv.Shutdown(context.Background()))
	assert.Empty(t, srv.ListenAddr())
}
