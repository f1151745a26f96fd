package k8s

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// BootstrapConfig holds everything the connection bootstrap reads. Fields with
// env tags are populated by LoadBootstrapConfig; the rest come from flags.
type BootstrapConfig struct {
	// Disabled turns every cluster-touching tool into a failure result.
	Disabled bool `env:"K8S_DISABLED"`

	// SkipTLSVerify and KubernetesSkipTLSVerify force TrustSkip.
	SkipTLSVerify           bool `env:"K8S_SKIP_TLS_VERIFY"`
	KubernetesSkipTLSVerify bool `env:"KUBERNETES_SKIP_TLS_VERIFY"`

	// ContainerMarker declares that the process runs inside a container.
	ContainerMarker bool `env:"DOCKER_CONTAINER"`

	Debug bool `env:"DEBUG"`

	QPSLimit   float32       `env:"K8S_QPS" envDefault:"20"`
	BurstLimit int           `env:"K8S_BURST" envDefault:"30"`
	Timeout    time.Duration `env:"K8S_TIMEOUT" envDefault:"30s"`

	KubeconfigPath string
	Context        string
	InCluster      bool

	Logger *slog.Logger
}

// LoadBootstrapConfig reads the bootstrap settings from the environment.
func LoadBootstrapConfig() (BootstrapConfig, error) {
	var cfg BootstrapConfig
	if err := env.Parse(&cfg); err != nil {
		return BootstrapConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// skipTLSOverride reports whether either override variable is set.
func (c BootstrapConfig) skipTLSOverride() bool {
	return c.SkipTLSVerify || c.KubernetesSkipTLSVerify
}

func (c BootstrapConfig) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c BootstrapConfig) withDefaults() BootstrapConfig {
	if c.QPSLimit <= 0 {
		c.QPSLimit = DefaultQPSLimit
	}
	if c.BurstLimit <= 0 {
		c.BurstLimit = DefaultBurstLimit
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
