package k8s

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/logging"
)

// TrustPolicy says whether the API server certificate is verified.
type TrustPolicy string

const (
	TrustVerify TrustPolicy = "verify"
	TrustSkip   TrustPolicy = "skip"
)

// ConnectionContext describes the cluster the gateway talks to. It is built
// once by Bootstrap and never changes afterwards.
type ConnectionContext struct {
	Endpoint         *url.URL
	TrustPolicy      TrustPolicy
	CurrentNamespace string
	CurrentContext   string
	CurrentCluster   string
	Disabled         bool
	InContainer      bool

	// RewrittenFrom holds the original loopback host when the endpoint was
	// redirected to the container host alias.
	RewrittenFrom string
}

// EndpointString returns the endpoint URL or an empty string.
func (c ConnectionContext) EndpointString() string {
	if c.Endpoint == nil {
		return ""
	}
	return c.Endpoint.String()
}

// Connection is the result of Bootstrap: the resolved context plus the REST
// configuration clients are built from. A Connection whose REST configuration
// could not be built is still usable; the failure surfaces on the first call.
type Connection struct {
	Context ConnectionContext

	rest    *rest.Config
	restErr error
}

// RESTConfig returns a copy of the REST configuration.
func (c *Connection) RESTConfig() (*rest.Config, error) {
	if c.restErr != nil {
		return nil, c.restErr
	}
	if c.rest == nil {
		return nil, errors.New("no rest config available")
	}
	return rest.CopyConfig(c.rest), nil
}

// BootstrapOption customizes environment probing, mostly for tests.
type BootstrapOption func(*bootstrapOptions)

type bootstrapOptions struct {
	containerProbe  containerProbe
	inClusterConfig func() (*rest.Config, error)
	namespaceFile   string
}

// WithContainerProbe replaces the /.dockerenv check.
func WithContainerProbe(probe func() bool) BootstrapOption {
	return func(o *bootstrapOptions) { o.containerProbe = probe }
}

// WithInClusterConfig replaces rest.InClusterConfig and the service account
// namespace file.
func WithInClusterConfig(fn func() (*rest.Config, error), namespaceFile string) BootstrapOption {
	return func(o *bootstrapOptions) {
		o.inClusterConfig = fn
		o.namespaceFile = namespaceFile
	}
}

// Bootstrap resolves the cluster connection. It fails only when no
// configuration can be loaded at all and access has not been disabled.
func Bootstrap(cfg BootstrapConfig, opts ...BootstrapOption) (*Connection, error) {
	o := bootstrapOptions{
		containerProbe:  fileProbe(DockerEnvPath),
		inClusterConfig: rest.InClusterConfig,
		namespaceFile:   DefaultNamespacePath,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg = cfg.withDefaults()
	log := cfg.logger()

	if cfg.Disabled {
		log.Info("Kubernetes access disabled", slog.String("env", EnvDisabled))
		return &Connection{
			Context: ConnectionContext{
				TrustPolicy:      TrustVerify,
				CurrentNamespace: DefaultNamespace,
				Disabled:         true,
			},
			restErr: ErrDisabled,
		}, nil
	}

	inContainer := cfg.ContainerMarker || (o.containerProbe != nil && o.containerProbe())

	if cfg.InCluster {
		return bootstrapInCluster(cfg, o, inContainer, log)
	}

	raw, source, err := loadKubeconfig(cfg.KubeconfigPath)
	if err != nil {
		return nil, &ConfigurationError{Source: source, Err: err}
	}
	if len(raw.Clusters) == 0 && len(raw.Contexts) == 0 {
		return nil, &ConfigurationError{Source: source, Err: errors.New("kubeconfig has no clusters or contexts")}
	}

	conn := &Connection{
		Context: ConnectionContext{
			TrustPolicy:      TrustVerify,
			CurrentNamespace: DefaultNamespace,
			InContainer:      inContainer,
		},
	}

	contextName := cfg.Context
	if contextName == "" {
		contextName = raw.CurrentContext
	}
	conn.Context.CurrentContext = contextName

	kctx, ok := raw.Contexts[contextName]
	if !ok || kctx == nil {
		log.Warn("Kubeconfig context not found, continuing with defaults", slog.String("context", contextName))
		conn.restErr = fmt.Errorf("context %q not found in kubeconfig", contextName)
		return conn, nil
	}
	if kctx.Namespace != "" {
		conn.Context.CurrentNamespace = kctx.Namespace
	}
	conn.Context.CurrentCluster = kctx.Cluster

	cluster, ok := raw.Clusters[kctx.Cluster]
	if !ok || cluster == nil || cluster.Server == "" {
		log.Warn("Kubeconfig cluster not found, continuing with defaults", slog.String("cluster", kctx.Cluster))
		conn.restErr = fmt.Errorf("cluster %q not found in kubeconfig", kctx.Cluster)
		return conn, nil
	}

	endpoint, err := url.Parse(cluster.Server)
	if err != nil || endpoint.Host == "" {
		log.Warn("Cluster server address is not a URL", slog.String("cluster", kctx.Cluster))
		conn.restErr = fmt.Errorf("cluster %q has invalid server %q", kctx.Cluster, cluster.Server)
		return conn, nil
	}
	conn.Context.Endpoint = endpoint

	restCfg, err := clientcmd.NewDefaultClientConfig(*raw, &clientcmd.ConfigOverrides{CurrentContext: contextName}).ClientConfig()
	if err != nil {
		conn.restErr = fmt.Errorf("build rest config for context %q: %w", contextName, err)
	}

	// Trust is decided on the address as written in the kubeconfig.
	if cfg.skipTLSOverride() || cluster.InsecureSkipTLSVerify || isDevelopmentCluster(endpoint, contextName, kctx.Cluster) {
		conn.Context.TrustPolicy = TrustSkip
	}

	if inContainer {
		if original, rewritten := rewriteLoopback(endpoint); rewritten {
			conn.Context.RewrittenFrom = original
			log.Info("Rewrote loopback API server address for container networking",
				logging.Host(original), slog.String("alias", ContainerHostAlias))
		}
	}

	if restCfg != nil {
		conn.rest = applyConnectionContext(restCfg, conn.Context, cfg)
	}

	if cfg.Debug {
		log.Debug("Bootstrap resolved connection",
			slog.String("context", contextName),
			slog.String("cluster", kctx.Cluster),
			logging.Host(endpoint.String()),
			slog.String("trust", string(conn.Context.TrustPolicy)),
			slog.Bool("inContainer", inContainer),
			logging.Namespace(conn.Context.CurrentNamespace))
	}

	return conn, nil
}

// applyConnectionContext carries the endpoint rewrite and trust decision into
// the REST configuration and applies the rate limits.
func applyConnectionContext(restCfg *rest.Config, cc ConnectionContext, cfg BootstrapConfig) *rest.Config {
	if cc.Endpoint != nil {
		restCfg.Host = cc.Endpoint.String()
	}

	switch {
	case cc.TrustPolicy == TrustSkip:
		restCfg.TLSClientConfig.Insecure = true
		restCfg.TLSClientConfig.CAData = nil
		restCfg.TLSClientConfig.CAFile = ""
		restCfg.TLSClientConfig.ServerName = ""
	case cc.RewrittenFrom != "":
		restCfg.TLSClientConfig.ServerName = cc.RewrittenFrom
	}

	restCfg.QPS = cfg.QPSLimit
	restCfg.Burst = cfg.BurstLimit
	restCfg.Timeout = cfg.Timeout
	return restCfg
}

func bootstrapInCluster(cfg BootstrapConfig, o bootstrapOptions, inContainer bool, log *slog.Logger) (*Connection, error) {
	restCfg, err := o.inClusterConfig()
	if err != nil {
		return nil, &ConfigurationError{Source: InClusterContext, Err: err}
	}

	cc := ConnectionContext{
		TrustPolicy:      TrustVerify,
		CurrentNamespace: DefaultNamespace,
		CurrentContext:   InClusterContext,
		CurrentCluster:   InClusterContext,
		InContainer:      inContainer,
	}
	if data, err := os.ReadFile(o.namespaceFile); err == nil {
		if ns := strings.TrimSpace(string(data)); ns != "" {
			cc.CurrentNamespace = ns
		}
	}
	if endpoint, err := url.Parse(restCfg.Host); err == nil && endpoint.Host != "" {
		cc.Endpoint = endpoint
	}
	if cfg.skipTLSOverride() {
		cc.TrustPolicy = TrustSkip
	}

	log.Info("Using in-cluster service account", logging.Namespace(cc.CurrentNamespace))
	return &Connection{Context: cc, rest: applyConnectionContext(restCfg, cc, cfg)}, nil
}

// loadKubeconfig reads the merged kubeconfig. An explicit path wins over
// KUBECONFIG, and a leading ~/ is expanded in both.
func loadKubeconfig(explicitPath string) (*clientcmdapi.Config, string, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	source := "default kubeconfig locations"

	if explicitPath != "" {
		loadingRules.ExplicitPath = expandHome(explicitPath)
		source = loadingRules.ExplicitPath
	} else if kconf := os.Getenv(EnvKubeconfig); kconf != "" {
		paths := filepath.SplitList(kconf)
		for i := range paths {
			paths[i] = expandHome(paths[i])
		}
		loadingRules.Precedence = paths
		source = strings.Join(paths, string(filepath.ListSeparator))
	}

	raw, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, &clientcmd.ConfigOverrides{}).RawConfig()
	if err != nil {
		return nil, source, fmt.Errorf("load kubeconfig: %w", err)
	}
	return &raw, source, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
