package k8s

import (
	"net"
	"net/url"
	"os"
	"strings"
)

// containerProbe reports whether the process runs inside a container.
type containerProbe func() bool

// fileProbe checks for a marker file such as /.dockerenv.
func fileProbe(path string) containerProbe {
	return func() bool {
		_, err := os.Stat(path)
		return err == nil
	}
}

func isLoopbackHost(host string) bool {
	switch strings.ToLower(strings.Trim(host, "[]")) {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0":
		return true
	}
	return false
}

// rewriteLoopback points a loopback endpoint at the container host alias.
// It returns the original hostname and true when a rewrite happened.
func rewriteLoopback(u *url.URL) (string, bool) {
	host := u.Hostname()
	if !isLoopbackHost(host) {
		return "", false
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(ContainerHostAlias, port)
	} else {
		u.Host = ContainerHostAlias
	}
	return host, true
}

// isDevelopmentCluster applies the local-cluster heuristic to an endpoint and
// the names the kubeconfig gives it. A loopback host alone does not count.
func isDevelopmentCluster(endpoint *url.URL, names ...string) bool {
	if endpoint != nil {
		if endpoint.Scheme == "http" {
			return true
		}
		names = append(names, endpoint.Hostname())
	}

	for _, name := range names {
		name = strings.ToLower(name)
		if name == "" {
			continue
		}
		for _, fragment := range developmentClusterFragments {
			if strings.Contains(name, fragment) {
				return true
			}
		}
	}
	return false
}
