// Package k8s establishes the connection to the target cluster and wraps the
// client-go calls the MCP tools make.
//
// Bootstrap turns a kubeconfig (or the in-cluster service account) into a
// ConnectionContext and a REST configuration. Along the way it:
//
//   - detects when the process runs inside a container and points loopback
//     API server addresses at host.docker.internal
//   - recognises local development clusters (kind, minikube, k3d and similar)
//     and relaxes certificate verification for them
//   - honours K8S_DISABLED, in which case every client call fails with
//     ErrDisabled and no connection is attempted
//
// Only a missing or unreadable kubeconfig is fatal, reported as a
// *ConfigurationError. Everything after loading degrades to defaults and
// surfaces at call time.
//
// ClusterClient implements the Client interface, which is split into small
// readers so tools can depend on just what they use:
//
//	conn, err := k8s.Bootstrap(cfg)
//	if err != nil {
//		return err
//	}
//	client := k8s.NewClient(conn, k8s.WithLogger(logger))
//	pods, err := client.ListPods(ctx, "fabric", "app=peer")
package k8s
