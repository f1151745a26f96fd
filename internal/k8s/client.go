package k8s

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Client is everything the tools need from the cluster.
type Client interface {
	ConnectionInfo
	CoreReader
	WorkloadReader
	PolicyReader
	PodOperator
	CustomObjectReader
}

// ConnectionInfo exposes the bootstrap result.
type ConnectionInfo interface {
	// Connection returns the resolved connection context.
	Connection() ConnectionContext

	// CurrentNamespace is the namespace tools fall back to.
	CurrentNamespace() string

	// TestConnection lists namespaces and reports the outcome. It never
	// returns an error; failures are described in the status.
	TestConnection(ctx context.Context) ConnectionStatus
}

// CoreReader reads core/v1 resources. An empty namespace means all namespaces.
type CoreReader interface {
	ListNamespaces(ctx context.Context) ([]corev1.Namespace, error)
	ListPods(ctx context.Context, namespace, labelSelector string) ([]corev1.Pod, error)
	GetPod(ctx context.Context, namespace, name string) (*corev1.Pod, error)
	ListServices(ctx context.Context, namespace string) ([]corev1.Service, error)
	ListNodes(ctx context.Context) ([]corev1.Node, error)
}

// WorkloadReader reads apps/v1 resources.
type WorkloadReader interface {
	ListDeployments(ctx context.Context, namespace, labelSelector string) ([]appsv1.Deployment, error)
}

// PolicyReader reads network and RBAC policy.
type PolicyReader interface {
	ListNetworkPolicies(ctx context.Context, namespace string) ([]networkingv1.NetworkPolicy, error)
	ListRoleBindings(ctx context.Context, namespace string) ([]rbacv1.RoleBinding, error)
}

// PodOperator covers pod subresources.
type PodOperator interface {
	// GetLogs returns at most MaxLogBytes of a container log.
	GetLogs(ctx context.Context, namespace, podName string, opts LogOptions) (string, error)

	// Exec runs a command to completion and collects its output.
	Exec(ctx context.Context, namespace, podName, container string, command []string) (*ExecResult, error)
}

// CustomObjectReader reads custom resources through the dynamic client.
type CustomObjectReader interface {
	ListCustomObjects(ctx context.Context, gvr schema.GroupVersionResource, namespace string) ([]unstructured.Unstructured, error)
	GetCustomObject(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string) (*unstructured.Unstructured, error)
}

// ConnectionStatus is the outcome of TestConnection.
type ConnectionStatus struct {
	Success          bool        `json:"success"`
	Namespaces       int         `json:"namespaces,omitempty"`
	CurrentContext   string      `json:"currentContext,omitempty"`
	CurrentCluster   string      `json:"currentCluster,omitempty"`
	CurrentNamespace string      `json:"currentNamespace,omitempty"`
	Endpoint         string      `json:"endpoint,omitempty"`
	TrustPolicy      TrustPolicy `json:"trustPolicy,omitempty"`
	InContainer      bool        `json:"inContainer"`
	Error            string      `json:"error,omitempty"`
}

// LogOptions configures log retrieval.
type LogOptions struct {
	Container string
	TailLines *int64
	Previous  bool
}

// ExecResult contains the result of command execution.
type ExecResult struct {
	ExitCode int    `json:"exitCode"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}
