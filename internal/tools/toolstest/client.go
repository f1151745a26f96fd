// Package toolstest provides a recording cluster client and invocation
// helpers for capability tests.
package toolstest

import (
	"context"
	"sort"
	"sync"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
)

// Client is an in-memory k8s.Client. Every method call is counted. When Err
// is set every cluster call fails with it.
type Client struct {
	Conn      k8s.ConnectionContext
	Namespace string
	Err       error

	Namespaces      []corev1.Namespace
	Pods            []corev1.Pod
	Services        []corev1.Service
	Nodes           []corev1.Node
	Deployments     []appsv1.Deployment
	NetworkPolicies []networkingv1.NetworkPolicy
	RoleBindings    []rbacv1.RoleBinding
	// Objects holds custom resources keyed by plural.
	Objects map[string][]unstructured.Unstructured

	Logs       string
	ExecResult k8s.ExecResult

	mu          sync.Mutex
	calls       map[string]int
	lastLogOpts k8s.LogOptions
	lastCommand []string
}

var _ k8s.Client = (*Client)(nil)

// New returns an empty stub client in namespace "default".
func New() *Client {
	return &Client{Namespace: k8s.DefaultNamespace, Objects: map[string][]unstructured.Unstructured{}}
}

func (c *Client) record(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[method]++
}

// Calls returns the total number of method calls.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

// ClusterCalls counts calls that would reach the API server.
func (c *Client) ClusterCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for m, v := range c.calls {
		if m != "Connection" && m != "CurrentNamespace" {
			n += v
		}
	}
	return n
}

// CallsTo returns the number of calls to method.
func (c *Client) CallsTo(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// Methods lists the methods that were called, sorted.
func (c *Client) Methods() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.calls))
	for m := range c.calls {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// LastLogOptions returns the options of the most recent GetLogs call.
func (c *Client) LastLogOptions() k8s.LogOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastLogOpts
}

// LastCommand returns the command of the most recent Exec call.
func (c *Client) LastCommand() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCommand
}

func (c *Client) Connection() k8s.ConnectionContext {
	c.record("Connection")
	return c.Conn
}

func (c *Client) CurrentNamespace() string {
	c.record("CurrentNamespace")
	return c.Namespace
}

func (c *Client) TestConnection(context.Context) k8s.ConnectionStatus {
	c.record("TestConnection")
	status := k8s.ConnectionStatus{
		CurrentContext:   c.Conn.CurrentContext,
		CurrentCluster:   c.Conn.CurrentCluster,
		CurrentNamespace: c.Namespace,
		Endpoint:         c.Conn.EndpointString(),
		TrustPolicy:      c.Conn.TrustPolicy,
		InContainer:      c.Conn.InContainer,
	}
	if c.Err != nil {
		status.Error = c.Err.Error()
		return status
	}
	status.Success = true
	status.Namespaces = len(c.Namespaces)
	return status
}

func (c *Client) ListNamespaces(context.Context) ([]corev1.Namespace, error) {
	c.record("ListNamespaces")
	return c.Namespaces, c.Err
}

func (c *Client) ListPods(_ context.Context, namespace, labelSelector string) ([]corev1.Pod, error) {
	c.record("ListPods")
	if c.Err != nil {
		return nil, c.Err
	}
	sel, err := labels.Parse(labelSelector)
	if err != nil {
		return nil, err
	}
	var out []corev1.Pod
	for _, p := range c.Pods {
		if inNamespace(p.Namespace, namespace) && sel.Matches(labels.Set(p.Labels)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Client) GetPod(_ context.Context, namespace, name string) (*corev1.Pod, error) {
	c.record("GetPod")
	if c.Err != nil {
		return nil, c.Err
	}
	for i := range c.Pods {
		if c.Pods[i].Namespace == namespace && c.Pods[i].Name == name {
			return &c.Pods[i], nil
		}
	}
	return nil, notFound("pods", name)
}

func (c *Client) ListServices(_ context.Context, namespace string) ([]corev1.Service, error) {
	c.record("ListServices")
	if c.Err != nil {
		return nil, c.Err
	}
	var out []corev1.Service
	for _, s := range c.Services {
		if inNamespace(s.Namespace, namespace) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (c *Client) ListNodes(context.Context) ([]corev1.Node, error) {
	c.record("ListNodes")
	return c.Nodes, c.Err
}

func (c *Client) ListDeployments(_ context.Context, namespace, labelSelector string) ([]appsv1.Deployment, error) {
	c.record("ListDeployments")
	if c.Err != nil {
		return nil, c.Err
	}
	sel, err := labels.Parse(labelSelector)
	if err != nil {
		return nil, err
	}
	var out []appsv1.Deployment
	for _, d := range c.Deployments {
		if inNamespace(d.Namespace, namespace) && sel.Matches(labels.Set(d.Labels)) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (c *Client) ListNetworkPolicies(_ context.Context, namespace string) ([]networkingv1.NetworkPolicy, error) {
	c.record("ListNetworkPolicies")
	if c.Err != nil {
		return nil, c.Err
	}
	var out []networkingv1.NetworkPolicy
	for _, p := range c.NetworkPolicies {
		if inNamespace(p.Namespace, namespace) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Client) ListRoleBindings(_ context.Context, namespace string) ([]rbacv1.RoleBinding, error) {
	c.record("ListRoleBindings")
	if c.Err != nil {
		return nil, c.Err
	}
	var out []rbacv1.RoleBinding
	for _, b := range c.RoleBindings {
		if inNamespace(b.Namespace, namespace) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (c *Client) GetLogs(_ context.Context, _, _ string, opts k8s.LogOptions) (string, error) {
	c.record("GetLogs")
	c.mu.Lock()
	c.lastLogOpts = opts
	c.mu.Unlock()
	return c.Logs, c.Err
}

func (c *Client) Exec(_ context.Context, _, _, _ string, command []string) (*k8s.ExecResult, error) {
	c.record("Exec")
	c.mu.Lock()
	c.lastCommand = command
	c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	res := c.ExecResult
	return &res, nil
}

func (c *Client) ListCustomObjects(_ context.Context, gvr schema.GroupVersionResource, namespace string) ([]unstructured.Unstructured, error) {
	c.record("ListCustomObjects")
	if c.Err != nil {
		return nil, c.Err
	}
	var out []unstructured.Unstructured
	for _, o := range c.Objects[gvr.Resource] {
		if inNamespace(o.GetNamespace(), namespace) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (c *Client) GetCustomObject(_ context.Context, gvr schema.GroupVersionResource, namespace, name string) (*unstructured.Unstructured, error) {
	c.record("GetCustomObject")
	if c.Err != nil {
		return nil, c.Err
	}
	for _, o := range c.Objects[gvr.Resource] {
		if o.GetNamespace() == namespace && o.GetName() == name {
			obj := o.DeepCopy()
			return obj, nil
		}
	}
	return nil, notFound(gvr.Resource, name)
}

func inNamespace(have, want string) bool {
	return want == "" || have == want
}

func notFound(resource, name string) error {
	return apierrors.NewNotFound(schema.GroupResource{Group: "", Resource: resource}, name)
}
