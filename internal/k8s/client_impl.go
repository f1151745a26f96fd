package k8s

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/instrumentation"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/logging"
)

// ClusterClient implements Client on top of client-go. Typed and dynamic
// clients are built on first use from the bootstrap's REST configuration.
type ClusterClient struct {
	conn    *Connection
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	clientset lazyValue[kubernetes.Interface]
	dynamic   lazyValue[dynamic.Interface]
}

var _ Client = (*ClusterClient)(nil)

// ClientOption configures a ClusterClient.
type ClientOption func(*ClusterClient)

// WithLogger sets the logger used for operation logs.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *ClusterClient) { c.logger = logger }
}

// WithMetrics records every cluster call on m.
func WithMetrics(m *instrumentation.Metrics) ClientOption {
	return func(c *ClusterClient) { c.metrics = m }
}

// WithClientsets injects prebuilt clients, typically client-go fakes.
func WithClientsets(cs kubernetes.Interface, dyn dynamic.Interface) ClientOption {
	return func(c *ClusterClient) {
		if cs != nil {
			c.clientset.Preset(cs)
		}
		if dyn != nil {
			c.dynamic.Preset(dyn)
		}
	}
}

// NewClient wraps a bootstrapped connection.
func NewClient(conn *Connection, opts ...ClientOption) *ClusterClient {
	c := &ClusterClient{
		conn:   conn,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ClusterClient) Connection() ConnectionContext {
	return c.conn.Context
}

func (c *ClusterClient) CurrentNamespace() string {
	if ns := c.conn.Context.CurrentNamespace; ns != "" {
		return ns
	}
	return DefaultNamespace
}

func (c *ClusterClient) TestConnection(ctx context.Context) ConnectionStatus {
	cc := c.conn.Context
	status := ConnectionStatus{
		CurrentContext:   cc.CurrentContext,
		CurrentCluster:   cc.CurrentCluster,
		CurrentNamespace: c.CurrentNamespace(),
		Endpoint:         cc.EndpointString(),
		TrustPolicy:      cc.TrustPolicy,
		InContainer:      cc.InContainer,
	}

	namespaces, err := c.ListNamespaces(ctx)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Success = true
	status.Namespaces = len(namespaces)
	return status
}

func (c *ClusterClient) typed() (kubernetes.Interface, error) {
	if c.conn.Context.Disabled {
		return nil, ErrDisabled
	}
	return c.clientset.Get(func() (kubernetes.Interface, error) {
		restCfg, err := c.conn.RESTConfig()
		if err != nil {
			return nil, err
		}
		cs, err := kubernetes.NewForConfig(restCfg)
		if err != nil {
			return nil, fmt.Errorf("create clientset: %w", err)
		}
		return cs, nil
	})
}

func (c *ClusterClient) dyn() (dynamic.Interface, error) {
	if c.conn.Context.Disabled {
		return nil, ErrDisabled
	}
	return c.dynamic.Get(func() (dynamic.Interface, error) {
		restCfg, err := c.conn.RESTConfig()
		if err != nil {
			return nil, err
		}
		dc, err := dynamic.NewForConfig(restCfg)
		if err != nil {
			return nil, fmt.Errorf("create dynamic client: %w", err)
		}
		return dc, nil
	})
}

// observe opens a span for a cluster call. The returned func must be called
// with the call's error.
func (c *ClusterClient) observe(ctx context.Context, op, resource, namespace string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := instrumentation.StartK8sSpan(ctx, op, resource, namespace)

	return ctx, func(err error) {
		defer span.End()

		status := logging.StatusSuccess
		if err != nil {
			status = logging.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		elapsed := time.Since(start)
		c.metrics.RecordK8sOperation(ctx, op, resource, namespace, status, elapsed)

		attrs := []any{
			logging.Operation(op),
			slog.String(logging.KeyResource, resource),
			logging.Namespace(namespace),
			logging.Status(status),
			logging.Duration(elapsed),
		}
		if err != nil {
			attrs = append(attrs, logging.SanitizedErr(err))
		}
		c.logger.DebugContext(ctx, "kubernetes call", attrs...)
	}
}

func (c *ClusterClient) ListNamespaces(ctx context.Context) (_ []corev1.Namespace, err error) {
	ctx, done := c.observe(ctx, OperationList, "namespaces", "")
	defer func() { done(err) }()

	cs, err := c.typed()
	if err != nil {
		return nil, err
	}
	list, err := cs.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, toAPIError("list namespaces", err)
	}
	return list.Items, nil
}

func (c *ClusterClient) ListPods(ctx context.Context, namespace, labelSelector string) (_ []corev1.Pod, err error) {
	ctx, done := c.observe(ctx, OperationList, "pods", namespace)
	defer func() { done(err) }()

	cs, err := c.typed()
	if err != nil {
		return nil, err
	}
	list, err := cs.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: labelSelector})
	if err != nil {
		return nil, toAPIError("list pods", err)
	}
	return list.Items, nil
}

func (c *ClusterClient) GetPod(ctx context.Context, namespace, name string) (_ *corev1.Pod, err error) {
	ctx, done := c.observe(ctx, OperationGet, "pods", namespace)
	defer func() { done(err) }()

	cs, err := c.typed()
	if err != nil {
		return nil, err
	}
	pod, err := cs.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, toAPIError("get pod", err)
	}
	return pod, nil
}

func (c *ClusterClient) ListServices(ctx context.Context, namespace string) (_ []corev1.Service, err error) {
	ctx, done := c.observe(ctx, OperationList, "services", namespace)
	defer func() { done(err) }()

	cs, err := c.typed()
	if err != nil {
		return nil, err
	}
	list, err := cs.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, toAPIError("list services", err)
	}
	return list.Items, nil
}

func (c *ClusterClient) ListNodes(ctx context.Context) (_ []corev1.Node, err error) {
	ctx, done := c.observe(ctx, OperationList, "nodes", "")
	defer func() { done(err) }()

	cs, err := c.typed()
	if err != nil {
		return nil, err
	}
	list, err := cs.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, toAPIError("list nodes", err)
	}
	return list.Items, nil
}

func (c *ClusterClient) ListDeployments(ctx context.Context, namespace, labelSelector string) (_ []appsv1.Deployment, err error) {
	ctx, done := c.observe(ctx, OperationList, "deployments", namespace)
	defer func() { done(err) }()

	cs, err := c.typed()
	if err != nil {
		return nil, err
	}
	list, err := cs.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{LabelSelector: labelSelector})
	if err != nil {
		return nil, toAPIError("list deployments", err)
	}
	return list.Items, nil
}

func (c *ClusterClient) ListNetworkPolicies(ctx context.Context, namespace string) (_ []networkingv1.NetworkPolicy, err error) {
	ctx, done := c.observe(ctx, OperationList, "networkpolicies", namespace)
	defer func() { done(err) }()

	cs, err := c.typed()
	if err != nil {
		return nil, err
	}
	list, err := cs.NetworkingV1().NetworkPolicies(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, toAPIError("list network policies", err)
	}
	return list.Items, nil
}

func (c *ClusterClient) ListRoleBindings(ctx context.Context, namespace string) (_ []rbacv1.RoleBinding, err error) {
	ctx, done := c.observe(ctx, OperationList, "rolebindings", namespace)
	defer func() { done(err) }()

	cs, err := c.typed()
	if err != nil {
		return nil, err
	}
	list, err := cs.RbacV1().RoleBindings(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, toAPIError("list role bindings", err)
	}
	return list.Items, nil
}

func (c *ClusterClient) ListCustomObjects(ctx context.Context, gvr schema.GroupVersionResource, namespace string) (_ []unstructured.Unstructured, err error) {
	ctx, done := c.observe(ctx, OperationList, gvr.Resource, namespace)
	defer func() { done(err) }()

	dc, err := c.dyn()
	if err != nil {
		return nil, err
	}
	list, err := dc.Resource(gvr).Namespace(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, toAPIError("list "+gvr.Resource, err)
	}
	return list.Items, nil
}

func (c *ClusterClient) GetCustomObject(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string) (_ *unstructured.Unstructured, err error) {
	ctx, done := c.observe(ctx, OperationGet, gvr.Resource, namespace)
	defer func() { done(err) }()

	dc, err := c.dyn()
	if err != nil {
		return nil, err
	}
	obj, err := dc.Resource(gvr).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, toAPIError("get "+gvr.Resource, err)
	}
	return obj, nil
}
