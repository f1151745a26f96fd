package utility

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools"
)

const allNamespaces = "all-namespaces"

var watchable = []string{"pods", "services", "deployments", "fabricpeers", "fabriccas", "fabricorderers"}

type usageArgs struct {
	Namespace string `json:"namespace"`
}

type resourceAmounts struct {
	CPU    string `json:"cpu"`
	Memory string `json:"memory"`
	Pods   string `json:"pods"`
}

type nodeUsage struct {
	Name        string          `json:"name"`
	Ready       bool            `json:"ready"`
	Capacity    resourceAmounts `json:"capacity"`
	Allocatable resourceAmounts `json:"allocatable"`
}

type podUsage struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Node       string `json:"node"`
	Containers int    `json:"containers"`
}

type clusterTotals struct {
	Nodes       int `json:"nodes"`
	TotalPods   int `json:"totalPods"`
	RunningPods int `json:"runningPods"`
}

type usageResult struct {
	Cluster         clusterTotals         `json:"cluster"`
	Nodes           []nodeUsage           `json:"nodes"`
	PodsByNamespace map[string][]podUsage `json:"podsByNamespace"`
	Namespace       string                `json:"namespace"`
}

func (t *Tools) resourceUsage(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[usageArgs](req)
	if err != nil {
		return nil, err
	}

	var (
		nodes []corev1.Node
		pods  []corev1.Pod
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nodes, err = t.client.ListNodes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		pods, err = t.client.ListPods(gctx, args.Namespace, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := usageResult{
		Nodes:           make([]nodeUsage, 0, len(nodes)),
		PodsByNamespace: map[string][]podUsage{},
		Namespace:       tools.OrDefault(args.Namespace, allNamespaces),
	}
	for i := range nodes {
		n := &nodes[i]
		out.Nodes = append(out.Nodes, nodeUsage{
			Name:        n.Name,
			Ready:       nodeReady(n),
			Capacity:    amounts(n.Status.Capacity),
			Allocatable: amounts(n.Status.Allocatable),
		})
	}
	for _, p := range pods {
		out.PodsByNamespace[p.Namespace] = append(out.PodsByNamespace[p.Namespace], podUsage{
			Name:       p.Name,
			Status:     string(p.Status.Phase),
			Node:       p.Spec.NodeName,
			Containers: len(p.Spec.Containers),
		})
		if p.Status.Phase == corev1.PodRunning {
			out.Cluster.RunningPods++
		}
	}
	out.Cluster.Nodes = len(nodes)
	out.Cluster.TotalPods = len(pods)
	return out, nil
}

func nodeReady(n *corev1.Node) bool {
	for _, c := range n.Status.Conditions {
		if c.Type == corev1.NodeReady {
			return c.Status == corev1.ConditionTrue
		}
	}
	return false
}

func amounts(list corev1.ResourceList) resourceAmounts {
	get := func(name corev1.ResourceName) string {
		if q, ok := list[name]; ok {
			return q.String()
		}
		return tools.Unknown
	}
	return resourceAmounts{
		CPU:    get(corev1.ResourceCPU),
		Memory: get(corev1.ResourceMemory),
		Pods:   get(corev1.ResourcePods),
	}
}

type watchArgs struct {
	Resource  string `json:"resource" validate:"required,oneof=pods services deployments fabricpeers fabriccas fabricorderers"`
	Namespace string `json:"namespace"`
}

type snapshotItem struct {
	Name              string            `json:"name"`
	Namespace         string            `json:"namespace"`
	Status            string            `json:"status"`
	CreationTimestamp string            `json:"creationTimestamp"`
	Labels            map[string]string `json:"labels"`
}

type snapshot struct {
	Resource  string         `json:"resource"`
	Namespace string         `json:"namespace"`
	Timestamp string         `json:"timestamp"`
	Count     int            `json:"count"`
	Items     []snapshotItem `json:"items"`
}

func item(meta metav1.ObjectMeta, status string) snapshotItem {
	return snapshotItem{
		Name:              meta.Name,
		Namespace:         meta.Namespace,
		Status:            tools.OrDefault(status, tools.Unknown),
		CreationTimestamp: tools.Timestamp(meta.CreationTimestamp),
		Labels:            tools.Labels(meta.Labels),
	}
}

// watchResources returns a point-in-time listing of one resource kind.
func (t *Tools) watchResources(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[watchArgs](req)
	if err != nil {
		return nil, err
	}
	namespace := tools.OrDefault(args.Namespace, t.client.CurrentNamespace())

	var items []snapshotItem
	switch args.Resource {
	case "pods":
		pods, err := t.client.ListPods(ctx, namespace, "")
		if err != nil {
			return nil, err
		}
		for _, p := range pods {
			items = append(items, item(p.ObjectMeta, string(p.Status.Phase)))
		}
	case "services":
		svcs, err := t.client.ListServices(ctx, namespace)
		if err != nil {
			return nil, err
		}
		for _, s := range svcs {
			items = append(items, item(s.ObjectMeta, ""))
		}
	case "deployments":
		deps, err := t.client.ListDeployments(ctx, namespace, "")
		if err != nil {
			return nil, err
		}
		for _, d := range deps {
			items = append(items, item(d.ObjectMeta, ""))
		}
	case k8s.FabricPeers, k8s.FabricCAs, k8s.FabricOrderers:
		objs, err := t.client.ListCustomObjects(ctx, k8s.FabricGVR(args.Resource), namespace)
		if err != nil {
			return nil, err
		}
		for _, o := range objs {
			items = append(items, snapshotItem{
				Name:              o.GetName(),
				Namespace:         o.GetNamespace(),
				Status:            tools.OrDefault(crdStatus(o.Object), tools.Unknown),
				CreationTimestamp: tools.Timestamp(o.GetCreationTimestamp()),
				Labels:            tools.Labels(o.GetLabels()),
			})
		}
	default:
		return nil, fmt.Errorf("unsupported resource type: %s", args.Resource)
	}

	return snapshot{
		Resource:  args.Resource,
		Namespace: namespace,
		Timestamp: t.now().UTC().Format(time.RFC3339),
		Count:     len(items),
		Items:     tools.NonNil(items),
	}, nil
}

// crdStatus prefers status.phase and falls back to status.status.
func crdStatus(obj map[string]any) string {
	for _, field := range []string{"phase", "status"} {
		if v, found, err := unstructured.NestedString(obj, "status", field); err == nil && found && v != "" {
			return v
		}
	}
	return ""
}
