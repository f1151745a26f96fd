package hlf

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/utils/ptr"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools"
)

const (
	// OperatorNamespace is where the operator is looked for by default.
	OperatorNamespace = "hlf-operator"

	operatorSelector = "app.kubernetes.io/name=hlf-operator"
)

// resourceKinds maps the accepted type names to CRD plurals.
var resourceKinds = map[string]string{
	"fabricca":               k8s.FabricCAs,
	"fabricpeer":             k8s.FabricPeers,
	"fabricorderer":          k8s.FabricOrderers,
	"fabricorderernodes":     k8s.FabricOrdererNodes,
	"fabricmainchannels":     k8s.FabricMainChannels,
	"fabricfollowerchannels": k8s.FabricFollowerChannels,
	"fabricchaincodes":       k8s.FabricChaincodes,
}

var resourceTypes = []string{
	"fabricca",
	"fabricpeer",
	"fabricorderer",
	"fabricorderernodes",
	"fabricmainchannels",
	"fabricfollowerchannels",
	"fabricchaincodes",
}

type namespaceArgs struct {
	Namespace string `json:"namespace"`
}

type getResourceArgs struct {
	Type      string `json:"type" validate:"required,oneof=fabricca fabricpeer fabricorderer fabricorderernodes fabricmainchannels fabricfollowerchannels fabricchaincodes"`
	Name      string `json:"name" validate:"required"`
	Namespace string `json:"namespace"`
}

type resourceDetail struct {
	Metadata any `json:"metadata"`
	Spec     any `json:"spec"`
	Status   any `json:"status"`
}

type operatorDeployment struct {
	Name   string `json:"name"`
	Ready  string `json:"ready"`
	Status string `json:"status"`
}

type operatorPod struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Ready  string `json:"ready"`
}

type operatorStatus struct {
	Namespace       string               `json:"namespace"`
	Deployments     []operatorDeployment `json:"deployments"`
	Pods            []operatorPod        `json:"pods"`
	OperatorRunning bool                 `json:"operatorRunning"`
}

func (t *Tools) getResource(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[getResourceArgs](req)
	if err != nil {
		return nil, err
	}
	namespace := tools.OrDefault(args.Namespace, t.client.CurrentNamespace())

	obj, err := t.client.GetCustomObject(ctx, k8s.FabricGVR(resourceKinds[args.Type]), namespace, args.Name)
	if err != nil {
		return nil, err
	}

	status, ok := obj.Object["status"]
	if !ok || status == nil {
		status = map[string]any{}
	}
	return resourceDetail{
		Metadata: obj.Object["metadata"],
		Spec:     obj.Object["spec"],
		Status:   status,
	}, nil
}

func (t *Tools) checkOperator(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[namespaceArgs](req)
	if err != nil {
		return nil, err
	}
	namespace := tools.OrDefault(args.Namespace, OperatorNamespace)

	var (
		deployments []appsv1.Deployment
		pods        []corev1.Pod
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deployments, err = t.client.ListDeployments(gctx, namespace, operatorSelector)
		return err
	})
	g.Go(func() error {
		var err error
		pods, err = t.client.ListPods(gctx, namespace, operatorSelector)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := operatorStatus{
		Namespace:   namespace,
		Deployments: make([]operatorDeployment, 0, len(deployments)),
		Pods:        make([]operatorPod, 0, len(pods)),
	}
	for _, d := range deployments {
		out.Deployments = append(out.Deployments, operatorDeployment{
			Name:   d.Name,
			Ready:  fmt.Sprintf("%d/%d", d.Status.ReadyReplicas, ptr.Deref(d.Spec.Replicas, 0)),
			Status: availableCondition(&d),
		})
	}
	anyRunning := false
	for i := range pods {
		p := &pods[i]
		out.Pods = append(out.Pods, operatorPod{
			Name:   p.Name,
			Status: string(p.Status.Phase),
			Ready:  tools.PodReady(p),
		})
		anyRunning = anyRunning || p.Status.Phase == corev1.PodRunning
	}
	out.OperatorRunning = len(deployments) > 0 && anyRunning
	return out, nil
}

func availableCondition(d *appsv1.Deployment) string {
	for _, c := range d.Status.Conditions {
		if c.Type == appsv1.DeploymentAvailable {
			return string(c.Status)
		}
	}
	return tools.Unknown
}
