package kubernetes

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"k8s.io/utils/ptr"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools"
)

const noLogs = "No logs available"

func (t *Tools) namespace(ns string) string {
	return tools.OrDefault(ns, t.client.CurrentNamespace())
}

func (t *Tools) testConnection(ctx context.Context, _ mcp.CallToolRequest) (any, error) {
	return t.client.TestConnection(ctx), nil
}

func (t *Tools) listNamespaces(ctx context.Context, _ mcp.CallToolRequest) (any, error) {
	items, err := t.client.ListNamespaces(ctx)
	if err != nil {
		return nil, err
	}

	out := namespaceList{Count: len(items), Namespaces: make([]namespaceSummary, 0, len(items))}
	for _, ns := range items {
		out.Namespaces = append(out.Namespaces, namespaceSummary{
			Name:              ns.Name,
			Status:            string(ns.Status.Phase),
			CreationTimestamp: tools.Timestamp(ns.CreationTimestamp),
			Labels:            tools.Labels(ns.Labels),
		})
	}
	return out, nil
}

func (t *Tools) listPods(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[listPodsArgs](req)
	if err != nil {
		return nil, err
	}
	namespace := t.namespace(args.Namespace)

	items, err := t.client.ListPods(ctx, namespace, args.LabelSelector)
	if err != nil {
		return nil, err
	}

	out := podList{Namespace: namespace, Count: len(items), Pods: make([]podSummary, 0, len(items))}
	for i := range items {
		pod := &items[i]
		out.Pods = append(out.Pods, podSummary{
			Name:      pod.Name,
			Namespace: pod.Namespace,
			Status:    string(pod.Status.Phase),
			Ready:     tools.PodReady(pod),
			Restarts:  tools.PodRestarts(pod),
			Age:       tools.Timestamp(pod.CreationTimestamp),
			Node:      pod.Spec.NodeName,
			Labels:    tools.Labels(pod.Labels),
		})
	}
	return out, nil
}

func (t *Tools) getPod(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[getPodArgs](req)
	if err != nil {
		return nil, err
	}

	pod, err := t.client.GetPod(ctx, t.namespace(args.Namespace), args.Name)
	if err != nil {
		return nil, err
	}

	containers := make([]containerSummary, 0, len(pod.Spec.Containers))
	for _, c := range pod.Spec.Containers {
		containers = append(containers, containerSummary{
			Name:  c.Name,
			Image: c.Image,
			Ports: tools.NonNil(c.Ports),
			Env:   tools.NonNil(c.Env),
		})
	}

	return podDetail{
		Metadata: podMetadata{
			Name:              pod.Name,
			Namespace:         pod.Namespace,
			Labels:            tools.Labels(pod.Labels),
			Annotations:       tools.Labels(pod.Annotations),
			CreationTimestamp: tools.Timestamp(pod.CreationTimestamp),
		},
		Spec: podSpec{
			Containers:    containers,
			NodeName:      pod.Spec.NodeName,
			RestartPolicy: pod.Spec.RestartPolicy,
		},
		Status: podStatus{
			Phase:             pod.Status.Phase,
			PodIP:             pod.Status.PodIP,
			HostIP:            pod.Status.HostIP,
			ContainerStatuses: tools.NonNil(pod.Status.ContainerStatuses),
			Conditions:        tools.NonNil(pod.Status.Conditions),
		},
	}, nil
}

func (t *Tools) listServices(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[namespaceArgs](req)
	if err != nil {
		return nil, err
	}
	namespace := t.namespace(args.Namespace)

	items, err := t.client.ListServices(ctx, namespace)
	if err != nil {
		return nil, err
	}

	out := serviceList{Namespace: namespace, Count: len(items), Services: make([]serviceSummary, 0, len(items))}
	for _, svc := range items {
		out.Services = append(out.Services, serviceSummary{
			Name:        svc.Name,
			Namespace:   svc.Namespace,
			Type:        svc.Spec.Type,
			ClusterIP:   svc.Spec.ClusterIP,
			ExternalIPs: tools.NonNil(svc.Spec.ExternalIPs),
			Ports:       tools.NonNil(svc.Spec.Ports),
			Selector:    tools.Labels(svc.Spec.Selector),
			Labels:      tools.Labels(svc.Labels),
		})
	}
	return out, nil
}

func (t *Tools) listDeployments(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[namespaceArgs](req)
	if err != nil {
		return nil, err
	}
	namespace := t.namespace(args.Namespace)

	items, err := t.client.ListDeployments(ctx, namespace, "")
	if err != nil {
		return nil, err
	}

	out := deploymentList{Namespace: namespace, Count: len(items), Deployments: make([]deploymentSummary, 0, len(items))}
	for _, dep := range items {
		out.Deployments = append(out.Deployments, deploymentSummary{
			Name:      dep.Name,
			Namespace: dep.Namespace,
			Ready:     fmt.Sprintf("%d/%d", dep.Status.ReadyReplicas, ptr.Deref(dep.Spec.Replicas, 0)),
			UpToDate:  dep.Status.UpdatedReplicas,
			Available: dep.Status.AvailableReplicas,
			Age:       tools.Timestamp(dep.CreationTimestamp),
			Labels:    tools.Labels(dep.Labels),
		})
	}
	return out, nil
}

func (t *Tools) getLogs(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[getLogsArgs](req)
	if err != nil {
		return nil, err
	}
	namespace := t.namespace(args.Namespace)

	tail := args.TailLines
	if tail == nil {
		tail = ptr.To[int64](k8s.DefaultTailLines)
	}

	logs, err := t.client.GetLogs(ctx, namespace, args.Name, k8s.LogOptions{
		Container: args.Container,
		TailLines: tail,
		Previous:  args.Previous,
	})
	if err != nil {
		return nil, err
	}

	return logsResult{
		PodName:   args.Name,
		Namespace: namespace,
		Container: tools.OrDefault(args.Container, "default"),
		Logs:      tools.OrDefault(logs, noLogs),
	}, nil
}

func (t *Tools) exec(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[execArgs](req)
	if err != nil {
		return nil, err
	}
	namespace := t.namespace(args.Namespace)

	res, err := t.client.Exec(ctx, namespace, args.Name, args.Container, args.Command)
	if err != nil {
		return nil, err
	}

	return execResult{
		PodName:   args.Name,
		Namespace: namespace,
		Container: tools.OrDefault(args.Container, "default"),
		Command:   args.Command,
		ExitCode:  res.ExitCode,
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
	}, nil
}

func (t *Tools) listNetworkPolicies(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[namespaceArgs](req)
	if err != nil {
		return nil, err
	}
	namespace := t.namespace(args.Namespace)

	items, err := t.client.ListNetworkPolicies(ctx, namespace)
	if err != nil {
		return nil, err
	}

	out := networkPolicyList{Namespace: namespace, Count: len(items), NetworkPolicies: make([]networkPolicySummary, 0, len(items))}
	for _, np := range items {
		out.NetworkPolicies = append(out.NetworkPolicies, networkPolicySummary{
			Name:         np.Name,
			Namespace:    np.Namespace,
			PodSelector:  np.Spec.PodSelector,
			PolicyTypes:  tools.NonNil(np.Spec.PolicyTypes),
			IngressRules: tools.NonNil(np.Spec.Ingress),
			EgressRules:  tools.NonNil(np.Spec.Egress),
		})
	}
	return out, nil
}

func (t *Tools) listRoleBindings(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[namespaceArgs](req)
	if err != nil {
		return nil, err
	}
	namespace := t.namespace(args.Namespace)

	items, err := t.client.ListRoleBindings(ctx, namespace)
	if err != nil {
		return nil, err
	}

	out := roleBindingList{Namespace: namespace, Count: len(items), RoleBindings: make([]roleBindingSummary, 0, len(items))}
	for _, rb := range items {
		out.RoleBindings = append(out.RoleBindings, roleBindingSummary{
			Name:      rb.Name,
			Namespace: rb.Namespace,
			RoleRef:   rb.RoleRef,
			Subjects:  tools.NonNil(rb.Subjects),
		})
	}
	return out, nil
}
