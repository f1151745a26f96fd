package kubernetes

import (
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type namespaceArgs struct {
	Namespace string `json:"namespace"`
}

type listPodsArgs struct {
	Namespace     string `json:"namespace"`
	LabelSelector string `json:"labelSelector"`
}

type getPodArgs struct {
	Name      string `json:"name" validate:"required"`
	Namespace string `json:"namespace"`
}

type getLogsArgs struct {
	Name      string `json:"name" validate:"required"`
	Namespace string `json:"namespace"`
	Container string `json:"container"`
	TailLines *int64 `json:"tailLines" validate:"omitempty,min=0"`
	Previous  bool   `json:"previous"`
}

type execArgs struct {
	Name      string   `json:"name" validate:"required"`
	Namespace string   `json:"namespace"`
	Container string   `json:"container"`
	Command   []string `json:"command" validate:"required,min=1"`
}

type namespaceSummary struct {
	Name              string            `json:"name"`
	Status            string            `json:"status"`
	CreationTimestamp string            `json:"creationTimestamp"`
	Labels            map[string]string `json:"labels"`
}

type namespaceList struct {
	Count      int                `json:"count"`
	Namespaces []namespaceSummary `json:"namespaces"`
}

type podSummary struct {
	Name      string            `json:"name"`
	Namespace string            `json:"namespace"`
	Status    string            `json:"status"`
	Ready     string            `json:"ready"`
	Restarts  int32             `json:"restarts"`
	Age       string            `json:"age"`
	Node      string            `json:"node"`
	Labels    map[string]string `json:"labels"`
}

type podList struct {
	Namespace string       `json:"namespace"`
	Count     int          `json:"count"`
	Pods      []podSummary `json:"pods"`
}

type podDetail struct {
	Metadata podMetadata `json:"metadata"`
	Spec     podSpec     `json:"spec"`
	Status   podStatus   `json:"status"`
}

type podMetadata struct {
	Name              string            `json:"name"`
	Namespace         string            `json:"namespace"`
	Labels            map[string]string `json:"labels"`
	Annotations       map[string]string `json:"annotations"`
	CreationTimestamp string            `json:"creationTimestamp"`
}

type podSpec struct {
	Containers    []containerSummary   `json:"containers"`
	NodeName      string               `json:"nodeName"`
	RestartPolicy corev1.RestartPolicy `json:"restartPolicy"`
}

type containerSummary struct {
	Name  string                 `json:"name"`
	Image string                 `json:"image"`
	Ports []corev1.ContainerPort `json:"ports"`
	Env   []corev1.EnvVar        `json:"env"`
}

type podStatus struct {
	Phase             corev1.PodPhase          `json:"phase"`
	PodIP             string                   `json:"podIP"`
	HostIP            string                   `json:"hostIP"`
	ContainerStatuses []corev1.ContainerStatus `json:"containerStatuses"`
	Conditions        []corev1.PodCondition    `json:"conditions"`
}

type serviceSummary struct {
	Name        string               `json:"name"`
	Namespace   string               `json:"namespace"`
	Type        corev1.ServiceType   `json:"type"`
	ClusterIP   string               `json:"clusterIP"`
	ExternalIPs []string             `json:"externalIPs"`
	Ports       []corev1.ServicePort `json:"ports"`
	Selector    map[string]string    `json:"selector"`
	Labels      map[string]string    `json:"labels"`
}

type serviceList struct {
	Namespace string           `json:"namespace"`
	Count     int              `json:"count"`
	Services  []serviceSummary `json:"services"`
}

type deploymentSummary struct {
	Name      string            `json:"name"`
	Namespace string            `json:"namespace"`
	Ready     string            `json:"ready"`
	UpToDate  int32             `json:"upToDate"`
	Available int32             `json:"available"`
	Age       string            `json:"age"`
	Labels    map[string]string `json:"labels"`
}

type deploymentList struct {
	Namespace   string              `json:"namespace"`
	Count       int                 `json:"count"`
	Deployments []deploymentSummary `json:"deployments"`
}

type logsResult struct {
	PodName   string `json:"podName"`
	Namespace string `json:"namespace"`
	Container string `json:"container"`
	Logs      string `json:"logs"`
}

type execResult struct {
	PodName   string   `json:"podName"`
	Namespace string   `json:"namespace"`
	Container string   `json:"container"`
	Command   []string `json:"command"`
	ExitCode  int      `json:"exitCode"`
	Stdout    string   `json:"stdout"`
	Stderr    string   `json:"stderr"`
}

type networkPolicySummary struct {
	Name         string                                  `json:"name"`
	Namespace    string                                  `json:"namespace"`
	PodSelector  metav1.LabelSelector                    `json:"podSelector"`
	PolicyTypes  []networkingv1.PolicyType               `json:"policyTypes"`
	IngressRules []networkingv1.NetworkPolicyIngressRule `json:"ingressRules"`
	EgressRules  []networkingv1.NetworkPolicyEgressRule  `json:"egressRules"`
}

type networkPolicyList struct {
	Namespace       string                 `json:"namespace"`
	Count           int                    `json:"count"`
	NetworkPolicies []networkPolicySummary `json:"networkPolicies"`
}

type roleBindingSummary struct {
	Name      string           `json:"name"`
	Namespace string           `json:"namespace"`
	RoleRef   rbacv1.RoleRef   `json:"roleRef"`
	Subjects  []rbacv1.Subject `json:"subjects"`
}

type roleBindingList struct {
	Namespace    string               `json:"namespace"`
	Count        int                  `json:"count"`
	RoleBindings []roleBindingSummary `json:"roleBindings"`
}
