package tools

import (
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Fallbacks used when a projected field is absent.
const (
	Unknown       = "Unknown"
	NotApplicable = "N/A"
)

// Timestamp formats t as RFC3339 in UTC. The zero time renders as "".
func Timestamp(t metav1.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Labels never returns nil so projections always encode an object.
func Labels(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// NonNil returns s, or an empty slice when s is nil.
func NonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// PodReady renders "ready/total" for the pod's containers, or Unknown when no
// status has been reported yet.
func PodReady(pod *corev1.Pod) string {
	statuses := pod.Status.ContainerStatuses
	if len(statuses) == 0 {
		return Unknown
	}
	ready := 0
	for _, s := range statuses {
		if s.Ready {
			ready++
		}
	}
	return fmt.Sprintf("%d/%d", ready, len(statuses))
}

// PodRestarts sums restart counts across containers.
func PodRestarts(pod *corev1.Pod) int32 {
	var n int32
	for _, s := range pod.Status.ContainerStatuses {
		n += s.RestartCount
	}
	return n
}
