package k8s

import "time"

const (
	// Service account paths - default Kubernetes in-cluster locations
	DefaultServiceAccountPath = "/var/run/secrets/kubernetes.io/serviceaccount"
	DefaultTokenPath          = DefaultServiceAccountPath + "/token"
	DefaultCACertPath         = DefaultServiceAccountPath + "/ca.crt"
	DefaultNamespacePath      = DefaultServiceAccountPath + "/namespace"

	// Default performance settings
	DefaultQPSLimit   = 20.0
	DefaultBurstLimit = 30
	DefaultTimeout    = 30 * time.Second

	// DefaultNamespace is used whenever the kubeconfig context does not name one.
	DefaultNamespace = "default"

	// In-cluster context name
	InClusterContext = "in-cluster"

	// DockerEnvPath is the marker file Docker creates in every container.
	DockerEnvPath = "/.dockerenv"

	// ContainerHostAlias resolves to the host gateway from inside a container.
	ContainerHostAlias = "host.docker.internal"

	// MaxLogBytes caps how much of a log stream is returned to a caller.
	MaxLogBytes = 1 << 20

	// DefaultTailLines is the log tail used when the caller does not set one.
	DefaultTailLines = 100
)

// Environment variables understood by the bootstrap.
const (
	EnvDisabled                = "K8S_DISABLED"
	EnvSkipTLSVerify           = "K8S_SKIP_TLS_VERIFY"
	EnvKubernetesSkipTLSVerify = "KUBERNETES_SKIP_TLS_VERIFY"
	EnvContainerMarker         = "DOCKER_CONTAINER"
	EnvDebug                   = "DEBUG"
	EnvKubeconfig              = "KUBECONFIG"
)

// Operation names recorded on spans and metrics.
const (
	OperationGet  = "get"
	OperationList = "list"
	OperationLogs = "logs"
	OperationExec = "exec"
)

// developmentClusterFragments are name fragments of local single-node
// distributions. Their API servers almost always present self-signed
// certificates that do not match the address the client dials.
var developmentClusterFragments = []string{
	"kind",
	"minikube",
	"k3d",
	"k3s",
	"docker-desktop",
	"docker-for-desktop",
	"rancher-desktop",
	"microk8s",
	"colima",
	"orbstack",
}
