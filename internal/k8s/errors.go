package k8s

import (
	"errors"
	"fmt"
	"net/http"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// ErrDisabled is returned by every client call when cluster access is turned off.
var ErrDisabled = errors.New("kubernetes functionality is disabled")

// DisabledMessage is the text cluster-touching tools report in disabled mode.
const DisabledMessage = "Kubernetes functionality is disabled. Set K8S_DISABLED=false or mount kubeconfig to enable."

// ConfigurationError reports that no usable cluster configuration was found.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "no usable kubeconfig"
	if e.Source != "" {
		msg += " at " + e.Source
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg + " (configure a kubeconfig, mount one into the container, or set " + EnvDisabled + "=true to run without a cluster)"
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// APIError is a failure reported by the API server.
type APIError struct {
	StatusCode int
	Reason     string
	Message    string
	err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.err }

// toAPIError converts API server status errors into *APIError and wraps
// anything else with the operation that failed.
func toAPIError(op string, err error) error {
	if err == nil {
		return nil
	}

	var status apierrors.APIStatus
	if errors.As(err, &status) {
		s := status.Status()
		code := int(s.Code)
		if code == 0 {
			code = http.StatusInternalServerError
		}
		msg := s.Message
		if msg == "" {
			msg = err.Error()
		}
		return &APIError{
			StatusCode: code,
			Reason:     string(s.Reason),
			Message:    msg,
			err:        err,
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
