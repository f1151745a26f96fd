package k8s

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

func TestToAPIError_StatusError(t *testing.T) {
	notFound := apierrors.NewNotFound(schema.GroupResource{Resource: "pods"}, "peer0")

	err := toAPIError("get pod", notFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, `404: pods "peer0" not found`, err.Error())
	assert.True(t, apierrors.IsNotFound(err))
}

func TestToAPIError_Forbidden(t *testing.T) {
	forbidden := apierrors.NewForbidden(schema.GroupResource{Resource: "secrets"}, "", errors.New("no access"))

	err := toAPIError("list secrets", forbidden)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Forbidden", apiErr.Reason)
}

func TestToAPIError_PlainError(t *testing.T) {
	base := errors.New("connection refused")

	err := toAPIError("list pods", base)

	assert.Equal(t, "list pods: connection refused", err.Error())
	assert.ErrorIs(t, err, base)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestToAPIError_Nil(t *testing.T) {
	assert.NoError(t, toAPIError("noop", nil))
}

func TestConfigurationError(t *testing.T) {
	base := errors.New("stat /nope: no such file or directory")
	err := &ConfigurationError{Source: "/nope", Err: base}

	assert.Contains(t, err.Error(), "no usable kubeconfig at /nope")
	assert.Contains(t, err.Error(), "K8S_DISABLED=true")
	assert.ErrorIs(t, err, base)
}
