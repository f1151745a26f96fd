package k8s

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/rest"
)

func TestLazyValueRetriesAfterFailure(t *testing.T) {
	var lv lazyValue[string]
	calls := 0

	_, err := lv.Get(func() (string, error) {
		calls++
		return "", errors.New("api server unreachable")
	})
	require.Error(t, err)
	assert.False(t, lv.IsSet())

	v, err := lv.Get(func() (string, error) {
		calls++
		return "clientset", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "clientset", v)

	v, err = lv.Get(func() (string, error) {
		calls++
		return "ignored", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "clientset", v)
	assert.Equal(t, 2, calls)
}

func TestLazyValueInitialisesOnceUnderContention(t *testing.T) {
	var lv lazyValue[int]
	var inits atomic.Int32

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := lv.Get(func() (int, error) {
				inits.Add(1)
				return 7, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 7, v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), inits.Load())
}

func TestClusterClientBuildsClientsOnFirstUse(t *testing.T) {
	conn := &Connection{restErr: errors.New("kubeconfig has no server")}
	client := NewClient(conn)

	_, err := client.typed()
	require.Error(t, err)
	assert.False(t, client.clientset.IsSet(), "a failed build is not cached")

	conn.restErr = nil
	conn.rest = &rest.Config{Host: "https://127.0.0.1:6443"}

	cs, err := client.typed()
	require.NoError(t, err)
	assert.NotNil(t, cs)
	assert.True(t, client.clientset.IsSet())
	assert.False(t, client.dynamic.IsSet(), "the dynamic client is built independently")

	dyn, err := client.dyn()
	require.NoError(t, err)
	assert.NotNil(t, dyn)
}

func TestClusterClientDisabledNeverBuilds(t *testing.T) {
	conn := &Connection{Context: ConnectionContext{Disabled: true}, restErr: ErrDisabled}
	client := NewClient(conn)

	_, err := client.typed()
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = client.dyn()
	assert.ErrorIs(t, err, ErrDisabled)

	assert.False(t, client.clientset.IsSet())
	assert.False(t, client.dynamic.IsSet())
}

func TestWithClientsetsPresetsBothClients(t *testing.T) {
	cs := fake.NewSimpleClientset()
	dyn := dynamicfake.NewSimpleDynamicClient(runtime.NewScheme())

	client := NewClient(&Connection{restErr: errors.New("must not be consulted")}, WithClientsets(cs, dyn))

	gotTyped, err := client.typed()
	require.NoError(t, err)
	assert.Same(t, cs, gotTyped)

	gotDyn, err := client.dyn()
	require.NoError(t, err)
	assert.Same(t, dyn, gotDyn)
}
