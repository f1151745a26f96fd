package k8s

import "sync"

// lazyValue provides thread-safe lazy initialization for any type.
// Typed clients are created on first use so that a reachable kubeconfig
// with an unreachable server does not block startup.
type lazyValue[T any] struct {
	mu    sync.RWMutex
	value T
	set   bool
}

// Get returns the cached value if set, otherwise calls initFn to create it.
// A failed initFn is not cached; the next call retries.
func (l *lazyValue[T]) Get(initFn func() (T, error)) (T, error) {
	l.mu.RLock()
	if l.set {
		v := l.value
		l.mu.RUnlock()
		return v, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.set {
		return l.value, nil
	}

	v, err := initFn()
	if err != nil {
		var zero T
		return zero, err
	}

	l.value = v
	l.set = true
	return v, nil
}

// Preset stores v as if it had been produced by an init function.
func (l *lazyValue[T]) Preset(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = v
	l.set = true
}

// IsSet returns true if the value has been initialized.
func (l *lazyValue[T]) IsSet() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.set
}
