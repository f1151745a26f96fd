package dispatch

// Registry is an insertion-ordered name to descriptor map. It is filled
// before serving starts and only read afterwards, so it carries no lock.
type Registry[T any] struct {
	order []string
	items map[string]T
}

// NewRegistry returns an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{items: make(map[string]T)}
}

// Register adds item under name. Registering an existing name replaces the
// item but keeps the position of the first registration. It reports whether
// an existing entry was replaced.
func (r *Registry[T]) Register(name string, item T) bool {
	_, exists := r.items[name]
	if !exists {
		r.order = append(r.order, name)
	}
	r.items[name] = item
	return exists
}

// Lookup returns the item registered under name.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	item, ok := r.items[name]
	return item, ok
}

// All returns the items in registration order.
func (r *Registry[T]) All() []T {
	out := make([]T, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.items[name])
	}
	return out
}

// Names returns the registered names in registration order.
func (r *Registry[T]) Names() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered names.
func (r *Registry[T]) Len() int {
	return len(r.order)
}
