package supervisor

import "sort"

// Registry maps ChildName to ChildRecord. The only component permitted to
// mutate a Registry is the Dispatcher (see dispatcher.go); the Drain Loop
// observes exits and reports them through Dispatcher hooks instead of
// deleting entries itself: the drain loop only ever reports names, never
// deletes them.
type Registry struct {
	children map[ChildName]*ChildRecord
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{children: make(map[ChildName]*ChildRecord)}
}

// Get returns the record for name, or nil if absent.
func (r *Registry) Get(name ChildName) *ChildRecord {
	return r.children[name]
}

// Has reports whether name is present (believed running).
func (r *Registry) Has(name ChildName) bool {
	_, ok := r.children[name]
	return ok
}

// insert adds rec under its own name. Called only by the Dispatcher.
func (r *Registry) insert(rec *ChildRecord) {
	r.children[rec.Name] = rec
}

// remove deletes name from the registry. Called only by the Dispatcher.
func (r *Registry) remove(name ChildName) {
	delete(r.children, name)
}

// Names returns every registered ChildName in sorted order.
func (r *Registry) Names() []ChildName {
	names := make([]ChildName, 0, len(r.children))
	for n := range r.children {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Len returns the number of registered children.
func (r *Registry) Len() int { return len(r.children) }
