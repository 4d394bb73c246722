// Package registry contains the registry of active streams.
package registry

import (
	"sort"
	"sync"
)

// Handle is an entry of the registry.
type Handle interface {
	// Close terminates the entry.
	Close()
}

// Registry maps stream names to their active handle.
// It is safe for concurrent use.
type Registry struct {
	mutex   sync.Mutex
	entries map[string]Handle
}

// Replace registers h as the active handle of name.
// If another handle was registered with the same name,
// it is removed and closed before Replace returns.
// It returns whether a previous handle was closed.
func (r *Registry) Replace(name string, h Handle) bool {
	r.mutex.Lock()
	if r.entries == nil {
		r.entries = make(map[string]Handle)
	}
	prev, ok := r.entries[name]
	r.entries[name] = h
	r.mutex.Unlock()

	if ok && prev != h {
		prev.Close()
		return true
	}
	return false
}

// Remove removes name, only if h is the active handle.
func (r *Registry) Remove(name string, h Handle) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	cur, ok := r.entries[name]
	if !ok || cur != h {
		return false
	}

	delete(r.entries, name)
	return true
}

// Get returns the active handle of name.
func (r *Registry) Get(name string) (Handle, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	h, ok := r.entries[name]
	return h, ok
}

// Names returns the sorted names of the active entries.
func (r *Registry) Names() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ret := make([]string, 0, len(r.entries))
	for name := range r.entries {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// CloseAll closes and removes every entry.
func (r *Registry) CloseAll() {
	r.mutex.Lock()
	entries := r.entries
	r.entries = nil
	r.mutex.Unlock()

	for _, h := range entries {
		h.Close()
	}
}
