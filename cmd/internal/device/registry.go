package device

import (
	"sort"
	"sync"
	"time"
)

// Info is one row of the registry listing.
type Info struct {
	ID     string
	Status Status
}

// Registry is the process-wide device map. All operations are atomic with
// respect to concurrent callers; it holds only in-memory references and never
// blocks on I/O. Overwriting an existing key via Put is reserved for the
// controller's create-replace protocol.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*DeviceSession
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]*DeviceSession)}
}

// Get returns the entry for id, or nil.
func (r *Registry) Get(id string) *DeviceSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.devices[id]
}

// Put installs the entry for id.
func (r *Registry) Put(id string, dev *DeviceSession) {
	r.mu.Lock()
	r.devices[id] = dev
	r.mu.Unlock()
}

// Remove deletes the entry for id and reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[id]; !ok {
		return false
	}
	delete(r.devices, id)
	return true
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// ListAll returns a stable-sorted snapshot of (id, status) pairs.
func (r *Registry) ListAll() []Info {
	r.mu.RLock()
	out := make([]Info, 0, len(r.devices))
	for id, dev := range r.devices {
		st, _ := dev.Status()
		out = append(out, Info{ID: id, Status: st})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetStatus atomically transitions an entry's status; it is a no-op for
// absent ids.
func (r *Registry) SetStatus(id string, to Status, now time.Time) {
	if dev := r.Get(id); dev != nil {
		dev.setStatus(to, now)
	}
}
