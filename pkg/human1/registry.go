// pkg/human1/registry.go
package human1

import (
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "human1-sdk/internal/common/errors"
)

const DefaultAppName = "default"

// ErrInvalidApplication is returned, wrapped, whenever a nil application is
// registered, bound or mounted on.
var ErrInvalidApplication error = apperrors.NewInvalidApplicationError("")

type State int

const (
	StateUnregistered State = iota
	StateRegistered
)

func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	default:
		return "unregistered"
	}
}

// Entry is one registered application.
type Entry struct {
	Name         string
	App          Application
	RegisteredAt time.Time

	seq uint64
}

// Registry maps names to host applications so an SDK initialized without an
// explicit app can find one registered elsewhere in the process.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	last    time.Time
	seq     uint64
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

type registerOptions struct {
	name string
}

type RegisterOption func(*registerOptions)

// WithName registers the app under name instead of "default".
func WithName(name string) RegisterOption {
	return func(o *registerOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// Register stores app under its name, replacing any previous entry with the
// same name.
func (r *Registry) Register(app Application, opts ...RegisterOption) error {
	if isNilApp(app) {
		return fmt.Errorf("%w: application is nil", ErrInvalidApplication)
	}

	o := registerOptions{name: DefaultAppName}
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	at := r.now()
	r.entries[o.name] = Entry{Name: o.name, App: app, RegisteredAt: at, seq: r.seq}
	r.last = at
	return nil
}

func (r *Registry) Get(name string) (Application, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.App, true
}

func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Entries returns all entries, oldest registration first.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// LastRegistration is the time of the latest Register call, zero if none
// happened since the last Clear.
func (r *Registry) LastRegistration() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]Entry)
	r.last = time.Time{}
}

func (r *Registry) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.entries) == 0 {
		return StateUnregistered
	}
	return StateRegistered
}

// Detect returns the default entry if there is one, otherwise the most
// recently registered app. The bool is false when the registry is empty.
func (r *Registry) Detect() (Application, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.entries[DefaultAppName]; ok {
		return e.App, true
	}

	var latest *Entry
	for name := range r.entries {
		e := r.entries[name]
		if latest == nil || e.seq > latest.seq {
			latest = &e
		}
	}
	if latest == nil {
		return nil, false
	}
	return latest.App, true
}

var defaultRegistry = NewRegistry()

// DefaultRegistry is the process-wide registry used by Init when no other
// registry is given.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func Register(app Application, opts ...RegisterOption) error {
	return defaultRegistry.Register(app, opts...)
}

func Detect() (Application, bool) {
	return defaultRegistry.Detect()
}

func isNilApp(app Application) bool {
	if app == nil {
		return true
	}
	if a, ok := app.(*App); ok && a == nil {
		return true
	}
	return false
}
