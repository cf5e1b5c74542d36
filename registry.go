package pipefunc

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/sasha-s/go-deadlock"
)

// Registry maps names to functions so stages can be built from definitions
// that only carry a function name.
type Registry struct {
	mu    deadlock.RWMutex
	funcs map[string]NamedFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]NamedFunc)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by RegisterFunc and LookupFunc.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds fn under name. fn must be a function and name must be unused.
func (r *Registry) Register(name string, fn any) error {
	if name == "" {
		return fmt.Errorf("function name must not be empty")
	}
	if v := reflect.ValueOf(fn); v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Errorf("cannot register '%s': %s is not a function", name, typeName(fn))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("function with name '%s' is already registered", name)
	}
	r.funcs[name] = Named(name, fn)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, fn any) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (NamedFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	if !ok {
		return NamedFunc{}, fmt.Errorf("function with name '%s' not found in registry", name)
	}
	return fn, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stage builds a stage around the function registered under name.
func (r *Registry) Stage(name string, args ...any) (*Stage, error) {
	fn, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return New(fn, args...), nil
}

// RegisterFunc registers fn in the default registry.
// This function should be called at application startup.
// It will panic if a function with the same name is already registered.
func RegisterFunc(name string, fn any) {
	defaultRegistry.MustRegister(name, fn)
}

// LookupFunc returns a function from the default registry.
func LookupFunc(name string) (NamedFunc, error) {
	return defaultRegistry.Lookup(name)
}
