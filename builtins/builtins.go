// Package builtins provides functions over JSON-like values (maps, slices,
// strings, float64 numbers) that pipeline definitions can refer to by name.
package builtins

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/davidroman0O/pipefunc"
)

// Funcs maps builtin names to their implementations.
var Funcs = map[string]any{
	"identity": Identity,
	"len":      Len,
	"get":      Get,
	"keys":     Keys,
	"upper":    strings.ToUpper,
	"lower":    strings.ToLower,
	"trim":     strings.TrimSpace,
	"split":    Split,
	"join":     Join,
	"concat":   Concat,
	"add":      Add,
	"mul":      Mul,
	"format":   Format,
	"tuple":    Tuple,
	"default":  Default,
}

// Register adds every builtin to r.
func Register(r *pipefunc.Registry) error {
	for _, name := range Names() {
		if err := r.Register(name, Funcs[name]); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding only the builtins.
func NewRegistry() *pipefunc.Registry {
	r := pipefunc.NewRegistry()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}

// Names returns the builtin names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Funcs))
	for name := range Funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Identity returns v.
func Identity(v any) any { return v }

// Len returns the length of a string, slice, array or map.
func Len(v any) (int, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return len([]rune(rv.String())), nil
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), nil
	}
	return 0, fmt.Errorf("len: unsupported type %T", v)
}

// Get looks up key in a map, or an integer position in a slice. It returns
// the same errors as a placeholder index step.
func Get(v any, key any) (any, error) {
	return pipefunc.X.Item(key).Resolve(v)
}

// Keys returns the sorted keys of a string-keyed map.
func Keys(m map[string]any) []any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}

// Split splits s around sep.
func Split(s, sep string) []any {
	parts := strings.Split(s, sep)
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out
}

// Join concatenates the elements of items, formatted with %v, separated by sep.
func Join(items []any, sep string) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprint(it)
	}
	return strings.Join(parts, sep)
}

// Concat joins its string arguments.
func Concat(parts ...string) string {
	return strings.Join(parts, "")
}

// Add returns the sum of its arguments.
func Add(a float64, rest ...float64) float64 {
	for _, r := range rest {
		a += r
	}
	return a
}

// Mul returns the product of its arguments.
func Mul(a float64, rest ...float64) float64 {
	for _, r := range rest {
		a *= r
	}
	return a
}

// Format formats args with a fmt verb string.
func Format(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// Tuple collects its arguments into a list.
func Tuple(items ...any) []any {
	return items
}

// Default returns fallback when v is nil.
func Default(v any, fallback any) any {
	if v == nil {
		return fallback
	}
	return v
}
