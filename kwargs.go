package pipefunc

// Keyword is a named argument. Passing a Keyword to New or Placeholder.Call
// marks it as a keyword argument instead of a positional one.
type Keyword struct {
	Name  string
	Value any
}

// Kw builds a keyword argument.
func Kw(name string, value any) Keyword {
	return Keyword{Name: name, Value: value}
}

// Kwargs is an ordered list of keyword arguments. A function whose last
// parameter has type Kwargs receives a stage's keyword arguments through it.
type Kwargs []Keyword

// Get returns the value bound to name.
func (k Kwargs) Get(name string) (any, bool) {
	for _, kw := range k {
		if kw.Name == name {
			return kw.Value, true
		}
	}
	return nil, false
}

// Len returns the number of keyword arguments.
func (k Kwargs) Len() int { return len(k) }

// Map returns the keyword arguments as a map. Later duplicates win.
func (k Kwargs) Map() map[string]any {
	m := make(map[string]any, len(k))
	for _, kw := range k {
		m[kw.Name] = kw.Value
	}
	return m
}

// splitArgs separates keyword markers from positional arguments, keeping the
// relative order of each.
func splitArgs(args []any) ([]any, Kwargs) {
	var positional []any
	var kwargs Kwargs
	for _, a := range args {
		if kw, ok := a.(Keyword); ok {
			kwargs = append(kwargs, kw)
			continue
		}
		positional = append(positional, a)
	}
	return positional, kwargs
}
