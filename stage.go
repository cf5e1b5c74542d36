package pipefunc

import "reflect"

// call holds everything a stage was built with. Keeping it in its own record
// means user keyword names never share a namespace with the stage's fields.
type call struct {
	fn     any
	args   []any
	kwargs Kwargs
}

// Stage is a function bundled with part of its arguments, applied later to a
// value. Any argument may be a Placeholder, which is resolved against the value
// at application time.
//
// A Stage never changes after New and may be applied any number of times,
// concurrently, to different values.
type Stage struct {
	call call
}

// New builds a stage around fn. Arguments created with Kw become keyword
// arguments; everything else is positional. New never fails: problems with fn
// or the arguments surface when the stage is applied.
//
//	New(strings.Repeat, 3).Apply("ab")        // strings.Repeat("ab", 3)
//	New(strings.Repeat, "ab", X).Apply(3)     // strings.Repeat("ab", 3)
func New(fn any, args ...any) *Stage {
	positional, kwargs := splitArgs(args)
	return &Stage{call: call{fn: fn, args: positional, kwargs: kwargs}}
}

// Func returns the wrapped function.
func (s *Stage) Func() any { return s.call.fn }

// Args returns a copy of the positional arguments.
func (s *Stage) Args() []any { return append([]any(nil), s.call.args...) }

// Kwargs returns a copy of the keyword arguments.
func (s *Stage) Kwargs() Kwargs { return append(Kwargs(nil), s.call.kwargs...) }

// Apply calls the wrapped function for v.
//
// When no argument is a Placeholder, v is passed as the first positional
// argument, ahead of the stored ones. When at least one argument is a
// Placeholder, v reaches the function only through the placeholders.
// Errors from the function or from resolving placeholders are returned as is.
func (s *Stage) Apply(v any) (any, error) {
	args, found, err := substitute(s.call.args, v, false)
	if err != nil {
		return nil, err
	}
	kwargs, found, err := substituteKwargs(s.call.kwargs, v, found)
	if err != nil {
		return nil, err
	}
	if !found {
		args = append([]any{v}, args...)
	}
	return invoke(s.call.fn, args, kwargs)
}

// substitute resolves placeholders among args against v. It returns the new
// argument list and whether any placeholder was seen, folded onto found.
// A nil *Placeholder is passed as a plain nil argument.
func substitute(args []any, v any, found bool) ([]any, bool, error) {
	out := make([]any, len(args))
	for i, a := range args {
		p, ok := a.(*Placeholder)
		if !ok {
			out[i] = a
			continue
		}
		if p == nil {
			out[i] = nil
			continue
		}
		r, err := p.Resolve(v)
		if err != nil {
			return nil, found, err
		}
		out[i] = r
		found = true
	}
	return out, found, nil
}

func substituteKwargs(kwargs Kwargs, v any, found bool) (Kwargs, bool, error) {
	if len(kwargs) == 0 {
		return nil, found, nil
	}
	values := make([]any, len(kwargs))
	for i, kw := range kwargs {
		values[i] = kw.Value
	}
	values, found, err := substitute(values, v, found)
	if err != nil {
		return nil, found, err
	}
	out := make(Kwargs, len(kwargs))
	for i, kw := range kwargs {
		out[i] = Keyword{Name: kw.Name, Value: values[i]}
	}
	return out, found, nil
}

// String renders the stage as f(name, args..., key=value...).
func (s *Stage) String() string {
	return formatCall("f", []string{funcName(s.call.fn)}, s.call.args, s.call.kwargs)
}

// GoString makes stages render as String inside %#v.
func (s *Stage) GoString() string { return s.String() }

// ApplyAs applies s to v and asserts the result to T.
func ApplyAs[T any](s *Stage, v any) (T, error) {
	var zero T
	out, err := s.Apply(v)
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	typed, ok := out.(T)
	if !ok {
		return zero, typeErrorf("stage %s returned %s, not %s", s, typeName(out), reflect.TypeOf((*T)(nil)).Elem())
	}
	return typed, nil
}
