package pipefunc

import (
	"math"
	"reflect"
)

// rootToken is the display text of the root placeholder.
const rootToken = "X"

type stepKind int

const (
	stepRoot stepKind = iota
	stepAttr
	stepItem
	stepCall
)

// Placeholder describes an access chain on a value that is not known yet.
// Every builder method returns a new Placeholder; none of them evaluates
// anything. Evaluation happens only in Resolve.
//
// A Placeholder is immutable and safe for concurrent use.
type Placeholder struct {
	parent  *Placeholder
	kind    stepKind
	name    string
	key     any
	args    []any
	kwargs  Kwargs
	display string
}

// X is the root placeholder. It stands for the value a stage is applied to.
var X = Root()

// Root returns a placeholder that resolves to its input unchanged.
func Root() *Placeholder {
	return &Placeholder{kind: stepRoot, display: rootToken}
}

// AttrGetter lets a type answer attribute steps itself instead of through
// reflection on its methods and fields.
type AttrGetter interface {
	GetAttr(name string) (any, error)
}

// ItemGetter lets a type answer index steps itself.
type ItemGetter interface {
	GetItem(key any) (any, error)
}

// Attr returns a placeholder that looks up the attribute name on the value
// resolved by p: a method, or an exported struct field.
func (p *Placeholder) Attr(name string) *Placeholder {
	return &Placeholder{
		parent:  p,
		kind:    stepAttr,
		name:    name,
		display: p.display + "." + name,
	}
}

// Item returns a placeholder that indexes the value resolved by p with key.
func (p *Placeholder) Item(key any) *Placeholder {
	return &Placeholder{
		parent:  p,
		kind:    stepItem,
		key:     key,
		display: p.display + "[" + Repr(key) + "]",
	}
}

// Call returns a placeholder that calls the value resolved by p. Keyword
// markers built with Kw are passed as keyword arguments. Placeholders inside
// args are passed through as they are, not resolved.
func (p *Placeholder) Call(args ...any) *Placeholder {
	positional, kwargs := splitArgs(args)
	return &Placeholder{
		parent:  p,
		kind:    stepCall,
		args:    positional,
		kwargs:  kwargs,
		display: formatCall(p.display, nil, positional, kwargs),
	}
}

// Resolve evaluates the access chain against v.
func (p *Placeholder) Resolve(v any) (any, error) {
	if p.kind == stepRoot {
		return v, nil
	}
	inner, err := p.parent.Resolve(v)
	if err != nil {
		return nil, err
	}
	switch p.kind {
	case stepAttr:
		return getAttr(inner, p.name)
	case stepItem:
		return getItem(inner, p.key)
	case stepCall:
		return invoke(inner, p.args, p.kwargs)
	}
	return inner, nil
}

// String returns the display text, e.g. X.items[0].Len().
func (p *Placeholder) String() string {
	if p == nil {
		return "nil"
	}
	return p.display
}

// GoString makes placeholders render as their display text inside %#v.
func (p *Placeholder) GoString() string { return p.String() }

func getAttr(v any, name string) (any, error) {
	if g, ok := v.(AttrGetter); ok {
		return g.GetAttr(name)
	}
	if v == nil {
		return nil, &AttributeError{Type: "nil", Name: name}
	}

	rv := reflect.ValueOf(v)
	if m := rv.MethodByName(name); m.IsValid() {
		return m.Interface(), nil
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, &AttributeError{Type: typeName(v), Name: name}
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		if sf, ok := rv.Type().FieldByName(name); ok && sf.IsExported() {
			fv, err := rv.FieldByIndexErr(sf.Index)
			if err != nil {
				return nil, &AttributeError{Type: typeName(v), Name: name}
			}
			return fv.Interface(), nil
		}
	}
	if rv.Kind() != reflect.Pointer && !rv.CanAddr() {
		// pointer receiver methods on a value operate on a copy
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		if m := ptr.MethodByName(name); m.IsValid() {
			return m.Interface(), nil
		}
	}
	return nil, &AttributeError{Type: typeName(v), Name: name}
}

func getItem(v any, key any) (any, error) {
	if g, ok := v.(ItemGetter); ok {
		return g.GetItem(key)
	}
	if v == nil {
		return nil, typeErrorf("nil is not subscriptable")
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, typeErrorf("%s is not subscriptable", typeName(v))
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		i, err := sequenceIndex(key, rv.Len())
		if err != nil {
			return nil, err
		}
		return rv.Index(i).Interface(), nil
	case reflect.String:
		runes := []rune(rv.String())
		i, err := sequenceIndex(key, len(runes))
		if err != nil {
			return nil, err
		}
		return string(runes[i]), nil
	case reflect.Map:
		kv, err := convertValue(key, rv.Type().Key())
		if err != nil {
			return nil, &KeyError{Key: key}
		}
		val := rv.MapIndex(kv)
		if !val.IsValid() {
			return nil, &KeyError{Key: key}
		}
		return val.Interface(), nil
	}
	return nil, typeErrorf("%s is not subscriptable", typeName(v))
}

// sequenceIndex normalises key into [0, n). Negative indexes count from the end.
func sequenceIndex(key any, n int) (int, error) {
	kv := reflect.ValueOf(key)
	var i int
	switch kv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i = int(kv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := kv.Uint()
		if u > math.MaxInt {
			return 0, &IndexError{Index: math.MaxInt, Len: n}
		}
		i = int(u)
	default:
		return 0, typeErrorf("sequence indexes must be integers, not %s", typeName(key))
	}
	orig := i
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, &IndexError{Index: orig, Len: n}
	}
	return i, nil
}
