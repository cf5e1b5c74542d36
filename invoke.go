package pipefunc

import (
	"math"
	"reflect"
	"runtime"
	"strings"

	"github.com/mitchellh/mapstructure"
)

var (
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
	kwargsType = reflect.TypeOf(Kwargs(nil))
)

// Tuple holds the results of a function returning more than one value
// (not counting a trailing error).
type Tuple []any

// NamedFunc pairs a function with the name used when rendering stages.
type NamedFunc struct {
	Name string
	Fn   any
}

// Named attaches a display name to fn.
func Named(name string, fn any) NamedFunc {
	return NamedFunc{Name: name, Fn: fn}
}

// funcName returns the name shown in a stage's representation.
func funcName(fn any) string {
	switch f := fn.(type) {
	case NamedFunc:
		return f.Name
	case *NamedFunc:
		return f.Name
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return Repr(fn)
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return v.Type().String()
	}
	name := rf.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, "[...]", "")

	// name is now <last path element>.<func>; dots inside the element are
	// escaped as %2e by some toolchains and left alone by others
	pkg, rest, ok := strings.Cut(name, ".")
	if ok {
		name = rest
		if !strings.Contains(pkg, "%2e") {
			if elem, after, ok := strings.Cut(name, "."); ok && isMajorVersion(elem) {
				name = after
			}
		}
	}
	return strings.TrimSuffix(name, "-fm")
}

// isMajorVersion reports whether s looks like the v3 of gopkg.in/yaml.v3.
func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// invoke calls fn with positional and keyword arguments and folds its results
// into a single value. Errors returned by fn are passed through untouched.
func invoke(fn any, args []any, kwargs Kwargs) (any, error) {
	switch f := fn.(type) {
	case NamedFunc:
		fn = f.Fn
	case *NamedFunc:
		fn = f.Fn
	}
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, typeErrorf("%s is not callable", typeName(fn))
	}
	ft := fv.Type()

	if n := ft.NumIn(); n > 0 && !ft.IsVariadic() {
		last := ft.In(n - 1)
		if last == kwargsType || (len(kwargs) > 0 && isKeywordTarget(last)) {
			if len(args) == n-1 {
				kv, err := keywordValue(last, kwargs)
				if err != nil {
					return nil, err
				}
				in, err := convertArgs(ft, args, kv)
				if err != nil {
					return nil, err
				}
				return collect(ft, fv.Call(in))
			}
			if len(kwargs) > 0 {
				return nil, typeErrorf("%s takes %d positional arguments (%d given)", ft, n-1, len(args))
			}
		}
	}
	if len(kwargs) > 0 {
		return nil, typeErrorf("%s does not accept keyword arguments", ft)
	}

	in, err := convertArgs(ft, args, reflect.Value{})
	if err != nil {
		return nil, err
	}
	return collect(ft, fv.Call(in))
}

func isKeywordTarget(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// keywordValue builds the trailing keyword parameter. Struct targets are filled
// with mapstructure; unknown keywords are reported as errors.
func keywordValue(t reflect.Type, kwargs Kwargs) (reflect.Value, error) {
	if t == kwargsType {
		if kwargs == nil {
			kwargs = Kwargs{}
		}
		return reflect.ValueOf(kwargs), nil
	}

	isPtr := t.Kind() == reflect.Pointer
	target := t
	if isPtr {
		target = t.Elem()
	}
	ptr := reflect.New(target)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      ptr.Interface(),
		ErrorUnused: true,
	})
	if err != nil {
		return reflect.Value{}, err
	}
	if err := decoder.Decode(kwargs.Map()); err != nil {
		return reflect.Value{}, typeErrorf("keyword arguments for %s: %v", target, err)
	}
	if isPtr {
		return ptr, nil
	}
	return ptr.Elem(), nil
}

// convertArgs matches args against ft's parameters. extra, when valid, is
// appended as the final parameter.
func convertArgs(ft reflect.Type, args []any, extra reflect.Value) ([]reflect.Value, error) {
	numIn := ft.NumIn()
	fixed := numIn
	if extra.IsValid() {
		fixed--
	}

	if ft.IsVariadic() {
		if len(args) < numIn-1 {
			return nil, typeErrorf("%s takes at least %d arguments (%d given)", ft, numIn-1, len(args))
		}
	} else if len(args) != fixed {
		return nil, typeErrorf("%s takes %d arguments (%d given)", ft, fixed, len(args))
	}

	in := make([]reflect.Value, 0, len(args)+1)
	for i, a := range args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= numIn-1 {
			pt = ft.In(numIn - 1).Elem()
		} else {
			pt = ft.In(i)
		}
		v, err := convertValue(a, pt)
		if err != nil {
			return nil, typeErrorf("argument %d of %s: %v", i, ft, err)
		}
		in = append(in, v)
	}
	if extra.IsValid() {
		in = append(in, extra)
	}
	return in, nil
}

// convertValue makes a reflect.Value of type t from a. nil becomes the zero
// value; numeric kinds convert between each other when no information is lost.
func convertValue(a any, t reflect.Type) (reflect.Value, error) {
	if a == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, typeErrorf("cannot use nil as %s", t)
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(t.Kind()) {
		return convertNumber(v, t)
	}
	return reflect.Value{}, typeErrorf("cannot use %s as %s", v.Type(), t)
}

// convertNumber converts v to the numeric type t only when the value is kept:
// no dropped fraction, no sign wrap, no overflow.
func convertNumber(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	zero := reflect.Zero(t)
	lossy := false

	switch kindClass(v.Kind()) {
	case classFloat:
		f := v.Float()
		switch kindClass(t.Kind()) {
		case classFloat:
			lossy = zero.OverflowFloat(f)
		case classInt:
			lossy = f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || zero.OverflowInt(int64(f))
		case classUint:
			lossy = f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || zero.OverflowUint(uint64(f))
		}
	case classInt:
		i := v.Int()
		switch kindClass(t.Kind()) {
		case classInt:
			lossy = zero.OverflowInt(i)
		case classUint:
			lossy = i < 0 || zero.OverflowUint(uint64(i))
		case classFloat:
			lossy = zero.OverflowFloat(float64(i))
		}
	case classUint:
		u := v.Uint()
		switch kindClass(t.Kind()) {
		case classUint:
			lossy = zero.OverflowUint(u)
		case classInt:
			lossy = u > math.MaxInt64 || zero.OverflowInt(int64(u))
		case classFloat:
			lossy = zero.OverflowFloat(float64(u))
		}
	}
	if lossy {
		return reflect.Value{}, typeErrorf("cannot use %s value %v as %s without loss", v.Type(), v.Interface(), t)
	}
	return v.Convert(t), nil
}

type numberClass int

const (
	classNone numberClass = iota
	classInt
	classUint
	classFloat
)

func kindClass(k reflect.Kind) numberClass {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return classInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return classUint
	case reflect.Float32, reflect.Float64:
		return classFloat
	}
	return classNone
}

func isNumeric(k reflect.Kind) bool { return kindClass(k) != classNone }

// collect turns a function's results into a value and an error.
func collect(ft reflect.Type, out []reflect.Value) (any, error) {
	n := len(out)
	if n > 0 && ft.Out(n-1) == errorType {
		if errv := out[n-1]; !errv.IsNil() {
			return nil, errv.Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	tuple := make(Tuple, len(out))
	for i, o := range out {
		tuple[i] = o.Interface()
	}
	return tuple, nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
