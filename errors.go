package pipefunc

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the concrete lookup errors below.
var (
	// ErrAttribute is matched by errors raised when an attribute step cannot be resolved.
	ErrAttribute = errors.New("attribute lookup failed")
	// ErrIndex is matched by errors raised when a sequence index is out of range.
	ErrIndex = errors.New("index out of range")
	// ErrKey is matched by errors raised when a map key is missing.
	ErrKey = errors.New("key not found")
	// ErrType is matched by errors raised when a value cannot take part in an operation
	// (not callable, not subscriptable, wrong argument types or count).
	ErrType = errors.New("type error")
)

// AttributeError reports a value that lacks the requested attribute.
type AttributeError struct {
	Type string
	Name string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("'%s' has no attribute '%s'", e.Type, e.Name)
}

func (e *AttributeError) Is(target error) bool { return target == ErrAttribute }

// IndexError reports an out-of-range sequence index.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range for length %d", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndex }

// KeyError reports a key missing from a map.
type KeyError struct {
	Key any
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key %s not found", Repr(e.Key))
}

func (e *KeyError) Is(target error) bool { return target == ErrKey }

// TypeError reports an operation applied to a value of the wrong kind.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string { return e.Msg }

func (e *TypeError) Is(target error) bool { return target == ErrType }

func typeErrorf(format string, args ...any) error {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

// StageError is returned by Pipeline.Run when a stage fails. It records the
// position and the stage; Unwrap exposes the stage's own error unchanged.
type StageError struct {
	Index int
	Stage *Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d %s failed: %v", e.Index, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
