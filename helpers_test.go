package pipefunc

import (
	"fmt"
	"sync"
	"testing"
)

// TestLogger is a simple logger implementation for testing
type TestLogger struct {
	t *testing.T
}

func (l *TestLogger) Debug(format string, args ...interface{}) {
	l.t.Logf("[DEBUG] "+format, args...)
}

func (l *TestLogger) Info(format string, args ...interface{}) {
	l.t.Logf("[INFO] "+format, args...)
}

func (l *TestLogger) Warn(format string, args ...interface{}) {
	l.t.Logf("[WARN] "+format, args...)
}

func (l *TestLogger) Error(format string, args ...interface{}) {
	l.t.Logf("[ERROR] "+format, args...)
}

// recordingLogger keeps every formatted message so tests can inspect them.
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) record(level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, level+" "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debug(format string, args ...interface{}) { l.record("DEBUG", format, args) }
func (l *recordingLogger) Info(format string, args ...interface{})  { l.record("INFO", format, args) }
func (l *recordingLogger) Warn(format string, args ...interface{})  { l.record("WARN", format, args) }
func (l *recordingLogger) Error(format string, args ...interface{}) { l.record("ERROR", format, args) }

func (l *recordingLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

// Functions used across tests. They live at package level so their
// rendered names are stable.

func g(a any) (any, int) { return a, 2 }

func h(a any) (any, int) { return a, 3 }

func gab(a, b any) (any, any) { return a, b }

func first[T any](items []T) T { return items[0] }

func gkw(a any, kw Kwargs) (any, any) {
	b, _ := kw.Get("b")
	return a, b
}

type obj struct {
	A      any
	B      any
	hidden int
}

func (o obj) H(args ...any) Tuple {
	return append(Tuple{o.A}, args...)
}

func (o obj) K(a any, kw Kwargs) Tuple {
	t := Tuple{o.A, a}
	for _, k := range kw {
		t = append(t, Tuple{k.Name, k.Value})
	}
	return t
}

type counter struct {
	N int
}

func (c *counter) Inc() int {
	c.N++
	return c.N
}

type bag map[string]any

func (b bag) GetAttr(name string) (any, error) {
	v, ok := b[name]
	if !ok {
		return nil, &AttributeError{Type: "bag", Name: name}
	}
	return v, nil
}

type repeatOpts struct {
	Times int
	Sep   string
}

func repeat(s string, o repeatOpts) string {
	out := s
	for i := 1; i < o.Times; i++ {
		out += o.Sep + s
	}
	return out
}

func repeatPtr(s string, o *repeatOpts) string {
	return repeat(s, *o)
}
