package pipefunc

import (
	"fmt"
	"strings"
)

// Repr renders v the way Go renders values in source form (%#v): strings are
// quoted, numbers are not. Placeholders and stages implement fmt.GoStringer
// and therefore render as their own display text.
func Repr(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%#v", v)
}

// formatCall renders name(tok1, ..., repr(arg1), ..., key=repr(value), ...).
// leading tokens are written as-is.
func formatCall(name string, leading []string, args []any, kwargs Kwargs) string {
	parts := make([]string, 0, len(leading)+len(args)+len(kwargs))
	parts = append(parts, leading...)
	for _, a := range args {
		parts = append(parts, Repr(a))
	}
	for _, kw := range kwargs {
		parts = append(parts, kw.Name+"="+Repr(kw.Value))
	}

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	b.WriteString(strings.Join(parts, ", "))
	b.WriteByte(')')
	return b.String()
}
