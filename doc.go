// Package pipefunc builds deferred function calls that are applied to a value
// later, so a value can be threaded through a chain of ordinary functions.
//
// A Stage wraps a function and part of its arguments:
//
//	s := pipefunc.New(strings.Repeat, 3)
//	out, _ := s.Apply("ab") // strings.Repeat("ab", 3) == "ababab"
//
// By default the value is passed as the first argument. When any argument is
// a Placeholder, the value reaches the function only through placeholders,
// so it can be placed anywhere:
//
//	s := pipefunc.New(strings.TrimPrefix, "prefix-value", pipefunc.X)
//	out, _ := s.Apply("prefix-") // strings.TrimPrefix("prefix-value", "prefix-")
//
// Placeholders describe attribute, index and call chains on the value that
// are evaluated only when the stage is applied:
//
//	pipefunc.X.Attr("User").Attr("Name")  // X.User.Name
//	pipefunc.X.Item("items").Item(0)      // X["items"][0]
//	pipefunc.X.Attr("Format").Call("json") // X.Format("json")
//
// Core components include:
//   - Stage: a function, positional arguments and keyword arguments (Kw)
//   - Placeholder: a lazily evaluated access chain rooted at X
//   - Pipe and Pipeline: left-to-right application of several stages,
//     with middleware and logging
//   - Registry: named functions for building stages from definitions
//
// Stages and placeholders render to a canonical text form, e.g. f(g, 1, a=2)
// and X.a[0](), used in logs and test assertions.
package pipefunc
