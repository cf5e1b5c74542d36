package pipefunc

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// ParsePlaceholder parses the display form of a placeholder, such as
// X.user.name or X["items"][0], back into a Placeholder. Only attribute and
// index steps are supported; call steps and negative indexes have no
// traversal syntax.
func ParsePlaceholder(expr string) (*Placeholder, error) {
	traversal, diags := hclsyntax.ParseTraversalAbs([]byte(expr), "placeholder", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid placeholder %q: %s", expr, diags.Error())
	}
	if traversal.RootName() != rootToken {
		return nil, fmt.Errorf("invalid placeholder %q: must start with %s", expr, rootToken)
	}

	p := Root()
	for _, step := range traversal[1:] {
		switch s := step.(type) {
		case hcl.TraverseAttr:
			p = p.Attr(s.Name)
		case hcl.TraverseIndex:
			key, err := indexKey(s.Key)
			if err != nil {
				return nil, fmt.Errorf("invalid placeholder %q: %w", expr, err)
			}
			p = p.Item(key)
		default:
			return nil, fmt.Errorf("invalid placeholder %q: unsupported step %T", expr, step)
		}
	}
	return p, nil
}

// MustParsePlaceholder is like ParsePlaceholder but panics on error.
func MustParsePlaceholder(expr string) *Placeholder {
	p, err := ParsePlaceholder(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// indexKey converts a traversal key to an int or a string.
func indexKey(key cty.Value) (any, error) {
	if key.IsNull() || !key.IsKnown() {
		return nil, fmt.Errorf("index key must be a literal")
	}
	switch key.Type() {
	case cty.String:
		return key.AsString(), nil
	case cty.Number:
		i, acc := key.AsBigFloat().Int64()
		if acc != big.Exact {
			return nil, fmt.Errorf("index %s is not an integer", key.AsBigFloat().Text('f', -1))
		}
		return int(i), nil
	}
	return nil, fmt.Errorf("unsupported index type %s", key.Type().FriendlyName())
}
