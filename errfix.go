// Package errfix rewrites Go statements that drop an error result so that
// errcheck accepts them. Each statement is either bound to the blank
// identifier or wrapped in an explicit check, following an ordered rule
// catalog. Applying the catalog to its own output changes nothing.
//
// Source is treated as text: rules recognise statement shapes such as
// "defer rows.Close()" without parsing the file, and the call text itself is
// always kept verbatim.
//
// Usage:
//
//	fixed, changed := errfix.Fix(src)
//	if changed {
//	    // write fixed back
//	}
//
// The errfix command (cmd/errfix) applies the same catalog to a whole tree.
package errfix

import (
	"github.com/gnolang/errfix/internal/rules"
)

// Fix applies the default catalog to src and reports whether anything changed.
func Fix(src []byte) ([]byte, bool) {
	return FixWith(rules.DefaultCatalog(), src)
}

// FixWith is like Fix but applies the given catalog.
func FixWith(catalog rules.Catalog, src []byte) ([]byte, bool) {
	text := string(src)
	fixed := catalog.Apply(text)
	if fixed == text {
		return src, false
	}
	return []byte(fixed), true
}

// RuleNames lists the default rules in the order they are applied.
func RuleNames() []string {
	catalog := rules.DefaultCatalog()
	names := make([]string, 0, len(catalog))
	for _, r := range catalog {
		names = append(names, r.Name)
	}
	return names
}
