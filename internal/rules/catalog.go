package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Catalog is an ordered list of compiled rules. Every rule is tried, in
// order, against the text produced by the rules before it.
type Catalog []*Rule

// NewCatalog compiles the rules and checks that their names are unique.
func NewCatalog(rules ...*Rule) (Catalog, error) {
	seen := make(map[string]bool, len(rules))
	catalog := make(Catalog, 0, len(rules))
	for _, r := range rules {
		if err := r.Compile(); err != nil {
			return nil, err
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("%w: duplicate rule name %q", ErrInvalidRule, r.Name)
		}
		seen[r.Name] = true
		catalog = append(catalog, r)
	}
	return catalog, nil
}

// Apply runs every rule over text.
func (c Catalog) Apply(text string) string {
	for _, r := range c {
		text = r.Apply(text)
	}
	return text
}

// Lookup returns the rule with the given name, or nil.
func (c Catalog) Lookup(name string) *Rule {
	for _, r := range c {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Without returns a copy of the catalog minus the named rules.
func (c Catalog) Without(names ...string) Catalog {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := make(Catalog, 0, len(c))
	for _, r := range c {
		if !drop[r.Name] {
			out = append(out, r)
		}
	}
	return out
}

// Append returns a new catalog with extra rules added after the existing ones.
func (c Catalog) Append(rules ...*Rule) (Catalog, error) {
	all := make([]*Rule, 0, len(c)+len(rules))
	all = append(all, c...)
	all = append(all, rules...)
	return NewCatalog(all...)
}

// Fingerprint identifies the catalog's behaviour. Two catalogs with the
// same rules in the same order share a fingerprint.
func (c Catalog) Fingerprint() string {
	h := sha256.New()
	for _, r := range c {
		fmt.Fprintf(h, "%s\x00%s\x00%d\x00%t\x00%s\x00%s\n",
			r.Name, strings.Join(r.Callees, "\x01"), r.Results, r.Deferred, r.Form, r.Comment)
	}
	return hex.EncodeToString(h.Sum(nil))
}
