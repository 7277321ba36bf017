package nolint

import (
	"strings"
)

const nolintPrefix = "//nolint"

// Directive is a parsed //nolint comment.
type Directive struct {
	// rules is empty when the directive applies to every linter.
	rules map[string]struct{}
}

// Covers reports whether the directive silences the given linter.
func (d Directive) Covers(linter string) bool {
	if len(d.rules) == 0 {
		return true
	}
	if _, ok := d.rules["all"]; ok {
		return true
	}
	_, ok := d.rules[linter]
	return ok
}

// Parse extracts the first well-formed //nolint directive found in text.
func Parse(text string) (Directive, bool) {
	for rest := text; ; {
		idx := strings.Index(rest, nolintPrefix)
		if idx < 0 {
			return Directive{}, false
		}
		rest = rest[idx+len(nolintPrefix):]
		d, ok := parseDirective(rest)
		if ok {
			return d, true
		}
	}
}

// parseDirective parses what follows "//nolint".
// A nolint comment can either have a list of rules after a colon (:)
// or if no rules are specified, it applies to all rules.
func parseDirective(rest string) (Directive, bool) {
	if rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\r' || rest[0] == '\n' {
		return Directive{rules: map[string]struct{}{}}, true
	}
	if rest[0] != ':' {
		return Directive{}, false
	}
	rest = rest[1:]
	// the rule list ends at the first blank, so an explanation may follow it
	if end := strings.IndexAny(rest, " \t\r\n"); end >= 0 {
		rest = rest[:end]
	}
	if rest == "" {
		return Directive{}, false
	}
	return Directive{rules: parseIgnoreRuleNames(rest)}, true
}

// parseIgnoreRuleNames parses the rule list from the nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	rules := strings.Split(text, ",")
	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

// Suppressed reports whether text (one statement, possibly spanning lines)
// carries a directive silencing linter.
func Suppressed(text, linter string) bool {
	d, ok := Parse(text)
	return ok && d.Covers(linter)
}

// Standalone reports whether line is nothing but a nolint comment for linter.
// Such a comment applies to the statement on the following line.
func Standalone(line, linter string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, nolintPrefix) {
		return false
	}
	return Suppressed(trimmed, linter)
}
