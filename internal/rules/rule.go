package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gnolang/errfix/internal/nolint"
)

// linterName is the analyzer whose nolint directives are honoured.
const linterName = "errcheck"

// Form selects how a matched statement acknowledges its result.
type Form uint8

const (
	// FormDiscard binds every result to the blank identifier.
	FormDiscard Form = iota
	// FormDeferDiscard moves a deferred call into a closure that discards its result.
	FormDeferDiscard
	// FormCheck wraps the call in an if statement inspecting the error.
	FormCheck
)

func (f Form) String() string {
	switch f {
	case FormDiscard:
		return "discard"
	case FormDeferDiscard:
		return "defer"
	case FormCheck:
		return "check"
	default:
		return "unknown"
	}
}

// ParseForm is the inverse of Form.String.
func ParseForm(s string) (Form, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "discard":
		return FormDiscard, nil
	case "defer":
		return FormDeferDiscard, nil
	case "check":
		return FormCheck, nil
	}
	return 0, fmt.Errorf("unknown form %q", s)
}

// ErrInvalidRule is wrapped by every validation failure of Compile.
var ErrInvalidRule = errors.New("invalid rule")

// Rule recognises one discarded-result statement shape and rewrites it.
//
// Callees are selector expressions written as source text, such as
// "rows.Close" or `pprof.Lookup("goroutine").WriteTo`. A '*' stands for
// identifier characters: "*.pool.Close" matches any receiver and
// "mockSvc.Send*Email" any method with that prefix and suffix.
type Rule struct {
	Name     string
	Callees  []string
	Results  int
	Deferred bool
	Form     Form
	Comment  string

	re *regexp.Regexp
}

// Compile validates the rule and builds its recognizer.
func (r *Rule) Compile() error {
	if r.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidRule)
	}
	if len(r.Callees) == 0 {
		return fmt.Errorf("%w %q: no callees", ErrInvalidRule, r.Name)
	}
	if r.Results == 0 {
		r.Results = 1
	}
	if r.Results < 0 {
		return fmt.Errorf("%w %q: results must be positive", ErrInvalidRule, r.Name)
	}
	if r.Deferred != (r.Form == FormDeferDiscard) {
		return fmt.Errorf("%w %q: form %s does not fit deferred=%t", ErrInvalidRule, r.Name, r.Form, r.Deferred)
	}
	if r.Form == FormCheck && r.Comment == "" {
		return fmt.Errorf("%w %q: check form needs a comment for its body", ErrInvalidRule, r.Name)
	}

	alts := make([]string, 0, len(r.Callees))
	for _, callee := range r.Callees {
		pattern, err := calleePattern(callee)
		if err != nil {
			return fmt.Errorf("%w %q: %v", ErrInvalidRule, r.Name, err)
		}
		alts = append(alts, pattern)
	}

	prefix := "^"
	if r.Deferred {
		prefix += `defer[ \t]+`
	}
	re, err := regexp.Compile(prefix + "(" + strings.Join(alts, "|") + `)\(`)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidRule, r.Name, err)
	}
	r.re = re
	return nil
}

// MustCompile is like Compile but panics on an invalid rule.
// It is meant for the built-in catalog.
func (r *Rule) MustCompile() *Rule {
	if err := r.Compile(); err != nil {
		panic(err)
	}
	return r
}

// calleePattern turns callee text into a regular expression fragment.
func calleePattern(callee string) (string, error) {
	callee = strings.TrimSpace(callee)
	if callee == "" {
		return "", errors.New("empty callee")
	}
	if strings.ContainsAny(callee, " \t\r\n") {
		return "", fmt.Errorf("callee %q contains blanks", callee)
	}
	if strings.HasSuffix(callee, "(") || strings.HasSuffix(callee, ")") {
		return "", fmt.Errorf("callee %q must not include the call's argument list", callee)
	}

	segments := strings.Split(callee, ".")
	for i, seg := range segments {
		switch {
		case seg == "*":
			segments[i] = `[A-Za-z_][A-Za-z0-9_]*`
		case strings.Contains(seg, "*"):
			parts := strings.Split(seg, "*")
			for j, p := range parts {
				parts[j] = regexp.QuoteMeta(p)
			}
			segments[i] = strings.Join(parts, `[A-Za-z0-9_]*`)
		default:
			segments[i] = regexp.QuoteMeta(seg)
		}
	}
	return strings.Join(segments, `\.`), nil
}

// Match reports whether stmt, a single statement without indentation,
// has the shape this rule rewrites.
func (r *Rule) Match(stmt string) bool {
	if r.re == nil {
		return false
	}
	return r.Apply(stmt) != stmt
}

// Apply rewrites every statement of the rule's shape in text.
// Text that does not match is returned byte-for-byte unchanged.
func (r *Rule) Apply(text string) string {
	if r.re == nil || text == "" {
		return text
	}

	var (
		b    strings.Builder
		last int
	)
	for _, ln := range candidateLines(text) {
		if ln.start < last {
			// inside a statement rewritten above
			continue
		}
		if Acknowledged(text[ln.stmt:lineEnd(text, ln.stmt)]) {
			continue
		}
		m := r.re.FindStringSubmatchIndex(text[ln.stmt:])
		if m == nil {
			continue
		}
		callStart := ln.stmt + m[2]
		end, ok := scanCall(text, ln.stmt+m[1]-1)
		if !ok {
			continue
		}

		eol := lineEnd(text, end)
		rest := text[end:eol]
		newline := "\n"
		if strings.HasSuffix(rest, "\r") {
			rest = rest[:len(rest)-1]
			eol--
			newline = "\r\n"
		}
		trailer, ok := trailingComment(rest)
		if !ok {
			continue
		}
		if r.suppressed(text, ln, eol) {
			continue
		}

		if b.Len() == 0 {
			b.Grow(len(text) + 128)
		}
		b.WriteString(text[last:ln.start])
		b.WriteString(r.rewrite(text[ln.start:ln.stmt], text[callStart:end], trailer, newline))
		last = eol
	}

	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// suppressed reports whether a nolint directive covers the statement.
func (r *Rule) suppressed(text string, ln line, eol int) bool {
	if nolint.Suppressed(text[ln.stmt:eol], linterName) {
		return true
	}
	prev, ok := previousLine(text, ln.start)
	return ok && nolint.Standalone(prev, linterName)
}

// trailingComment checks what follows a call's closing parenthesis on its
// line. Only blanks and a line comment may follow a bare call statement.
// The comment, with its leading blanks, is returned verbatim.
func trailingComment(rest string) (string, bool) {
	trimmed := strings.TrimLeft(rest, " \t")
	switch {
	case trimmed == "":
		return "", true
	case strings.HasPrefix(trimmed, "//"):
		return rest, true
	}
	return "", false
}

func (r *Rule) rewrite(indent, call, trailer, newline string) string {
	comment := trailer
	if comment == "" && r.Comment != "" {
		comment = " // " + r.Comment
	}

	blanks := strings.TrimSuffix(strings.Repeat("_, ", r.Results), ", ")

	switch r.Form {
	case FormDeferDiscard:
		return indent + "defer func() { " + blanks + " = " + call + " }()" + comment
	case FormCheck:
		vars := "err"
		if r.Results > 1 {
			vars = strings.Repeat("_, ", r.Results-1) + "err"
		}
		return indent + "if " + vars + " := " + call + "; err != nil {" + trailer + newline +
			indent + "\t// " + r.Comment + newline +
			indent + "}"
	default:
		return indent + blanks + " = " + call + comment
	}
}

var acknowledgedPattern = regexp.MustCompile(
	`^(?:_[ \t]*(?:,[ \t]*_[ \t]*)*=[^=]|defer[ \t]+func[ \t]*\([ \t]*\)[ \t]*\{|if[ \t][^{]*:=)`,
)

// Acknowledged reports whether stmt already deals with its result: it binds
// it to blanks, runs inside a deferred closure, or is checked by an if.
// Rules never rewrite an acknowledged statement.
func Acknowledged(stmt string) bool {
	return acknowledgedPattern.MatchString(strings.TrimLeft(stmt, " \t"))
}
