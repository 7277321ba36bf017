package rules

// lexState tracks where a byte offset sits lexically. Only the distinctions
// needed to find statement starts and balanced calls are made.
type lexState uint8

const (
	stateCode lexState = iota
	stateLineComment
	stateBlockComment
	stateString
	stateRawString
	stateRune
)

// line is a candidate statement position.
type line struct {
	start int // first byte of the line
	stmt  int // first non-blank byte of the line
}

// candidateLines returns the lines on which a new statement may begin.
//
// A line qualifies when it does not start inside a raw string or a block
// comment, is not blank, and the previous significant token ends a statement
// under Go's semicolon insertion (or opens a block or labels a case).
// Lines continuing an expression are never candidates.
func candidateLines(text string) []line {
	var (
		lines        []line
		state        = stateCode
		last, before byte // last two significant code bytes
	)

	markSig := func(c byte) {
		before, last = last, c
	}

	atLineStart := func(start int) {
		if state != stateCode || !endsStatement(before, last) {
			return
		}
		stmt := start
		for stmt < len(text) && (text[stmt] == ' ' || text[stmt] == '\t') {
			stmt++
		}
		if stmt == len(text) || text[stmt] == '\n' || text[stmt] == '\r' {
			return
		}
		lines = append(lines, line{start: start, stmt: stmt})
	}

	atLineStart(0)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch state {
		case stateCode:
			switch {
			case c == '/' && i+1 < len(text) && text[i+1] == '/':
				state = stateLineComment
				i++
			case c == '/' && i+1 < len(text) && text[i+1] == '*':
				state = stateBlockComment
				i++
			case c == '"':
				state = stateString
				markSig(c)
			case c == '`':
				state = stateRawString
				markSig(c)
			case c == '\'':
				state = stateRune
				markSig(c)
			case c == '\n':
				atLineStart(i + 1)
			case c == ' ' || c == '\t' || c == '\r':
			default:
				markSig(c)
			}
		case stateLineComment:
			if c == '\n' {
				state = stateCode
				atLineStart(i + 1)
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				state = stateCode
				i++
			}
		case stateString, stateRune:
			closer := byte('"')
			if state == stateRune {
				closer = '\''
			}
			switch c {
			case '\\':
				i++
			case closer:
				state = stateCode
			case '\n':
				// unterminated literal; resynchronise on the next line
				state = stateCode
				atLineStart(i + 1)
			}
		case stateRawString:
			if c == '`' {
				state = stateCode
			}
		}
	}
	return lines
}

// endsStatement reports whether a line whose last significant bytes are
// (before, last) lets a new statement begin on the following line.
func endsStatement(before, last byte) bool {
	switch {
	case last == 0:
		return true
	case isIdentByte(last):
		return true
	}
	switch last {
	case ')', ']', '}', '{', ';', ':', '"', '\'', '`':
		return true
	case '+', '-':
		return before == last
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}

// scanCall returns the offset just past the parenthesis closing the one at
// open. Nested brackets must balance and literals and comments are skipped.
// It reports false when the text ends first or the brackets do not match.
func scanCall(text string, open int) (int, bool) {
	if open >= len(text) || text[open] != '(' {
		return 0, false
	}
	var (
		stack []byte
		state = stateCode
	)
	for i := open; i < len(text); i++ {
		c := text[i]
		switch state {
		case stateCode:
			switch c {
			case '(':
				stack = append(stack, ')')
			case '[':
				stack = append(stack, ']')
			case '{':
				stack = append(stack, '}')
			case ')', ']', '}':
				if len(stack) == 0 || stack[len(stack)-1] != c {
					return 0, false
				}
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					return i + 1, true
				}
			case '"':
				state = stateString
			case '`':
				state = stateRawString
			case '\'':
				state = stateRune
			case '/':
				if i+1 < len(text) && text[i+1] == '/' {
					state = stateLineComment
					i++
				} else if i+1 < len(text) && text[i+1] == '*' {
					state = stateBlockComment
					i++
				}
			}
		case stateLineComment:
			if c == '\n' {
				state = stateCode
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				state = stateCode
				i++
			}
		case stateString, stateRune:
			closer := byte('"')
			if state == stateRune {
				closer = '\''
			}
			switch c {
			case '\\':
				i++
			case closer:
				state = stateCode
			case '\n':
				return 0, false
			}
		case stateRawString:
			if c == '`' {
				state = stateCode
			}
		}
	}
	return 0, false
}

// lineEnd returns the offset of the '\n' ending the line containing pos,
// or len(text).
func lineEnd(text string, pos int) int {
	for i := pos; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}
	return len(text)
}

// previousLine returns the line before the one starting at start.
func previousLine(text string, start int) (string, bool) {
	if start == 0 {
		return "", false
	}
	end := start - 1
	begin := end
	for begin > 0 && text[begin-1] != '\n' {
		begin--
	}
	return text[begin:end], true
}
