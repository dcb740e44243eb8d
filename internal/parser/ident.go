package parser

import "strings"

// ReadIdent reads a bare or backtick-quoted identifier from the start of s.
// It returns the (unescaped) identifier, the remainder of s, and whether a
// match was found. A doubled backtick inside a quoted identifier is an
// escaped literal backtick, not a terminator.
func ReadIdent(s string) (name, rest string, ok bool) {
	if s == "" {
		return "", "", false
	}
	if s[0] == '`' {
		return readQuotedIdent(s)
	}
	if !isIdentStart(s[0]) {
		return "", "", false
	}
	i := 1
	for i < len(s) && isIdentPart(s[i]) {
		i++
	}
	return s[:i], s[i:], true
}

func readQuotedIdent(s string) (name, rest string, ok bool) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		if s[i] != '`' {
			b.WriteByte(s[i])
			i++
			continue
		}
		if i+1 < len(s) && s[i+1] == '`' {
			b.WriteByte('`')
			i += 2
			continue
		}
		return b.String(), s[i+1:], true
	}
	// Unterminated quote.
	return "", "", false
}

// UnquoteIdent unescapes a possibly backtick-quoted identifier. Input that
// is not fully consumed by a single identifier is returned unchanged.
func UnquoteIdent(s string) string {
	name, rest, ok := ReadIdent(s)
	if !ok || rest != "" {
		return s
	}
	return name
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
