package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tablenote/tablenote/internal/schema"
)

// Options configures parsing.
type Options struct {
	// SkipConstraints disables deriving structured constraints from
	// column comments.
	SkipConstraints bool

	// SkipAnnotations disables deriving @name: value pairs from comments.
	SkipAnnotations bool
}

// Error is a structured parse error carrying a 1-based line number.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parse parses a notation document into a Schema. Parsing is a single
// left-to-right pass and aborts the whole document on the first error.
func Parse(text string, opts *Options) (*schema.Schema, error) {
	if opts == nil {
		opts = &Options{}
	}
	p := &parser{opts: *opts, lines: strings.Split(text, "\n")}
	return p.parseDocument()
}

// parser is an explicit cursor over the document's lines. pos always
// points at the next unread line.
type parser struct {
	opts  Options
	lines []string
	pos   int
}

var tableConstraintRe = regexp.MustCompile(`(?i)^(UNIQUE|INDEX)\s*\(([^)]+)\)\s*$`)

func (p *parser) parseDocument() (*schema.Schema, error) {
	doc := &schema.Schema{}
	var pending []string

	flush := func() {
		doc.Metadata = append(doc.Metadata, pending...)
		pending = nil
	}

	for p.pos < len(p.lines) {
		lineNo := p.pos + 1
		line := strings.TrimSpace(p.lines[p.pos])
		p.pos++

		switch {
		case line == "":
			// A blank line severs the association between the pending
			// comments and any table that follows.
			flush()
		case strings.HasPrefix(line, "//"):
			pending = append(pending, commentText(line))
		case isInterfaceLine(line):
			name, inline, err := parseHeader(line, lineNo)
			if err != nil {
				return nil, err
			}
			table, err := p.parseTable(name, inline, pending, lineNo)
			if err != nil {
				return nil, err
			}
			pending = nil
			doc.Tables = append(doc.Tables, *table)
		default:
			return nil, &Error{Line: lineNo, Message: fmt.Sprintf("unexpected content %q", line)}
		}
	}
	flush()

	if !p.opts.SkipAnnotations {
		for _, m := range doc.Metadata {
			doc.Annotations = append(doc.Annotations, ExtractAnnotations(m)...)
		}
	}
	return doc, nil
}

func isInterfaceLine(line string) bool {
	const kw = "interface"
	if !strings.HasPrefix(line, kw) {
		return false
	}
	// "interfaces: int" is not a declaration.
	return len(line) == len(kw) || !isIdentPart(line[len(kw)])
}

// parseHeader parses "interface <identifier> {" and returns the table name
// plus any inline body text after the opening brace.
func parseHeader(line string, lineNo int) (name, inline string, err error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "interface"))
	name, rest, ok := ReadIdent(rest)
	if !ok {
		return "", "", &Error{Line: lineNo, Message: fmt.Sprintf("invalid interface declaration %q", line)}
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "{") {
		return "", "", &Error{Line: lineNo, Message: fmt.Sprintf("invalid interface declaration %q", line)}
	}
	return name, strings.TrimSpace(rest[1:]), nil
}

func (p *parser) parseTable(name, inline string, meta []string, startLine int) (*schema.Table, error) {
	t := &schema.Table{Name: name}

	for _, m := range meta {
		if kind, cols, ok := parseTableConstraint(m); ok {
			t.Constraints = append(t.Constraints, schema.TableConstraint{Kind: kind, Columns: cols})
			continue
		}
		t.Metadata = append(t.Metadata, m)
		if !p.opts.SkipAnnotations {
			t.Annotations = append(t.Annotations, ExtractAnnotations(m)...)
		}
	}

	if inline != "" {
		closed, err := p.parseBodyLine(t, inline, startLine)
		if err != nil {
			return nil, err
		}
		if closed {
			return t, nil
		}
	}

	for p.pos < len(p.lines) {
		lineNo := p.pos + 1
		line := strings.TrimSpace(p.lines[p.pos])
		p.pos++

		switch {
		case line == "":
		case strings.HasPrefix(line, "//"):
			text := commentText(line)
			if kind, cols, ok := parseTableConstraint(text); ok {
				t.Constraints = append(t.Constraints, schema.TableConstraint{Kind: kind, Columns: cols})
			} else {
				t.Comments = append(t.Comments, text)
			}
		default:
			closed, err := p.parseBodyLine(t, line, lineNo)
			if err != nil {
				return nil, err
			}
			if closed {
				return t, nil
			}
		}
	}
	return nil, &Error{Line: startLine, Message: fmt.Sprintf("unclosed interface %q", name)}
}

// parseBodyLine handles a single physical line inside an interface body,
// including inline bodies where several definitions and the closing brace
// share one line. Returns true once the closing brace has been seen.
func (p *parser) parseBodyLine(t *schema.Table, line string, lineNo int) (bool, error) {
	head, comment, hasComment := splitComment(line)

	closed := false
	added := 0
	for _, seg := range splitSegments(head) {
		body, brace, rest := splitClose(seg)
		body = strings.TrimSpace(body)
		if closed && (body != "" || brace) {
			return true, &Error{Line: lineNo, Message: fmt.Sprintf("unexpected content %q after '}'", strings.TrimSpace(seg))}
		}
		if body != "" {
			col, err := p.parseColumn(body, lineNo)
			if err != nil {
				return false, err
			}
			t.Columns = append(t.Columns, col)
			added++
		}
		if brace {
			closed = true
			if rest = strings.TrimSpace(rest); rest != "" {
				return true, &Error{Line: lineNo, Message: fmt.Sprintf("unexpected content %q after '}'", rest)}
			}
		}
	}

	if hasComment {
		// A trailing comment belongs to the last column defined on this
		// line. A line that defines no column (such as the closing brace)
		// keeps it as table commentary instead of rewriting a column
		// parsed earlier.
		if added > 0 {
			p.setComment(&t.Columns[len(t.Columns)-1], comment)
		} else {
			t.Comments = append(t.Comments, comment)
		}
	}
	return closed, nil
}

// splitClose splits a segment at the first '}' outside quoted spans, so
// an inline body may close without a semicolon after its last column.
func splitClose(seg string) (body string, brace bool, rest string) {
	var inQuote, inTick bool
	for i := 0; i < len(seg); i++ {
		switch seg[i] {
		case '\'':
			if !inTick {
				inQuote = !inQuote
			}
		case '`':
			if !inQuote {
				inTick = !inTick
			}
		case '}':
			if !inQuote && !inTick {
				return seg[:i], true, seg[i+1:]
			}
		}
	}
	return seg, false, ""
}

// parseColumn parses one "name[?]: type" segment, already stripped of any
// trailing semicolon and comment.
func (p *parser) parseColumn(seg string, lineNo int) (schema.Column, error) {
	name, rest, ok := ReadIdent(seg)
	if !ok {
		return schema.Column{}, &Error{Line: lineNo, Message: fmt.Sprintf("invalid column definition %q", seg)}
	}
	rest = strings.TrimSpace(rest)

	nullable := false
	if strings.HasPrefix(rest, "?") {
		nullable = true
		rest = strings.TrimSpace(rest[1:])
	}
	if !strings.HasPrefix(rest, ":") {
		return schema.Column{}, &Error{Line: lineNo, Message: fmt.Sprintf("invalid column definition %q: missing ':'", seg)}
	}

	typ, err := ParseTypeExpr(rest[1:])
	if err != nil {
		return schema.Column{}, &Error{Line: lineNo, Message: err.Error()}
	}
	return schema.Column{Name: name, Type: typ, Nullable: nullable}, nil
}

// setComment attaches verbatim comment text to a column and derives the
// structured views over it.
func (p *parser) setComment(col *schema.Column, text string) {
	col.Comment = text
	if !p.opts.SkipConstraints {
		col.Constraints = ExtractConstraints(text)
	}
	if !p.opts.SkipAnnotations {
		col.Annotations = ExtractAnnotations(text)
	}
}

func parseTableConstraint(text string) (schema.ConstraintKind, []string, bool) {
	m := tableConstraintRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, nil, false
	}
	kind := schema.Unique
	if strings.EqualFold(m[1], "INDEX") {
		kind = schema.Index
	}
	var cols []string
	for _, c := range strings.Split(m[2], ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			cols = append(cols, UnquoteIdent(c))
		}
	}
	if len(cols) == 0 {
		return 0, nil, false
	}
	return kind, cols, true
}

func commentText(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "//"))
}

// splitComment splits a line at the first "//" that is not inside a
// single-quoted literal or a backtick-quoted identifier. Union literals
// may legitimately contain "//" (URL-valued enums).
func splitComment(s string) (head, comment string, ok bool) {
	var inQuote, inTick bool
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			if !inTick {
				inQuote = !inQuote
			}
		case '`':
			if !inQuote {
				inTick = !inTick
			}
		case '/':
			if !inQuote && !inTick && i+1 < len(s) && s[i+1] == '/' {
				return s[:i], strings.TrimSpace(s[i+2:]), true
			}
		}
	}
	return s, "", false
}

// splitSegments splits on ';' characters outside quoted spans, so union
// members like 'a;b' survive inline bodies intact.
func splitSegments(s string) []string {
	var segs []string
	var inQuote, inTick bool
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			if !inTick {
				inQuote = !inQuote
			}
		case '`':
			if !inQuote {
				inTick = !inTick
			}
		case ';':
			if !inQuote && !inTick {
				segs = append(segs, s[start:i])
				start = i + 1
			}
		}
	}
	return append(segs, s[start:])
}
