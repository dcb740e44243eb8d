package generator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tablenote/tablenote/internal/parser"
	"github.com/tablenote/tablenote/internal/schema"
)

// Options configures generation. Zero values fall back to the defaults.
type Options struct {
	Indent        int // spaces of indentation for column lines (default 2)
	TypeColumn    int // column the type expression is aligned to (default 25)
	CommentColumn int // column the trailing comment is aligned to (default 45)

	// NoSort keeps columns in their original order instead of the
	// PK-first / timestamps-last partition.
	NoSort bool
}

const (
	defaultIndent        = 2
	defaultTypeColumn    = 25
	defaultCommentColumn = 45
)

// Generate renders a schema back to notation text. It is the structural
// inverse of the parser: parsing the output reproduces the same tables,
// columns, types and constraints.
func Generate(s *schema.Schema, opts *Options) string {
	g := newGenerator(opts)
	var b strings.Builder

	if len(s.Metadata) > 0 {
		for _, m := range s.Metadata {
			b.WriteString("// " + m + "\n")
		}
		b.WriteString("\n")
	}

	for i := range s.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		g.writeTable(&b, &s.Tables[i])
	}
	return b.String()
}

type generator struct {
	indent        string
	typeColumn    int
	commentColumn int
	noSort        bool
}

func newGenerator(opts *Options) *generator {
	if opts == nil {
		opts = &Options{}
	}
	g := &generator{
		indent:        strings.Repeat(" ", defaultIndent),
		typeColumn:    defaultTypeColumn,
		commentColumn: defaultCommentColumn,
		noSort:        opts.NoSort,
	}
	if opts.Indent > 0 {
		g.indent = strings.Repeat(" ", opts.Indent)
	}
	if opts.TypeColumn > 0 {
		g.typeColumn = opts.TypeColumn
	}
	if opts.CommentColumn > 0 {
		g.commentColumn = opts.CommentColumn
	}
	return g
}

func (g *generator) writeTable(b *strings.Builder, t *schema.Table) {
	for _, a := range t.Annotations {
		fmt.Fprintf(b, "// @%s: %s\n", a.Name, a.Value)
	}
	for _, m := range t.Metadata {
		if len(parser.ExtractAnnotations(m)) > 0 {
			continue // already rendered above
		}
		b.WriteString("// " + m + "\n")
	}
	for _, c := range t.Comments {
		b.WriteString("// " + c + "\n")
	}
	for _, tc := range t.Constraints {
		b.WriteString("// " + formatTableConstraint(tc) + "\n")
	}

	b.WriteString("interface " + QuoteIdent(t.Name) + " {\n")
	for _, i := range g.columnOrder(t.Columns) {
		g.writeColumn(b, &t.Columns[i])
	}
	b.WriteString("}\n")
}

// columnOrder returns column indexes in output order: a stable partition
// with PRIMARY KEY columns first and created_at/updated_at/deleted_at
// last. Everything else keeps its original relative order.
func (g *generator) columnOrder(cols []schema.Column) []int {
	order := make([]int, 0, len(cols))
	if g.noSort {
		for i := range cols {
			order = append(order, i)
		}
		return order
	}
	var middle, last []int
	for i := range cols {
		switch {
		case cols[i].HasConstraint(schema.PrimaryKey):
			order = append(order, i)
		case isTimestampName(cols[i].Name):
			last = append(last, i)
		default:
			middle = append(middle, i)
		}
	}
	order = append(order, middle...)
	return append(order, last...)
}

func isTimestampName(name string) bool {
	switch name {
	case "created_at", "updated_at", "deleted_at":
		return true
	}
	return false
}

func (g *generator) writeColumn(b *strings.Builder, col *schema.Column) {
	decl := g.indent + QuoteIdent(col.Name)
	if col.Nullable {
		decl += "?"
	}
	decl += ":"

	line := pad(decl, g.typeColumn) + FormatType(col.Type) + ";"

	comment := col.Comment
	if comment == "" {
		comment = synthesizeComment(col)
	}
	if comment != "" {
		line = pad(line, g.commentColumn) + "// " + comment
	}
	b.WriteString(line + "\n")
}

// pad right-pads s with spaces up to width, counting runes so quoted
// identifiers with multibyte characters keep the columns aligned. Content
// that already exceeds the target column is never truncated; it gets a
// single space instead.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-n)
}

// FormatType renders a column type as notation text.
func FormatType(t schema.ColumnType) string {
	switch t := t.(type) {
	case schema.SimpleType:
		s := t.Name
		if t.Length > 0 {
			s += "(" + strconv.Itoa(t.Length) + ")"
		}
		if t.IsArray {
			s += "[]"
		}
		return s
	case schema.UnionType:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			if m.IsString {
				parts[i] = "'" + m.Str + "'"
			} else {
				parts[i] = strconv.FormatInt(m.Num, 10)
			}
		}
		return strings.Join(parts, " | ")
	}
	return ""
}

// constraint rendering order for synthesized comments
var synthesisOrder = []schema.ConstraintKind{
	schema.PrimaryKey,
	schema.AutoIncrement,
	schema.Unique,
	schema.Index,
	schema.ForeignKey,
	schema.Default,
	schema.Check,
}

// synthesizeComment builds a deterministic comment from a column's
// structured constraints and annotations. Only used when the column has
// no verbatim comment of its own.
func synthesizeComment(col *schema.Column) string {
	var parts []string
	for _, kind := range synthesisOrder {
		for _, con := range col.Constraints {
			if con.Kind == kind {
				parts = append(parts, formatConstraint(con))
			}
		}
	}
	for _, a := range col.Annotations {
		parts = append(parts, "@"+a.Name+": "+a.Value)
	}
	return strings.Join(parts, ", ")
}

func formatConstraint(con schema.Constraint) string {
	switch con.Kind {
	case schema.PrimaryKey:
		return "PRIMARY KEY"
	case schema.AutoIncrement:
		return "AUTO_INCREMENT"
	case schema.Unique:
		return "UNIQUE"
	case schema.Index:
		return "INDEX"
	case schema.ForeignKey:
		return formatReference(con.Ref)
	case schema.Default:
		return "DEFAULT " + con.Value
	case schema.Check:
		return "CHECK(" + con.Value + ")"
	}
	return ""
}

func formatReference(ref *schema.Reference) string {
	if ref == nil {
		return "FK"
	}
	s := "FK -> "
	if ref.Schema != "" {
		s += QuoteIdent(ref.Schema) + "."
	}
	s += QuoteIdent(ref.Table) + "(" + QuoteIdent(ref.Column) + ")"
	if ref.Action != "" {
		s += ", " + ref.Action
	}
	return s
}

func formatTableConstraint(tc schema.TableConstraint) string {
	kw := "UNIQUE"
	if tc.Kind == schema.Index {
		kw = "INDEX"
	}
	quoted := make([]string, len(tc.Columns))
	for i, c := range tc.Columns {
		quoted[i] = QuoteIdent(c)
	}
	return kw + "(" + strings.Join(quoted, ", ") + ")"
}

var bareIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// QuoteIdent backtick-quotes an identifier when it cannot be written
// bare, doubling any literal backticks.
func QuoteIdent(name string) string {
	if bareIdentRe.MatchString(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
