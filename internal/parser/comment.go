package parser

import (
	"regexp"
	"strings"

	"github.com/tablenote/tablenote/internal/schema"
)

// identPat matches a bare or backtick-quoted identifier inside a larger
// pattern. Quoted spans may contain doubled backticks as escapes.
const identPat = "(?:`(?:[^`]|``)*`|[A-Za-z_][A-Za-z0-9_]*)"

var (
	primaryKeyRe = regexp.MustCompile(`(?i)\b(?:PRIMARY KEY|PK)\b`)
	uniqueRe     = regexp.MustCompile(`(?i)\bUNIQUE\b`)
	indexRe      = regexp.MustCompile(`(?i)\bINDEX\b`)
	autoIncRe    = regexp.MustCompile(`(?i)\b(?:AUTO_INCREMENT|IDENTITY)\b`)
	defaultRe    = regexp.MustCompile(`(?i)\bDEFAULT\s+([^,]+)`)

	foreignKeyRe = regexp.MustCompile(
		`(?i)\b(?:FOREIGN KEY|FK)\s*->\s*(?:(` + identPat + `)\.)?(` + identPat + `)\s*\(\s*(` + identPat + `)\s*\)(?:\s*,\s*(ON\b[^,]*))?`)

	annotationRe = regexp.MustCompile(`@([A-Za-z_][A-Za-z0-9_]*)\s*:\s*`)
)

// ExtractConstraints scans free-form comment text for the known constraint
// patterns. The checks are independent: a single comment may yield several
// constraints, and no pattern short-circuits another.
func ExtractConstraints(comment string) []schema.Constraint {
	var cons []schema.Constraint

	if primaryKeyRe.MatchString(comment) {
		cons = append(cons, schema.Constraint{Kind: schema.PrimaryKey})
	}
	if autoIncRe.MatchString(comment) {
		cons = append(cons, schema.Constraint{Kind: schema.AutoIncrement})
	}
	if uniqueRe.MatchString(comment) {
		cons = append(cons, schema.Constraint{Kind: schema.Unique})
	}
	if indexRe.MatchString(comment) {
		cons = append(cons, schema.Constraint{Kind: schema.Index})
	}
	if m := foreignKeyRe.FindStringSubmatch(comment); m != nil {
		ref := &schema.Reference{
			Schema: UnquoteIdent(m[1]),
			Table:  UnquoteIdent(m[2]),
			Column: UnquoteIdent(m[3]),
			Action: strings.TrimSpace(m[4]),
		}
		cons = append(cons, schema.Constraint{Kind: schema.ForeignKey, Ref: ref})
	}
	if m := defaultRe.FindStringSubmatch(comment); m != nil {
		cons = append(cons, schema.Constraint{Kind: schema.Default, Value: strings.TrimSpace(m[1])})
	}

	return cons
}

// ExtractAnnotations scans comment text for @name: value pairs. A value
// runs until the start of the next annotation (a comma followed by '@') or
// the end of the text.
func ExtractAnnotations(comment string) []schema.Annotation {
	var anns []schema.Annotation
	rest := comment
	for {
		m := annotationRe.FindStringSubmatchIndex(rest)
		if m == nil {
			return anns
		}
		name := rest[m[2]:m[3]]
		after := rest[m[1]:]
		end := len(after)
		if i := nextAnnotationSep(after); i >= 0 {
			end = i
		}
		anns = append(anns, schema.Annotation{
			Name:  name,
			Value: strings.TrimSpace(after[:end]),
		})
		rest = after[end:]
	}
}

// nextAnnotationSep returns the index of the comma that separates the
// current annotation value from the next annotation, or -1.
func nextAnnotationSep(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != ',' {
			continue
		}
		j := i + 1
		for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
			j++
		}
		if j < len(s) && s[j] == '@' {
			return i
		}
	}
	return -1
}
