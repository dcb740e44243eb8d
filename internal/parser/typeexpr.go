package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tablenote/tablenote/internal/schema"
)

var simpleTypeRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(?:\((\d+)\))?(\[\])?$`)

// ParseTypeExpr parses the text after a column's ':' separator, already
// stripped of any trailing comment and semicolon. The expression is either
// a simple type (name, optional length, optional []) or a union of string
// and integer literals separated by '|'.
func ParseTypeExpr(expr string) (schema.ColumnType, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty type expression")
	}

	if parts := splitUnion(expr); len(parts) > 1 {
		return parseUnion(parts)
	}

	m := simpleTypeRe.FindStringSubmatch(expr)
	if m == nil {
		return nil, fmt.Errorf("invalid type expression %q", expr)
	}
	t := schema.SimpleType{Name: m[1], IsArray: m[3] == "[]"}
	if m[2] != "" {
		length, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("invalid type length %q", m[2])
		}
		t.Length = length
	}
	return t, nil
}

// splitUnion splits expr on '|' characters that are not inside
// single-quoted literals. A result of length 1 means expr is not a union.
func splitUnion(expr string) []string {
	var parts []string
	var inQuote bool
	start := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '\'':
			inQuote = !inQuote
		case '|':
			if !inQuote {
				parts = append(parts, expr[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, expr[start:])
}

func parseUnion(parts []string) (schema.ColumnType, error) {
	u := schema.UnionType{Members: make([]schema.UnionMember, 0, len(parts))}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) >= 2 && part[0] == '\'' && part[len(part)-1] == '\'' {
			u.Members = append(u.Members, schema.UnionMember{
				Str:      part[1 : len(part)-1],
				IsString: true,
			})
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid union literal %q", part)
		}
		u.Members = append(u.Members, schema.UnionMember{Num: n})
	}
	return u, nil
}
