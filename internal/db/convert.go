package db

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tablenote/tablenote/internal/schema"
	"github.com/tablenote/tablenote/internal/typemap"
)

// declaredTypeRe picks apart vendor type declarations like "VARCHAR(120)"
// or "DECIMAL(10,2)" as found in SQLite's PRAGMA output and MySQL's
// column_type values.
var declaredTypeRe = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_ ]*?)\s*(?:\(\s*(-?\d+)\s*(?:,\s*(-?\d+)\s*)?\))?\s*$`)

// mapColumnType routes a raw vendor type through the type mapper and
// applies the result to the column: the semantic type itself, plus a
// @format annotation when the mapper attached a hint.
func mapColumnType(col *schema.Column, d typemap.Dialect, raw string, args ...int) {
	mt := typemap.Map(d, raw, args...)
	col.Type = schema.SimpleType{Name: mt.Base, Length: mt.Length, IsArray: mt.IsArray}
	if mt.FormatHint != "" {
		col.Annotations = append(col.Annotations, schema.Annotation{Name: "format", Value: mt.FormatHint})
	}
}

// splitDeclaredType separates a declared type into its name and the
// optional length/scale arguments, ready to hand to the type mapper.
func splitDeclaredType(declared string) (name string, args []int) {
	m := declaredTypeRe.FindStringSubmatch(declared)
	if m == nil {
		return strings.TrimSpace(declared), nil
	}
	name = strings.TrimSpace(m[1])
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return name, nil
		}
		args = append(args, n)
		if m[3] != "" {
			s, err := strconv.Atoi(m[3])
			if err == nil {
				args = append(args, s)
			}
		}
	}
	return name, args
}

// unionFromValues builds a union type out of introspected enum members.
func unionFromValues(values []string) schema.UnionType {
	u := schema.UnionType{Members: make([]schema.UnionMember, len(values))}
	for i, v := range values {
		u.Members[i] = schema.UnionMember{Str: v, IsString: true}
	}
	return u
}

// referenceAction renders a catalog delete rule as the notation's
// "ON ..." clause. "NO ACTION" is the default and stays implicit.
func referenceAction(deleteRule string) string {
	rule := strings.ToUpper(strings.TrimSpace(deleteRule))
	if rule == "" || rule == "NO ACTION" {
		return ""
	}
	return "ON DELETE " + rule
}

// addIndex folds an introspected index into the table: single-column
// indexes become column constraints, multi-column ones become table
// constraints.
func addIndex(t *schema.Table, columns []string, unique bool) {
	kind := schema.Index
	if unique {
		kind = schema.Unique
	}
	if len(columns) == 1 {
		if col := findColumn(t, columns[0]); col != nil {
			if !col.HasConstraint(kind) {
				col.Constraints = append(col.Constraints, schema.Constraint{Kind: kind})
			}
			return
		}
	}
	t.Constraints = append(t.Constraints, schema.TableConstraint{Kind: kind, Columns: columns})
}

func findColumn(t *schema.Table, name string) *schema.Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// markPrimaryKey flags every member column of the primary key.
func markPrimaryKey(t *schema.Table, pk []string) {
	for _, name := range pk {
		if col := findColumn(t, name); col != nil && !col.HasConstraint(schema.PrimaryKey) {
			col.Constraints = append(col.Constraints, schema.Constraint{Kind: schema.PrimaryKey})
		}
	}
}
