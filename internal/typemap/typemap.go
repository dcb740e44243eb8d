// Package typemap normalizes vendor-specific SQL type names onto the
// notation's small set of semantic base types. Mapping is deliberately
// permissive: unknown vendor types degrade to the string category instead
// of failing, since the output is schema documentation, not validation.
package typemap

import (
	"strings"

	"github.com/tablenote/tablenote/internal/schema"
)

// Dialect identifies a source SQL type system.
type Dialect string

const (
	MySQL     Dialect = "mysql"
	Postgres  Dialect = "postgres"
	SQLite    Dialect = "sqlite"
	SQLServer Dialect = "sqlserver"
	Oracle    Dialect = "oracle"
)

// Base type vocabulary of the notation.
const (
	BaseInt      = "int"
	BaseFloat    = "float"
	BaseDecimal  = "decimal"
	BaseNumber   = "number"
	BaseString   = "string"
	BaseText     = "text"
	BaseBool     = "bool"
	BaseDate     = "date"
	BaseTime     = "time"
	BaseDateTime = "datetime"
	BaseBinary   = "binary"
	BaseJSON     = "json"
)

// ParseDialect resolves a dialect name, accepting the common aliases.
func ParseDialect(s string) (Dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql", "mariadb":
		return MySQL, true
	case "postgres", "postgresql", "pg":
		return Postgres, true
	case "sqlite", "sqlite3":
		return SQLite, true
	case "sqlserver", "mssql":
		return SQLServer, true
	case "oracle":
		return Oracle, true
	}
	return "", false
}

// dialectTable is the lookup data for one dialect: the generic type table,
// format hints keyed by the pre-array-stripped type name, the set of base
// types that keep a caller-supplied length, and the ordered exception
// rules evaluated before the generic lookup.
type dialectTable struct {
	bases          map[string]string
	hints          map[string]string
	preserveLength map[string]bool
	exceptions     []exception
}

// exception inspects a normalized type name plus the optional length and
// scale arguments. It returns a mapped type and true when it applies.
type exception func(name string, length, scale *int) (schema.MappedType, bool)

// Map normalizes a raw vendor type name. The variadic args are length and
// scale, in that order; omitting an argument is meaningful (VARCHAR with
// no length is not VARCHAR(0)). Map never fails.
func Map(d Dialect, raw string, args ...int) schema.MappedType {
	var length, scale *int
	if len(args) > 0 {
		length = &args[0]
	}
	if len(args) > 1 {
		scale = &args[1]
	}

	name := strings.ToLower(strings.TrimSpace(raw))

	isArray := false
	if strings.HasSuffix(name, "[]") {
		name = strings.TrimSpace(strings.TrimSuffix(name, "[]"))
		isArray = true
	} else if d == Postgres && strings.HasPrefix(name, "_") {
		// Postgres spells array element types with a leading underscore
		// in its catalogs (_text, _int4).
		name = name[1:]
		isArray = true
	}

	t := dialects[d]
	for _, ex := range t.exceptions {
		if m, ok := ex(name, length, scale); ok {
			m.IsArray = isArray
			return m
		}
	}

	base, known := t.bases[name]
	if !known {
		base = BaseString
	}
	m := schema.MappedType{Base: base, IsArray: isArray}
	if length != nil && *length > 0 && t.preserveLength[base] {
		m.Length = *length
	}
	if hint, ok := t.hints[name]; ok {
		m.FormatHint = hint
	}
	return m
}
