package schema

// Schema is the parsed representation of a notation document.
type Schema struct {
	Tables []Table

	// Metadata holds comment lines that are not attached to any table
	// (a blank line severs the association with the next table).
	Metadata []string

	// Annotations are the @name: value pairs found in Metadata.
	Annotations []Annotation
}

// Table represents a single interface block.
type Table struct {
	Name    string
	Columns []Column

	// Constraints are the multi-column UNIQUE(...)/INDEX(...) constraints
	// recorded from standalone comments.
	Constraints []TableConstraint

	// Annotations are the @name: value pairs found in the comment block
	// immediately preceding the declaration.
	Annotations []Annotation

	// Metadata holds the raw comment lines immediately preceding the
	// declaration, annotation lines included.
	Metadata []string

	// Comments holds free-form comment lines found inside the body that
	// were neither a column comment nor a multi-column constraint.
	Comments []string
}

// Column represents a single column definition.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool

	// Constraints and Annotations are derived views over Comment. Both may
	// be present at once; neither extraction excludes the other.
	Constraints []Constraint
	Annotations []Annotation

	// Comment is the verbatim trailing comment text, kept for round-trip
	// fidelity. Empty if the column had no comment.
	Comment string
}

// ColumnType is either a SimpleType or a UnionType.
type ColumnType interface {
	columnType()
}

// SimpleType is a named type with an optional length and array marker,
// e.g. string(120) or int[].
type SimpleType struct {
	Name    string
	Length  int // 0 means no length was given
	IsArray bool
}

// UnionType restricts a column to an explicit list of literal values,
// e.g. 'draft' | 'published' or 1 | 2 | 3.
type UnionType struct {
	Members []UnionMember
}

// UnionMember is one literal of a union type. Str is valid when IsString
// is set, Num otherwise. Mixed unions are permitted.
type UnionMember struct {
	Str      string
	Num      int64
	IsString bool
}

func (SimpleType) columnType() {}
func (UnionType) columnType()  {}

// ConstraintKind enumerates the structured facts a comment can carry
// about a column.
type ConstraintKind int

const (
	PrimaryKey ConstraintKind = iota
	Unique
	Index
	AutoIncrement
	ForeignKey
	Default
	Check
)

// Constraint is a single structured fact about a column. Ref is set for
// ForeignKey, Value for Default and Check.
type Constraint struct {
	Kind  ConstraintKind
	Ref   *Reference
	Value string
}

// Reference is the target of a foreign key.
type Reference struct {
	Schema string
	Table  string
	Column string

	// Action is the trailing "ON ..." clause, verbatim (e.g. "ON DELETE CASCADE").
	Action string
}

// TableConstraint is a multi-column UNIQUE or INDEX constraint.
type TableConstraint struct {
	Kind    ConstraintKind // Unique or Index
	Columns []string
}

// Annotation is a @name: value metadata pair.
type Annotation struct {
	Name  string
	Value string
}

// MappedType is the result of normalizing a vendor SQL type name into the
// notation's semantic vocabulary.
type MappedType struct {
	Base    string
	Length  int // 0 means no length
	IsArray bool

	// FormatHint preserves semantic context lost by the base-type
	// collapse, e.g. "uuid" for a string column.
	FormatHint string
}

// HasConstraint reports whether the column carries a constraint of the
// given kind.
func (c *Column) HasConstraint(kind ConstraintKind) bool {
	for _, con := range c.Constraints {
		if con.Kind == kind {
			return true
		}
	}
	return false
}
