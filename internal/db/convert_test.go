package db

import (
	"database/sql"
	"reflect"
	"testing"

	"github.com/tablenote/tablenote/internal/schema"
	"github.com/tablenote/tablenote/internal/typemap"
)

func TestSplitDeclaredType(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantArgs []int
	}{
		{"VARCHAR(120)", "VARCHAR", []int{120}},
		{"DECIMAL(10,2)", "DECIMAL", []int{10, 2}},
		{"decimal(10, 2)", "decimal", []int{10, 2}},
		{"INTEGER", "INTEGER", nil},
		{"tinyint(1)", "tinyint", []int{1}},
		{"nvarchar(-1)", "nvarchar", []int{-1}},
		{"double precision", "double precision", nil},
		{"  text  ", "text", nil},
		{"", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, args := splitDeclaredType(tt.input)
			if name != tt.wantName || !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("splitDeclaredType(%q) = %q, %v; want %q, %v",
					tt.input, name, args, tt.wantName, tt.wantArgs)
			}
		})
	}
}

func TestMapColumnType(t *testing.T) {
	t.Run("format hint becomes annotation", func(t *testing.T) {
		col := schema.Column{Name: "id"}
		mapColumnType(&col, typemap.Postgres, "uuid")
		if got, want := col.Type, (schema.SimpleType{Name: "string"}); !reflect.DeepEqual(got, want) {
			t.Errorf("type = %#v, want %#v", got, want)
		}
		wantAnns := []schema.Annotation{{Name: "format", Value: "uuid"}}
		if !reflect.DeepEqual(col.Annotations, wantAnns) {
			t.Errorf("annotations = %#v, want %#v", col.Annotations, wantAnns)
		}
	})

	t.Run("no hint means no annotation", func(t *testing.T) {
		col := schema.Column{Name: "n"}
		mapColumnType(&col, typemap.MySQL, "varchar", 80)
		if got, want := col.Type, (schema.SimpleType{Name: "string", Length: 80}); !reflect.DeepEqual(got, want) {
			t.Errorf("type = %#v, want %#v", got, want)
		}
		if len(col.Annotations) != 0 {
			t.Errorf("annotations = %#v, want none", col.Annotations)
		}
	})
}

func TestParseEnumValues(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "basic enum",
			input: "enum('admin','member','guest')",
			want:  []string{"admin", "member", "guest"},
		},
		{
			name:  "escaped quote",
			input: "enum('it''s','plain')",
			want:  []string{"it's", "plain"},
		},
		{
			name:  "set type",
			input: "set('a','b')",
			want:  []string{"a", "b"},
		},
		{
			name:    "no parentheses",
			input:   "enum",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEnumValues(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseEnumValues(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEnumValues(%q) error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseEnumValues(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestReferenceAction(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"CASCADE", "ON DELETE CASCADE"},
		{"SET NULL", "ON DELETE SET NULL"},
		{"set null", "ON DELETE SET NULL"},
		{"RESTRICT", "ON DELETE RESTRICT"},
		{"NO ACTION", ""},
		{"no action", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := referenceAction(tt.input); got != tt.want {
				t.Errorf("referenceAction(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAddIndex(t *testing.T) {
	newTable := func() *schema.Table {
		return &schema.Table{
			Name: "users",
			Columns: []schema.Column{
				{Name: "id"},
				{Name: "email"},
			},
		}
	}

	t.Run("single column becomes column constraint", func(t *testing.T) {
		tbl := newTable()
		addIndex(tbl, []string{"email"}, true)
		col := findColumn(tbl, "email")
		if !col.HasConstraint(schema.Unique) {
			t.Errorf("email constraints = %#v", col.Constraints)
		}
		if len(tbl.Constraints) != 0 {
			t.Errorf("table constraints = %#v, want none", tbl.Constraints)
		}
	})

	t.Run("multi column becomes table constraint", func(t *testing.T) {
		tbl := newTable()
		addIndex(tbl, []string{"id", "email"}, false)
		want := []schema.TableConstraint{{Kind: schema.Index, Columns: []string{"id", "email"}}}
		if !reflect.DeepEqual(tbl.Constraints, want) {
			t.Errorf("table constraints = %#v, want %#v", tbl.Constraints, want)
		}
	})

	t.Run("duplicate single column index is dropped", func(t *testing.T) {
		tbl := newTable()
		addIndex(tbl, []string{"email"}, true)
		addIndex(tbl, []string{"email"}, true)
		col := findColumn(tbl, "email")
		if len(col.Constraints) != 1 {
			t.Errorf("email constraints = %#v, want exactly one", col.Constraints)
		}
		if len(tbl.Constraints) != 0 {
			t.Errorf("table constraints = %#v, want none", tbl.Constraints)
		}
	})

	t.Run("unknown column becomes table constraint", func(t *testing.T) {
		tbl := newTable()
		addIndex(tbl, []string{"ghost"}, false)
		want := []schema.TableConstraint{{Kind: schema.Index, Columns: []string{"ghost"}}}
		if !reflect.DeepEqual(tbl.Constraints, want) {
			t.Errorf("table constraints = %#v, want %#v", tbl.Constraints, want)
		}
	})
}

func TestMarkPrimaryKey(t *testing.T) {
	tbl := &schema.Table{
		Name: "memberships",
		Columns: []schema.Column{
			{Name: "user_id"},
			{Name: "team_id"},
			{Name: "joined_at"},
		},
	}
	markPrimaryKey(tbl, []string{"user_id", "team_id"})
	markPrimaryKey(tbl, []string{"user_id"}) // idempotent

	for _, name := range []string{"user_id", "team_id"} {
		col := findColumn(tbl, name)
		if !col.HasConstraint(schema.PrimaryKey) {
			t.Errorf("%s constraints = %#v", name, col.Constraints)
		}
		if len(col.Constraints) != 1 {
			t.Errorf("%s has %d constraints, want 1", name, len(col.Constraints))
		}
	}
	if findColumn(tbl, "joined_at").HasConstraint(schema.PrimaryKey) {
		t.Error("joined_at should not be part of the primary key")
	}
}

func TestParseDatabaseName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "full dsn",
			input: "user:pass@tcp(localhost:3306)/appdb?parseTime=true",
			want:  "appdb",
		},
		{
			name:  "no params",
			input: "root@tcp(127.0.0.1:3306)/shop",
			want:  "shop",
		},
		{
			name:    "missing database",
			input:   "root@tcp(127.0.0.1:3306)/",
			wantErr: true,
		},
		{
			name:    "no slash",
			input:   "root@localhost",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDatabaseName(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDatabaseName(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDatabaseName(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDatabaseName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestColumnArgs(t *testing.T) {
	num := func(n int64) sql.NullInt64 { return sql.NullInt64{Int64: n, Valid: true} }
	none := sql.NullInt64{}

	tests := []struct {
		name       string
		dataType   string
		columnType string
		charMax    sql.NullInt64
		precision  sql.NullInt64
		scale      sql.NullInt64
		want       []int
	}{
		{
			name:       "varchar uses character length",
			dataType:   "varchar",
			columnType: "varchar(255)",
			charMax:    num(255),
			want:       []int{255},
		},
		{
			name:       "decimal uses precision and scale",
			dataType:   "decimal",
			columnType: "decimal(10,2)",
			charMax:    none,
			precision:  num(10),
			scale:      num(2),
			want:       []int{10, 2},
		},
		{
			name:       "tinyint uses display width",
			dataType:   "tinyint",
			columnType: "tinyint(1)",
			charMax:    none,
			want:       []int{1},
		},
		{
			name:       "tinyint without width",
			dataType:   "tinyint",
			columnType: "tinyint",
			charMax:    none,
			want:       nil,
		},
		{
			name:       "int carries no args",
			dataType:   "int",
			columnType: "int(11)",
			charMax:    none,
			precision:  num(10),
			scale:      num(0),
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := columnArgs(tt.dataType, tt.columnType, tt.charMax, tt.precision, tt.scale)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("columnArgs(%q, %q) = %v, want %v", tt.dataType, tt.columnType, got, tt.want)
			}
		})
	}
}
