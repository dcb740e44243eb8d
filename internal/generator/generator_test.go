package generator

import (
	"strings"
	"testing"

	"github.com/tablenote/tablenote/internal/schema"
)

func TestGenerateAlignment(t *testing.T) {
	s := &schema.Schema{Tables: []schema.Table{{
		Name: "users",
		Columns: []schema.Column{
			{
				Name:        "id",
				Type:        schema.SimpleType{Name: "int"},
				Constraints: []schema.Constraint{{Kind: schema.PrimaryKey}},
			},
			{
				Name: "email",
				Type: schema.SimpleType{Name: "string", Length: 255},
			},
		},
	}}}

	out := Generate(s, nil)
	lines := strings.Split(out, "\n")
	if lines[0] != "interface users {" {
		t.Fatalf("header = %q", lines[0])
	}

	// Types are padded out to column 25, comments to column 45.
	if got := strings.Index(lines[1], "int;"); got != 25 {
		t.Errorf("type starts at offset %d, want 25: %q", got, lines[1])
	}
	if got := strings.Index(lines[1], "//"); got != 45 {
		t.Errorf("comment starts at offset %d, want 45: %q", got, lines[1])
	}
	if !strings.HasSuffix(lines[1], "// PRIMARY KEY") {
		t.Errorf("line = %q", lines[1])
	}
	if got := strings.Index(lines[2], "string(255);"); got != 25 {
		t.Errorf("type starts at offset %d, want 25: %q", got, lines[2])
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("output does not end with closing brace and newline: %q", out)
	}
}

func TestGeneratePadNeverTruncates(t *testing.T) {
	s := &schema.Schema{Tables: []schema.Table{{
		Name: "t",
		Columns: []schema.Column{{
			Name:    "a_very_long_column_name_indeed_truly",
			Type:    schema.SimpleType{Name: "text"},
			Comment: "still here",
		}},
	}}}

	out := Generate(s, nil)
	want := "  a_very_long_column_name_indeed_truly: text; // still here\n"
	if !strings.Contains(out, want) {
		t.Errorf("output = %q, want to contain %q", out, want)
	}
}

func TestGeneratePadCountsRunes(t *testing.T) {
	s := &schema.Schema{Tables: []schema.Table{{
		Name: "t",
		Columns: []schema.Column{{
			Name:    "prénom",
			Type:    schema.SimpleType{Name: "string"},
			Comment: "display name",
		}},
	}}}

	out := Generate(s, nil)
	line := []rune(strings.Split(out, "\n")[1])
	if got := string(line[25:31]); got != "string" {
		t.Errorf("type starts with %q at rune offset 25: %q", got, string(line))
	}
	if got := string(line[45:47]); got != "//" {
		t.Errorf("comment starts with %q at rune offset 45: %q", got, string(line))
	}
}

func TestGenerateCustomLayout(t *testing.T) {
	s := &schema.Schema{Tables: []schema.Table{{
		Name: "t",
		Columns: []schema.Column{{
			Name:    "id",
			Type:    schema.SimpleType{Name: "int"},
			Comment: "x",
		}},
	}}}

	out := Generate(s, &Options{Indent: 4, TypeColumn: 12, CommentColumn: 20})
	want := "    id:     int;    // x\n"
	if !strings.Contains(out, want) {
		t.Errorf("output = %q, want to contain %q", out, want)
	}
}

func TestGenerateColumnOrder(t *testing.T) {
	cols := []schema.Column{
		{Name: "created_at", Type: schema.SimpleType{Name: "datetime"}},
		{Name: "email", Type: schema.SimpleType{Name: "string"}},
		{Name: "id", Type: schema.SimpleType{Name: "int"},
			Constraints: []schema.Constraint{{Kind: schema.PrimaryKey}}},
		{Name: "name", Type: schema.SimpleType{Name: "string"}},
		{Name: "updated_at", Type: schema.SimpleType{Name: "datetime"}},
	}
	s := &schema.Schema{Tables: []schema.Table{{Name: "users", Columns: cols}}}

	assertOrder := func(t *testing.T, out string, want []string) {
		t.Helper()
		pos := -1
		for _, name := range want {
			i := strings.Index(out, "  "+name)
			if i < 0 {
				t.Fatalf("column %q missing from output:\n%s", name, out)
			}
			if i < pos {
				t.Fatalf("column %q out of order:\n%s", name, out)
			}
			pos = i
		}
	}

	t.Run("default partition", func(t *testing.T) {
		out := Generate(s, nil)
		assertOrder(t, out, []string{"id", "email", "name", "created_at", "updated_at"})
	})

	t.Run("no sort", func(t *testing.T) {
		out := Generate(s, &Options{NoSort: true})
		assertOrder(t, out, []string{"created_at", "email", "id", "name", "updated_at"})
	})
}

func TestGenerateSynthesizedComments(t *testing.T) {
	tests := []struct {
		name string
		col  schema.Column
		want string
	}{
		{
			name: "constraint order is fixed",
			col: schema.Column{
				Name: "id",
				Type: schema.SimpleType{Name: "int"},
				Constraints: []schema.Constraint{
					{Kind: schema.AutoIncrement},
					{Kind: schema.PrimaryKey},
				},
			},
			want: "// PRIMARY KEY, AUTO_INCREMENT",
		},
		{
			name: "foreign key with action",
			col: schema.Column{
				Name: "team_id",
				Type: schema.SimpleType{Name: "int"},
				Constraints: []schema.Constraint{
					{Kind: schema.ForeignKey, Ref: &schema.Reference{
						Table:  "teams",
						Column: "id",
						Action: "ON DELETE CASCADE",
					}},
				},
			},
			want: "// FK -> teams(id), ON DELETE CASCADE",
		},
		{
			name: "default and check",
			col: schema.Column{
				Name: "qty",
				Type: schema.SimpleType{Name: "int"},
				Constraints: []schema.Constraint{
					{Kind: schema.Check, Value: "qty >= 0"},
					{Kind: schema.Default, Value: "1"},
				},
			},
			want: "// DEFAULT 1, CHECK(qty >= 0)",
		},
		{
			name: "annotations come after constraints",
			col: schema.Column{
				Name:        "id",
				Type:        schema.SimpleType{Name: "string"},
				Constraints: []schema.Constraint{{Kind: schema.PrimaryKey}},
				Annotations: []schema.Annotation{{Name: "format", Value: "uuid"}},
			},
			want: "// PRIMARY KEY, @format: uuid",
		},
		{
			name: "raw comment wins over synthesis",
			col: schema.Column{
				Name:        "id",
				Type:        schema.SimpleType{Name: "int"},
				Comment:     "pk, hand written",
				Constraints: []schema.Constraint{{Kind: schema.PrimaryKey}},
			},
			want: "// pk, hand written",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &schema.Schema{Tables: []schema.Table{{Name: "t", Columns: []schema.Column{tt.col}}}}
			out := Generate(s, nil)
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want to contain %q", out, tt.want)
			}
		})
	}
}

func TestGenerateTableHeader(t *testing.T) {
	s := &schema.Schema{
		Metadata: []string{"dumped from staging"},
		Tables: []schema.Table{{
			Name:        "users",
			Annotations: []schema.Annotation{{Name: "schema", Value: "auth"}},
			Metadata:    []string{"@schema: auth"},
			Comments:    []string{"account records"},
			Constraints: []schema.TableConstraint{
				{Kind: schema.Unique, Columns: []string{"tenant_id", "email"}},
			},
			Columns: []schema.Column{
				{Name: "tenant_id", Type: schema.SimpleType{Name: "int"}},
				{Name: "email", Type: schema.SimpleType{Name: "string"}},
			},
		}},
	}

	out := Generate(s, nil)
	wantPrefix := "// dumped from staging\n" +
		"\n" +
		"// @schema: auth\n" +
		"// account records\n" +
		"// UNIQUE(tenant_id, email)\n" +
		"interface users {\n"
	if !strings.HasPrefix(out, wantPrefix) {
		t.Errorf("output = %q, want prefix %q", out, wantPrefix)
	}
}

func TestGenerateSeparatesTables(t *testing.T) {
	s := &schema.Schema{Tables: []schema.Table{
		{Name: "a", Columns: []schema.Column{{Name: "x", Type: schema.SimpleType{Name: "int"}}}},
		{Name: "b", Columns: []schema.Column{{Name: "y", Type: schema.SimpleType{Name: "int"}}}},
	}}

	out := Generate(s, nil)
	if !strings.Contains(out, "}\n\ninterface b {") {
		t.Errorf("tables not separated by exactly one blank line:\n%s", out)
	}
}

func TestFormatType(t *testing.T) {
	tests := []struct {
		name  string
		input schema.ColumnType
		want  string
	}{
		{"bare", schema.SimpleType{Name: "int"}, "int"},
		{"length", schema.SimpleType{Name: "string", Length: 36}, "string(36)"},
		{"array", schema.SimpleType{Name: "text", IsArray: true}, "text[]"},
		{"length and array", schema.SimpleType{Name: "string", Length: 36, IsArray: true}, "string(36)[]"},
		{"string union", schema.UnionType{Members: []schema.UnionMember{
			{Str: "a", IsString: true}, {Str: "b", IsString: true},
		}}, "'a' | 'b'"},
		{"integer union", schema.UnionType{Members: []schema.UnionMember{
			{Num: 0}, {Num: 1},
		}}, "0 | 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatType(tt.input); got != tt.want {
				t.Errorf("FormatType(%#v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"users", "users"},
		{"_private", "_private"},
		{"order items", "`order items`"},
		{"unit`price", "`unit``price`"},
		{"2cool", "`2cool`"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := QuoteIdent(tt.input); got != tt.want {
				t.Errorf("QuoteIdent(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
