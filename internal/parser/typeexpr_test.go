package parser

import (
	"reflect"
	"testing"

	"github.com/tablenote/tablenote/internal/schema"
)

func TestParseTypeExpr(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    schema.ColumnType
		wantErr bool
	}{
		{
			name:  "bare type",
			input: "int",
			want:  schema.SimpleType{Name: "int"},
		},
		{
			name:  "type with length",
			input: "string(120)",
			want:  schema.SimpleType{Name: "string", Length: 120},
		},
		{
			name:  "array type",
			input: "text[]",
			want:  schema.SimpleType{Name: "text", IsArray: true},
		},
		{
			name:  "array with length",
			input: "string(36)[]",
			want:  schema.SimpleType{Name: "string", Length: 36, IsArray: true},
		},
		{
			name:  "surrounding whitespace",
			input: "  datetime  ",
			want:  schema.SimpleType{Name: "datetime"},
		},
		{
			name:  "string union",
			input: "'admin' | 'member' | 'guest'",
			want: schema.UnionType{Members: []schema.UnionMember{
				{Str: "admin", IsString: true},
				{Str: "member", IsString: true},
				{Str: "guest", IsString: true},
			}},
		},
		{
			name:  "integer union",
			input: "0 | 1 | 2",
			want: schema.UnionType{Members: []schema.UnionMember{
				{Num: 0}, {Num: 1}, {Num: 2},
			}},
		},
		{
			name:  "mixed union",
			input: "'none' | 1",
			want: schema.UnionType{Members: []schema.UnionMember{
				{Str: "none", IsString: true},
				{Num: 1},
			}},
		},
		{
			name:  "negative union member",
			input: "-1 | 1",
			want: schema.UnionType{Members: []schema.UnionMember{
				{Num: -1}, {Num: 1},
			}},
		},
		{
			name:  "pipe inside quoted literal",
			input: "'a|b' | 'c'",
			want: schema.UnionType{Members: []schema.UnionMember{
				{Str: "a|b", IsString: true},
				{Str: "c", IsString: true},
			}},
		},
		{
			name:    "empty expression",
			input:   "",
			wantErr: true,
		},
		{
			name:    "bad literal in union",
			input:   "'a' | oops",
			wantErr: true,
		},
		{
			name:    "malformed length",
			input:   "string(abc)",
			wantErr: true,
		},
		{
			name:    "trailing garbage",
			input:   "int extra",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTypeExpr(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTypeExpr(%q) expected error, got %#v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTypeExpr(%q) unexpected error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTypeExpr(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}
