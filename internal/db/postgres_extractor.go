package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/tablenote/tablenote/internal/schema"
	"github.com/tablenote/tablenote/internal/typemap"
)

// PostgresExtractor handles schema extraction from PostgreSQL
type PostgresExtractor struct {
	client *PostgresClient
	schema string
}

// NewPostgresExtractor creates a new PostgreSQL schema extractor
func NewPostgresExtractor(client *PostgresClient, schemaName string) *PostgresExtractor {
	return &PostgresExtractor{
		client: client,
		schema: schemaName,
	}
}

// ExtractSchema extracts the complete schema for specified tables.
// If tables is empty, extracts all tables in the schema.
func (e *PostgresExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	var extractedTables []schema.Table

	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	for _, tableName := range tableNames {
		table, err := e.extractTable(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
		}
		extractedTables = append(extractedTables, *table)
	}

	return &schema.Schema{Tables: extractedTables}, nil
}

// getTableNames returns the list of tables to extract
func (e *PostgresExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.Conn().Query(ctx, query, e.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// extractTable extracts all information for a single table
func (e *PostgresExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	t := &schema.Table{Name: tableName}
	if e.schema != "" && e.schema != "public" {
		t.Metadata = append(t.Metadata, "@schema: "+e.schema)
		t.Annotations = append(t.Annotations, schema.Annotation{Name: "schema", Value: e.schema})
	}

	columns, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	t.Columns = columns

	pk, err := e.extractPrimaryKey(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract primary key: %w", err)
	}
	markPrimaryKey(t, pk)

	if err := e.extractForeignKeys(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}

	if err := e.extractIndexes(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}

	return t, nil
}

// extractColumns extracts column information for a table
func (e *PostgresExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.udt_name,
			c.is_nullable,
			c.column_default,
			c.is_identity,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			CASE WHEN EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.constraint_column_usage ccu
					ON tc.constraint_name = ccu.constraint_name
					AND tc.table_schema = ccu.table_schema
				WHERE tc.table_schema = $1
					AND tc.table_name = $2
					AND tc.constraint_type = 'UNIQUE'
					AND ccu.column_name = c.column_name
			) THEN true ELSE false END as is_unique
		FROM information_schema.columns c
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := e.client.Conn().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	// Column index -> user-defined type name, resolved to enum values in
	// a second pass.
	userTypes := make(map[int]string)

	for rows.Next() {
		var col schema.Column
		var dataType, udtName, nullable, isIdentity string
		var defaultVal *string
		var charMaxLength, precision, scale *int
		var isUnique bool

		if err := rows.Scan(&col.Name, &dataType, &udtName, &nullable, &defaultVal,
			&isIdentity, &charMaxLength, &precision, &scale, &isUnique); err != nil {
			return nil, err
		}

		col.Nullable = nullable == "YES"

		typeName := dataType
		if dataType == "ARRAY" || dataType == "USER-DEFINED" {
			// udt_name carries the real type for arrays (_text, _int4)
			// and user-defined types.
			typeName = udtName
		}
		var args []int
		switch {
		case charMaxLength != nil:
			args = []int{*charMaxLength}
		case isNumericName(dataType) && precision != nil && scale != nil:
			args = []int{*precision, *scale}
		}
		mapColumnType(&col, typemap.Postgres, typeName, args...)

		if dataType == "USER-DEFINED" {
			userTypes[len(columns)] = udtName
		}

		switch {
		case isIdentity == "YES", defaultVal != nil && strings.HasPrefix(*defaultVal, "nextval("):
			col.Constraints = append(col.Constraints, schema.Constraint{Kind: schema.AutoIncrement})
		case defaultVal != nil:
			col.Constraints = append(col.Constraints, schema.Constraint{Kind: schema.Default, Value: *defaultVal})
		}
		if isUnique {
			col.Constraints = append(col.Constraints, schema.Constraint{Kind: schema.Unique})
		}

		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(userTypes) > 0 {
		if err := e.resolveEnumColumns(ctx, columns, userTypes); err != nil {
			return nil, err
		}
	}
	return columns, nil
}

func isNumericName(dataType string) bool {
	return dataType == "numeric" || dataType == "decimal"
}

// resolveEnumColumns turns USER-DEFINED columns into union types when the
// underlying type is an enum.
func (e *PostgresExtractor) resolveEnumColumns(ctx context.Context, columns []schema.Column, userTypes map[int]string) error {
	names := make([]string, 0, len(userTypes))
	for _, n := range userTypes {
		names = append(names, n)
	}

	query := `
		SELECT t.typname, e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		JOIN pg_namespace n ON t.typnamespace = n.oid
		WHERE n.nspname = $1 AND t.typname = ANY($2)
		ORDER BY t.typname, e.enumsortorder
	`

	rows, err := e.client.Conn().Query(ctx, query, e.schema, names)
	if err != nil {
		return err
	}
	defer rows.Close()

	values := make(map[string][]string)
	for rows.Next() {
		var typName, label string
		if err := rows.Scan(&typName, &label); err != nil {
			return err
		}
		values[typName] = append(values[typName], label)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i, udtName := range userTypes {
		if labels, ok := values[udtName]; ok {
			columns[i].Type = unionFromValues(labels)
		}
	}
	return nil
}

// extractPrimaryKey extracts primary key columns
func (e *PostgresExtractor) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = $1
			AND table_name = $2
			AND constraint_name IN (
				SELECT constraint_name
				FROM information_schema.table_constraints
				WHERE table_schema = $1
					AND table_name = $2
					AND constraint_type = 'PRIMARY KEY'
			)
		ORDER BY ordinal_position
	`

	rows, err := e.client.Conn().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var colName string
		if err := rows.Scan(&colName); err != nil {
			return nil, err
		}
		pk = append(pk, colName)
	}

	return pk, rows.Err()
}

// extractForeignKeys attaches FOREIGN_KEY constraints to the referencing
// columns.
func (e *PostgresExtractor) extractForeignKeys(ctx context.Context, t *schema.Table) error {
	query := `
		SELECT
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name,
			rc.delete_rule
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		JOIN information_schema.referential_constraints AS rc
			ON rc.constraint_name = tc.constraint_name
			AND rc.constraint_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY kcu.ordinal_position
	`

	rows, err := e.client.Conn().Query(ctx, query, e.schema, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sourceCol, targetTable, targetCol, deleteRule string
		if err := rows.Scan(&sourceCol, &targetTable, &targetCol, &deleteRule); err != nil {
			return err
		}
		if col := findColumn(t, sourceCol); col != nil {
			col.Constraints = append(col.Constraints, schema.Constraint{
				Kind: schema.ForeignKey,
				Ref: &schema.Reference{
					Table:  targetTable,
					Column: targetCol,
					Action: referenceAction(deleteRule),
				},
			})
		}
	}
	return rows.Err()
}

// extractIndexes folds non-primary indexes into column or table
// constraints.
func (e *PostgresExtractor) extractIndexes(ctx context.Context, t *schema.Table) error {
	query := `
		SELECT
			ix.indisunique AS is_unique,
			array_agg(a.attname ORDER BY array_position(ix.indkey, a.attnum)) AS column_names
		FROM pg_class c
		JOIN pg_index ix ON c.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'r'
			AND n.nspname = $1
			AND c.relname = $2
			AND NOT ix.indisprimary
		GROUP BY i.relname, ix.indisunique
		ORDER BY i.relname
	`

	rows, err := e.client.Conn().Query(ctx, query, e.schema, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var unique bool
		var columns []string
		if err := rows.Scan(&unique, &columns); err != nil {
			return err
		}
		if len(columns) > 0 {
			addIndex(t, columns, unique)
		}
	}
	return rows.Err()
}
