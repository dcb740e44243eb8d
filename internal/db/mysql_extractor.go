package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tablenote/tablenote/internal/schema"
	"github.com/tablenote/tablenote/internal/typemap"
)

// MySQLExtractor handles schema extraction from MySQL
type MySQLExtractor struct {
	client     *MySQLClient
	schemaName string
}

// NewMySQLExtractor creates a new MySQL schema extractor
func NewMySQLExtractor(client *MySQLClient, schemaName string) *MySQLExtractor {
	return &MySQLExtractor{
		client:     client,
		schemaName: schemaName,
	}
}

// ExtractSchema extracts the complete schema for specified tables.
// If tables is empty, extracts all tables in the schema.
func (e *MySQLExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
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
func (e *MySQLExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.DB().QueryContext(ctx, query, e.schemaName)
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
func (e *MySQLExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	t := &schema.Table{Name: tableName}

	columns, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	t.Columns = columns

	if err := e.extractForeignKeys(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}

	if err := e.extractIndexes(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}

	return t, nil
}

// extractColumns extracts column information for a table
func (e *MySQLExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.column_type,
			c.data_type,
			c.is_nullable,
			c.column_default,
			c.column_key,
			c.extra,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.DB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var columnType, dataType, nullable, columnKey, extra string
		var defaultVal sql.NullString
		var charMaxLength, precision, scale sql.NullInt64

		if err := rows.Scan(&col.Name, &columnType, &dataType, &nullable, &defaultVal,
			&columnKey, &extra, &charMaxLength, &precision, &scale); err != nil {
			return nil, err
		}

		col.Nullable = nullable == "YES"

		if dataType == "enum" {
			values, err := parseEnumValues(columnType)
			if err != nil {
				return nil, err
			}
			col.Type = unionFromValues(values)
		} else {
			mapColumnType(&col, typemap.MySQL, dataType, columnArgs(dataType, columnType, charMaxLength, precision, scale)...)
		}

		if strings.EqualFold(columnKey, "PRI") {
			col.Constraints = append(col.Constraints, schema.Constraint{Kind: schema.PrimaryKey})
		}
		if strings.Contains(strings.ToLower(extra), "auto_increment") {
			col.Constraints = append(col.Constraints, schema.Constraint{Kind: schema.AutoIncrement})
		}
		if strings.EqualFold(columnKey, "UNI") {
			col.Constraints = append(col.Constraints, schema.Constraint{Kind: schema.Unique})
		}
		if defaultVal.Valid {
			col.Constraints = append(col.Constraints, schema.Constraint{Kind: schema.Default, Value: defaultVal.String})
		}

		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// columnArgs picks the length/scale arguments for the type mapper from
// MySQL's catalog values. The display width in column_type distinguishes
// tinyint(1) flags from plain tinyints.
func columnArgs(dataType, columnType string, charMaxLength, precision, scale sql.NullInt64) []int {
	switch dataType {
	case "char", "varchar", "binary", "varbinary":
		if charMaxLength.Valid {
			return []int{int(charMaxLength.Int64)}
		}
	case "decimal", "numeric":
		if precision.Valid && scale.Valid {
			return []int{int(precision.Int64), int(scale.Int64)}
		}
	case "tinyint":
		if _, args := splitDeclaredType(columnType); len(args) > 0 {
			return args[:1]
		}
	}
	return nil
}

// parseEnumValues parses enum members from a column_type of the form
// "enum('value1','value2','value3')".
func parseEnumValues(columnType string) ([]string, error) {
	start := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if start == -1 || end == -1 || start >= end {
		return nil, fmt.Errorf("invalid enum type format: %s", columnType)
	}

	var values []string
	for _, part := range strings.Split(columnType[start+1:end], ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "'")
		part = strings.TrimSuffix(part, "'")
		values = append(values, strings.ReplaceAll(part, "''", "'"))
	}
	return values, nil
}

// extractForeignKeys attaches FOREIGN_KEY constraints to the referencing
// columns.
func (e *MySQLExtractor) extractForeignKeys(ctx context.Context, t *schema.Table) error {
	query := `
		SELECT
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.delete_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_name = kcu.constraint_name
			AND rc.constraint_schema = kcu.table_schema
		WHERE kcu.table_schema = ?
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.ordinal_position
	`

	rows, err := e.client.DB().QueryContext(ctx, query, e.schemaName, t.Name)
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
func (e *MySQLExtractor) extractIndexes(ctx context.Context, t *schema.Table) error {
	query := `
		SELECT index_name, non_unique, column_name
		FROM information_schema.statistics
		WHERE table_schema = ? AND table_name = ? AND index_name != 'PRIMARY'
		ORDER BY index_name, seq_in_index
	`

	rows, err := e.client.DB().QueryContext(ctx, query, e.schemaName, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	type indexInfo struct {
		columns []string
		unique  bool
	}
	var order []string
	indexes := make(map[string]*indexInfo)

	for rows.Next() {
		var name, column string
		var nonUnique int
		if err := rows.Scan(&name, &nonUnique, &column); err != nil {
			return err
		}
		info, ok := indexes[name]
		if !ok {
			info = &indexInfo{unique: nonUnique == 0}
			indexes[name] = info
			order = append(order, name)
		}
		info.columns = append(info.columns, column)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range order {
		info := indexes[name]
		addIndex(t, info.columns, info.unique)
	}
	return nil
}
