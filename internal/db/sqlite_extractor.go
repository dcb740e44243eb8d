package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tablenote/tablenote/internal/schema"
	"github.com/tablenote/tablenote/internal/typemap"
)

// SQLiteExtractor handles schema extraction from SQLite
type SQLiteExtractor struct {
	client *SQLiteClient
}

// NewSQLiteExtractor creates a new SQLite schema extractor
func NewSQLiteExtractor(client *SQLiteClient) *SQLiteExtractor {
	return &SQLiteExtractor{
		client: client,
	}
}

// ExtractSchema extracts the complete schema for specified tables.
// If tables is empty, extracts all tables in the database.
func (e *SQLiteExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
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
func (e *SQLiteExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := e.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableList []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tableList = append(tableList, tableName)
	}

	return tableList, rows.Err()
}

// extractTable extracts all information for a single table
func (e *SQLiteExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	t := &schema.Table{Name: tableName}

	if err := e.extractColumns(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}

	if err := e.extractForeignKeys(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}

	if err := e.extractIndexes(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}

	return t, nil
}

// extractColumns extracts column information for a table
func (e *SQLiteExtractor) extractColumns(ctx context.Context, t *schema.Table) error {
	query := fmt.Sprintf("PRAGMA table_info(%q)", t.Name)

	rows, err := e.client.DB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	var pkColumns []string
	for rows.Next() {
		var cid int
		var name, declaredType string
		var notNull, pkOrder int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &declaredType, &notNull, &defaultValue, &pkOrder); err != nil {
			return err
		}

		col := schema.Column{
			Name:     name,
			Nullable: notNull == 0,
		}

		typeName, args := splitDeclaredType(declaredType)
		if typeName == "" {
			// Columns may be declared without a type; SQLite treats
			// those as blobs.
			typeName = "blob"
		}
		mapColumnType(&col, typemap.SQLite, typeName, args...)

		if defaultValue.Valid {
			col.Constraints = append(col.Constraints, schema.Constraint{Kind: schema.Default, Value: defaultValue.String})
		}
		if pkOrder > 0 {
			pkColumns = append(pkColumns, name)
			// A column declared NOT NULL implicitly is still reported
			// nullable by some schemas; primary keys are never null.
			col.Nullable = false
		}

		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	markPrimaryKey(t, pkColumns)

	if len(pkColumns) == 1 {
		if err := e.markAutoIncrement(ctx, t, pkColumns[0]); err != nil {
			return err
		}
	}
	return nil
}

// markAutoIncrement flags an INTEGER PRIMARY KEY declared with
// AUTOINCREMENT. The keyword only survives in the original CREATE TABLE
// statement, so it is read back from sqlite_master.
func (e *SQLiteExtractor) markAutoIncrement(ctx context.Context, t *schema.Table, pkColumn string) error {
	var createSQL sql.NullString
	err := e.client.DB().QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, t.Name).Scan(&createSQL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}
	if !createSQL.Valid || !strings.Contains(strings.ToUpper(createSQL.String), "AUTOINCREMENT") {
		return nil
	}
	if col := findColumn(t, pkColumn); col != nil {
		col.Constraints = append(col.Constraints, schema.Constraint{Kind: schema.AutoIncrement})
	}
	return nil
}

// extractForeignKeys attaches FOREIGN_KEY constraints to the referencing
// columns.
func (e *SQLiteExtractor) extractForeignKeys(ctx context.Context, t *schema.Table) error {
	query := fmt.Sprintf("PRAGMA foreign_key_list(%q)", t.Name)

	rows, err := e.client.DB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, seq int
		var targetTable, fromCol, onUpdate, onDelete, match string
		var toCol sql.NullString

		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			return err
		}

		targetColumn := toCol.String
		if targetColumn == "" {
			// References without an explicit column target the primary
			// key; "id" is the best readable stand-in available here.
			targetColumn = "id"
		}
		if col := findColumn(t, fromCol); col != nil {
			col.Constraints = append(col.Constraints, schema.Constraint{
				Kind: schema.ForeignKey,
				Ref: &schema.Reference{
					Table:  targetTable,
					Column: targetColumn,
					Action: referenceAction(onDelete),
				},
			})
		}
	}
	return rows.Err()
}

// extractIndexes folds explicitly created indexes into column or table
// constraints.
func (e *SQLiteExtractor) extractIndexes(ctx context.Context, t *schema.Table) error {
	query := fmt.Sprintf("PRAGMA index_list(%q)", t.Name)

	rows, err := e.client.DB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	type indexInfo struct {
		name   string
		unique bool
	}
	var indexes []indexInfo

	for rows.Next() {
		var seq int
		var name, origin string
		var unique, partial int

		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return err
		}
		// Skip the indexes SQLite creates on its own for primary keys.
		if strings.HasPrefix(name, "sqlite_autoindex") && origin == "pk" {
			continue
		}
		indexes = append(indexes, indexInfo{name: name, unique: unique == 1})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, idx := range indexes {
		columns, err := e.indexColumns(ctx, idx.name)
		if err != nil {
			return err
		}
		if len(columns) > 0 {
			addIndex(t, columns, idx.unique)
		}
	}
	return nil
}

func (e *SQLiteExtractor) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	query := fmt.Sprintf("PRAGMA index_info(%q)", indexName)

	rows, err := e.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString
		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}
		if colName.Valid {
			columns = append(columns, colName.String)
		}
	}
	return columns, rows.Err()
}
