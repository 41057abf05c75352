package schemer

import "context"

// Dialect defines the interface for a database dialect. Dialects introspect
// live tables, translate Types into DDL types, and produce the statements
// the Reconciler executes one at a time.
type Dialect interface {
	QuotedTableName(schemaName, tableName string) string
	QuotedIdent(ident string) string

	// ColumnType returns the DDL type for a Type. Raw types are returned
	// verbatim, unknown tags produce an ErrUnsupportedType error.
	ColumnType(t Type) (string, error)

	// SameType reports whether a live column already has the declared Type,
	// in which case the Reconciler leaves it alone.
	SameType(live TableColumn, declared Type) bool

	TableExists(ctx context.Context, db Queryer, schemaName, tableName string) (bool, error)
	TableColumns(ctx context.Context, db Queryer, schemaName, tableName string) ([]TableColumn, error)

	CreateTableSQL(quotedTableName string) string
	AddColumnSQL(quotedTableName, column, dbType string) string
	DropColumnSQL(quotedTableName, column string) string
	SetColumnTypeSQL(quotedTableName, column, dbType string) []string
}

// TableColumn is a column of a live database table as reported by
// Dialect.TableColumns.
type TableColumn struct {
	Name string

	// Type is the symbolic Type the Dialect maps DBType to, or the zero Type
	// when the database type has no symbolic equivalent.
	Type Type

	// DBType is the column type exactly as the database reports it
	DBType string
}
