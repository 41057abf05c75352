package schemer

import (
	"context"
	"fmt"
	"strings"
)

// Postgres is the dialect for Postgres-compatible
// databases
var Postgres = postgresDialect{}

type postgresDialect struct{}

var postgresTypes = typeMap{
	ddl: map[Type]string{
		String:   "varchar(255)",
		Integer:  "integer",
		BigInt:   "bigint",
		Float:    "double precision",
		Decimal:  "numeric",
		Boolean:  "boolean",
		Date:     "date",
		DateTime: "timestamp",
		Time:     "time",
		Text:     "text",
		Blob:     "bytea",
	},
	base: map[string]Type{
		"character varying":           String,
		"varchar":                     String,
		"integer":                     Integer,
		"int":                         Integer,
		"int4":                        Integer,
		"bigint":                      BigInt,
		"int8":                        BigInt,
		"double precision":            Float,
		"float8":                      Float,
		"numeric":                     Decimal,
		"boolean":                     Boolean,
		"bool":                        Boolean,
		"date":                        Date,
		"timestamp without time zone": DateTime,
		"timestamp":                   DateTime,
		"time without time zone":      Time,
		"time":                        Time,
		"text":                        Text,
		"bytea":                       Blob,
	},
}

// ColumnType implements the Dialect interface.
func (p postgresDialect) ColumnType(t Type) (string, error) {
	return postgresTypes.columnType(t)
}

// SameType implements the Dialect interface.
func (p postgresDialect) SameType(live TableColumn, declared Type) bool {
	return postgresTypes.sameType(live, declared)
}

// TableExists implements the Dialect interface using to_regclass, which
// resolves the table through the connection's search_path when no schema
// name is supplied.
func (p postgresDialect) TableExists(ctx context.Context, db Queryer, schemaName, tableName string) (bool, error) {
	query := `SELECT CASE WHEN to_regclass($1) IS NULL THEN 0 ELSE 1 END`
	count, err := queryCount(ctx, db, query, p.QuotedTableName(schemaName, tableName))
	return count > 0, err
}

// TableColumns implements the Dialect interface. The reported DBType is the
// output of format_type(), e.g. "character varying(255)".
func (p postgresDialect) TableColumns(ctx context.Context, db Queryer, schemaName, tableName string) (columns []TableColumn, err error) {
	columns = make([]TableColumn, 0)

	query := `
		SELECT a.attname, pg_catalog.format_type(a.atttypid, a.atttypmod)
		FROM pg_catalog.pg_attribute a
		WHERE a.attrelid = to_regclass($1)
		AND a.attnum > 0
		AND NOT a.attisdropped
		ORDER BY a.attnum ASC
	`
	rows, err := db.QueryContext(ctx, query, p.QuotedTableName(schemaName, tableName))
	if err != nil {
		return columns, err
	}
	defer rows.Close()

	for rows.Next() {
		column := TableColumn{}
		if err = rows.Scan(&column.Name, &column.DBType); err != nil {
			return columns, fmt.Errorf("failed to read columns of %s: %w", tableName, err)
		}
		column.Type = postgresTypes.normalize(column.DBType)
		columns = append(columns, column)
	}

	return columns, rows.Err()
}

// CreateTableSQL implements the Dialect interface.
func (p postgresDialect) CreateTableSQL(quotedTableName string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s SERIAL PRIMARY KEY)`, quotedTableName, p.QuotedIdent(PrimaryKey))
}

// AddColumnSQL implements the Dialect interface.
func (p postgresDialect) AddColumnSQL(quotedTableName, column, dbType string) string {
	return fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, quotedTableName, p.QuotedIdent(column), dbType)
}

// DropColumnSQL implements the Dialect interface.
func (p postgresDialect) DropColumnSQL(quotedTableName, column string) string {
	return fmt.Sprintf(`ALTER TABLE %s DROP COLUMN %s`, quotedTableName, p.QuotedIdent(column))
}

// SetColumnTypeSQL implements the Dialect interface. Existing values are
// cast to the new type.
func (p postgresDialect) SetColumnTypeSQL(quotedTableName, column, dbType string) []string {
	ident := p.QuotedIdent(column)
	return []string{
		fmt.Sprintf(`ALTER TABLE %s ALTER COLUMN %s TYPE %s USING CAST(%s AS %s)`, quotedTableName, ident, dbType, ident, dbType),
	}
}

// QuotedTableName returns the string value of the name of a table after it
// has been quoted for Postgres
func (p postgresDialect) QuotedTableName(schemaName, tableName string) string {
	if schemaName == "" {
		return p.QuotedIdent(tableName)
	}
	return p.QuotedIdent(schemaName) + "." + p.QuotedIdent(tableName)
}

// QuotedIdent wraps the supplied string in the Postgres identifier
// quote character. Embedded double-quotes are doubled, everything else is
// kept as is.
func (p postgresDialect) QuotedIdent(ident string) string {
	if ident == "" {
		return ""
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
