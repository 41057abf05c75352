package schemer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLite is the dialect for SQLite databases. Dropping and retyping columns
// relies on ALTER TABLE ... DROP COLUMN, so SQLite 3.35 or newer is
// required.
var SQLite = sqliteDialect{}

type sqliteDialect struct{}

// sqliteTempSuffix is appended to a column's name while its type is being
// converted
const sqliteTempSuffix = "__schemer_retype"

var sqliteTypes = typeMap{
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
		Blob:     "blob",
	},
	base: map[string]Type{
		"varchar":           String,
		"character varying": String,
		"integer":           Integer,
		"int":               Integer,
		"bigint":            BigInt,
		"double precision":  Float,
		"double":            Float,
		"float":             Float,
		"real":              Float,
		"numeric":           Decimal,
		"decimal":           Decimal,
		"boolean":           Boolean,
		"date":              Date,
		"timestamp":         DateTime,
		"datetime":          DateTime,
		"time":              Time,
		"text":              Text,
		"blob":              Blob,
	},
}

// ColumnType implements the Dialect interface.
func (s sqliteDialect) ColumnType(t Type) (string, error) {
	return sqliteTypes.columnType(t)
}

// SameType implements the Dialect interface.
func (s sqliteDialect) SameType(live TableColumn, declared Type) bool {
	return sqliteTypes.sameType(live, declared)
}

// TableExists implements the Dialect interface. SQLite has no schemas, so
// schemaName is ignored.
func (s sqliteDialect) TableExists(ctx context.Context, db Queryer, _, tableName string) (bool, error) {
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	count, err := queryCount(ctx, db, query, tableName)
	return count > 0, err
}

// TableColumns implements the Dialect interface using PRAGMA table_info. The
// reported DBType is the type exactly as written in the table's DDL.
func (s sqliteDialect) TableColumns(ctx context.Context, db Queryer, _, tableName string) (columns []TableColumn, err error) {
	columns = make([]TableColumn, 0)

	query := fmt.Sprintf(`PRAGMA table_info(%s)`, s.QuotedIdent(tableName))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return columns, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid, notNull, pk int
			defaultValue     sql.NullString
		)
		column := TableColumn{}
		err = rows.Scan(&cid, &column.Name, &column.DBType, &notNull, &defaultValue, &pk)
		if err != nil {
			return columns, fmt.Errorf("failed to read columns of %s: %w", tableName, err)
		}
		column.Type = sqliteTypes.normalize(column.DBType)
		columns = append(columns, column)
	}

	return columns, rows.Err()
}

// CreateTableSQL implements the Dialect interface.
func (s sqliteDialect) CreateTableSQL(quotedTableName string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s INTEGER PRIMARY KEY AUTOINCREMENT)`, quotedTableName, s.QuotedIdent(PrimaryKey))
}

// AddColumnSQL implements the Dialect interface.
func (s sqliteDialect) AddColumnSQL(quotedTableName, column, dbType string) string {
	return fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, quotedTableName, s.QuotedIdent(column), dbType)
}

// DropColumnSQL implements the Dialect interface.
func (s sqliteDialect) DropColumnSQL(quotedTableName, column string) string {
	return fmt.Sprintf(`ALTER TABLE %s DROP COLUMN %s`, quotedTableName, s.QuotedIdent(column))
}

// SetColumnTypeSQL implements the Dialect interface. SQLite cannot change a
// column's type, so the values are copied into a new column of the desired
// type which then takes the original column's name.
func (s sqliteDialect) SetColumnTypeSQL(quotedTableName, column, dbType string) []string {
	ident := s.QuotedIdent(column)
	tmp := s.QuotedIdent(column + sqliteTempSuffix)
	return []string{
		fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, quotedTableName, tmp, dbType),
		fmt.Sprintf(`UPDATE %s SET %s = CAST(%s AS %s)`, quotedTableName, tmp, ident, dbType),
		fmt.Sprintf(`ALTER TABLE %s DROP COLUMN %s`, quotedTableName, ident),
		fmt.Sprintf(`ALTER TABLE %s RENAME COLUMN %s TO %s`, quotedTableName, tmp, ident),
	}
}

// QuotedTableName returns the string value of the name of a table after it
// has been quoted for SQLite. SQLite has no schemas, so schemaName is
// ignored.
func (s sqliteDialect) QuotedTableName(_, tableName string) string {
	return s.QuotedIdent(tableName)
}

// QuotedIdent wraps the supplied string in the SQLite identifier quote
// character
func (s sqliteDialect) QuotedIdent(ident string) string {
	if ident == "" {
		return ""
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
