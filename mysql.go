package schemer

import (
	"context"
	"fmt"
	"strings"
)

// MySQL is the dialect which should be used for MySQL/MariaDB databases
var MySQL = mysqlDialect{}

type mysqlDialect struct{}

var mysqlTypes = typeMap{
	ddl: map[Type]string{
		String:   "varchar(255)",
		Integer:  "int",
		BigInt:   "bigint",
		Float:    "double",
		Decimal:  "decimal",
		Boolean:  "tinyint(1)",
		Date:     "date",
		DateTime: "datetime",
		Time:     "time",
		Text:     "text",
		Blob:     "blob",
	},
	exact: map[string]Type{
		"tinyint(1)": Boolean,
	},
	base: map[string]Type{
		"varchar":  String,
		"int":      Integer,
		"integer":  Integer,
		"bigint":   BigInt,
		"double":   Float,
		"decimal":  Decimal,
		"bool":     Boolean,
		"boolean":  Boolean,
		"date":     Date,
		"datetime": DateTime,
		"time":     Time,
		"text":     Text,
		"blob":     Blob,
	},
}

// ColumnType implements the Dialect interface.
func (m mysqlDialect) ColumnType(t Type) (string, error) {
	return mysqlTypes.columnType(t)
}

// SameType implements the Dialect interface.
func (m mysqlDialect) SameType(live TableColumn, declared Type) bool {
	return mysqlTypes.sameType(live, declared)
}

// TableExists implements the Dialect interface. Without a schema name the
// connection's current database is searched.
func (m mysqlDialect) TableExists(ctx context.Context, db Queryer, schemaName, tableName string) (bool, error) {
	query := `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
		AND table_name = ?`
	count, err := queryCount(ctx, db, query, schemaName, tableName)
	return count > 0, err
}

// TableColumns implements the Dialect interface. The reported DBType is the
// COLUMN_TYPE, e.g. "varchar(255)" or "int unsigned".
func (m mysqlDialect) TableColumns(ctx context.Context, db Queryer, schemaName, tableName string) (columns []TableColumn, err error) {
	columns = make([]TableColumn, 0)

	query := `
		SELECT column_name, column_type FROM information_schema.columns
		WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
		AND table_name = ?
		ORDER BY ordinal_position ASC`
	rows, err := db.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return columns, err
	}
	defer rows.Close()

	for rows.Next() {
		column := TableColumn{}
		if err = rows.Scan(&column.Name, &column.DBType); err != nil {
			return columns, fmt.Errorf("failed to read columns of %s: %w", tableName, err)
		}
		column.Type = mysqlTypes.normalize(column.DBType)
		columns = append(columns, column)
	}

	return columns, rows.Err()
}

// CreateTableSQL implements the Dialect interface.
func (m mysqlDialect) CreateTableSQL(quotedTableName string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s INTEGER NOT NULL AUTO_INCREMENT PRIMARY KEY)", quotedTableName, m.QuotedIdent(PrimaryKey))
}

// AddColumnSQL implements the Dialect interface.
func (m mysqlDialect) AddColumnSQL(quotedTableName, column, dbType string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quotedTableName, m.QuotedIdent(column), dbType)
}

// DropColumnSQL implements the Dialect interface.
func (m mysqlDialect) DropColumnSQL(quotedTableName, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quotedTableName, m.QuotedIdent(column))
}

// SetColumnTypeSQL implements the Dialect interface.
func (m mysqlDialect) SetColumnTypeSQL(quotedTableName, column, dbType string) []string {
	return []string{
		fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s %s", quotedTableName, m.QuotedIdent(column), dbType),
	}
}

// QuotedTableName returns the string value of the name of a table after it
// has been quoted for MySQL
func (m mysqlDialect) QuotedTableName(schemaName, tableName string) string {
	if schemaName == "" {
		return m.QuotedIdent(tableName)
	}
	return m.QuotedIdent(schemaName) + "." + m.QuotedIdent(tableName)
}

// QuotedIdent wraps the supplied string in the MySQL identifier
// quote character
func (m mysqlDialect) QuotedIdent(ident string) string {
	if ident == "" {
		return ""
	}
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}
