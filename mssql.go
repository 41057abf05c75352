package schemer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// MSSQL is the dialect for MS SQL-compatible databases
var MSSQL = mssqlDialect{}

type mssqlDialect struct{}

var mssqlTypes = typeMap{
	ddl: map[Type]string{
		String:   "nvarchar(255)",
		Integer:  "int",
		BigInt:   "bigint",
		Float:    "float",
		Decimal:  "decimal",
		Boolean:  "bit",
		Date:     "date",
		DateTime: "datetime2",
		Time:     "time",
		Text:     "nvarchar(max)",
		Blob:     "varbinary(max)",
	},
	exact: map[string]Type{
		"nvarchar(max)":  Text,
		"varchar(max)":   Text,
		"varbinary(max)": Blob,
	},
	base: map[string]Type{
		"nvarchar":  String,
		"varchar":   String,
		"int":       Integer,
		"bigint":    BigInt,
		"float":     Float,
		"decimal":   Decimal,
		"numeric":   Decimal,
		"bit":       Boolean,
		"date":      Date,
		"datetime2": DateTime,
		"datetime":  DateTime,
		"time":      Time,
		"ntext":     Text,
		"text":      Text,
		"varbinary": Blob,
		"image":     Blob,
	},
}

// ColumnType implements the Dialect interface.
func (s mssqlDialect) ColumnType(t Type) (string, error) {
	return mssqlTypes.columnType(t)
}

// SameType implements the Dialect interface.
func (s mssqlDialect) SameType(live TableColumn, declared Type) bool {
	return mssqlTypes.sameType(live, declared)
}

// TableExists implements the Dialect interface. Without a schema name the
// connection's default schema is searched.
func (s mssqlDialect) TableExists(ctx context.Context, db Queryer, schemaName, tableName string) (bool, error) {
	query := `
		SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(@p1, ''), SCHEMA_NAME())
		AND TABLE_NAME = @p2`
	count, err := queryCount(ctx, db, query, schemaName, tableName)
	return count > 0, err
}

// TableColumns implements the Dialect interface. The reported DBType is the
// DATA_TYPE with its character length appended when it has one, e.g.
// "nvarchar(255)" or "nvarchar(max)".
func (s mssqlDialect) TableColumns(ctx context.Context, db Queryer, schemaName, tableName string) (columns []TableColumn, err error) {
	columns = make([]TableColumn, 0)

	query := `
		SELECT COLUMN_NAME, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(@p1, ''), SCHEMA_NAME())
		AND TABLE_NAME = @p2
		ORDER BY ORDINAL_POSITION ASC`
	rows, err := db.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return columns, err
	}
	defer rows.Close()

	for rows.Next() {
		var maxLength sql.NullInt64
		column := TableColumn{}
		if err = rows.Scan(&column.Name, &column.DBType, &maxLength); err != nil {
			return columns, fmt.Errorf("failed to read columns of %s: %w", tableName, err)
		}
		switch {
		case !maxLength.Valid:
		case maxLength.Int64 == -1:
			column.DBType += "(max)"
		default:
			column.DBType += fmt.Sprintf("(%d)", maxLength.Int64)
		}
		column.Type = mssqlTypes.normalize(column.DBType)
		columns = append(columns, column)
	}

	return columns, rows.Err()
}

// CreateTableSQL implements the Dialect interface.
func (s mssqlDialect) CreateTableSQL(quotedTableName string) string {
	return fmt.Sprintf(`
		IF OBJECT_ID(N'%s', N'U') IS NULL
			CREATE TABLE %s (%s INT IDENTITY(1,1) NOT NULL PRIMARY KEY)
	`, strings.ReplaceAll(quotedTableName, "'", "''"), quotedTableName, s.QuotedIdent(PrimaryKey))
}

// AddColumnSQL implements the Dialect interface.
func (s mssqlDialect) AddColumnSQL(quotedTableName, column, dbType string) string {
	return fmt.Sprintf(`ALTER TABLE %s ADD %s %s`, quotedTableName, s.QuotedIdent(column), dbType)
}

// DropColumnSQL implements the Dialect interface.
func (s mssqlDialect) DropColumnSQL(quotedTableName, column string) string {
	return fmt.Sprintf(`ALTER TABLE %s DROP COLUMN %s`, quotedTableName, s.QuotedIdent(column))
}

// SetColumnTypeSQL implements the Dialect interface.
func (s mssqlDialect) SetColumnTypeSQL(quotedTableName, column, dbType string) []string {
	return []string{
		fmt.Sprintf(`ALTER TABLE %s ALTER COLUMN %s %s`, quotedTableName, s.QuotedIdent(column), dbType),
	}
}

func (s mssqlDialect) QuotedTableName(schemaName, tableName string) string {
	if schemaName == "" {
		return s.QuotedIdent(tableName)
	}
	return fmt.Sprintf("%s.%s", s.QuotedIdent(schemaName), s.QuotedIdent(tableName))
}

// QuotedIdent wraps the supplied string in square brackets. Closing brackets
// are doubled, everything else is kept as is.
func (s mssqlDialect) QuotedIdent(ident string) string {
	if ident == "" {
		return ""
	}
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}
