package cli

import (
	"fmt"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/glebarez/go-sqlite"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/adlio/schemer"
)

// dialects maps database/sql driver names, and the short dialect names
// accepted by render, to their Dialect.
var dialects = map[string]schemer.Dialect{
	"postgres":  schemer.Postgres,
	"pgx":       schemer.Postgres,
	"mysql":     schemer.MySQL,
	"sqlite3":   schemer.SQLite,
	"sqlite":    schemer.SQLite,
	"sqlserver": schemer.MSSQL,
	"mssql":     schemer.MSSQL,
}

// DialectFor returns the Dialect for a driver or dialect name.
func DialectFor(name string) (schemer.Dialect, error) {
	dialect, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver '%s'", name)
	}
	return dialect, nil
}
