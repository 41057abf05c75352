package cli

import (
	"fmt"

	"github.com/adlio/schemer"
)

// The Render command prints the create table migration of declaration
// files. Without a dialect the portable create_table form is printed,
// otherwise the dialect's SQL.
type Render struct {
	Dialect string   `kong:"help='Render SQL for this dialect (postgres, mysql, sqlite or mssql).'"`
	Schema  string   `kong:"help='Database schema to qualify table names with.'"`
	Paths   []string `kong:"arg,type='path',help='Declaration files or directories of them.'"`
}

// Run the render command.
func (c *Render) Run(appCtx *Context) error {
	definitions, err := loadDefinitions(c.Paths)
	if err != nil {
		return err
	}

	if c.Dialect == "" {
		for i, def := range definitions {
			if i > 0 {
				fmt.Fprintln(appCtx.Stdout)
			}
			fmt.Fprintln(appCtx.Stdout, schemer.CreateTableMigration(def))
		}
		return nil
	}

	dialect, err := DialectFor(c.Dialect)
	if err != nil {
		return err
	}

	migrations := make([]*schemer.Migration, 0, len(definitions))
	for _, def := range definitions {
		migration, err := schemer.SQLMigration(dialect, c.Schema, def)
		if err != nil {
			return err
		}
		migrations = append(migrations, migration)
	}
	schemer.SortMigrations(migrations)

	for i, migration := range migrations {
		if i > 0 {
			fmt.Fprintln(appCtx.Stdout)
		}
		fmt.Fprintf(appCtx.Stdout, "-- %s md5:%s\n%s", migration.ID, migration.MD5(), migration.Script)
	}
	appCtx.Logger.Debug("rendered migrations", "count", len(migrations), "dialect", c.Dialect)

	return nil
}
