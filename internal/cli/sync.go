package cli

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/adlio/schemer"
)

// The Sync command reconciles database tables with their declaration files.
type Sync struct {
	Driver string   `kong:"required,enum='postgres,pgx,mysql,sqlite3,sqlite,sqlserver,mssql',help='Database driver.'"`
	DSN    string   `kong:"required,name='dsn',help='Data source name passed to the driver.'"`
	Schema string   `kong:"help='Database schema holding the tables.'"`
	Paths  []string `kong:"arg,type='path',help='Declaration files or directories of them.'"`
}

// Run the sync command.
func (c *Sync) Run(appCtx *Context) error {
	definitions, err := loadDefinitions(c.Paths)
	if err != nil {
		return err
	}

	dialect, err := DialectFor(c.Driver)
	if err != nil {
		return err
	}

	db, err := sql.Open(c.Driver, c.DSN)
	if err != nil {
		return fmt.Errorf("failed opening %s database: %w", c.Driver, err)
	}
	defer func() { _ = db.Close() }()

	if err = db.PingContext(appCtx.Ctx); err != nil {
		return fmt.Errorf("failed connecting to %s database: %w", c.Driver, err)
	}

	return syncDefinitions(appCtx, db, dialect, c.Schema, definitions)
}

// syncDefinitions reconciles each definition in turn, stopping at the first
// failure.
func syncDefinitions(
	appCtx *Context, db schemer.Queryer, dialect schemer.Dialect, schemaName string, definitions []*schemer.Definition,
) error {
	reconciler := schemer.NewReconciler(
		schemer.WithDialect(dialect),
		schemer.WithSchemaName(schemaName),
		schemer.WithContext(appCtx.Ctx),
		schemer.WithLogger(slog.NewLogLogger(appCtx.Logger.Handler(), slog.LevelDebug)),
	)

	for _, def := range definitions {
		tlogger := appCtx.Logger.With("table", def.Table)
		changes, err := reconciler.Reconcile(db, def, nil)
		for _, change := range changes {
			tlogger.Info("applied change", "change", change.String())
		}
		if err != nil {
			return fmt.Errorf("failed reconciling table '%s': %w", def.Table, err)
		}
		if len(changes) == 0 {
			tlogger.Info("table is up to date")
		}
	}

	return nil
}
