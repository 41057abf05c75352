package schemer

import (
	"context"
	"fmt"
	"time"
)

// Reconciler converges live database tables to their Definitions. It is
// customized to a particular dialect and (optionally) database schema.
//
// A Reconciler keeps the state of its current run, so it must not be used
// by more than one goroutine at a time. Reconciling the same table from
// several processes at once is not supported; run reconciliation from a
// single startup or deployment step.
type Reconciler struct {
	SchemaName string
	Dialect    Dialect
	Logger     Logger

	ctx context.Context

	// err holds the last error which occurred at any step of the
	// reconciliation process
	err error

	// changes holds the operations completed by the current run
	changes []Change
}

// FieldSet receives the column names which become readable and writable
// (Define) or stop being so (Undefine) as a table is reconciled. *Model
// implements it.
type FieldSet interface {
	Define(name string)
	Undefine(name string)
}

type noFields struct{}

func (noFields) Define(string)   {}
func (noFields) Undefine(string) {}

// NewReconciler creates a new Reconciler with the supplied
// options
func NewReconciler(options ...Option) *Reconciler {
	r := Reconciler{
		Dialect: Postgres,
		ctx:     context.Background(),
	}
	for _, opt := range options {
		r = opt(r)
	}
	return &r
}

// Reconcile converges the table named by the Definition to the declared
// columns:
//
//  1. The table is created, holding only the primary key, if it doesn't
//     exist.
//  2. Each live column which isn't protected is dropped when it isn't
//     declared, or has its type changed when the declared type differs.
//  3. The live columns are read again and every declared column which is
//     still missing is added.
//
// Each operation is executed on its own as soon as it's determined. The
// first failure stops the run and is returned as a *DDLError (or a wrapped
// introspection error) alongside the changes which had already completed.
// Nothing is rolled back.
//
// fields, which may be nil, is told about every column which gains or loses
// its accessors.
func (r *Reconciler) Reconcile(db Queryer, def *Definition, fields FieldSet) ([]Change, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	if def == nil {
		return nil, ErrNilDefinition
	}
	if fields == nil {
		fields = noFields{}
	}

	r.err = nil
	r.changes = make([]Change, 0)
	r.createTable(db, def, fields)
	r.dropOrAlterColumns(db, def, fields)
	r.addColumns(db, def, fields)
	return r.changes, r.err
}

// QuotedTableName returns the dialect-quoted fully-qualified name for the
// supplied table
func (r *Reconciler) QuotedTableName(tableName string) string {
	return r.Dialect.QuotedTableName(r.SchemaName, tableName)
}

func (r *Reconciler) createTable(db Queryer, def *Definition, fields FieldSet) {
	if r.err != nil {
		// Abort if Reconciler already had an error
		return
	}

	exists, err := r.Dialect.TableExists(r.context(), db, r.SchemaName, def.Table)
	if err != nil {
		r.err = fmt.Errorf("failed to check whether table '%s' exists: %w", def.Table, err)
		return
	}
	if !exists {
		r.exec(db, Change{
			Kind:       CreateTable,
			Table:      def.Table,
			Statements: []string{r.Dialect.CreateTableSQL(r.QuotedTableName(def.Table))},
		})
	}
	if r.err == nil {
		fields.Define(PrimaryKey)
	}
}

func (r *Reconciler) dropOrAlterColumns(db Queryer, def *Definition, fields FieldSet) {
	if r.err != nil {
		// Abort if Reconciler already had an error
		return
	}

	for _, column := range r.tableColumns(db, def) {
		if r.err != nil {
			return
		}
		if IsProtected(column.Name) {
			continue
		}

		declared, isDeclared := def.Lookup(column.Name)
		switch {
		case !isDeclared:
			r.exec(db, Change{
				Kind:       DropColumn,
				Table:      def.Table,
				Column:     column.Name,
				Statements: []string{r.Dialect.DropColumnSQL(r.QuotedTableName(def.Table), column.Name)},
			})
			if r.err == nil {
				fields.Undefine(column.Name)
			}

		case !r.Dialect.SameType(column, declared):
			dbType, err := r.Dialect.ColumnType(declared)
			if err != nil {
				r.err = &DDLError{Kind: AlterColumn, Table: def.Table, Column: column.Name, Err: err}
				return
			}
			r.exec(db, Change{
				Kind:       AlterColumn,
				Table:      def.Table,
				Column:     column.Name,
				Type:       declared,
				Statements: r.Dialect.SetColumnTypeSQL(r.QuotedTableName(def.Table), column.Name, dbType),
			})
			if r.err == nil {
				fields.Define(column.Name)
			}

		default:
			fields.Define(column.Name)
		}
	}
}

func (r *Reconciler) addColumns(db Queryer, def *Definition, fields FieldSet) {
	if r.err != nil {
		// Abort if Reconciler already had an error
		return
	}

	// Read the columns again rather than reusing the ones seen before drops
	// and type changes, so the set of missing columns reflects the table as
	// it is now.
	live := r.tableColumns(db, def)
	present := make(map[string]bool, len(live))
	for _, column := range live {
		present[column.Name] = true
	}

	for _, column := range def.columns {
		if r.err != nil {
			return
		}
		if IsProtected(column.Name) || present[column.Name] {
			continue
		}

		dbType, err := r.Dialect.ColumnType(column.Type)
		if err != nil {
			r.err = &DDLError{Kind: AddColumn, Table: def.Table, Column: column.Name, Err: err}
			return
		}
		r.exec(db, Change{
			Kind:       AddColumn,
			Table:      def.Table,
			Column:     column.Name,
			Type:       column.Type,
			Statements: []string{r.Dialect.AddColumnSQL(r.QuotedTableName(def.Table), column.Name, dbType)},
		})
		if r.err == nil {
			fields.Define(column.Name)
		}
	}
}

func (r *Reconciler) tableColumns(db Queryer, def *Definition) []TableColumn {
	if r.err != nil {
		return nil
	}
	columns, err := r.Dialect.TableColumns(r.context(), db, r.SchemaName, def.Table)
	if err != nil {
		r.err = fmt.Errorf("failed to read columns of table '%s': %w", def.Table, err)
		return nil
	}
	return columns
}

// exec runs each of the change's statements in turn and records the change
// once they've all succeeded.
func (r *Reconciler) exec(db Queryer, change Change) {
	if r.err != nil {
		// Abort if Reconciler already had an error
		return
	}

	startedAt := time.Now()
	for _, statement := range change.Statements {
		if _, err := db.ExecContext(r.context(), statement); err != nil {
			r.err = &DDLError{Kind: change.Kind, Table: change.Table, Column: change.Column, Err: err}
			return
		}
	}
	r.changes = append(r.changes, change)
	r.log(fmt.Sprintf("Applied '%s' in %s", change, time.Since(startedAt)))
}

func (r *Reconciler) context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

func (r *Reconciler) log(msgs ...interface{}) {
	if r.Logger != nil {
		r.Logger.Print(msgs...)
	}
}
