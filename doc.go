// Package schemer keeps database tables in step with a declared list of
// columns, for applications using database/sql.
//
// Declare captures the desired columns of a table. A Reconciler then
// compares the declaration with the live table and issues the DDL needed to
// converge: it creates the table if it's missing, drops undeclared columns,
// changes the type of columns which drifted, and adds missing ones. The
// primary key column "id" is never touched.
//
// Basic usage instructions involve declaring a schema with
// schemer.Declare() and passing it, along with your *sql.DB, to the
// .Reconcile() method of a schemer.NewReconciler(). Model combines both
// steps and tracks which columns Records may read and write.
//
// CreateTableMigration and SQLMigration render a declaration as a migration
// script without touching the database.
package schemer
