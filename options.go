package schemer

import "context"

// Option supports option chaining when creating a Reconciler.
// An Option is a function which takes a Reconciler and
// returns a Reconciler with an Option modified.
type Option func(r Reconciler) Reconciler

// WithDialect builds an Option which will set the supplied
// dialect on a Reconciler. Usage: NewReconciler(WithDialect(MySQL))
func WithDialect(dialect Dialect) Option {
	return func(r Reconciler) Reconciler {
		r.Dialect = dialect
		return r
	}
}

// WithSchemaName is an option which qualifies reconciled tables with a
// database schema (for example, WithSchemaName("public") for Postgres).
// Dialects without schemas ignore it.
func WithSchemaName(name string) Option {
	return func(r Reconciler) Reconciler {
		r.SchemaName = name
		return r
	}
}

// WithContext is an Option which sets the Reconciler to run within the
// provided Context
func WithContext(ctx context.Context) Option {
	return func(r Reconciler) Reconciler {
		r.ctx = ctx
		return r
	}
}

// Logger is the interface for logging operations of the logger.
// By default the reconciler operates silently. Providing a Logger
// enables output of the reconciler's operations.
type Logger interface {
	Print(...interface{})
}

// WithLogger builds an Option which will set the supplied Logger
// on a Reconciler. Usage: NewReconciler(WithLogger(log.Default()))
func WithLogger(logger Logger) Option {
	return func(r Reconciler) Reconciler {
		r.Logger = logger
		return r
	}
}
