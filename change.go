package schemer

import "fmt"

// ChangeKind identifies the DDL operation a Change performed.
type ChangeKind int

const (
	CreateTable ChangeKind = iota + 1
	AddColumn
	DropColumn
	AlterColumn
)

func (k ChangeKind) String() string {
	switch k {
	case CreateTable:
		return "create table"
	case AddColumn:
		return "add column"
	case DropColumn:
		return "drop column"
	case AlterColumn:
		return "alter column"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// Change is one completed operation of a reconciliation.
type Change struct {
	Kind   ChangeKind
	Table  string
	Column string

	// Type is the declared Type for AddColumn and AlterColumn changes
	Type Type

	// Statements holds the SQL which was executed
	Statements []string
}

func (c Change) String() string {
	switch c.Kind {
	case CreateTable:
		return fmt.Sprintf("%s %s", c.Kind, c.Table)
	case DropColumn:
		return fmt.Sprintf("%s %s.%s", c.Kind, c.Table, c.Column)
	}
	return fmt.Sprintf("%s %s.%s %s", c.Kind, c.Table, c.Column, c.Type)
}

// DDLError reports the failure of a single reconciliation step. Steps which
// completed before the failure are not undone, so the table may be left
// partially reconciled.
type DDLError struct {
	Kind   ChangeKind
	Table  string
	Column string
	Err    error
}

func (e *DDLError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("failed to %s '%s': %s", e.Kind, e.Table, e.Err)
	}
	return fmt.Sprintf("failed to %s '%s' on '%s': %s", e.Kind, e.Column, e.Table, e.Err)
}

func (e *DDLError) Unwrap() error {
	return e.Err
}
