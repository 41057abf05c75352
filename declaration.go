package schemer

import (
	"errors"
	"fmt"
	"sort"
)

// PrimaryKey is the name of the primary key column every reconciled table
// is created with.
const PrimaryKey = "id"

// ErrInvalidEntry is returned by Declare when an entry is neither a column
// name nor a set of columns.
var ErrInvalidEntry = errors.New("invalid schema entry")

// ProtectedColumns returns the columns which are never added, altered or
// dropped based on the contents of a Definition.
func ProtectedColumns() []string {
	return []string{PrimaryKey}
}

// IsProtected reports whether the named column is one of the
// ProtectedColumns.
func IsProtected(name string) bool {
	return name == PrimaryKey
}

// Column is a single declared column.
type Column struct {
	Name string
	Type Type
}

// Columns is an ordered list of declared columns. Use it instead of a map
// when the order of the columns matters to generated migrations.
type Columns []Column

// Definition is the declared schema of a single table: an ordered mapping
// of column name to column Type. A Definition is immutable once Declare has
// returned it.
type Definition struct {
	Table string

	columns []Column
	index   map[string]int
}

// Declare builds a Definition for the table from the supplied entries. Each
// entry may be:
//
//   - a string, naming a column of type String
//   - a Column
//   - Columns
//   - a map[string]Type
//   - a map[string]string, whose values are passed through ParseType
//
// Entries are merged in order. When a column name appears more than once
// the later Type wins, but the column keeps the position of its first
// appearance. Maps are merged in sorted key order.
//
// Declare performs no I/O; pass the result to a Reconciler to converge a
// database table to it.
func Declare(table string, entries ...interface{}) (*Definition, error) {
	d := &Definition{
		Table:   table,
		columns: make([]Column, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for i, entry := range entries {
		switch e := entry.(type) {
		case string:
			d.merge(Column{Name: e, Type: String})
		case Column:
			d.merge(e)
		case Columns:
			for _, c := range e {
				d.merge(c)
			}
		case []Column:
			for _, c := range e {
				d.merge(c)
			}
		case map[string]Type:
			for _, name := range sortedKeys(e) {
				d.merge(Column{Name: name, Type: e[name]})
			}
		case map[string]string:
			for _, name := range sortedKeys(e) {
				d.merge(Column{Name: name, Type: ParseType(e[name])})
			}
		default:
			return nil, fmt.Errorf("%w: entry %d of table '%s' is a %T", ErrInvalidEntry, i, table, entry)
		}
	}
	return d, nil
}

func (d *Definition) merge(c Column) {
	if c.Type.IsZero() {
		c.Type = String
	}
	if i, exists := d.index[c.Name]; exists {
		d.columns[i].Type = c.Type
		return
	}
	d.index[c.Name] = len(d.columns)
	d.columns = append(d.columns, c)
}

// Definition returns d itself, which allows a *Definition to be passed
// anywhere a Declared is accepted. It is safe to call on a nil pointer.
func (d *Definition) Definition() *Definition {
	return d
}

// Columns returns a copy of the declared columns in declaration order.
func (d *Definition) Columns() Columns {
	if d == nil {
		return nil
	}
	columns := make(Columns, len(d.columns))
	copy(columns, d.columns)
	return columns
}

// Names returns the declared column names in declaration order.
func (d *Definition) Names() []string {
	if d == nil {
		return nil
	}
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the declared Type of the named column.
func (d *Definition) Lookup(name string) (t Type, declared bool) {
	if d == nil {
		return t, false
	}
	i, declared := d.index[name]
	if !declared {
		return t, false
	}
	return d.columns[i].Type, true
}

// Len returns the number of declared columns.
func (d *Definition) Len() int {
	if d == nil {
		return 0
	}
	return len(d.columns)
}

// Declared is anything which carries a Definition. Both *Definition and
// *Model satisfy it.
type Declared interface {
	Definition() *Definition
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
