package schemer

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownField is returned when a Record is asked to read or write a
// column which the Model doesn't currently have.
var ErrUnknownField = errors.New("unknown field")

// Model ties a table to its declared schema and keeps track of which of the
// table's columns may be accessed through Records. Fields are defined and
// undefined by the Reconciler as columns are added to and dropped from the
// table, so a Record can never read or write a column which no longer
// exists.
type Model struct {
	table   string
	options []Option

	// schemaMu serializes Schema calls so concurrent reconciliations of the
	// same table don't interleave their DDL.
	schemaMu sync.Mutex

	mu  sync.RWMutex
	def *Definition
	// fields maps each defined column to the generation it was defined in.
	// Values a Record stored under an older generation are stale.
	fields map[string]uint64
	gen    uint64
}

// NewModel creates a Model for the named table. The options configure the
// Reconciler used by Schema.
func NewModel(table string, options ...Option) *Model {
	return &Model{
		table:   table,
		options: options,
		fields:  make(map[string]uint64),
	}
}

// Schema declares the Model's columns (see Declare for the accepted
// entries), replacing any previous declaration, and then reconciles the
// database table to it. The new declaration is kept even if reconciliation
// fails, in which case the table may be partially reconciled.
func (m *Model) Schema(db Queryer, entries ...interface{}) error {
	def, err := Declare(m.table, entries...)
	if err != nil {
		return err
	}

	m.schemaMu.Lock()
	defer m.schemaMu.Unlock()

	m.mu.Lock()
	m.def = def
	m.mu.Unlock()

	_, err = NewReconciler(m.options...).Reconcile(db, def, m)
	return err
}

// Table returns the name of the Model's table.
func (m *Model) Table() string {
	return m.table
}

// Definition returns the Model's current declaration, or nil if Schema has
// not been called yet.
func (m *Model) Definition() *Definition {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.def
}

// ProtectedColumns returns the columns Schema never adds, alters or drops.
func (m *Model) ProtectedColumns() []string {
	return ProtectedColumns()
}

// Define implements FieldSet. Defining a field which is already defined
// keeps the values Records hold for it.
func (m *Model) Define(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fields[name]; ok {
		return
	}
	m.gen++
	m.fields[name] = m.gen
}

// Undefine implements FieldSet.
func (m *Model) Undefine(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.fields, name)
}

// HasField reports whether the named column can currently be accessed.
func (m *Model) HasField(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.fields[name]
	return ok
}

// generation returns the generation the named field was defined in.
func (m *Model) generation(name string) (uint64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	gen, ok := m.fields[name]
	return gen, ok
}

// Fields returns the accessible column names in sorted order.
func (m *Model) Fields() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.fields))
	for name := range m.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates an empty Record of the Model.
func (m *Model) New() *Record {
	return &Record{model: m, values: make(map[string]recordValue)}
}

// Record holds the values of a single row of a Model's table. Reads and
// writes are only allowed for the Model's currently defined fields.
type Record struct {
	model  *Model
	values map[string]recordValue
}

type recordValue struct {
	gen   uint64
	value interface{}
}

// Get returns the value of the named column. Columns which are defined but
// were never set read as nil, as do columns which were dropped and added
// again since they were set.
func (r *Record) Get(column string) (interface{}, error) {
	gen, ok := r.model.generation(column)
	if !ok {
		return nil, fmt.Errorf("%w: '%s' on %s", ErrUnknownField, column, r.model.table)
	}
	stored, ok := r.values[column]
	if !ok || stored.gen != gen {
		return nil, nil
	}
	return stored.value, nil
}

// Set assigns the value of the named column.
func (r *Record) Set(column string, value interface{}) error {
	gen, ok := r.model.generation(column)
	if !ok {
		return fmt.Errorf("%w: '%s' on %s", ErrUnknownField, column, r.model.table)
	}
	r.values[column] = recordValue{gen: gen, value: value}
	return nil
}
