package schemer

import (
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
)

// Migration is a rendered, yet-to-be-run change to the schema
type Migration struct {
	ID     string
	Script string
}

// MD5 computes the MD5 hash of the Script for this migration so that it
// can be compared with other renderings of it.
func (m *Migration) MD5() string {
	return fmt.Sprintf("%x", md5.Sum([]byte(m.Script)))
}

// SortMigrations sorts a slice of migrations by their IDs
func SortMigrations(migrations []*Migration) {
	// Adjust execution order so that we apply by ID
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].ID < migrations[j].ID
	})
}

// CreateTableMigration renders the "create table" migration for a
// declaration:
//
//	create_table :people do |t|
//	  add_column :age, :integer
//	  add_column :name, :string
//	end
//
// There is one add_column line per declared column, in declaration order,
// except for the protected columns. Symbolic types are written as :tag and
// raw types verbatim. An empty string is returned when d is nil or carries
// no Definition.
func CreateTableMigration(d Declared) string {
	if d == nil {
		return ""
	}
	def := d.Definition()
	if def == nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "create_table :%s do |t|\n", def.Table)
	for _, column := range def.columns {
		if IsProtected(column.Name) {
			continue
		}
		fmt.Fprintf(&sb, "  add_column :%s, %s\n", column.Name, column.Type)
	}
	sb.WriteString("end")
	return sb.String()
}

// SQLMigration renders a declaration as the dialect's SQL: a CREATE TABLE
// holding the primary key, followed by one ADD COLUMN statement per
// declared column. The Migration's ID is "create_" followed by the table
// name. A nil Migration is returned when d carries no Definition.
func SQLMigration(dialect Dialect, schemaName string, d Declared) (*Migration, error) {
	if d == nil || d.Definition() == nil {
		return nil, nil
	}
	def := d.Definition()
	table := dialect.QuotedTableName(schemaName, def.Table)

	statements := []string{strings.TrimSpace(dialect.CreateTableSQL(table))}
	for _, column := range def.columns {
		if IsProtected(column.Name) {
			continue
		}
		dbType, err := dialect.ColumnType(column.Type)
		if err != nil {
			return nil, fmt.Errorf("failed to render column '%s' of '%s': %w", column.Name, def.Table, err)
		}
		statements = append(statements, dialect.AddColumnSQL(table, column.Name, dbType))
	}

	return &Migration{
		ID:     "create_" + def.Table,
		Script: strings.Join(statements, ";\n") + ";\n",
	}, nil
}
