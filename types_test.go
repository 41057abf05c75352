package schemer

import (
	"errors"
	"testing"
)

func TestParseType(t *testing.T) {
	table := map[string]Type{
		"":              String,
		"integer":       Integer,
		"INTEGER":       Integer,
		":integer":      Integer,
		":datetime":     DateTime,
		":geometry":     Tag("geometry"),
		"varchar(500)":  Raw("varchar(500)"),
		" jsonb ":       Raw("jsonb"),
		"numeric(10,2)": Raw("numeric(10,2)"),
	}
	for input, expected := range table {
		actual := ParseType(input)
		if actual != expected {
			t.Errorf("Expected ParseType(%q) to be %v, got %v", input, expected, actual)
		}
	}
}

func TestTypeString(t *testing.T) {
	table := map[Type]string{
		Integer:             ":integer",
		String:              ":string",
		Tag("Geometry"):     ":geometry",
		Raw("varchar(500)"): "varchar(500)",
		{}:                  "",
	}
	for input, expected := range table {
		if input.String() != expected {
			t.Errorf("Expected %s, got %s", expected, input.String())
		}
	}
}

func TestTypeRoundTrip(t *testing.T) {
	for _, typ := range []Type{String, Integer, Tag("geometry"), Raw("varchar(500)")} {
		if ParseType(typ.String()) != typ {
			t.Errorf("Expected %v to survive String() and ParseType()", typ)
		}
	}
}

func TestBaseType(t *testing.T) {
	table := map[string]string{
		"varchar(255)":                   "varchar",
		"timestamp(6) without time zone": "timestamp without time zone",
		"numeric(10,2)":                  "numeric",
		"int unsigned":                   "int unsigned",
		"character  varying(40)":         "character varying",
	}
	for input, expected := range table {
		if actual := baseType(input); actual != expected {
			t.Errorf("Expected baseType(%q) to be %q, got %q", input, expected, actual)
		}
	}
}

func TestSameType(t *testing.T) {
	tests := []struct {
		tm       typeMap
		live     TableColumn
		declared Type
		expected bool
	}{
		{postgresTypes, TableColumn{Type: Integer, DBType: "integer"}, Integer, true},
		{postgresTypes, TableColumn{Type: Integer, DBType: "integer"}, BigInt, false},
		{postgresTypes, TableColumn{DBType: "jsonb"}, Raw("JSONB"), true},
		{postgresTypes, TableColumn{DBType: "json"}, Raw("jsonb"), false},
		{postgresTypes, TableColumn{Type: String, DBType: "character varying(500)"}, Raw("character varying(500)"), true},
		{postgresTypes, TableColumn{Type: String, DBType: "character varying(500)"}, Raw("varchar(500)"), true},
		{postgresTypes, TableColumn{Type: String, DBType: "character varying(255)"}, Raw("varchar(500)"), false},
		{postgresTypes, TableColumn{Type: String, DBType: "character varying(500)"}, Raw("varchar"), false},
		{postgresTypes, TableColumn{Type: Decimal, DBType: "numeric(10,2)"}, Raw("NUMERIC(10, 2)"), true},
		{postgresTypes, TableColumn{Type: DateTime, DBType: "timestamp(3) without time zone"}, Raw("timestamp(3)"), true},
		{postgresTypes, TableColumn{Type: Text, DBType: "text"}, Raw("varchar"), false},
		{mysqlTypes, TableColumn{Type: Integer, DBType: "int"}, Raw("integer"), true},
		{mysqlTypes, TableColumn{Type: Boolean, DBType: "tinyint(1)"}, Raw("tinyint(4)"), false},
		{mssqlTypes, TableColumn{Type: Text, DBType: "nvarchar(max)"}, Raw("NVARCHAR(MAX)"), true},
		{postgresTypes, TableColumn{DBType: "geometry"}, Tag("geometry"), false},
	}
	for _, test := range tests {
		if actual := test.tm.sameType(test.live, test.declared); actual != test.expected {
			t.Errorf("Expected sameType(%+v, %v) to be %t", test.live, test.declared, test.expected)
		}
	}
}

func TestTypeArgs(t *testing.T) {
	table := map[string]string{
		"text":                           "",
		"varchar(500)":                   "500",
		"numeric(10, 2)":                 "10,2",
		"timestamp(3) without time zone": "3",
		"NVARCHAR(MAX)":                  "max",
	}
	for input, expected := range table {
		if actual := typeArgs(input); actual != expected {
			t.Errorf("Expected typeArgs(%q) to be %q, got %q", input, expected, actual)
		}
	}
}

func TestColumnTypeForEachDialect(t *testing.T) {
	withEachDialect(t, func(t *testing.T, d Dialect) {
		for _, typ := range []Type{String, Integer, BigInt, Float, Decimal, Boolean, Date, DateTime, Time, Text, Blob} {
			dbType, err := d.ColumnType(typ)
			if err != nil {
				t.Errorf("Expected %v to be supported: %s", typ, err)
			}
			if dbType == "" {
				t.Errorf("Expected a DDL type for %v", typ)
			}
		}

		dbType, err := d.ColumnType(Raw("custom_type(3)"))
		if err != nil || dbType != "custom_type(3)" {
			t.Errorf("Expected raw types to be used verbatim. Got '%s', %v", dbType, err)
		}

		_, err = d.ColumnType(Tag("geometry"))
		if !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Expected ErrUnsupportedType for an unknown tag. Got %v", err)
		}
	})
}

// TestColumnTypesNormalize ensures that the DDL type each dialect generates
// for a symbolic Type maps back to the same Type, which is what keeps
// reconciliation idempotent.
func TestColumnTypesNormalize(t *testing.T) {
	maps := map[string]typeMap{
		"postgres": postgresTypes,
		"mysql":    mysqlTypes,
		"sqlite":   sqliteTypes,
		"mssql":    mssqlTypes,
	}
	for name, tm := range maps {
		t.Run(name, func(t *testing.T) {
			for typ, ddl := range tm.ddl {
				if actual := tm.normalize(ddl); actual != typ {
					t.Errorf("Expected '%s' to normalize to %v, got %v", ddl, typ, actual)
				}
			}
		})
	}
}

func TestReportedTypesNormalize(t *testing.T) {
	tests := []struct {
		tm       typeMap
		dbType   string
		expected Type
	}{
		{postgresTypes, "character varying(255)", String},
		{postgresTypes, "timestamp without time zone", DateTime},
		{postgresTypes, "timestamp(3) without time zone", DateTime},
		{postgresTypes, "time without time zone", Time},
		{postgresTypes, "double precision", Float},
		{postgresTypes, "jsonb", Type{}},
		{mysqlTypes, "int(11)", Integer},
		{mysqlTypes, "tinyint(1)", Boolean},
		{mysqlTypes, "tinyint(4)", Type{}},
		{mysqlTypes, "bigint(20)", BigInt},
		{mysqlTypes, "decimal(10,0)", Decimal},
		{sqliteTypes, "INTEGER", Integer},
		{sqliteTypes, "VARCHAR(40)", String},
		{sqliteTypes, "DATETIME", DateTime},
		{mssqlTypes, "nvarchar(255)", String},
		{mssqlTypes, "nvarchar(max)", Text},
		{mssqlTypes, "varbinary(max)", Blob},
		{mssqlTypes, "datetime2", DateTime},
	}
	for _, test := range tests {
		if actual := test.tm.normalize(test.dbType); actual != test.expected {
			t.Errorf("Expected '%s' to normalize to %v, got %v", test.dbType, test.expected, actual)
		}
	}
}
