package schemer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnsupportedType is returned when a Dialect is asked to render a
// symbolic Type it has no DDL mapping for.
var ErrUnsupportedType = errors.New("unsupported column type")

// Type is the declared type of a column. A Type is either a symbolic tag
// (such as Integer or String) which each Dialect translates into its own
// DDL, or a raw database type string which is used verbatim.
//
// Types are comparable, so two Types can be checked with ==.
type Type struct {
	tag string
	raw string
}

// The symbolic types understood by every bundled Dialect.
var (
	String   = Tag("string")
	Integer  = Tag("integer")
	BigInt   = Tag("bigint")
	Float    = Tag("float")
	Decimal  = Tag("decimal")
	Boolean  = Tag("boolean")
	Date     = Tag("date")
	DateTime = Tag("datetime")
	Time     = Tag("time")
	Text     = Tag("text")
	Blob     = Tag("blob")
)

var knownTags = map[string]Type{}

func init() {
	for _, t := range []Type{String, Integer, BigInt, Float, Decimal, Boolean, Date, DateTime, Time, Text, Blob} {
		knownTags[t.tag] = t
	}
}

// Tag builds a symbolic Type. The name is not validated; a Dialect which
// doesn't know the tag reports ErrUnsupportedType when the column's DDL is
// generated.
func Tag(name string) Type {
	return Type{tag: strings.ToLower(strings.TrimSpace(name))}
}

// Raw builds a Type from a database-specific type string such as
// "varchar(500)" or "jsonb".
func Raw(dbType string) Type {
	return Type{raw: strings.TrimSpace(dbType)}
}

// ParseType converts the textual form of a Type back into a Type. A leading
// colon (":integer") or one of the known tag names ("integer") produces a
// symbolic Type. Anything else is a raw database type. An empty string is
// the default String type.
func ParseType(s string) Type {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return String
	case strings.HasPrefix(s, ":"):
		return Tag(s[1:])
	}
	if t, known := knownTags[strings.ToLower(s)]; known {
		return t
	}
	return Raw(s)
}

// IsRaw reports whether the Type is a raw database type.
func (t Type) IsRaw() bool {
	return t.raw != ""
}

// IsZero reports whether the Type is the zero value, which is neither a tag
// nor a raw type.
func (t Type) IsZero() bool {
	return t.tag == "" && t.raw == ""
}

// TagName returns the symbolic name of the Type, or "" for raw types.
func (t Type) TagName() string {
	return t.tag
}

// String renders symbolic types as ":tag" and raw types verbatim.
func (t Type) String() string {
	if t.IsRaw() {
		return t.raw
	}
	if t.tag == "" {
		return ""
	}
	return ":" + t.tag
}

// typeMap holds a Dialect's translation between symbolic Types and the
// database's own type names.
type typeMap struct {
	// ddl maps a symbolic Type to the type used in generated DDL
	ddl map[Type]string

	// exact maps full, lower-cased database types which need to be
	// distinguished from their base type (tinyint(1) vs tinyint)
	exact map[string]Type

	// base maps database types stripped of length, precision and modifiers
	base map[string]Type
}

func (tm typeMap) columnType(t Type) (string, error) {
	if t.IsRaw() {
		return t.raw, nil
	}
	ddl, ok := tm.ddl[t]
	if !ok {
		return "", fmt.Errorf("%w: '%s'", ErrUnsupportedType, t)
	}
	return ddl, nil
}

// normalize finds the symbolic Type matching a database-reported type. The
// zero Type is returned when nothing matches.
func (tm typeMap) normalize(dbType string) Type {
	lowered := collapseSpace(strings.ToLower(dbType))
	if t, ok := tm.exact[lowered]; ok {
		return t
	}
	if t, ok := tm.base[baseType(lowered)]; ok {
		return t
	}
	return Type{}
}

// baseType removes parenthesized length or precision arguments from a type,
// so "timestamp(6) without time zone" becomes "timestamp without time zone"
// and "varchar(255)" becomes "varchar".
func baseType(dbType string) string {
	var sb strings.Builder
	depth := 0
	for _, r := range dbType {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			sb.WriteRune(r)
		}
	}
	return collapseSpace(sb.String())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// typeArgs returns the parenthesized arguments of a type with whitespace
// removed, so "numeric(10, 2)" gives "10,2" and "text" gives "".
func typeArgs(dbType string) string {
	var sb strings.Builder
	depth := 0
	for _, r := range strings.ToLower(dbType) {
		switch {
		case r == '(':
			if depth > 0 {
				sb.WriteRune(r)
			}
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
			if depth > 0 {
				sb.WriteRune(r)
			} else {
				sb.WriteRune(',')
			}
		case depth > 0 && !unicode.IsSpace(r):
			sb.WriteRune(r)
		}
	}
	return strings.TrimSuffix(sb.String(), ",")
}

// sameType reports whether a live column already has the declared Type.
// Symbolic types are compared against the normalized tag of the column.
// Raw types match the database-reported type when the spelling is the same,
// or when both normalize to the same tag with the same arguments, so
// "varchar(500)" matches Postgres' "character varying(500)".
func (tm typeMap) sameType(live TableColumn, declared Type) bool {
	if !declared.IsRaw() {
		return live.Type == declared
	}
	if strings.EqualFold(collapseSpace(live.DBType), collapseSpace(declared.raw)) {
		return true
	}
	normalized := tm.normalize(declared.raw)
	if normalized.IsZero() || normalized != tm.normalize(live.DBType) {
		return false
	}
	return typeArgs(declared.raw) == typeArgs(live.DBType)
}
