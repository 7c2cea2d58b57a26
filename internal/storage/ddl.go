package storage

import (
	"fmt"
	"strings"
	"sync"
)

// Logical column types; dialects map them to SQL types.
const (
	TypeText = "text"
	TypeInt  = "int"
	TypeReal = "real"
)

// ColumnDef describes one destination column.
type ColumnDef struct {
	Name       string
	Type       string
	PrimaryKey bool
}

// TableDef describes a destination table. Name may be schema-qualified
// ("public.movies_local").
type TableDef struct {
	Name    string
	Columns []ColumnDef
}

// ColumnNames returns the column names in order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// CatalogTable is the destination shape of the catalog table.
func CatalogTable(name string) TableDef {
	return TableDef{Name: name, Columns: []ColumnDef{
		{Name: "tconst", Type: TypeText, PrimaryKey: true},
		{Name: "primaryTitle", Type: TypeText},
		{Name: "startYear", Type: TypeInt},
		{Name: "runtimeMinutes", Type: TypeInt},
		{Name: "genres", Type: TypeText},
		{Name: "averageRating", Type: TypeReal},
		{Name: "numVotes", Type: TypeInt},
		{Name: "director_names", Type: TypeText},
		{Name: "cast_names_top5", Type: TypeText},
	}}
}

// FeaturesTable is the destination shape of the features table.
func FeaturesTable(name string) TableDef {
	return TableDef{Name: name, Columns: []ColumnDef{
		{Name: "tconst", Type: TypeText, PrimaryKey: true},
		{Name: "soup", Type: TypeText},
	}}
}

// Dialect renders backend-specific DDL.
type Dialect interface {
	// CreateTable returns an idempotent CREATE TABLE statement.
	CreateTable(t TableDef) (string, error)
	// ClearTable returns a statement removing every row of table.
	ClearTable(table string) string
}

var (
	dialectMu sync.RWMutex
	dialects  = map[string]Dialect{}
)

// RegisterDialect registers (or replaces) the Dialect for kind.
func RegisterDialect(kind string, d Dialect) {
	dialectMu.Lock()
	defer dialectMu.Unlock()
	dialects[kind] = d
}

// DialectFor returns the Dialect registered for kind.
func DialectFor(kind string) (Dialect, error) {
	dialectMu.RLock()
	d, ok := dialects[kind]
	dialectMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no dialect registered for storage.kind=%q", kind)
	}
	return d, nil
}

// BuildCreateTable renders
//
//	CREATE TABLE <prefix><name> (<col> <type>, ..., PRIMARY KEY (<pk>))
//
// using quote for identifiers and typeOf for column types. Dialects wrap it
// with their own existence guard.
func BuildCreateTable(t TableDef, quote func(string) string, typeOf func(ColumnDef) string) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: table %s has no columns", t.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", t.Name)
		}
		def := quote(c.Name) + " " + typeOf(c)
		if c.PrimaryKey {
			def += " NOT NULL"
			pks = append(pks, quote(c.Name))
		}
		cols = append(cols, def)
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", QuoteQualified(t.Name, quote), strings.Join(cols, ",\n  ")), nil
}

// QuoteQualified quotes each dot-separated part of name.
func QuoteQualified(name string, quote func(string) string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quote(p)
	}
	return strings.Join(parts, ".")
}
