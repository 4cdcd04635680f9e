// Package parser reads typedsql schema files.
//
// A schema file declares tables in YAML:
//
//	tables:
//	  - name: users
//	    columns:
//	      - name: id
//	        type: primary_key
//	        options: PRIMARY KEY
//	      - name: name
//	        type: string
//	        nullable: true
//	      - name: bio
//	        type: string
//	        database_type: text
//
// Column types are string, number and primary_key. database_type overrides
// the DDL type derived from the column type, and options is appended to the
// column's DDL verbatim.
//
// # Basic Usage
//
//	tables, err := parser.ParseSchema("schema.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Parse schema from a string:
//
//	tables, err := parser.ParseSchemaString(schemaContent)
package parser

import (
	"errors"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/pthm/typedsql"
)

// ErrInvalidSchema is returned when a schema file cannot be parsed or
// declares invalid tables.
var ErrInvalidSchema = errors.New("parser: invalid schema")

// File is the document structure of a schema file.
type File struct {
	Tables []TableSpec `json:"tables"`
}

// TableSpec declares one table.
type TableSpec struct {
	Name    string       `json:"name"`
	Columns []ColumnSpec `json:"columns"`
}

// ColumnSpec declares one column.
type ColumnSpec struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Nullable     bool   `json:"nullable,omitempty"`
	DatabaseType string `json:"database_type,omitempty"`
	Options      string `json:"options,omitempty"`
}

// ParseSchema reads a schema file and returns its tables in file order.
func ParseSchema(path string) ([]*typedsql.Table, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path is from trusted source
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	return ParseSchemaString(string(content))
}

// ParseSchemaString parses schema content and returns its tables in file
// order. Unknown keys, unknown column types and duplicate table names are
// errors wrapping ErrInvalidSchema.
func ParseSchemaString(content string) ([]*typedsql.Table, error) {
	var f File
	if err := yaml.UnmarshalStrict([]byte(content), &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return f.Build()
}

// Build converts the parsed document into tables.
func (f File) Build() ([]*typedsql.Table, error) {
	if len(f.Tables) == 0 {
		return nil, fmt.Errorf("%w: no tables declared", ErrInvalidSchema)
	}

	seen := make(map[string]bool, len(f.Tables))
	tables := make([]*typedsql.Table, 0, len(f.Tables))
	for i, spec := range f.Tables {
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: duplicate table %s", ErrInvalidSchema, spec.Name)
		}
		seen[spec.Name] = true

		t, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("%w: tables[%d]: %v", ErrInvalidSchema, i, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func (s TableSpec) build() (*typedsql.Table, error) {
	if len(s.Columns) == 0 {
		return nil, fmt.Errorf("table %s has no columns", s.Name)
	}
	defs := make([]typedsql.ColumnDef, len(s.Columns))
	for i, c := range s.Columns {
		typ, err := typedsql.ParseColumnType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("table %s column %s: %w", s.Name, c.Name, err)
		}
		defs[i] = typedsql.ColumnDef{
			Name: c.Name,
			Config: typedsql.ColumnConfig{
				Type:         typ,
				Nullable:     c.Nullable,
				DatabaseType: c.DatabaseType,
				Options:      c.Options,
			},
		}
	}
	return typedsql.NewTable(s.Name, defs...)
}

// FromTables converts tables back into a schema document.
func FromTables(tables []*typedsql.Table) File {
	f := File{Tables: make([]TableSpec, len(tables))}
	for i, t := range tables {
		spec := TableSpec{Name: t.Name()}
		for _, d := range t.Definitions() {
			spec.Columns = append(spec.Columns, ColumnSpec{
				Name:         d.Name,
				Type:         d.Config.Type.String(),
				Nullable:     d.Config.Nullable,
				DatabaseType: d.Config.DatabaseType,
				Options:      d.Config.Options,
			})
		}
		f.Tables[i] = spec
	}
	return f
}

// Marshal renders tables as a schema file.
func Marshal(tables []*typedsql.Table) ([]byte, error) {
	return yaml.Marshal(FromTables(tables))
}
