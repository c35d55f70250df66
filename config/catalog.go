package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl"
	"gopkg.in/yaml.v3"

	"github.com/leftmike/nquery/sql"
)

// Catalog is the contents of a catalog file: variables, literal tables, and bbolt
// databases whose tables are all attached.
type Catalog struct {
	Variables []Variable `hcl:"variable" yaml:"variables"`
	Tables    []Table    `hcl:"table" yaml:"tables"`
	Databases []Database `hcl:"database" yaml:"databases"`
}

type Variable struct {
	Name  string      `hcl:",key" yaml:"name"`
	Type  string      `hcl:"type" yaml:"type"`
	Value interface{} `hcl:"value" yaml:"value"`
}

type Column struct {
	Name string `hcl:",key" yaml:"name"`
	Type string `hcl:"type" yaml:"type"`
}

type Table struct {
	Name    string          `hcl:",key" yaml:"name"`
	Columns []Column        `hcl:"column" yaml:"columns"`
	Rows    [][]interface{} `hcl:"rows" yaml:"rows"`
}

type Database struct {
	Name string `hcl:",key" yaml:"name"`
	Path string `hcl:"path" yaml:"path"`
}

// ParseCatalog parses a catalog; the format, HCL or YAML, is chosen by the extension of
// name. Relative database paths are resolved against the directory of name.
func ParseCatalog(name string, b []byte) (*Catalog, error) {
	var cat Catalog
	switch strings.ToLower(filepath.Ext(name)) {
	case ".hcl":
		err := hcl.Decode(&cat, string(b))
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", name, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		err := dec.Decode(&cat)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("config: %s: expected .hcl, .yaml, or .yml file", name)
	}

	dir := filepath.Dir(name)
	for ddx := range cat.Databases {
		if cat.Databases[ddx].Path == "" {
			return nil, fmt.Errorf("config: %s: database %s: missing path", name,
				cat.Databases[ddx].Name)
		}
		if !filepath.IsAbs(cat.Databases[ddx].Path) {
			cat.Databases[ddx].Path = filepath.Join(dir, cat.Databases[ddx].Path)
		}
	}

	err := cat.validate()
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", name, err)
	}
	return &cat, nil
}

func ReadCatalog(name string) (*Catalog, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return ParseCatalog(name, b)
}

func lookupType(nam string) (sql.KnownType, error) {
	typ, ok := sql.LookupType(nam)
	if !ok {
		return 0, fmt.Errorf("unknown type: %s", nam)
	}
	return typ.(sql.KnownType), nil
}

func (cat *Catalog) validate() error {
	names := map[string]struct{}{}
	for _, v := range cat.Variables {
		if v.Name == "" {
			return fmt.Errorf("variable missing name")
		}
		if _, err := lookupType(v.Type); err != nil {
			return fmt.Errorf("variable %s: %w", v.Name, err)
		}
	}

	for _, tbl := range cat.Tables {
		if tbl.Name == "" {
			return fmt.Errorf("table missing name")
		}
		key := strings.ToLower(tbl.Name)
		if _, ok := names[key]; ok {
			return fmt.Errorf("table %s declared more than once", tbl.Name)
		}
		names[key] = struct{}{}

		if len(tbl.Columns) == 0 {
			return fmt.Errorf("table %s: no columns", tbl.Name)
		}
		for _, col := range tbl.Columns {
			if _, err := lookupType(col.Type); err != nil {
				return fmt.Errorf("table %s: column %s: %w", tbl.Name, col.Name, err)
			}
		}
		for rdx, row := range tbl.Rows {
			if len(row) != len(tbl.Columns) {
				return fmt.Errorf("table %s: row %d: expected %d values got %d", tbl.Name,
					rdx+1, len(tbl.Columns), len(row))
			}
		}
	}
	return nil
}
