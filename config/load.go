package config

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/leftmike/nquery/datasource/bolt"
	"github.com/leftmike/nquery/datasource/memory"
	"github.com/leftmike/nquery/sql"
	"github.com/leftmike/nquery/symbols"
)

// Loaded holds the databases opened by Load; they must stay open for as long as the data
// context is used.
type Loaded struct {
	DataContext *symbols.DataContext
	databases   []*bolt.DB
}

// Load returns a data context with the variables and tables of the catalog added to dc.
func (cat *Catalog) Load(dc *symbols.DataContext) (*Loaded, error) {
	ld := &Loaded{}
	for _, v := range cat.Variables {
		typ, err := lookupType(v.Type)
		if err != nil {
			return nil, fmt.Errorf("config: variable %s: %w", v.Name, err)
		}
		val, err := sql.ConvertValue(v.Value, typ)
		if err != nil {
			return nil, fmt.Errorf("config: variable %s: %w", v.Name, err)
		}
		dc = dc.WithVariable(v.Name, typ, val)
	}

	var tbls []sql.Table
	for _, t := range cat.Tables {
		cols := make([]sql.Column, 0, len(t.Columns))
		for _, col := range t.Columns {
			typ, err := lookupType(col.Type)
			if err != nil {
				return nil, fmt.Errorf("config: table %s: column %s: %w", t.Name, col.Name, err)
			}
			cols = append(cols, sql.Column{Name: col.Name, Type: typ})
		}

		tbl := memory.NewTable(t.Name, cols)
		rows := make([][]sql.Value, 0, len(t.Rows))
		for _, row := range t.Rows {
			vals := make([]sql.Value, len(row))
			for vdx := range row {
				vals[vdx] = row[vdx]
			}
			rows = append(rows, vals)
		}
		err := tbl.Insert(rows...)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		tbls = append(tbls, tbl)
	}

	for _, db := range cat.Databases {
		bdb, err := bolt.Open(db.Path)
		if err != nil {
			ld.Close()
			return nil, fmt.Errorf("config: database %s: %w", db.Name, err)
		}
		ld.databases = append(ld.databases, bdb)

		dbTbls, err := bdb.Tables()
		if err != nil {
			ld.Close()
			return nil, fmt.Errorf("config: database %s: %w", db.Name, err)
		}
		log.WithFields(log.Fields{
			"database": db.Name,
			"path":     db.Path,
			"tables":   len(dbTbls),
		}).Info("config: attached database")
		tbls = append(tbls, dbTbls...)
	}

	ld.DataContext = dc.WithTables(tbls...)
	return ld, nil
}

func (ld *Loaded) Close() error {
	var err error
	for _, bdb := range ld.databases {
		if cerr := bdb.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	ld.databases = nil
	return err
}

// LoadFiles reads and loads each catalog file in turn.
func LoadFiles(dc *symbols.DataContext, names ...string) (*Loaded, error) {
	all := &Loaded{DataContext: dc}
	for _, name := range names {
		cat, err := ReadCatalog(name)
		if err != nil {
			all.Close()
			return nil, err
		}
		ld, err := cat.Load(all.DataContext)
		if err != nil {
			all.Close()
			return nil, err
		}
		all.DataContext = ld.DataContext
		all.databases = append(all.databases, ld.databases...)
	}
	return all, nil
}
