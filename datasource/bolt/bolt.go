package bolt

import (
	"context"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"

	"github.com/leftmike/nquery/sql"
)

var (
	errRowsClosed = errors.New("bolt: rows closed")

	schemasBucket = []byte("schemas")
	rowsBucket    = []byte("rows")
)

// DB is a bbolt database of tables. The schemas bucket maps a table name to its encoded
// columns; the rows bucket holds a nested bucket per table, keyed by insertion sequence.
type DB struct {
	db   *bbolt.DB
	path string
}

type table struct {
	bdb     *DB
	name    string
	columns []sql.Column
}

type rows struct {
	tbl    *table
	tx     *bbolt.Tx
	cursor *bbolt.Cursor
	first  bool
}

func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0644, nil)
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(schemasBucket)
		if err != nil {
			return err
		}
		_, err = tx.CreateBucketIfNotExists(rowsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}

	log.WithField("path", path).Debug("bolt: opened database")
	return &DB{
		db:   db,
		path: path,
	}, nil
}

func (bdb *DB) Close() error {
	return bdb.db.Close()
}

func (bdb *DB) CreateTable(name string, cols []sql.Column) error {
	buf, err := encodeSchema(cols)
	if err != nil {
		return err
	}

	return bdb.db.Update(func(tx *bbolt.Tx) error {
		schemas := tx.Bucket(schemasBucket)
		if schemas.Get([]byte(name)) != nil {
			return fmt.Errorf("bolt: table %s already exists", name)
		}
		err := schemas.Put([]byte(name), buf)
		if err != nil {
			return err
		}
		_, err = tx.Bucket(rowsBucket).CreateBucket([]byte(name))
		return err
	})
}

// Insert adds rows to a table in a single transaction. Values are converted to the types
// of the columns.
func (bdb *DB) Insert(name string, rows ...[]sql.Value) error {
	return bdb.db.Update(func(tx *bbolt.Tx) error {
		buf := tx.Bucket(schemasBucket).Get([]byte(name))
		if buf == nil {
			return fmt.Errorf("bolt: table %s not found", name)
		}
		cols, err := decodeSchema(buf)
		if err != nil {
			return err
		}

		bkt := tx.Bucket(rowsBucket).Bucket([]byte(name))
		for _, row := range rows {
			if len(row) != len(cols) {
				return fmt.Errorf("bolt: table %s: expected %d values got %d", name, len(cols),
					len(row))
			}
			vals := make([]sql.Value, len(row))
			for cdx, col := range cols {
				vals[cdx], err = sql.ConvertValue(row[cdx], col.Type.(sql.KnownType))
				if err != nil {
					return fmt.Errorf("bolt: table %s: column %s: %w", name, col.Name, err)
				}
			}

			val, err := encodeRow(vals)
			if err != nil {
				return err
			}
			seq, err := bkt.NextSequence()
			if err != nil {
				return err
			}
			err = bkt.Put(encodeKey(seq), val)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Tables returns all of the tables in the database, in order by name.
func (bdb *DB) Tables() ([]sql.Table, error) {
	var tbls []sql.Table
	err := bdb.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(schemasBucket).ForEach(func(key, val []byte) error {
			cols, err := decodeSchema(val)
			if err != nil {
				return err
			}
			tbls = append(tbls, &table{
				bdb:     bdb,
				name:    string(key),
				columns: cols,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return tbls, nil
}

func (bdb *DB) Table(name string) (sql.Table, error) {
	var tbl *table
	err := bdb.db.View(func(tx *bbolt.Tx) error {
		buf := tx.Bucket(schemasBucket).Get([]byte(name))
		if buf == nil {
			return fmt.Errorf("bolt: table %s not found", name)
		}
		cols, err := decodeSchema(buf)
		if err != nil {
			return err
		}
		tbl = &table{
			bdb:     bdb,
			name:    name,
			columns: cols,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

// OpenReads returns the number of read transactions currently open.
func (bdb *DB) OpenReads() int {
	return bdb.db.Stats().OpenTxN
}

func (tbl *table) Name() string {
	return tbl.name
}

func (tbl *table) Columns() []sql.Column {
	return tbl.columns
}

// Rows opens a read transaction which is held until the rows are closed.
func (tbl *table) Rows(ctx context.Context) (sql.Rows, error) {
	tx, err := tbl.bdb.db.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("bolt: table %s: %w", tbl.name, err)
	}
	bkt := tx.Bucket(rowsBucket).Bucket([]byte(tbl.name))
	if bkt == nil {
		tx.Rollback()
		return nil, fmt.Errorf("bolt: table %s not found", tbl.name)
	}
	return &rows{
		tbl:    tbl,
		tx:     tx,
		cursor: bkt.Cursor(),
		first:  true,
	}, nil
}

func (r *rows) Close() error {
	if r.tx == nil {
		return errRowsClosed
	}
	err := r.tx.Rollback()
	r.tx = nil
	r.cursor = nil
	return err
}

func (r *rows) Next(ctx context.Context, dest []sql.Value) error {
	if r.cursor == nil {
		return errRowsClosed
	}

	var key, val []byte
	if r.first {
		key, val = r.cursor.First()
		r.first = false
	} else {
		key, val = r.cursor.Next()
	}
	if key == nil {
		return io.EOF
	}
	return decodeRow(val, r.tbl.columns, dest)
}
