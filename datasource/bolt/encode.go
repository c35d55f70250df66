package bolt

import (
	"encoding/binary"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/leftmike/nquery/sql"
)

type columnSchema struct {
	Name string `msgpack:"name"`
	Type string `msgpack:"type"`
}

type tableSchema struct {
	Columns []columnSchema `msgpack:"columns"`
}

func encodeSchema(cols []sql.Column) ([]byte, error) {
	var ts tableSchema
	for _, col := range cols {
		if _, ok := col.Type.(sql.KnownType); !ok {
			return nil, fmt.Errorf("bolt: column %s: unsupported type: %s", col.Name, col.Type)
		}
		ts.Columns = append(ts.Columns, columnSchema{Name: col.Name, Type: col.Type.String()})
	}
	return msgpack.Marshal(&ts)
}

func decodeSchema(buf []byte) ([]sql.Column, error) {
	var ts tableSchema
	err := msgpack.Unmarshal(buf, &ts)
	if err != nil {
		return nil, fmt.Errorf("bolt: decoding schema: %w", err)
	}

	cols := make([]sql.Column, 0, len(ts.Columns))
	for _, cs := range ts.Columns {
		typ, ok := sql.LookupType(cs.Type)
		if !ok {
			return nil, fmt.Errorf("bolt: column %s: unknown type: %s", cs.Name, cs.Type)
		}
		cols = append(cols, sql.Column{Name: cs.Name, Type: typ})
	}
	return cols, nil
}

func encodeRow(row []sql.Value) ([]byte, error) {
	vals := make([]interface{}, len(row))
	for idx, v := range row {
		if c, ok := v.(sql.Char); ok {
			v = int32(c)
		}
		vals[idx] = v
	}
	return msgpack.Marshal(vals)
}

// decodeRow decodes a row into dest, converting each value back to the type of its
// column; msgpack does not keep the width of integers.
func decodeRow(buf []byte, cols []sql.Column, dest []sql.Value) error {
	var vals []interface{}
	err := msgpack.Unmarshal(buf, &vals)
	if err != nil {
		return fmt.Errorf("bolt: decoding row: %w", err)
	}
	if len(vals) != len(cols) {
		return fmt.Errorf("bolt: decoding row: expected %d values got %d", len(cols),
			len(vals))
	}

	for cdx, col := range cols {
		v, err := sql.ConvertValue(vals[cdx], col.Type.(sql.KnownType))
		if err != nil {
			return fmt.Errorf("bolt: column %s: %w", col.Name, err)
		}
		dest[cdx] = v
	}
	return nil
}

func encodeKey(seq uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], seq)
	return key[:]
}
