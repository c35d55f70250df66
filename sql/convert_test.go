package sql_test

import (
	"testing"
	"time"

	"github.com/leftmike/nquery/sql"
)

func TestConvert(t *testing.T) {
	cases := []struct {
		v    sql.Value
		src  sql.Type
		tgt  sql.Type
		r    sql.Value
		fail bool
	}{
		{v: int32(12), src: sql.IntType, tgt: sql.DoubleType, r: 12.0},
		{v: int32(12), src: sql.IntType, tgt: sql.LongType, r: int64(12)},
		{v: 12.9, src: sql.DoubleType, tgt: sql.IntType, r: int32(12)},
		{v: -12.9, src: sql.DoubleType, tgt: sql.IntType, r: int32(-12)},
		{v: int32(300), src: sql.IntType, tgt: sql.ByteType, fail: true},
		{v: int32(-1), src: sql.IntType, tgt: sql.UIntType, fail: true},
		{v: int64(-128), src: sql.LongType, tgt: sql.SByteType, r: int8(-128)},
		{v: uint64(1) << 63, src: sql.ULongType, tgt: sql.LongType, fail: true},
		{v: sql.Char('A'), src: sql.CharType, tgt: sql.IntType, r: int32(65)},
		{v: int32(66), src: sql.IntType, tgt: sql.CharType, r: sql.Char('B')},
		{v: 0.5, src: sql.DoubleType, tgt: sql.FloatType, r: float32(0.5)},
		{v: nil, src: sql.IntType, tgt: sql.DoubleType, r: nil},
		{v: int32(7), src: sql.IntType, tgt: sql.ObjectType, r: int32(7)},
		{v: int32(7), src: sql.ObjectType, tgt: sql.IntType, r: int32(7)},
		{v: "seven", src: sql.ObjectType, tgt: sql.IntType, fail: true},
		{v: "seven", src: sql.ObjectType, tgt: sql.StringType, r: "seven"},
		{v: int64(7), src: sql.ObjectType, tgt: sql.StringType, fail: true},
		{v: 2.5, src: sql.DoubleType, tgt: moneyType, r: 2.5},
		{v: 2.5, src: moneyType, tgt: sql.StringType, r: "2.5"},
		{v: "x", src: sql.StringType, tgt: sql.IntType, fail: true},
	}

	for _, c := range cases {
		r, err := sql.Convert(c.v, sql.Classify(c.src, c.tgt), c.tgt)
		if c.fail {
			if err == nil {
				t.Errorf("Convert(%v, %s, %s) did not fail", c.v, c.src, c.tgt)
			}
		} else if err != nil {
			t.Errorf("Convert(%v, %s, %s) failed with %s", c.v, c.src, c.tgt, err)
		} else if r != c.r {
			t.Errorf("Convert(%v, %s, %s) got %#v want %#v", c.v, c.src, c.tgt, r, c.r)
		}
	}
}

func TestConvertValue(t *testing.T) {
	cases := []struct {
		v    sql.Value
		kt   sql.KnownType
		r    sql.Value
		fail bool
	}{
		{v: 12, kt: sql.IntType, r: int32(12)},
		{v: int64(12), kt: sql.ShortType, r: int16(12)},
		{v: "12", kt: sql.ULongType, r: uint64(12)},
		{v: " -12 ", kt: sql.LongType, r: int64(-12)},
		{v: "1.5", kt: sql.DoubleType, r: 1.5},
		{v: 3, kt: sql.DoubleType, r: 3.0},
		{v: "abc", kt: sql.IntType, fail: true},
		{v: "yes", kt: sql.BooleanType, r: true},
		{v: "off", kt: sql.BooleanType, r: false},
		{v: "maybe", kt: sql.BooleanType, fail: true},
		{v: 12, kt: sql.StringType, r: "12"},
		{v: []byte("abc"), kt: sql.StringType, r: "abc"},
		{v: "2020-03-04", kt: sql.DateType, r: time.Date(2020, 3, 4, 0, 0, 0, 0, time.UTC)},
		{v: "March", kt: sql.DateType, fail: true},
		{v: "z", kt: sql.CharType, r: sql.Char('z')},
		{v: "zz", kt: sql.CharType, fail: true},
		{v: nil, kt: sql.IntType, r: nil},
		{v: 1000, kt: sql.SByteType, fail: true},
	}

	for _, c := range cases {
		r, err := sql.ConvertValue(c.v, c.kt)
		if c.fail {
			if err == nil {
				t.Errorf("ConvertValue(%v, %s) did not fail", c.v, c.kt)
			}
		} else if err != nil {
			t.Errorf("ConvertValue(%v, %s) failed with %s", c.v, c.kt, err)
		} else if sql.Compare(r, c.r) != 0 || sql.TypeOf(r) != sql.TypeOf(c.r) {
			t.Errorf("ConvertValue(%v, %s) got %#v want %#v", c.v, c.kt, r, c.r)
		}
	}
}
