package sql_test

import (
	"testing"

	"github.com/leftmike/nquery/sql"
)

var (
	knownTypes = []sql.Type{
		sql.SByteType, sql.ByteType, sql.ShortType, sql.UShortType, sql.IntType, sql.UIntType,
		sql.LongType, sql.ULongType, sql.CharType, sql.FloatType, sql.DoubleType,
		sql.BooleanType, sql.StringType, sql.DateType, sql.ObjectType,
	}

	animalType = &sql.HostType{Name: "Animal"}
	namedType  = &sql.HostType{Name: "INamed"}
	dogType    = &sql.HostType{Name: "Dog", Base: animalType, Interfaces: []*sql.HostType{namedType}}
	moneyType  = &sql.HostType{Name: "Money", ValueType: true}
)

func init() {
	moneyType.Conversions = []*sql.ConversionMethod{
		{
			Name:     "FromDouble",
			From:     sql.DoubleType,
			To:       moneyType,
			Implicit: true,
			Func:     func(v sql.Value) (sql.Value, error) { return v, nil },
		},
		{
			Name: "ToString",
			From: moneyType,
			To:   sql.StringType,
			Func: func(v sql.Value) (sql.Value, error) { return sql.Format(v), nil },
		},
	}
}

func TestClassifyIdentity(t *testing.T) {
	types := append([]sql.Type{animalType, dogType, moneyType, sql.NullType}, knownTypes...)
	for _, typ := range types {
		c := sql.Classify(typ, typ)
		if !c.IsIdentity() || !c.IsImplicit() || !c.Exists() {
			t.Errorf("Classify(%s, %s) got %s want identity", typ, typ, c)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		src, tgt sql.Type
		kind     sql.ConversionKind
		implicit bool
	}{
		{sql.IntType, sql.DoubleType, sql.ImplicitNumericConversion, true},
		{sql.DoubleType, sql.IntType, sql.ExplicitNumericConversion, false},
		{sql.SByteType, sql.ShortType, sql.ImplicitNumericConversion, true},
		{sql.SByteType, sql.ByteType, sql.ExplicitNumericConversion, false},
		{sql.ByteType, sql.ULongType, sql.ImplicitNumericConversion, true},
		{sql.IntType, sql.UIntType, sql.ExplicitNumericConversion, false},
		{sql.UIntType, sql.LongType, sql.ImplicitNumericConversion, true},
		{sql.ULongType, sql.LongType, sql.ExplicitNumericConversion, false},
		{sql.CharType, sql.UShortType, sql.ImplicitNumericConversion, true},
		{sql.UShortType, sql.CharType, sql.ExplicitNumericConversion, false},
		{sql.FloatType, sql.DoubleType, sql.ImplicitNumericConversion, true},
		{sql.LongType, sql.FloatType, sql.ImplicitNumericConversion, true},
		{sql.IntType, sql.ObjectType, sql.BoxingConversion, true},
		{sql.DateType, sql.ObjectType, sql.BoxingConversion, true},
		{moneyType, sql.ObjectType, sql.BoxingConversion, true},
		{sql.ObjectType, sql.IntType, sql.UnboxingConversion, false},
		{sql.NullType, sql.IntType, sql.NullConversion, true},
		{sql.StringType, sql.NullType, sql.NullConversion, true},
		{sql.StringType, sql.ObjectType, sql.UpCastConversion, true},
		{sql.ObjectType, sql.StringType, sql.DownCastConversion, false},
		{dogType, animalType, sql.UpCastConversion, true},
		{dogType, namedType, sql.UpCastConversion, true},
		{animalType, dogType, sql.DownCastConversion, false},
		{sql.DoubleType, moneyType, sql.ImplicitMethodConversion, true},
		{moneyType, sql.StringType, sql.ExplicitMethodConversion, false},
		{sql.StringType, sql.IntType, sql.NoConversion, false},
		{sql.BooleanType, sql.IntType, sql.NoConversion, false},
		{sql.IntType, moneyType, sql.NoConversion, false},
		{sql.UnknownType, sql.IntType, sql.UnknownConversion, true},
		{sql.StringType, sql.UnknownType, sql.UnknownConversion, true},
	}

	for _, c := range cases {
		conv := sql.Classify(c.src, c.tgt)
		if conv.Kind() != c.kind {
			t.Errorf("Classify(%s, %s) got %s want %s", c.src, c.tgt, conv.Kind(), c.kind)
		}
		if conv.IsImplicit() != c.implicit {
			t.Errorf("Classify(%s, %s).IsImplicit() got %v want %v", c.src, c.tgt,
				conv.IsImplicit(), c.implicit)
		}
		if c.kind == sql.NoConversion && conv.Exists() {
			t.Errorf("Classify(%s, %s).Exists() got true want false", c.src, c.tgt)
		}
	}

	if conv := sql.Classify(sql.UnknownType, sql.StringType); !conv.IsUnknown() {
		t.Errorf("Classify(Unknown, String).IsUnknown() got false want true")
	}
	if conv := sql.Classify(sql.DoubleType, moneyType); len(conv.Methods()) != 1 ||
		conv.Methods()[0].Name != "FromDouble" {

		t.Errorf("Classify(Double, Money).Methods() got %v", conv.Methods())
	}
}

func TestCompareConversions(t *testing.T) {
	cases := []struct {
		src, x, y sql.Type
		cmp       int
	}{
		{sql.IntType, sql.IntType, sql.LongType, -1},
		{sql.IntType, sql.LongType, sql.IntType, 1},
		{sql.IntType, sql.LongType, sql.DoubleType, -1},
		{sql.IntType, sql.DoubleType, sql.LongType, 1},
		{sql.IntType, sql.LongType, sql.ByteType, -1},
		{sql.ByteType, sql.ShortType, sql.UShortType, -1},
		{sql.ByteType, sql.UShortType, sql.ShortType, 1},
		{sql.ByteType, sql.IntType, sql.UIntType, -1},
		{sql.NullType, sql.StringType, sql.IntType, 0},
		{sql.CharType, sql.FloatType, sql.DoubleType, -1},
	}

	for _, c := range cases {
		cmp := sql.CompareConversions(c.x, sql.Classify(c.src, c.x), c.y,
			sql.Classify(c.src, c.y))
		if cmp != c.cmp {
			t.Errorf("CompareConversions(%s -> %s, %s -> %s) got %d want %d", c.src, c.x,
				c.src, c.y, cmp, c.cmp)
		}
	}
}
