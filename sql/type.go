package sql

import (
	"fmt"
	"strings"
	"time"
)

// Type is one of KnownType, *HostType, UnknownType, or NullType.
type Type interface {
	fmt.Stringer
	isType()
}

type KnownType int

const (
	SByteType KnownType = iota
	ByteType
	ShortType
	UShortType
	IntType
	UIntType
	LongType
	ULongType
	CharType
	FloatType
	DoubleType
	BooleanType
	StringType
	DateType
	ObjectType
)

var knownTypeNames = [...]string{
	SByteType:   "SByte",
	ByteType:    "Byte",
	ShortType:   "Int16",
	UShortType:  "UInt16",
	IntType:     "Int32",
	UIntType:    "UInt32",
	LongType:    "Int64",
	ULongType:   "UInt64",
	CharType:    "Char",
	FloatType:   "Single",
	DoubleType:  "Double",
	BooleanType: "Boolean",
	StringType:  "String",
	DateType:    "DateTime",
	ObjectType:  "Object",
}

func (kt KnownType) String() string {
	return knownTypeNames[kt]
}

func (KnownType) isType() {}

type specialType string

func (st specialType) String() string {
	return string(st)
}

func (specialType) isType() {}

const (
	// UnknownType is the type of expressions which failed to bind.
	UnknownType specialType = "Unknown"
	// NullType is the type of the NULL literal.
	NullType specialType = "Null"
)

// HostType is an opaque type supplied by the embedder. Conversions and operators are
// registered explicitly rather than discovered.
type HostType struct {
	Name        string
	ValueType   bool
	Base        *HostType
	Interfaces  []*HostType
	Conversions []*ConversionMethod
	Operators   []*OperatorMethod
}

func (ht *HostType) String() string {
	return ht.Name
}

func (*HostType) isType() {}

// IsAssignableFrom returns true if src is ht or ht is an ancestor or interface of src.
func (ht *HostType) IsAssignableFrom(src *HostType) bool {
	for t := src; t != nil; t = t.Base {
		if t == ht {
			return true
		}
		for _, it := range t.Interfaces {
			if it == ht || ht.IsAssignableFrom(it) {
				return true
			}
		}
	}
	return false
}

// ConversionMethod converts a value of type From to type To.
type ConversionMethod struct {
	Name     string
	From     Type
	To       Type
	Implicit bool
	Func     func(v Value) (Value, error)
}

func (cm *ConversionMethod) String() string {
	return fmt.Sprintf("%s(%s) %s", cm.Name, cm.From, cm.To)
}

func IsUnknown(t Type) bool {
	return t == UnknownType
}

func IsNull(t Type) bool {
	return t == NullType
}

func IsNumeric(t Type) bool {
	kt, ok := t.(KnownType)
	return ok && kt <= DoubleType
}

func IsInteger(t Type) bool {
	kt, ok := t.(KnownType)
	return ok && kt <= ULongType
}

func IsSigned(t Type) bool {
	switch t {
	case SByteType, ShortType, IntType, LongType, FloatType, DoubleType:
		return true
	}
	return false
}

func IsUnsigned(t Type) bool {
	switch t {
	case ByteType, UShortType, UIntType, ULongType, CharType:
		return true
	}
	return false
}

// IsValueType returns true for types whose values are not references: every known type
// except String and Object, and host types marked as value types.
func IsValueType(t Type) bool {
	switch t := t.(type) {
	case KnownType:
		return t != StringType && t != ObjectType
	case *HostType:
		return t.ValueType
	}
	return false
}

var typeNames = map[string]Type{
	"sbyte":     SByteType,
	"tinyint":   SByteType,
	"byte":      ByteType,
	"short":     ShortType,
	"smallint":  ShortType,
	"int16":     ShortType,
	"ushort":    UShortType,
	"uint16":    UShortType,
	"int":       IntType,
	"integer":   IntType,
	"int32":     IntType,
	"uint":      UIntType,
	"uint32":    UIntType,
	"long":      LongType,
	"bigint":    LongType,
	"int64":     LongType,
	"ulong":     ULongType,
	"uint64":    ULongType,
	"char":      CharType,
	"float":     FloatType,
	"real":      FloatType,
	"single":    FloatType,
	"double":    DoubleType,
	"bool":      BooleanType,
	"boolean":   BooleanType,
	"string":    StringType,
	"varchar":   StringType,
	"text":      StringType,
	"date":      DateType,
	"datetime":  DateType,
	"timestamp": DateType,
	"object":    ObjectType,
}

// LookupType maps a type name, as written in CAST or a catalog file, to a known type.
func LookupType(nam string) (Type, bool) {
	t, ok := typeNames[strings.ToLower(nam)]
	return t, ok
}

// TypeOf returns the known type of a runtime value.
func TypeOf(v Value) Type {
	switch v.(type) {
	case nil:
		return NullType
	case int8:
		return SByteType
	case uint8:
		return ByteType
	case int16:
		return ShortType
	case uint16:
		return UShortType
	case int32:
		return IntType
	case uint32:
		return UIntType
	case int64:
		return LongType
	case uint64:
		return ULongType
	case Char:
		return CharType
	case float32:
		return FloatType
	case float64:
		return DoubleType
	case bool:
		return BooleanType
	case string:
		return StringType
	case time.Time:
		return DateType
	}
	return ObjectType
}
