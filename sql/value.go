package sql

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	NullString  = "NULL"
	TrueString  = "true"
	FalseString = "false"
)

// Value is a runtime value. nil is NULL; known types use the native Go representation
// (int8 through uint64, Char, float32, float64, bool, string, time.Time) and objects and
// host values are arbitrary Go values.
type Value interface{}

type Char rune

func (c Char) String() string {
	return string(rune(c))
}

// Comparer is implemented by host values which define their own ordering.
type Comparer interface {
	Compare(v2 Value) (int, error)
}

// Row is the value of a row reference to a physical table instance.
type Row struct {
	Table   string
	Columns []string
	Values  []Value
}

func (r *Row) String() string {
	var buf strings.Builder
	buf.WriteByte('(')
	for vdx, v := range r.Values {
		if vdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(Format(v))
	}
	buf.WriteByte(')')
	return buf.String()
}

type numberKind int

const (
	notNumber numberKind = iota
	signedNumber
	unsignedNumber
	floatNumber
)

func number(v Value) (numberKind, int64, uint64, float64) {
	switch v := v.(type) {
	case int8:
		return signedNumber, int64(v), 0, 0
	case int16:
		return signedNumber, int64(v), 0, 0
	case int32:
		return signedNumber, int64(v), 0, 0
	case int64:
		return signedNumber, v, 0, 0
	case int:
		return signedNumber, int64(v), 0, 0
	case uint8:
		return unsignedNumber, 0, uint64(v), 0
	case uint16:
		return unsignedNumber, 0, uint64(v), 0
	case uint32:
		return unsignedNumber, 0, uint64(v), 0
	case uint64:
		return unsignedNumber, 0, v, 0
	case uint:
		return unsignedNumber, 0, uint64(v), 0
	case Char:
		return unsignedNumber, 0, uint64(v), 0
	case float32:
		return floatNumber, 0, 0, float64(v)
	case float64:
		return floatNumber, 0, 0, v
	}
	return notNumber, 0, 0, 0
}

func compareNumbers(k1 numberKind, i1 int64, u1 uint64, f1 float64, k2 numberKind, i2 int64,
	u2 uint64, f2 float64) int {

	switch {
	case k1 == signedNumber && k2 == signedNumber:
		return compareOrdered(i1, i2)
	case k1 == unsignedNumber && k2 == unsignedNumber:
		return compareOrdered(u1, u2)
	case k1 == signedNumber && k2 == unsignedNumber:
		if i1 < 0 {
			return -1
		}
		return compareOrdered(uint64(i1), u2)
	case k1 == unsignedNumber && k2 == signedNumber:
		if i2 < 0 {
			return 1
		}
		return compareOrdered(u1, uint64(i2))
	}

	if k1 == signedNumber {
		f1 = float64(i1)
	} else if k1 == unsignedNumber {
		f1 = float64(u1)
	}
	if k2 == signedNumber {
		f2 = float64(i2)
	} else if k2 == unsignedNumber {
		f2 = float64(u2)
	}
	if math.IsNaN(f1) || math.IsNaN(f2) {
		return compareOrdered(boolRank(!math.IsNaN(f1)), boolRank(!math.IsNaN(f2)))
	}
	return compareOrdered(f1, f2)
}

func compareOrdered[T int64 | uint64 | float64 | string | int](v1, v2 T) int {
	if v1 < v2 {
		return -1
	} else if v1 > v2 {
		return 1
	}
	return 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// valueRank orders values of different kinds: bool < number < string < date < other.
func valueRank(v Value) int {
	switch v.(type) {
	case bool:
		return 0
	case string:
		return 2
	case time.Time:
		return 3
	}
	if k, _, _, _ := number(v); k != notNumber {
		return 1
	}
	return 4
}

// Compare returns -1, 0, or 1. NULL sorts lowest.
func Compare(v1, v2 Value) int {
	if v1 == nil {
		if v2 == nil {
			return 0
		}
		return -1
	}
	if v2 == nil {
		return 1
	}

	r1 := valueRank(v1)
	r2 := valueRank(v2)
	if r1 != r2 {
		return compareOrdered(r1, r2)
	}

	switch v1 := v1.(type) {
	case bool:
		return compareOrdered(boolRank(v1), boolRank(v2.(bool)))
	case string:
		return strings.Compare(v1, v2.(string))
	case time.Time:
		return v1.Compare(v2.(time.Time))
	}

	if r1 == 1 {
		k1, i1, u1, f1 := number(v1)
		k2, i2, u2, f2 := number(v2)
		return compareNumbers(k1, i1, u1, f1, k2, i2, u2, f2)
	}

	if c, ok := v1.(Comparer); ok {
		if cmp, err := c.Compare(v2); err == nil {
			return cmp
		}
	}
	t1 := fmt.Sprintf("%T", v1)
	t2 := fmt.Sprintf("%T", v2)
	if t1 != t2 {
		return strings.Compare(t1, t2)
	}
	return strings.Compare(Format(v1), Format(v2))
}

// Equal is used for distinct, grouping, and set operations; unlike comparison operators,
// two NULLs are equal.
func Equal(v1, v2 Value) bool {
	return Compare(v1, v2) == 0
}

func Format(v Value) string {
	switch v := v.(type) {
	case nil:
		return NullString
	case bool:
		if v {
			return TrueString
		}
		return FalseString
	case string:
		return v
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprintf("%v", v)
}

// Literal formats v the way it would be written in a query.
func Literal(v Value) string {
	switch v := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case time.Time:
		return "'" + Format(v) + "'"
	}
	return Format(v)
}
