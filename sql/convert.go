package sql

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type numberRange struct {
	min int64
	max uint64
}

var integerRanges = map[KnownType]numberRange{
	SByteType:  {math.MinInt8, math.MaxInt8},
	ByteType:   {0, math.MaxUint8},
	ShortType:  {math.MinInt16, math.MaxInt16},
	UShortType: {0, math.MaxUint16},
	IntType:    {math.MinInt32, math.MaxInt32},
	UIntType:   {0, math.MaxUint32},
	LongType:   {math.MinInt64, math.MaxInt64},
	ULongType:  {0, math.MaxUint64},
	CharType:   {0, math.MaxUint16},
}

func makeInteger(kt KnownType, neg bool, i int64, u uint64) Value {
	if neg {
		u = uint64(i)
	}
	switch kt {
	case SByteType:
		return int8(u)
	case ByteType:
		return uint8(u)
	case ShortType:
		return int16(u)
	case UShortType:
		return uint16(u)
	case IntType:
		return int32(u)
	case UIntType:
		return uint32(u)
	case LongType:
		return int64(u)
	case ULongType:
		return u
	case CharType:
		return Char(u)
	}
	panic(fmt.Sprintf("expected an integer type; got %s", kt))
}

func convertNumber(v Value, kt KnownType) (Value, error) {
	k, i, u, f := number(v)
	if k == notNumber {
		return nil, fmt.Errorf("sql: want number got %s", Format(v))
	}

	if kt == FloatType || kt == DoubleType {
		switch k {
		case signedNumber:
			f = float64(i)
		case unsignedNumber:
			f = float64(u)
		}
		if kt == FloatType {
			return float32(f), nil
		}
		return f, nil
	}

	rng, ok := integerRanges[kt]
	if !ok {
		return nil, fmt.Errorf("sql: unable to convert %s to %s", Format(v), kt)
	}

	var neg bool
	switch k {
	case signedNumber:
		if i < 0 {
			neg = true
		} else {
			u = uint64(i)
		}
	case floatNumber:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("sql: %s out of range for %s", Format(v), kt)
		}
		f = math.Trunc(f)
		if f < 0 {
			if f < float64(math.MinInt64) {
				return nil, fmt.Errorf("sql: %s out of range for %s", Format(v), kt)
			}
			neg = true
			i = int64(f)
		} else {
			if f >= float64(math.MaxUint64) {
				return nil, fmt.Errorf("sql: %s out of range for %s", Format(v), kt)
			}
			u = uint64(f)
		}
	}

	if (neg && i < rng.min) || (!neg && u > rng.max) {
		return nil, fmt.Errorf("sql: %s out of range for %s", Format(v), kt)
	}
	return makeInteger(kt, neg, i, u), nil
}

// Convert applies the conversion c, classified to target, to a runtime value.
func Convert(v Value, c Conversion, target Type) (Value, error) {
	if v == nil {
		return nil, nil
	}

	switch c.kind {
	case IdentityConversion, BoxingConversion, UpCastConversion, NullConversion,
		UnknownConversion:
		return v, nil
	case ImplicitNumericConversion, ExplicitNumericConversion:
		return convertNumber(v, target.(KnownType))
	case UnboxingConversion:
		if kt, ok := target.(KnownType); ok && TypeOf(v) != kt {
			return nil, fmt.Errorf("sql: unable to unbox %s to %s", Format(v), kt)
		}
		return v, nil
	case DownCastConversion:
		if target == StringType {
			if _, ok := v.(string); !ok {
				return nil, fmt.Errorf("sql: unable to cast %s to %s", Format(v), target)
			}
		}
		return v, nil
	case ImplicitMethodConversion, ExplicitMethodConversion:
		if len(c.methods) != 1 {
			return nil, fmt.Errorf("sql: ambiguous conversion to %s: %v", target, c.methods)
		}
		return c.methods[0].Func(v)
	}
	return nil, fmt.Errorf("sql: unable to convert %s to %s", Format(v), target)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("sql: expected a date: %s", s)
}

// ConvertValue converts a loosely typed value, as decoded from a catalog file or a
// storage encoding, to the representation of a known type.
func ConvertValue(v Value, kt KnownType) (Value, error) {
	if v == nil {
		return nil, nil
	}

	switch kt {
	case BooleanType:
		switch v := v.(type) {
		case bool:
			return v, nil
		case string:
			s := strings.ToLower(strings.TrimSpace(v))
			if s == "t" || s == "true" || s == "y" || s == "yes" || s == "on" || s == "1" {
				return true, nil
			} else if s == "f" || s == "false" || s == "n" || s == "no" || s == "off" ||
				s == "0" {
				return false, nil
			}
		}
		return nil, fmt.Errorf("sql: expected a boolean value: %v", v)
	case StringType:
		switch v := v.(type) {
		case string:
			return v, nil
		case []byte:
			if !utf8.Valid(v) {
				return nil, fmt.Errorf("sql: expected a valid utf8 string: %v", v)
			}
			return string(v), nil
		}
		return Format(v), nil
	case DateType:
		switch v := v.(type) {
		case time.Time:
			return v, nil
		case string:
			return ParseDate(v)
		}
		return nil, fmt.Errorf("sql: expected a date value: %v", v)
	case ObjectType:
		return v, nil
	case CharType:
		if s, ok := v.(string); ok {
			r, sz := utf8.DecodeRuneInString(s)
			if sz != len(s) || r == utf8.RuneError {
				return nil, fmt.Errorf("sql: expected a single character: %q", s)
			}
			return Char(r), nil
		}
	}

	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if kt == FloatType || kt == DoubleType {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("sql: expected a float: %s: %w", s, err)
			}
			v = f
		} else if IsUnsigned(kt) {
			u, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("sql: expected an integer: %s: %w", s, err)
			}
			v = u
		} else {
			i, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("sql: expected an integer: %s: %w", s, err)
			}
			v = i
		}
	}
	return convertNumber(v, kt)
}
