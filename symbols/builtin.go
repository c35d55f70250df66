package symbols

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/leftmike/nquery/sql"
)

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

func types(ts ...sql.Type) []sql.Type {
	return ts
}

func substring(s string, start, length int64) string {
	// Positions are one based and count characters, not bytes.
	runes := []rune(s)
	if start < 1 {
		length += start - 1
		start = 1
	}
	if length <= 0 || start > int64(len(runes)) {
		return ""
	}
	end := start - 1 + length
	if end > int64(len(runes)) {
		end = int64(len(runes))
	}
	return string(runes[start-1 : end])
}

func builtinFunctions() []*FunctionSymbol {
	return []*FunctionSymbol{
		NewFunctionSymbol("ABS", types(sql.IntType), sql.IntType,
			func(args []sql.Value) (sql.Value, error) {
				i := args[0].(int32)
				if i == math.MinInt32 {
					return nil, fmt.Errorf("sql: ABS(%d) out of range", i)
				}
				if i < 0 {
					return -i, nil
				}
				return i, nil
			}),
		NewFunctionSymbol("ABS", types(sql.LongType), sql.LongType,
			func(args []sql.Value) (sql.Value, error) {
				i := args[0].(int64)
				if i == math.MinInt64 {
					return nil, fmt.Errorf("sql: ABS(%d) out of range", i)
				}
				if i < 0 {
					return -i, nil
				}
				return i, nil
			}),
		NewFunctionSymbol("ABS", types(sql.DoubleType), sql.DoubleType,
			func(args []sql.Value) (sql.Value, error) {
				return math.Abs(args[0].(float64)), nil
			}),
		NewFunctionSymbol("LEN", types(sql.StringType), sql.IntType,
			func(args []sql.Value) (sql.Value, error) {
				return int32(utf8.RuneCountInString(args[0].(string))), nil
			}),
		NewFunctionSymbol("UPPER", types(sql.StringType), sql.StringType,
			func(args []sql.Value) (sql.Value, error) {
				return upper.String(args[0].(string)), nil
			}),
		NewFunctionSymbol("LOWER", types(sql.StringType), sql.StringType,
			func(args []sql.Value) (sql.Value, error) {
				return lower.String(args[0].(string)), nil
			}),
		NewFunctionSymbol("NORMALIZE", types(sql.StringType), sql.StringType,
			func(args []sql.Value) (sql.Value, error) {
				return norm.NFC.String(args[0].(string)), nil
			}),
		NewFunctionSymbol("TRIM", types(sql.StringType), sql.StringType,
			func(args []sql.Value) (sql.Value, error) {
				return strings.TrimSpace(args[0].(string)), nil
			}),
		NewFunctionSymbol("LTRIM", types(sql.StringType), sql.StringType,
			func(args []sql.Value) (sql.Value, error) {
				return strings.TrimLeft(args[0].(string), " \t\r\n"), nil
			}),
		NewFunctionSymbol("RTRIM", types(sql.StringType), sql.StringType,
			func(args []sql.Value) (sql.Value, error) {
				return strings.TrimRight(args[0].(string), " \t\r\n"), nil
			}),
		NewFunctionSymbol("SUBSTRING", types(sql.StringType, sql.LongType), sql.StringType,
			func(args []sql.Value) (sql.Value, error) {
				return substring(args[0].(string), args[1].(int64), math.MaxInt32), nil
			}),
		NewFunctionSymbol("SUBSTRING", types(sql.StringType, sql.LongType, sql.LongType),
			sql.StringType,
			func(args []sql.Value) (sql.Value, error) {
				return substring(args[0].(string), args[1].(int64), args[2].(int64)), nil
			}),
		NewFunctionSymbol("REPLACE", types(sql.StringType, sql.StringType, sql.StringType),
			sql.StringType,
			func(args []sql.Value) (sql.Value, error) {
				return strings.ReplaceAll(args[0].(string), args[1].(string),
					args[2].(string)), nil
			}),
		NewFunctionSymbol("ROUND", types(sql.DoubleType), sql.DoubleType,
			func(args []sql.Value) (sql.Value, error) {
				return math.Round(args[0].(float64)), nil
			}),
		NewFunctionSymbol("ROUND", types(sql.DoubleType, sql.IntType), sql.DoubleType,
			func(args []sql.Value) (sql.Value, error) {
				p := math.Pow(10, float64(args[1].(int32)))
				return math.Round(args[0].(float64)*p) / p, nil
			}),
		NewFunctionSymbol("FLOOR", types(sql.DoubleType), sql.DoubleType,
			func(args []sql.Value) (sql.Value, error) {
				return math.Floor(args[0].(float64)), nil
			}),
		NewFunctionSymbol("CEILING", types(sql.DoubleType), sql.DoubleType,
			func(args []sql.Value) (sql.Value, error) {
				return math.Ceil(args[0].(float64)), nil
			}),
		NewFunctionSymbol("POWER", types(sql.DoubleType, sql.DoubleType), sql.DoubleType,
			func(args []sql.Value) (sql.Value, error) {
				return math.Pow(args[0].(float64), args[1].(float64)), nil
			}),
		NewFunctionSymbol("SQRT", types(sql.DoubleType), sql.DoubleType,
			func(args []sql.Value) (sql.Value, error) {
				f := args[0].(float64)
				if f < 0 {
					return nil, fmt.Errorf("sql: SQRT(%v) of a negative number", f)
				}
				return math.Sqrt(f), nil
			}),
		NewFunctionSymbol("TO_STRING", types(sql.ObjectType), sql.StringType,
			func(args []sql.Value) (sql.Value, error) {
				return sql.Format(args[0]), nil
			}),
	}
}

func builtinProperties() map[sql.Type][]*PropertySymbol {
	return map[sql.Type][]*PropertySymbol{
		sql.StringType: {
			NewPropertySymbol("Length", sql.IntType,
				func(v sql.Value) (sql.Value, error) {
					return int32(utf8.RuneCountInString(v.(string))), nil
				}),
		},
		sql.DateType: {
			NewPropertySymbol("Year", sql.IntType,
				func(v sql.Value) (sql.Value, error) {
					return int32(v.(time.Time).Year()), nil
				}),
			NewPropertySymbol("Month", sql.IntType,
				func(v sql.Value) (sql.Value, error) {
					return int32(v.(time.Time).Month()), nil
				}),
			NewPropertySymbol("Day", sql.IntType,
				func(v sql.Value) (sql.Value, error) {
					return int32(v.(time.Time).Day()), nil
				}),
		},
	}
}

func builtinMethods() map[sql.Type][]*MethodSymbol {
	return map[sql.Type][]*MethodSymbol{
		sql.StringType: {
			NewMethodSymbol("Substring", types(sql.IntType), sql.StringType,
				func(target sql.Value, args []sql.Value) (sql.Value, error) {
					// Zero based, like the host string methods.
					return substring(target.(string), int64(args[0].(int32))+1,
						math.MaxInt32), nil
				}),
			NewMethodSymbol("Substring", types(sql.IntType, sql.IntType), sql.StringType,
				func(target sql.Value, args []sql.Value) (sql.Value, error) {
					return substring(target.(string), int64(args[0].(int32))+1,
						int64(args[1].(int32))), nil
				}),
			NewMethodSymbol("ToUpper", nil, sql.StringType,
				func(target sql.Value, args []sql.Value) (sql.Value, error) {
					return upper.String(target.(string)), nil
				}),
			NewMethodSymbol("ToLower", nil, sql.StringType,
				func(target sql.Value, args []sql.Value) (sql.Value, error) {
					return lower.String(target.(string)), nil
				}),
			NewMethodSymbol("Trim", nil, sql.StringType,
				func(target sql.Value, args []sql.Value) (sql.Value, error) {
					return strings.TrimSpace(target.(string)), nil
				}),
			NewMethodSymbol("Contains", types(sql.StringType), sql.BooleanType,
				func(target sql.Value, args []sql.Value) (sql.Value, error) {
					return strings.Contains(target.(string), args[0].(string)), nil
				}),
			NewMethodSymbol("StartsWith", types(sql.StringType), sql.BooleanType,
				func(target sql.Value, args []sql.Value) (sql.Value, error) {
					return strings.HasPrefix(target.(string), args[0].(string)), nil
				}),
			NewMethodSymbol("EndsWith", types(sql.StringType), sql.BooleanType,
				func(target sql.Value, args []sql.Value) (sql.Value, error) {
					return strings.HasSuffix(target.(string), args[0].(string)), nil
				}),
			NewMethodSymbol("IndexOf", types(sql.StringType), sql.IntType,
				func(target sql.Value, args []sql.Value) (sql.Value, error) {
					s := target.(string)
					idx := strings.Index(s, args[0].(string))
					if idx < 0 {
						return int32(-1), nil
					}
					return int32(utf8.RuneCountInString(s[:idx])), nil
				}),
		},
	}
}
