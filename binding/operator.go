package binding

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/leftmike/nquery/sql"
)

var (
	errDivideByZero = errors.New("engine: division by zero")
)

// OperatorSignature is one overload of a unary or binary operator. Func is never called
// with a NULL argument.
type OperatorSignature struct {
	Unary   bool
	UnaryOp sql.UnaryOp
	Op      sql.BinaryOp
	Params  []sql.Type
	Return  sql.Type
	Func    func(args []sql.Value) (sql.Value, error)
}

func (os *OperatorSignature) ParameterCount() int          { return len(os.Params) }
func (os *OperatorSignature) ParameterType(i int) sql.Type { return os.Params[i] }
func (os *OperatorSignature) ReturnType() sql.Type         { return os.Return }

func (os *OperatorSignature) String() string {
	if os.Unary {
		return fmt.Sprintf("%s(%s) %s", os.UnaryOp, os.Params[0], os.Return)
	}
	return fmt.Sprintf("(%s %s %s) %s", os.Params[0], os.Op, os.Params[1], os.Return)
}

type numeric interface {
	~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

type integer interface {
	~int32 | ~uint32 | ~int64 | ~uint64
}

func arithmetic[T numeric](op sql.BinaryOp) func(args []sql.Value) (sql.Value, error) {
	return func(args []sql.Value) (sql.Value, error) {
		a := args[0].(T)
		b := args[1].(T)
		switch op {
		case sql.AddOp:
			return a + b, nil
		case sql.SubtractOp:
			return a - b, nil
		case sql.MultiplyOp:
			return a * b, nil
		case sql.DivideOp:
			if b == 0 {
				switch interface{}(a).(type) {
				case float32, float64:
				default:
					return nil, errDivideByZero
				}
			}
			return a / b, nil
		}
		panic(fmt.Sprintf("unexpected arithmetic operator: %s", op))
	}
}

func modulus[T integer](args []sql.Value) (sql.Value, error) {
	a := args[0].(T)
	b := args[1].(T)
	if b == 0 {
		return nil, errDivideByZero
	}
	return a % b, nil
}

func fmodulus[T float32 | float64](args []sql.Value) (sql.Value, error) {
	return T(math.Mod(float64(args[0].(T)), float64(args[1].(T)))), nil
}

func bitwise[T integer](op sql.BinaryOp) func(args []sql.Value) (sql.Value, error) {
	return func(args []sql.Value) (sql.Value, error) {
		a := args[0].(T)
		b := args[1].(T)
		switch op {
		case sql.BitAndOp:
			return a & b, nil
		case sql.BitOrOp:
			return a | b, nil
		case sql.BitXorOp:
			return a ^ b, nil
		}
		panic(fmt.Sprintf("unexpected bitwise operator: %s", op))
	}
}

func shift[T integer](op sql.BinaryOp) func(args []sql.Value) (sql.Value, error) {
	return func(args []sql.Value) (sql.Value, error) {
		a := args[0].(T)
		n := args[1].(int32)
		if n < 0 {
			return nil, fmt.Errorf("engine: negative shift count: %d", n)
		}
		if op == sql.LeftShiftOp {
			return a << n, nil
		}
		return a >> n, nil
	}
}

func compare(op sql.BinaryOp) func(args []sql.Value) (sql.Value, error) {
	return func(args []sql.Value) (sql.Value, error) {
		cmp := sql.Compare(args[0], args[1])
		switch op {
		case sql.EqualOp:
			return cmp == 0, nil
		case sql.NotEqualOp:
			return cmp != 0, nil
		case sql.LessOp:
			return cmp < 0, nil
		case sql.LessOrEqualOp:
			return cmp <= 0, nil
		case sql.GreaterOp:
			return cmp > 0, nil
		case sql.GreaterOrEqualOp:
			return cmp >= 0, nil
		}
		panic(fmt.Sprintf("unexpected comparison operator: %s", op))
	}
}

func logical(op sql.BinaryOp) func(args []sql.Value) (sql.Value, error) {
	return func(args []sql.Value) (sql.Value, error) {
		if op == sql.LogicalAndOp {
			return args[0].(bool) && args[1].(bool), nil
		}
		return args[0].(bool) || args[1].(bool), nil
	}
}

func boolBitwise(op sql.BinaryOp) func(args []sql.Value) (sql.Value, error) {
	return func(args []sql.Value) (sql.Value, error) {
		a := args[0].(bool)
		b := args[1].(bool)
		switch op {
		case sql.BitAndOp:
			return a && b, nil
		case sql.BitOrOp:
			return a || b, nil
		}
		return a != b, nil
	}
}

func concat(args []sql.Value) (sql.Value, error) {
	return args[0].(string) + args[1].(string), nil
}

func power(args []sql.Value) (sql.Value, error) {
	return math.Pow(args[0].(float64), args[1].(float64)), nil
}

type patternCache struct {
	mutex    sync.Mutex
	patterns map[string]*regexp.Regexp
}

func (pc *patternCache) compile(pattern string, translate func(string) string) (*regexp.Regexp,
	error) {

	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	if re, ok := pc.patterns[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(translate(pattern))
	if err != nil {
		return nil, fmt.Errorf("engine: invalid pattern %q: %w", pattern, err)
	}
	if pc.patterns == nil || len(pc.patterns) > 256 {
		pc.patterns = map[string]*regexp.Regexp{}
	}
	pc.patterns[pattern] = re
	return re, nil
}

var (
	likePatterns    patternCache
	similarPatterns patternCache
)

// likeToRegexp translates a LIKE pattern: % matches any sequence and _ any character.
func likeToRegexp(pattern string) string {
	var buf strings.Builder
	buf.WriteString("(?s)^")
	for _, r := range pattern {
		switch r {
		case '%':
			buf.WriteString(".*")
		case '_':
			buf.WriteByte('.')
		default:
			buf.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	buf.WriteByte('$')
	return buf.String()
}

// similarToRegexp translates a SIMILAR TO pattern: a regular expression where % and _
// replace .* and . and which must match the entire string.
func similarToRegexp(pattern string) string {
	var buf strings.Builder
	buf.WriteString("(?s)^(?:")
	for _, r := range pattern {
		switch r {
		case '%':
			buf.WriteString(".*")
		case '_':
			buf.WriteByte('.')
		case '.':
			buf.WriteString(`\.`)
		default:
			buf.WriteRune(r)
		}
	}
	buf.WriteString(")$")
	return buf.String()
}

func like(args []sql.Value) (sql.Value, error) {
	re, err := likePatterns.compile(args[1].(string), likeToRegexp)
	if err != nil {
		return nil, err
	}
	return re.MatchString(args[0].(string)), nil
}

func similarTo(args []sql.Value) (sql.Value, error) {
	re, err := similarPatterns.compile(args[1].(string), similarToRegexp)
	if err != nil {
		return nil, err
	}
	return re.MatchString(args[0].(string)), nil
}

func negate[T int32 | int64 | float32 | float64](args []sql.Value) (sql.Value, error) {
	return -args[0].(T), nil
}

func complement[T integer](args []sql.Value) (sql.Value, error) {
	return ^args[0].(T), nil
}

func identity(args []sql.Value) (sql.Value, error) {
	return args[0], nil
}

func not(args []sql.Value) (sql.Value, error) {
	return !args[0].(bool), nil
}

func binary(op sql.BinaryOp, typ, ret sql.Type,
	fn func(args []sql.Value) (sql.Value, error)) *OperatorSignature {

	return &OperatorSignature{
		Op:     op,
		Params: []sql.Type{typ, typ},
		Return: ret,
		Func:   fn,
	}
}

func unary(op sql.UnaryOp, typ sql.Type,
	fn func(args []sql.Value) (sql.Value, error)) *OperatorSignature {

	return &OperatorSignature{
		Unary:   true,
		UnaryOp: op,
		Params:  []sql.Type{typ},
		Return:  typ,
		Func:    fn,
	}
}

func arithmeticOperators(op sql.BinaryOp) []*OperatorSignature {
	return []*OperatorSignature{
		binary(op, sql.IntType, sql.IntType, arithmetic[int32](op)),
		binary(op, sql.UIntType, sql.UIntType, arithmetic[uint32](op)),
		binary(op, sql.LongType, sql.LongType, arithmetic[int64](op)),
		binary(op, sql.ULongType, sql.ULongType, arithmetic[uint64](op)),
		binary(op, sql.FloatType, sql.FloatType, arithmetic[float32](op)),
		binary(op, sql.DoubleType, sql.DoubleType, arithmetic[float64](op)),
	}
}

func comparisonOperators(op sql.BinaryOp) []*OperatorSignature {
	var sigs []*OperatorSignature
	for _, typ := range []sql.Type{sql.IntType, sql.UIntType, sql.LongType, sql.ULongType,
		sql.FloatType, sql.DoubleType, sql.BooleanType, sql.StringType, sql.DateType} {

		sigs = append(sigs, binary(op, typ, sql.BooleanType, compare(op)))
	}
	return sigs
}

func bitwiseOperators(op sql.BinaryOp) []*OperatorSignature {
	return []*OperatorSignature{
		binary(op, sql.IntType, sql.IntType, bitwise[int32](op)),
		binary(op, sql.UIntType, sql.UIntType, bitwise[uint32](op)),
		binary(op, sql.LongType, sql.LongType, bitwise[int64](op)),
		binary(op, sql.ULongType, sql.ULongType, bitwise[uint64](op)),
		binary(op, sql.BooleanType, sql.BooleanType, boolBitwise(op)),
	}
}

func shiftOperators(op sql.BinaryOp) []*OperatorSignature {
	var sigs []*OperatorSignature
	for _, s := range []struct {
		typ sql.Type
		fn  func(args []sql.Value) (sql.Value, error)
	}{
		{sql.IntType, shift[int32](op)},
		{sql.UIntType, shift[uint32](op)},
		{sql.LongType, shift[int64](op)},
		{sql.ULongType, shift[uint64](op)},
	} {
		sigs = append(sigs, &OperatorSignature{
			Op:     op,
			Params: []sql.Type{s.typ, sql.IntType},
			Return: s.typ,
			Func:   s.fn,
		})
	}
	return sigs
}

var binaryOperators = func() map[sql.BinaryOp][]*OperatorSignature {
	ops := map[sql.BinaryOp][]*OperatorSignature{}
	for _, op := range []sql.BinaryOp{sql.AddOp, sql.SubtractOp, sql.MultiplyOp,
		sql.DivideOp} {

		ops[op] = arithmeticOperators(op)
	}
	ops[sql.AddOp] = append(ops[sql.AddOp],
		binary(sql.AddOp, sql.StringType, sql.StringType, concat))
	ops[sql.ModulusOp] = []*OperatorSignature{
		binary(sql.ModulusOp, sql.IntType, sql.IntType, modulus[int32]),
		binary(sql.ModulusOp, sql.UIntType, sql.UIntType, modulus[uint32]),
		binary(sql.ModulusOp, sql.LongType, sql.LongType, modulus[int64]),
		binary(sql.ModulusOp, sql.ULongType, sql.ULongType, modulus[uint64]),
		binary(sql.ModulusOp, sql.FloatType, sql.FloatType, fmodulus[float32]),
		binary(sql.ModulusOp, sql.DoubleType, sql.DoubleType, fmodulus[float64]),
	}
	ops[sql.PowerOp] = []*OperatorSignature{
		binary(sql.PowerOp, sql.DoubleType, sql.DoubleType, power),
	}
	for _, op := range []sql.BinaryOp{sql.BitAndOp, sql.BitOrOp, sql.BitXorOp} {
		ops[op] = bitwiseOperators(op)
	}
	for _, op := range []sql.BinaryOp{sql.LeftShiftOp, sql.RightShiftOp} {
		ops[op] = shiftOperators(op)
	}
	for _, op := range []sql.BinaryOp{sql.EqualOp, sql.NotEqualOp, sql.LessOp,
		sql.LessOrEqualOp, sql.GreaterOp, sql.GreaterOrEqualOp} {

		ops[op] = comparisonOperators(op)
	}
	for _, op := range []sql.BinaryOp{sql.LogicalAndOp, sql.LogicalOrOp} {
		ops[op] = []*OperatorSignature{
			binary(op, sql.BooleanType, sql.BooleanType, logical(op)),
		}
	}
	ops[sql.LikeOp] = []*OperatorSignature{
		binary(sql.LikeOp, sql.StringType, sql.BooleanType, like),
	}
	ops[sql.SimilarToOp] = []*OperatorSignature{
		binary(sql.SimilarToOp, sql.StringType, sql.BooleanType, similarTo),
	}
	return ops
}()

var unaryOperators = map[sql.UnaryOp][]*OperatorSignature{
	sql.IdentityOp: {
		unary(sql.IdentityOp, sql.IntType, identity),
		unary(sql.IdentityOp, sql.UIntType, identity),
		unary(sql.IdentityOp, sql.LongType, identity),
		unary(sql.IdentityOp, sql.ULongType, identity),
		unary(sql.IdentityOp, sql.FloatType, identity),
		unary(sql.IdentityOp, sql.DoubleType, identity),
	},
	sql.NegationOp: {
		unary(sql.NegationOp, sql.IntType, negate[int32]),
		unary(sql.NegationOp, sql.LongType, negate[int64]),
		unary(sql.NegationOp, sql.FloatType, negate[float32]),
		unary(sql.NegationOp, sql.DoubleType, negate[float64]),
	},
	sql.ComplementOp: {
		unary(sql.ComplementOp, sql.IntType, complement[int32]),
		unary(sql.ComplementOp, sql.UIntType, complement[uint32]),
		unary(sql.ComplementOp, sql.LongType, complement[int64]),
		unary(sql.ComplementOp, sql.ULongType, complement[uint64]),
	},
	sql.LogicalNotOp: {
		unary(sql.LogicalNotOp, sql.BooleanType, not),
	},
}

func hostOperators(types []sql.Type, match func(om *sql.OperatorMethod) bool) []Signature {
	var sigs []Signature
	seen := map[*sql.OperatorMethod]struct{}{}
	for _, typ := range types {
		ht, ok := typ.(*sql.HostType)
		if !ok {
			continue
		}
		for t := ht; t != nil; t = t.Base {
			for _, om := range t.Operators {
				if _, ok := seen[om]; ok || !match(om) {
					continue
				}
				seen[om] = struct{}{}
				sigs = append(sigs, &OperatorSignature{
					Unary:   om.Unary,
					UnaryOp: om.UnaryOp,
					Op:      om.Op,
					Params:  om.Params,
					Return:  om.Return,
					Func:    om.Func,
				})
			}
		}
	}
	return sigs
}

// ResolveBinaryOperator resolves op over the intrinsic operators and the operators of
// the host types of the operands. A NULL operand takes the type of the other operand.
func ResolveBinaryOperator(op sql.BinaryOp, left, right sql.Type) OverloadResult {
	if sql.IsNull(left) && !sql.IsNull(right) {
		left = right
	} else if sql.IsNull(right) && !sql.IsNull(left) {
		right = left
	}

	var sigs []Signature
	for _, os := range binaryOperators[op] {
		sigs = append(sigs, os)
	}
	sigs = append(sigs, hostOperators([]sql.Type{left, right},
		func(om *sql.OperatorMethod) bool {
			return !om.Unary && om.Op == op && len(om.Params) == 2
		})...)
	return ResolveOverloads([]sql.Type{left, right}, sigs)
}

func ResolveUnaryOperator(op sql.UnaryOp, operand sql.Type) OverloadResult {
	var sigs []Signature
	for _, os := range unaryOperators[op] {
		sigs = append(sigs, os)
	}
	sigs = append(sigs, hostOperators([]sql.Type{operand},
		func(om *sql.OperatorMethod) bool {
			return om.Unary && om.UnaryOp == op && len(om.Params) == 1
		})...)
	return ResolveOverloads([]sql.Type{operand}, sigs)
}
