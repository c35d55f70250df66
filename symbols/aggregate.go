package symbols

import (
	"fmt"

	"github.com/leftmike/nquery/sql"
)

// Aggregate is the definition of an aggregate function such as SUM.
type Aggregate interface {
	Bind(argType sql.Type) (Aggregatable, bool)
}

// Aggregatable is an aggregate bound to an argument type.
type Aggregatable interface {
	ReturnType() sql.Type
	NewAggregator() Aggregator
}

// Aggregator accumulates the values of one group. NULL values are passed to Accumulate;
// it is up to the aggregator to skip them.
type Aggregator interface {
	Accumulate(v sql.Value) error
	Total() (sql.Value, error)
}

type aggregatable struct {
	ret sql.Type
	new func() Aggregator
}

func (a aggregatable) ReturnType() sql.Type {
	return a.ret
}

func (a aggregatable) NewAggregator() Aggregator {
	return a.new()
}

type aggregateFunc func(argType sql.Type) (Aggregatable, bool)

func (af aggregateFunc) Bind(argType sql.Type) (Aggregatable, bool) {
	return af(argType)
}

func builtinAggregates() []*AggregateSymbol {
	return []*AggregateSymbol{
		NewAggregateSymbol("COUNT", aggregateFunc(bindCount)),
		NewAggregateSymbol("SUM", aggregateFunc(bindSum)),
		NewAggregateSymbol("AVG", aggregateFunc(bindAvg)),
		NewAggregateSymbol("MIN", aggregateFunc(bindMinMax(-1))),
		NewAggregateSymbol("MAX", aggregateFunc(bindMinMax(1))),
		NewAggregateSymbol("FIRST", aggregateFunc(bindFirst)),
		NewAggregateSymbol("LAST", aggregateFunc(bindLast)),
	}
}

type countAggregator struct {
	count int32
}

func (ca *countAggregator) Accumulate(v sql.Value) error {
	if v != nil {
		ca.count += 1
	}
	return nil
}

func (ca *countAggregator) Total() (sql.Value, error) {
	return ca.count, nil
}

func bindCount(argType sql.Type) (Aggregatable, bool) {
	return &aggregatable{
		ret: sql.IntType,
		new: func() Aggregator { return &countAggregator{} },
	}, true
}

type sumAggregator struct {
	kt   sql.KnownType
	seen bool
	i    int64
	u    uint64
	f    float64
}

func (sa *sumAggregator) Accumulate(v sql.Value) error {
	if v == nil {
		return nil
	}
	v, err := sql.ConvertValue(v, sa.kt)
	if err != nil {
		return err
	}
	sa.seen = true

	switch v := v.(type) {
	case int64:
		s := sa.i + v
		if (s > sa.i) != (v > 0) {
			return fmt.Errorf("sql: SUM overflow")
		}
		sa.i = s
	case uint64:
		s := sa.u + v
		if s < sa.u {
			return fmt.Errorf("sql: SUM overflow")
		}
		sa.u = s
	case float64:
		sa.f += v
	}
	return nil
}

func (sa *sumAggregator) Total() (sql.Value, error) {
	if !sa.seen {
		return nil, nil
	}
	switch sa.kt {
	case sql.LongType:
		return sa.i, nil
	case sql.ULongType:
		return sa.u, nil
	}
	return sa.f, nil
}

func sumType(argType sql.Type) (sql.KnownType, bool) {
	if sql.IsNull(argType) || sql.IsUnknown(argType) {
		return sql.LongType, true
	}
	if !sql.IsNumeric(argType) {
		return 0, false
	}
	if sql.IsInteger(argType) {
		if sql.IsUnsigned(argType) {
			return sql.ULongType, true
		}
		return sql.LongType, true
	}
	return sql.DoubleType, true
}

func bindSum(argType sql.Type) (Aggregatable, bool) {
	kt, ok := sumType(argType)
	if !ok {
		return nil, false
	}
	return &aggregatable{
		ret: kt,
		new: func() Aggregator { return &sumAggregator{kt: kt} },
	}, true
}

type avgAggregator struct {
	count int64
	sum   float64
}

func (aa *avgAggregator) Accumulate(v sql.Value) error {
	if v == nil {
		return nil
	}
	v, err := sql.ConvertValue(v, sql.DoubleType)
	if err != nil {
		return err
	}
	aa.count += 1
	aa.sum += v.(float64)
	return nil
}

func (aa *avgAggregator) Total() (sql.Value, error) {
	if aa.count == 0 {
		return nil, nil
	}
	return aa.sum / float64(aa.count), nil
}

func bindAvg(argType sql.Type) (Aggregatable, bool) {
	if !sql.IsNumeric(argType) && !sql.IsNull(argType) && !sql.IsUnknown(argType) {
		return nil, false
	}
	return &aggregatable{
		ret: sql.DoubleType,
		new: func() Aggregator { return &avgAggregator{} },
	}, true
}

type minMaxAggregator struct {
	want  int
	value sql.Value
}

func (mma *minMaxAggregator) Accumulate(v sql.Value) error {
	if v == nil {
		return nil
	}
	if mma.value == nil || sql.Compare(v, mma.value) == mma.want {
		mma.value = v
	}
	return nil
}

func (mma *minMaxAggregator) Total() (sql.Value, error) {
	return mma.value, nil
}

func isComparable(typ sql.Type) bool {
	if sql.IsNumeric(typ) || sql.IsNull(typ) || sql.IsUnknown(typ) {
		return true
	}
	switch typ {
	case sql.StringType, sql.BooleanType, sql.DateType:
		return true
	}
	return false
}

func bindMinMax(want int) func(argType sql.Type) (Aggregatable, bool) {
	return func(argType sql.Type) (Aggregatable, bool) {
		if !isComparable(argType) {
			return nil, false
		}
		return &aggregatable{
			ret: argType,
			new: func() Aggregator { return &minMaxAggregator{want: want} },
		}, true
	}
}

type firstAggregator struct {
	seen  bool
	value sql.Value
}

func (fa *firstAggregator) Accumulate(v sql.Value) error {
	if !fa.seen {
		fa.seen = true
		fa.value = v
	}
	return nil
}

func (fa *firstAggregator) Total() (sql.Value, error) {
	return fa.value, nil
}

func bindFirst(argType sql.Type) (Aggregatable, bool) {
	return &aggregatable{
		ret: argType,
		new: func() Aggregator { return &firstAggregator{} },
	}, true
}

type lastAggregator struct {
	value sql.Value
}

func (la *lastAggregator) Accumulate(v sql.Value) error {
	la.value = v
	return nil
}

func (la *lastAggregator) Total() (sql.Value, error) {
	return la.value, nil
}

func bindLast(argType sql.Type) (Aggregatable, bool) {
	return &aggregatable{
		ret: argType,
		new: func() Aggregator { return &lastAggregator{} },
	}, true
}
