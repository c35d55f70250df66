package sql

import (
	"fmt"
)

type ConversionKind int

const (
	NoConversion ConversionKind = iota
	IdentityConversion
	ImplicitNumericConversion
	ExplicitNumericConversion
	BoxingConversion
	UnboxingConversion
	NullConversion
	UpCastConversion
	DownCastConversion
	ImplicitMethodConversion
	ExplicitMethodConversion
	UnknownConversion
)

var conversionKindNames = [...]string{
	NoConversion:              "none",
	IdentityConversion:        "identity",
	ImplicitNumericConversion: "implicit numeric",
	ExplicitNumericConversion: "explicit numeric",
	BoxingConversion:          "boxing",
	UnboxingConversion:        "unboxing",
	NullConversion:            "null",
	UpCastConversion:          "upcast",
	DownCastConversion:        "downcast",
	ImplicitMethodConversion:  "implicit method",
	ExplicitMethodConversion:  "explicit method",
	UnknownConversion:         "unknown",
}

func (ck ConversionKind) String() string {
	return conversionKindNames[ck]
}

// Conversion describes whether and how a value of one type converts to another. The zero
// value is a conversion which does not exist.
type Conversion struct {
	kind    ConversionKind
	methods []*ConversionMethod
}

func (c Conversion) Kind() ConversionKind {
	return c.kind
}

func (c Conversion) Exists() bool {
	return c.kind != NoConversion
}

func (c Conversion) IsIdentity() bool {
	return c.kind == IdentityConversion
}

func (c Conversion) IsImplicit() bool {
	switch c.kind {
	case IdentityConversion, ImplicitNumericConversion, BoxingConversion, NullConversion,
		UpCastConversion, ImplicitMethodConversion, UnknownConversion:
		return true
	}
	return false
}

func (c Conversion) IsExplicit() bool {
	return c.Exists() && !c.IsImplicit()
}

func (c Conversion) IsBoxing() bool {
	return c.kind == BoxingConversion
}

func (c Conversion) IsUnboxing() bool {
	return c.kind == UnboxingConversion
}

func (c Conversion) IsReference() bool {
	return c.kind == UpCastConversion || c.kind == DownCastConversion
}

// IsUnknown is true when either type is Unknown: the conversion exists so that callers
// do not report errors for an operand which already failed to bind.
func (c Conversion) IsUnknown() bool {
	return c.kind == UnknownConversion
}

// Methods returns the candidate conversion methods; more than one is ambiguous.
func (c Conversion) Methods() []*ConversionMethod {
	return c.methods
}

func (c Conversion) String() string {
	if len(c.methods) > 0 {
		return fmt.Sprintf("%s %v", c.kind, c.methods)
	}
	return c.kind.String()
}

var (
	Identity = Conversion{kind: IdentityConversion}

	implicitNumeric = Conversion{kind: ImplicitNumericConversion}
	explicitNumeric = Conversion{kind: ExplicitNumericConversion}
	boxing          = Conversion{kind: BoxingConversion}
	unboxing        = Conversion{kind: UnboxingConversion}
	null            = Conversion{kind: NullConversion}
	upCast          = Conversion{kind: UpCastConversion}
	downCast        = Conversion{kind: DownCastConversion}
	unknown         = Conversion{kind: UnknownConversion}
	none            = Conversion{}
)

// implicitNumericTable[from][to] for SByteType through DoubleType.
var implicitNumericTable = func() [DoubleType + 1][DoubleType + 1]bool {
	const n, y = false, true
	return [DoubleType + 1][DoubleType + 1]bool{
		//             SByte Byte Short UShort Int UInt Long ULong Char Float Double
		SByteType:  {y, n, y, n, y, n, y, n, n, y, y},
		ByteType:   {n, y, y, y, y, y, y, y, n, y, y},
		ShortType:  {n, n, y, n, y, n, y, n, n, y, y},
		UShortType: {n, n, n, y, y, y, y, y, n, y, y},
		IntType:    {n, n, n, n, y, n, y, n, n, y, y},
		UIntType:   {n, n, n, n, n, y, y, y, n, y, y},
		LongType:   {n, n, n, n, n, n, y, n, n, y, y},
		ULongType:  {n, n, n, n, n, n, n, y, n, y, y},
		CharType:   {n, n, n, y, y, y, y, y, y, y, y},
		FloatType:  {n, n, n, n, n, n, n, n, n, y, y},
		DoubleType: {n, n, n, n, n, n, n, n, n, n, y},
	}
}()

func isReferenceType(t Type) bool {
	switch t := t.(type) {
	case KnownType:
		return t == StringType || t == ObjectType
	case *HostType:
		return !t.ValueType
	}
	return false
}

func isAssignable(source, target Type) bool {
	if target == ObjectType {
		return true
	}
	st, ok := source.(*HostType)
	if !ok {
		return false
	}
	tt, ok := target.(*HostType)
	if !ok {
		return false
	}
	return tt.IsAssignableFrom(st)
}

func conversionMethods(source, target Type, implicit bool) []*ConversionMethod {
	var methods []*ConversionMethod
	seen := map[*ConversionMethod]struct{}{}
	for _, t := range []Type{source, target} {
		ht, ok := t.(*HostType)
		if !ok {
			continue
		}
		for _, cm := range ht.Conversions {
			if cm.Implicit != implicit || cm.From != source || cm.To != target {
				continue
			}
			if _, ok := seen[cm]; ok {
				continue
			}
			seen[cm] = struct{}{}
			methods = append(methods, cm)
		}
	}
	return methods
}

// Classify determines the conversion from source to target. It is a pure function of
// the two types and their registered conversion methods.
func Classify(source, target Type) Conversion {
	if source == target {
		return Identity
	}
	if IsUnknown(source) || IsUnknown(target) {
		return unknown
	}

	if IsNumeric(source) && IsNumeric(target) {
		if implicitNumericTable[source.(KnownType)][target.(KnownType)] {
			return implicitNumeric
		}
		return explicitNumeric
	}

	if IsValueType(source) && target == ObjectType {
		return boxing
	}
	if source == ObjectType && IsValueType(target) {
		return unboxing
	}

	if IsNull(source) || IsNull(target) {
		return null
	}

	if isReferenceType(source) && isReferenceType(target) {
		if isAssignable(source, target) {
			return upCast
		}
		if isAssignable(target, source) {
			return downCast
		}
	}

	if methods := conversionMethods(source, target, true); len(methods) > 0 {
		return Conversion{kind: ImplicitMethodConversion, methods: methods}
	}
	if methods := conversionMethods(source, target, false); len(methods) > 0 {
		return Conversion{kind: ExplicitMethodConversion, methods: methods}
	}
	return none
}

// CompareConversions ranks conversion x (to xType) against conversion y (to yType) from
// the same source: negative if x is better, positive if y is better, and zero for a tie.
func CompareConversions(xType Type, x Conversion, yType Type, y Conversion) int {
	if x.IsIdentity() && !y.IsIdentity() {
		return -1
	} else if !x.IsIdentity() && y.IsIdentity() {
		return 1
	}

	if x.IsImplicit() && y.IsExplicit() {
		return -1
	} else if x.IsExplicit() && y.IsImplicit() {
		return 1
	}

	xToY := Classify(xType, yType)
	yToX := Classify(yType, xType)
	if xToY.IsImplicit() && !yToX.IsImplicit() {
		return -1
	} else if !xToY.IsImplicit() && yToX.IsImplicit() {
		return 1
	}

	if IsSigned(xType) && IsUnsigned(yType) {
		return -1
	} else if IsUnsigned(xType) && IsSigned(yType) {
		return 1
	}
	return 0
}
