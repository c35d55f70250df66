package sql

type UnaryOp int

const (
	IdentityOp UnaryOp = iota
	NegationOp
	ComplementOp
	LogicalNotOp
)

var unaryOpNames = [...]string{
	IdentityOp:   "+",
	NegationOp:   "-",
	ComplementOp: "~",
	LogicalNotOp: "NOT",
}

func (op UnaryOp) String() string {
	return unaryOpNames[op]
}

type BinaryOp int

const (
	MultiplyOp BinaryOp = iota
	DivideOp
	ModulusOp
	PowerOp
	AddOp
	SubtractOp
	BitAndOp
	BitOrOp
	BitXorOp
	LeftShiftOp
	RightShiftOp
	EqualOp
	NotEqualOp
	LessOp
	LessOrEqualOp
	GreaterOp
	GreaterOrEqualOp
	LogicalAndOp
	LogicalOrOp
	LikeOp
	SimilarToOp
)

var binaryOpNames = [...]string{
	MultiplyOp:       "*",
	DivideOp:         "/",
	ModulusOp:        "%",
	PowerOp:          "**",
	AddOp:            "+",
	SubtractOp:       "-",
	BitAndOp:         "&",
	BitOrOp:          "|",
	BitXorOp:         "^",
	LeftShiftOp:      "<<",
	RightShiftOp:     ">>",
	EqualOp:          "=",
	NotEqualOp:       "<>",
	LessOp:           "<",
	LessOrEqualOp:    "<=",
	GreaterOp:        ">",
	GreaterOrEqualOp: ">=",
	LogicalAndOp:     "AND",
	LogicalOrOp:      "OR",
	LikeOp:           "LIKE",
	SimilarToOp:      "SIMILAR TO",
}

func (op BinaryOp) String() string {
	return binaryOpNames[op]
}

func (op BinaryOp) IsComparison() bool {
	return op >= EqualOp && op <= GreaterOrEqualOp
}

// OperatorMethod is a host-registered operator overload. Unary overloads have one
// parameter and set Unary; binary overloads have two.
type OperatorMethod struct {
	Unary   bool
	UnaryOp UnaryOp
	Op      BinaryOp
	Params  []Type
	Return  Type
	Func    func(args []Value) (Value, error)
}
