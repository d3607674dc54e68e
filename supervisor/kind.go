package supervisor

type Kind int

const (
	Kind_Any Kind = iota
	Kind_MemoryAccess
	Kind_Abort
	Kind_Arithmetic
)

type ArithCode int

const (
	ArithCode_Unknown ArithCode = iota
	ArithCode_IntDivide
	ArithCode_IntOverflow
	ArithCode_FloatDivide
	ArithCode_FloatOverflow
	ArithCode_FloatUnderflow
	ArithCode_FloatInexact
	ArithCode_FloatInvalid
	ArithCode_Subscript
)

func (k Kind) String() string {
	switch k {
	case Kind_Any:
		return "any"
	case Kind_MemoryAccess:
		return "memory access violation"
	case Kind_Abort:
		return "abnormal termination"
	case Kind_Arithmetic:
		return "arithmetic exception"
	}
	return "unknown"
}

func (c ArithCode) String() string {
	switch c {
	case ArithCode_IntDivide:
		return "integer divide by zero"
	case ArithCode_IntOverflow:
		return "integer overflow"
	case ArithCode_FloatDivide:
		return "floating-point divide by zero"
	case ArithCode_FloatOverflow:
		return "floating-point overflow"
	case ArithCode_FloatUnderflow:
		return "floating-point underflow"
	case ArithCode_FloatInexact:
		return "floating-point inexact result"
	case ArithCode_FloatInvalid:
		return "invalid floating-point operation"
	case ArithCode_Subscript:
		return "subscript out of range"
	}
	return "unknown arithmetic exception"
}
