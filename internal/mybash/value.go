package mybash

import (
	"strconv"
)

type Kind int

const (
	IntKind Kind = iota
	StrKind
	BoolKind
)

func (k Kind) String() string {
	switch k {
	case IntKind:
		return "int"
	case StrKind:
		return "str"
	case BoolKind:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a runtime value. The set of implementations is closed:
// IntValue, StrValue and BoolValue.
type Value interface {
	String() string
	Kind() Kind
	value()
}

type IntValue int32

func (v IntValue) String() string { return strconv.FormatInt(int64(v), 10) }
func (v IntValue) Kind() Kind     { return IntKind }
func (IntValue) value()           {}

type StrValue string

func (v StrValue) String() string { return string(v) }
func (v StrValue) Kind() Kind     { return StrKind }
func (StrValue) value()           {}

type BoolValue bool

func (v BoolValue) String() string { return strconv.FormatBool(bool(v)) }
func (v BoolValue) Kind() Kind     { return BoolKind }
func (BoolValue) value()           {}

// Equal reports whether a and b hold the same variant and the same value.
func Equal(a, b Value) bool {
	switch l := a.(type) {
	case IntValue:
		r, ok := b.(IntValue)
		return ok && l == r
	case StrValue:
		r, ok := b.(StrValue)
		return ok && l == r
	case BoolValue:
		r, ok := b.(BoolValue)
		return ok && l == r
	default:
		return false
	}
}

// literal turns unresolved operand text into a value: an int32 when it
// parses as one, a boolean for true/false, text otherwise.
func literal(s string) Value {
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return IntValue(n)
	}
	switch s {
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}
	return StrValue(s)
}

type DataType int

const (
	StrType DataType = iota
	IntType
	BoolType
)

func (t DataType) String() string {
	switch t {
	case StrType:
		return "str"
	case IntType:
		return "int"
	case BoolType:
		return "bool"
	default:
		return "unknown"
	}
}

func parseDataType(s string) (DataType, bool) {
	switch s {
	case "str", "string":
		return StrType, true
	case "int":
		return IntType, true
	case "bool":
		return BoolType, true
	}
	return 0, false
}
