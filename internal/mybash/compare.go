package mybash

import (
	"fmt"
	"strings"
)

type Operator int

const (
	Eq Operator = iota
	NotEq
	Gt
	GtEq
	Lt
	LtEq
)

func (op Operator) String() string {
	switch op {
	case Eq:
		return "=="
	case NotEq:
		return "!="
	case Gt:
		return ">"
	case GtEq:
		return ">="
	case Lt:
		return "<"
	case LtEq:
		return "<="
	default:
		return "?"
	}
}

// ParseOperator accepts exactly one of == != > >= < <= after trimming.
func ParseOperator(s string) (Operator, error) {
	switch strings.TrimSpace(s) {
	case "==":
		return Eq, nil
	case "!=":
		return NotEq, nil
	case ">":
		return Gt, nil
	case ">=":
		return GtEq, nil
	case "<":
		return Lt, nil
	case "<=":
		return LtEq, nil
	}
	return 0, fmt.Errorf("%w: `%s` is not a valid operator", ErrInvalidOperator, s)
}

// Comparison is `left op right` with both operands left unresolved.
type Comparison struct {
	Left  string
	Right string
	Op    Operator
}

func (c Comparison) String() string {
	return c.Left + " " + c.Op.String() + " " + c.Right
}

// ParseComparison parses a single comparison such as `age > 20`.
func ParseComparison(s string) (Comparison, error) {
	ast, err := comparisonParser.ParseString("", s)
	if err != nil {
		return Comparison{}, fmt.Errorf("%w: `%s`", ErrInvalidComparison, s)
	}
	return ast.comparison(s)
}

// Compare evaluates op over two resolved values. Equality works across
// variants; ordering is only defined between integers.
func Compare(left, right Value, op Operator) (bool, error) {
	switch op {
	case Eq:
		return Equal(left, right), nil
	case NotEq:
		return !Equal(left, right), nil
	}

	l, ok := left.(IntValue)
	if !ok {
		return false, fmt.Errorf("%w: `%s` is not a valid left hand side for %s (got %s)", ErrTypeMismatch, left, op, left.Kind())
	}
	r, ok := right.(IntValue)
	if !ok {
		return false, fmt.Errorf("%w: `%s` is not a valid right hand side for %s (got %s)", ErrTypeMismatch, right, op, right.Kind())
	}

	switch op {
	case Gt:
		return l > r, nil
	case GtEq:
		return l >= r, nil
	case Lt:
		return l < r, nil
	case LtEq:
		return l <= r, nil
	}
	return false, fmt.Errorf("%w: %d", ErrInvalidOperator, int(op))
}
