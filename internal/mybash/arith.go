package mybash

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// MaxEvalDepth bounds how deeply Eval recurses into groups and sub-terms.
const MaxEvalDepth = 64

// Operators in the order Eval tries to split on them. The first operator that
// yields more than one term wins and the whole expression is folded left with
// it; every term is a number or a sub-expression evaluated the same way.
var splitOrder = []struct {
	sep  string
	fold func(acc, term float64) float64
}{
	{"+", func(acc, term float64) float64 { return acc + term }},
	{"-", func(acc, term float64) float64 { return acc - term }},
	{"x", func(acc, term float64) float64 { return acc * term }},
	{"*", func(acc, term float64) float64 { return acc * term }},
	{"/", func(acc, term float64) float64 { return acc / term }},
}

// Eval evaluates an arithmetic expression built from + - * / x and groups in
// () or []. It does no variable lookup: letters (other than the x operator)
// and '=' make the expression invalid.
func Eval(expr string) (float64, error) {
	return eval(expr, 0)
}

func eval(expr string, depth int) (float64, error) {
	if depth > MaxEvalDepth {
		return 0, fmt.Errorf("%w: `%s` nests deeper than %d levels", ErrInvalidExpression, expr, MaxEvalDepth)
	}
	if err := checkExpression(expr); err != nil {
		return 0, err
	}

	flat, err := flattenGroups(expr, depth)
	if err != nil {
		return 0, err
	}

	result, err := fold(flat, depth)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: `%s` has no finite value", ErrInvalidExpression, expr)
	}
	return result, nil
}

func checkExpression(expr string) error {
	nesting := 0
	for _, r := range expr {
		switch {
		case r == '=' || (unicode.IsLetter(r) && r != 'x'):
			return fmt.Errorf("%w: `%s`", ErrInvalidExpression, expr)
		case r == '(' || r == '[':
			nesting++
			if nesting > MaxEvalDepth {
				return fmt.Errorf("%w: `%s` nests deeper than %d levels", ErrInvalidExpression, expr, MaxEvalDepth)
			}
		case r == ')' || r == ']':
			nesting--
		}
	}
	return nil
}

// flattenGroups replaces innermost groups with their values until none are
// left.
func flattenGroups(expr string, depth int) (string, error) {
	for {
		closeAt := strings.IndexAny(expr, ")]")
		if closeAt == -1 {
			if strings.ContainsAny(expr, "([") {
				return "", fmt.Errorf("%w: unclosed group in `%s`", ErrInvalidExpression, expr)
			}
			return expr, nil
		}

		openAt := strings.LastIndexAny(expr[:closeAt], "([")
		if openAt == -1 || !groupPair(expr[openAt], expr[closeAt]) {
			return "", fmt.Errorf("%w: unbalanced group in `%s`", ErrInvalidExpression, expr)
		}

		inner := expr[openAt+1 : closeAt]
		if strings.TrimSpace(inner) == "" {
			return "", fmt.Errorf("%w: empty group in `%s`", ErrInvalidExpression, expr)
		}
		val, err := eval(inner, depth+1)
		if err != nil {
			return "", err
		}
		expr = expr[:openAt] + formatNumber(val) + expr[closeAt+1:]
	}
}

func groupPair(open, close byte) bool {
	return (open == '(' && close == ')') || (open == '[' && close == ']')
}

func fold(expr string, depth int) (float64, error) {
	for _, op := range splitOrder {
		terms := splitTerms(expr, op.sep)
		if len(terms) == 1 {
			continue
		}

		var result float64
		for i, term := range terms {
			val, err := evalTerm(term, op.sep, depth)
			if err != nil {
				return 0, err
			}
			if i == 0 {
				result = val
				continue
			}
			result = op.fold(result, val)
		}
		return result, nil
	}

	term := strings.TrimSpace(expr)
	val, err := strconv.ParseFloat(term, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: `%s` is not a number", ErrInvalidExpression, term)
	}
	return val, nil
}

func evalTerm(term, sep string, depth int) (float64, error) {
	if term == "" {
		return 0, fmt.Errorf("%w: missing operand around `%s`", ErrInvalidExpression, sep)
	}
	if val, err := strconv.ParseFloat(term, 64); err == nil {
		return val, nil
	}
	return eval(term, depth+1)
}

func splitTerms(expr, sep string) []string {
	var terms []string
	if sep == "-" {
		terms = splitSubtraction(expr)
	} else {
		terms = strings.Split(expr, sep)
	}
	for i := range terms {
		terms[i] = strings.TrimSpace(terms[i])
	}
	return terms
}

// splitSubtraction splits on binary '-' only. A '-' at the start or right
// after another operator is the sign of a number, as left behind by a group
// that evaluated below zero.
func splitSubtraction(expr string) []string {
	var terms []string
	start := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] != '-' || isSign(expr[:i]) {
			continue
		}
		terms = append(terms, expr[start:i])
		start = i + 1
	}
	return append(terms, expr[start:])
}

func isSign(before string) bool {
	before = strings.TrimSpace(before)
	if before == "" {
		return true
	}
	return strings.ContainsRune("+-x*/", rune(before[len(before)-1]))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
