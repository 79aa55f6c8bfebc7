package mybash

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidOperator       = errors.New("invalid operator")
	ErrInvalidComparison     = errors.New("invalid comparison")
	ErrInvalidDeclaration    = errors.New("invalid variable declaration")
	ErrInvalidDataType       = errors.New("invalid data type")
	ErrInvalidInt            = errors.New("invalid int")
	ErrInvalidBool           = errors.New("invalid boolean")
	ErrInvalidEcho           = errors.New("invalid echo")
	ErrInvalidCondition      = errors.New("invalid condition")
	ErrUnrecognizedStatement = errors.New("unrecognized statement")
	ErrInvalidExpression     = errors.New("invalid expression")
	ErrTypeMismatch          = errors.New("type mismatch")
)

type Location struct {
	Filename string
	Line     int
	Column   int
}

// ScriptError is a parse or execution error tied to a place in the script.
type ScriptError struct {
	Err      error
	Message  string
	Location Location
	Help     string
	Code     string
}

func (e *ScriptError) Error() string {
	if e.Location.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Location.Filename, e.Location.Line, e.Location.Column, e.Message)
	}
	return e.Message
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

func newError(sentinel error, loc Location, code, format string, args ...interface{}) *ScriptError {
	if loc.Column == 0 {
		loc.Column = 1
	}
	return &ScriptError{
		Err:      sentinel,
		Message:  fmt.Sprintf("%v: %s", sentinel, fmt.Sprintf(format, args...)),
		Location: loc,
		Code:     code,
	}
}

// FormatError renders err with an excerpt of source around the failing line.
// source may be empty, in which case the recorded line text is shown.
func FormatError(err *ScriptError, source string) string {
	var b strings.Builder

	b.WriteString("✗ ")
	b.WriteString(err.Message)
	b.WriteString("\n")

	if err.Location.Line > 0 {
		b.WriteString(fmt.Sprintf("  ╭─[%s:%d:%d]\n", err.Location.Filename, err.Location.Line, err.Location.Column))

		start, lines := sourceContext(source, err.Location.Line)
		if len(lines) == 0 && err.Code != "" {
			start, lines = err.Location.Line, []string{err.Code}
		}
		if len(lines) > 0 {
			b.WriteString("  │\n")
			for i, line := range lines {
				lineNum := start + i
				b.WriteString(fmt.Sprintf("%3d│ %s\n", lineNum, line))
				if lineNum == err.Location.Line {
					pad := pointerPadding(line, err.Location.Column)
					b.WriteString("  │ " + pad + "─┬─ here\n")
					b.WriteString("  │ " + pad + " ╰─ " + err.Message + "\n")
				}
			}
		}

		b.WriteString("  │\n")

		if err.Help != "" {
			b.WriteString("  │ 💡 Help: ")
			b.WriteString(err.Help)
			b.WriteString("\n")
			b.WriteString("  │\n")
		}
	}

	return b.String()
}

// pointerPadding mirrors the tabs of line so the marker lands under column.
func pointerPadding(line string, column int) string {
	var b strings.Builder
	for j := 0; j < column-1; j++ {
		if j < len(line) && line[j] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// sourceContext returns up to two lines before and after targetLine along
// with the number of the first returned line.
func sourceContext(source string, targetLine int) (int, []string) {
	if source == "" {
		return 0, nil
	}

	lines := strings.Split(source, "\n")
	if targetLine < 1 || targetLine > len(lines) {
		return 0, nil
	}

	start := targetLine - 3
	if start < 0 {
		start = 0
	}
	end := targetLine + 2
	if end > len(lines) {
		end = len(lines)
	}

	return start + 1, lines[start:end]
}
