package mybash

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// Line is a non-blank source line. Num is 1-based; Indent counts the
// whitespace bytes trimmed from the front of Text.
type Line struct {
	Num    int
	Indent int
	Text   string
}

// SplitLines trims every line of text and drops the blank ones.
func SplitLines(text string) []Line {
	var lines []Line
	for i, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		lines = append(lines, Line{
			Num:    i + 1,
			Indent: len(raw) - len(strings.TrimLeft(raw, " \t")),
			Text:   trimmed,
		})
	}
	return lines
}

func isIfLine(text string) bool {
	fields := strings.Fields(text)
	return len(fields) > 1 && fields[0] == "if"
}

func isEndifLine(text string) bool {
	return text == "endif"
}

// ScanBlock finds the if block starting at lines[start]. It returns the
// block's lines joined with newlines and the index of the closing endif.
// Nested if lines are rejected.
func ScanBlock(lines []Line, start int) (string, int, error) {
	if start < 0 || start >= len(lines) {
		return "", 0, fmt.Errorf("%w: block start %d is out of range (%d lines)", ErrInvalidCondition, start, len(lines))
	}
	first := lines[start]
	if !isIfLine(first.Text) {
		return "", 0, newError(ErrInvalidCondition, Location{Line: first.Num, Column: first.Indent + 1}, first.Text,
			"`%s` does not start an if block", first.Text)
	}

	block := []string{first.Text}
	for i := start + 1; i < len(lines); i++ {
		line := lines[i]
		if isIfLine(line.Text) {
			return "", 0, newError(ErrInvalidCondition, Location{Line: line.Num, Column: line.Indent + 1}, line.Text,
				"nested `if` is not supported; close the block opened on line %d with `endif` first", first.Num)
		}
		block = append(block, line.Text)
		if isEndifLine(line.Text) {
			return strings.Join(block, "\n"), i, nil
		}
	}

	last := lines[len(lines)-1]
	return "", 0, newError(ErrInvalidCondition, Location{Line: last.Num, Column: last.Indent + 1}, last.Text,
		"missing `endif` for the block opened on line %d; last line examined: `%s`", first.Num, last.Text)
}

type Parser struct {
	filename string
}

func NewParser(filename string) *Parser {
	return &Parser{filename: filename}
}

// Parse is shorthand for NewParser(filename).ParseString(text).
func Parse(filename, text string) (*Program, error) {
	return NewParser(filename).ParseString(text)
}

// ParseString parses a whole script. The first bad line aborts the parse.
func (p *Parser) ParseString(text string) (*Program, error) {
	program := &Program{Filename: p.filename}
	lines := SplitLines(text)

	for idx := 0; idx < len(lines); idx++ {
		line := lines[idx]

		ast, err := lineParser.ParseString(p.filename, line.Text)
		switch {
		case err == nil && ast.Declaration != nil:
			v, err := p.variable(ast.Declaration, line)
			if err != nil {
				return nil, err
			}
			program.Statements = append(program.Statements, v)

		case err == nil && ast.Echo != nil:
			program.Statements = append(program.Statements, p.echo(ast.Echo, line))

		case isIfLine(line.Text):
			_, end, err := ScanBlock(lines, idx)
			if err != nil {
				return nil, p.located(err)
			}
			cond, err := p.condition(lines[idx : end+1])
			if err != nil {
				return nil, err
			}
			program.Statements = append(program.Statements, cond)
			idx = end

		default:
			return nil, p.lineError(line, err)
		}
	}

	return program, nil
}

func (p *Parser) variable(d *declarationAST, line Line) (*Variable, error) {
	loc := p.loc(line, d.Pos.Column)

	typ, ok := parseDataType(d.Type)
	if !ok {
		e := newError(ErrInvalidDataType, loc, line.Text, "`%s` is not a valid data type", d.Type)
		e.Help = "use one of str, string, int or bool"
		return nil, e
	}

	raw := d.Value.unquoted(line.Text)
	v := &Variable{Name: d.Name, Type: typ, Line: line.Num}

	switch typ {
	case StrType:
		v.Value = StrValue(raw)
	case IntType:
		f, err := Eval(raw)
		if err != nil {
			return nil, newError(ErrInvalidInt, loc, line.Text, "`%s` is not a valid int expression", raw)
		}
		f = math.Trunc(f)
		if f > math.MaxInt32 || f < math.MinInt32 {
			return nil, newError(ErrInvalidInt, loc, line.Text, "`%s` is out of the 32-bit range", raw)
		}
		v.Value = IntValue(int32(f))
	case BoolType:
		switch raw {
		case "true":
			v.Value = BoolValue(true)
		case "false":
			v.Value = BoolValue(false)
		default:
			return nil, newError(ErrInvalidBool, loc, line.Text, "`%s` is not a valid boolean", raw)
		}
	}

	return v, nil
}

func (p *Parser) echo(e *echoAST, line Line) *Echo {
	return &Echo{Text: e.Arg.unquoted(line.Text), Line: line.Num}
}

// condition builds a Condition from the lines ScanBlock delimited, header
// and endif included.
func (p *Parser) condition(block []Line) (*Condition, error) {
	header := block[0]
	cmpText := strings.TrimSpace(strings.TrimPrefix(header.Text, "if"))

	cmp, err := ParseComparison(cmpText)
	if err != nil {
		sentinel := ErrInvalidComparison
		if errors.Is(err, ErrInvalidOperator) {
			sentinel = ErrInvalidOperator
		}
		return nil, newError(sentinel, p.loc(header, 1), header.Text, "`%s` is not a valid comparison", cmpText)
	}

	cond := &Condition{Cond: cmp, Line: header.Num}
	body := block[1 : len(block)-1]

	switch {
	case len(body) == 1:
		cond.Then, err = p.branch(body[0])
	case len(body) == 3 && body[1].Text == "else":
		if cond.Then, err = p.branch(body[0]); err == nil {
			cond.Else, err = p.branch(body[2])
		}
	default:
		e := newError(ErrInvalidCondition, p.loc(header, 1), header.Text,
			"expected one `do` line, optionally followed by `else` and another `do` line, before `endif`")
		e.Help = "if <left> <op> <right> / do <statement> / [else / do <statement>] / endif"
		return nil, e
	}
	if err != nil {
		return nil, err
	}

	return cond, nil
}

func (p *Parser) branch(line Line) (Branch, error) {
	ast, err := lineParser.ParseString(p.filename, line.Text)
	if err != nil || ast.Do == nil {
		return nil, newError(ErrInvalidCondition, p.loc(line, 1), line.Text,
			"`%s` is not a `do <declaration>` or `do echo ...` branch", line.Text)
	}

	if ast.Do.Declaration != nil {
		return p.variable(ast.Do.Declaration, line)
	}
	return p.echo(ast.Do.Echo, line), nil
}

// lineError picks the most specific error for a line no rule accepted.
func (p *Parser) lineError(line Line, cause error) error {
	col := 1
	var perr participle.Error
	if errors.As(cause, &perr) {
		col = perr.Position().Column
	}
	loc := p.loc(line, col)

	fields := strings.Fields(line.Text)
	switch {
	case fields[0] == "echo":
		return newError(ErrInvalidEcho, loc, line.Text, "`%s` doesn't match `echo <value>`", line.Text)
	case fields[0] == "do" || fields[0] == "else" || fields[0] == "endif":
		return newError(ErrInvalidCondition, loc, line.Text, "`%s` outside of an if block", fields[0])
	case strings.Contains(line.Text, ":") && strings.Contains(line.Text, "="):
		e := newError(ErrInvalidDeclaration, loc, line.Text, "`%s` is not a valid variable declaration", line.Text)
		e.Help = "declare variables as `name: type = value`"
		return e
	default:
		return newError(ErrUnrecognizedStatement, loc, line.Text, "`%s`", line.Text)
	}
}

func (p *Parser) loc(line Line, col int) Location {
	if col < 1 {
		col = 1
	}
	return Location{Filename: p.filename, Line: line.Num, Column: line.Indent + col}
}

// located stamps the parser's filename on errors raised without one.
func (p *Parser) located(err error) error {
	var se *ScriptError
	if errors.As(err, &se) && se.Location.Filename == "" {
		se.Location.Filename = p.filename
	}
	return err
}
