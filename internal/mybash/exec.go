package mybash

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Invocation is what the executor may see of the process that runs it.
// Args[0] is the interpreter itself and Args[1] the script, so `$n` reads
// Args[n+1].
type Invocation struct {
	Args      []string
	LookupEnv func(key string) (string, bool)
}

// Executor runs a parsed program once, front to back.
type Executor struct {
	program *Program
	vars    map[string]Value
	inv     Invocation
	out     io.Writer
	log     logrus.FieldLogger
}

// NewExecutor binds every top-level declaration up front. Declarations
// inside condition branches are bound only when their branch runs.
func NewExecutor(program *Program, inv Invocation, out io.Writer) *Executor {
	vars := make(map[string]Value)
	for _, stmt := range program.Statements {
		if v, ok := stmt.(*Variable); ok {
			vars[v.Name] = v.Value
		}
	}

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	return &Executor{
		program: program,
		vars:    vars,
		inv:     inv,
		out:     out,
		log:     quiet,
	}
}

func (e *Executor) SetLogger(log logrus.FieldLogger) {
	e.log = log
}

// Lookup returns the current binding of name.
func (e *Executor) Lookup(name string) (Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Execute runs every statement in order and stops at the first error.
func (e *Executor) Execute() error {
	for _, stmt := range e.program.Statements {
		if err := e.exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) exec(stmt Statement) error {
	switch s := stmt.(type) {
	case *Variable:
		e.bind(s)
		return nil
	case *Echo:
		return e.echo(s)
	case *Condition:
		return e.condition(s)
	default:
		return fmt.Errorf("%w: %T", ErrUnrecognizedStatement, stmt)
	}
}

func (e *Executor) bind(v *Variable) {
	value := v.Value
	if s, ok := value.(StrValue); ok {
		value = StrValue(e.expand(string(s)).String())
	}
	e.vars[v.Name] = value

	e.log.WithFields(logrus.Fields{
		"line": v.Line,
		"name": v.Name,
		"type": v.Type.String(),
	}).Debugf("bind %s", value)
}

func (e *Executor) echo(s *Echo) error {
	text := e.expand(s.Text).String()
	e.log.WithField("line", s.Line).Debugf("echo %q", text)

	if _, err := fmt.Fprintln(e.out, text); err != nil {
		return &ScriptError{
			Err:      err,
			Message:  fmt.Sprintf("write output: %v", err),
			Location: Location{Filename: e.program.Filename, Line: s.Line, Column: 1},
		}
	}
	return nil
}

func (e *Executor) condition(c *Condition) error {
	left := e.operand(c.Cond.Left)
	right := e.operand(c.Cond.Right)

	ok, err := Compare(left, right, c.Cond.Op)
	if err != nil {
		return &ScriptError{
			Err:      err,
			Message:  err.Error(),
			Location: Location{Filename: e.program.Filename, Line: c.Line, Column: 1},
			Code:     "if " + c.Cond.String(),
			Help:     "ordering operators compare int values only",
		}
	}

	log := e.log.WithFields(logrus.Fields{"line": c.Line, "condition": c.Cond.String()})
	switch {
	case ok:
		log.Debug("condition true")
		return e.exec(c.Then)
	case c.Else != nil:
		log.Debug("condition false, running else")
		return e.exec(c.Else)
	default:
		log.Debug("condition false, no else")
		return nil
	}
}
