package mybash

// Statement is one parsed unit of a program: *Variable, *Echo or *Condition.
type Statement interface {
	// Pos returns the 1-based source line the statement starts on.
	Pos() int
	statement()
}

// Branch is a statement that may run as the body of a condition. Conditions
// are not branches, so nested conditionals cannot be represented.
type Branch interface {
	Statement
	branch()
}

// Variable is a `name : type = value` declaration.
type Variable struct {
	Name  string
	Type  DataType
	Value Value
	Line  int
}

// Echo prints its text after interpolation.
type Echo struct {
	Text string
	Line int
}

// Condition is an if/else block. Else is nil when the block has no else arm.
type Condition struct {
	Cond Comparison
	Then Branch
	Else Branch
	Line int
}

func (v *Variable) Pos() int  { return v.Line }
func (e *Echo) Pos() int      { return e.Line }
func (c *Condition) Pos() int { return c.Line }

func (*Variable) statement()  {}
func (*Echo) statement()      {}
func (*Condition) statement() {}

func (*Variable) branch() {}
func (*Echo) branch()     {}

// Program is the ordered statement sequence of one script.
type Program struct {
	Filename   string
	Statements []Statement
}
