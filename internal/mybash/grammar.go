package mybash

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Rules are tried in order. Operator characters always lex as one Op run so
// that `=>` or `===` reach ParseOperator and fail there, not in the lexer.
var lineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]*"|'[^']*'`},
	{Name: "Op", Pattern: `[=!<>]+`},
	{Name: "Punct", Pattern: `:`},
	{Name: "Word", Pattern: `[^\s:=!<>"']+`},
	{Name: "Other", Pattern: `\S`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// lineAST is one logical line: a declaration, an echo, an if header or a
// do branch. Blocks are assembled from lines by the block scanner.
type lineAST struct {
	Declaration *declarationAST `  @@`
	Echo        *echoAST        `| @@`
	If          *ifAST          `| @@`
	Do          *doAST          `| @@`
}

type declarationAST struct {
	Pos   lexer.Position
	Name  string   `@Word ":"`
	Type  string   `@Word "="`
	Value *textAST `@@`
}

type echoAST struct {
	Pos lexer.Position
	Arg *textAST `"echo" @@`
}

type ifAST struct {
	Comparison *comparisonAST `"if" @@`
}

type doAST struct {
	Declaration *declarationAST `"do" ( @@`
	Echo        *echoAST        `     | @@ )`
}

// Operands stop at the first operator run, so a second operator makes the
// whole comparison fail instead of being folded into the right operand.
type comparisonAST struct {
	Pos   lexer.Position
	Left  *operandAST `@@`
	Op    string      `@Op`
	Right *operandAST `@@`
}

// textAST is a run of tokens whose source text is kept verbatim.
type textAST struct {
	Tokens []lexer.Token
	Parts  []string `@(Word | String | Punct | Other | Op)+`
}

type operandAST struct {
	Tokens []lexer.Token
	Parts  []string `@(Word | String | Punct | Other)+`
}

var (
	lineParser = participle.MustBuild[lineAST](
		participle.Lexer(lineLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(4),
	)

	comparisonParser = participle.MustBuild[comparisonAST](
		participle.Lexer(lineLexer),
		participle.Elide("Whitespace"),
	)
)

func (t *textAST) unquoted(src string) string {
	if t == nil {
		return ""
	}
	return unquotedText(t.Tokens, t.Parts, src)
}

func (o *operandAST) unquoted(src string) string {
	if o == nil {
		return ""
	}
	return unquotedText(o.Tokens, o.Parts, src)
}

// rawText returns the exact slice of src covered by tokens, trimmed.
func rawText(tokens []lexer.Token, parts []string, src string) string {
	fallback := strings.Join(parts, " ")
	if len(tokens) == 0 {
		return fallback
	}
	first, last := tokens[0], tokens[len(tokens)-1]
	start, end := first.Pos.Offset, last.Pos.Offset+len(last.Value)
	if start < 0 || start > end || end > len(src) {
		return fallback
	}
	return strings.TrimSpace(src[start:end])
}

// unquotedText drops the surrounding quotes when the run is a single quoted
// string and keeps the verbatim text otherwise.
func unquotedText(tokens []lexer.Token, parts []string, src string) string {
	if len(parts) == 1 && isQuoted(parts[0]) {
		return parts[0][1 : len(parts[0])-1]
	}
	return rawText(tokens, parts, src)
}

func (c *comparisonAST) comparison(src string) (Comparison, error) {
	op, err := ParseOperator(c.Op)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{
		Left:  c.Left.unquoted(src),
		Right: c.Right.unquoted(src),
		Op:    op,
	}, nil
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	q := s[0]
	return (q == '\'' || q == '"') && s[len(s)-1] == q
}

// Token is a lexed piece of a line, for debugging output.
type Token struct {
	Type   string
	Value  string
	Column int
}

// Tokenize splits one line into the tokens the statement grammar sees.
func Tokenize(line string) ([]Token, error) {
	lex, err := lineLexer.Lex("", strings.NewReader(line))
	if err != nil {
		return nil, err
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}

	names := make(map[lexer.TokenType]string)
	for name, typ := range lineLexer.Symbols() {
		names[typ] = name
	}

	var out []Token
	for _, tok := range tokens {
		if tok.EOF() || names[tok.Type] == "Whitespace" {
			continue
		}
		out = append(out, Token{Type: names[tok.Type], Value: tok.Value, Column: tok.Pos.Column})
	}
	return out, nil
}
