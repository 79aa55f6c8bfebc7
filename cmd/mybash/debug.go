package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mybash/internal/mybash"
)

const maxTableFieldLen = 50

var lexCommand = &cobra.Command{
	Use:   "lex <script>",
	Short: "Print the tokens of every statement line",
	PreRunE: func(_ *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no script specified")
		}
		return nil
	},
	Run: func(_ *cobra.Command, args []string) {
		os.Exit(lex(args, os.Stdout, os.Stderr))
	},
}

var astCommand = &cobra.Command{
	Use:   "ast <script>",
	Short: "Print the parsed program as YAML",
	PreRunE: func(_ *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no script specified")
		}
		return nil
	},
	Run: func(_ *cobra.Command, args []string) {
		os.Exit(dumpAST(args, os.Stdout, os.Stderr))
	},
}

func lex(args []string, stdout, stderr io.Writer) int {
	src, err := loadSource(args[0], stderr)
	if err != nil {
		return 1
	}

	table := tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"Line", "Col", "Kind", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)

	count := 0
	for _, line := range mybash.SplitLines(src.Text) {
		tokens, err := mybash.Tokenize(line.Text)
		if err != nil {
			fmt.Fprintf(stderr, "Lexer error on line %d: %v\n", line.Num, err)
			return 1
		}
		for _, tok := range tokens {
			table.Append([]string{
				strconv.Itoa(line.Num),
				strconv.Itoa(line.Indent + tok.Column),
				tok.Type,
				truncateStr(tok.Value),
			})
			count++
		}
	}

	table.Render()
	fmt.Fprintf(stdout, "Lexed %d tokens\n", count)
	return 0
}

func truncateStr(s string) string {
	if len(s) <= maxTableFieldLen {
		return s
	}
	return s[:maxTableFieldLen-3] + "..."
}

type programDoc struct {
	File       string    `yaml:"file"`
	Statements []nodeDoc `yaml:"statements"`
}

type nodeDoc struct {
	Kind  string   `yaml:"kind"`
	Line  int      `yaml:"line"`
	Name  string   `yaml:"name,omitempty"`
	Type  string   `yaml:"type,omitempty"`
	Value string   `yaml:"value,omitempty"`
	Text  string   `yaml:"text,omitempty"`
	If    string   `yaml:"if,omitempty"`
	Then  *nodeDoc `yaml:"then,omitempty"`
	Else  *nodeDoc `yaml:"else,omitempty"`
}

func dumpAST(args []string, stdout, stderr io.Writer) int {
	src, err := loadSource(args[0], stderr)
	if err != nil {
		return 1
	}

	program, err := mybash.Parse(args[0], src.Text)
	if err != nil {
		reportError(stderr, "Parse error", err, src.Raw)
		return 1
	}

	doc := programDoc{File: program.Filename}
	for _, stmt := range program.Statements {
		doc.Statements = append(doc.Statements, *describe(stmt))
	}

	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		fmt.Fprintf(stderr, "Error encoding AST: %v\n", err)
		return 1
	}
	if err := enc.Close(); err != nil {
		fmt.Fprintf(stderr, "Error encoding AST: %v\n", err)
		return 1
	}
	return 0
}

func describe(stmt mybash.Statement) *nodeDoc {
	switch s := stmt.(type) {
	case *mybash.Variable:
		return &nodeDoc{Kind: "variable", Line: s.Line, Name: s.Name, Type: s.Type.String(), Value: s.Value.String()}
	case *mybash.Echo:
		return &nodeDoc{Kind: "echo", Line: s.Line, Text: s.Text}
	case *mybash.Condition:
		n := &nodeDoc{Kind: "condition", Line: s.Line, If: s.Cond.String(), Then: describe(s.Then)}
		if s.Else != nil {
			n.Else = describe(s.Else)
		}
		return n
	default:
		return &nodeDoc{Kind: fmt.Sprintf("%T", stmt), Line: stmt.Pos()}
	}
}
