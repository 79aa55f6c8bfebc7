package mybash

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func testInvocation(args ...string) Invocation {
	env := map[string]string{
		"HOME": "/home/tester",
		"USER": "tester",
	}
	return Invocation{
		Args: append([]string{"mybash", "script.mb"}, args...),
		LookupEnv: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	}
}

func runScript(t *testing.T, script string, args ...string) (string, error) {
	t.Helper()
	program, err := Parse("script.mb", script)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var out bytes.Buffer
	err = NewExecutor(program, testInvocation(args...), &out).Execute()
	return out.String(), err
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name   string
		script string
		args   []string
		want   string
	}{
		{
			name:   "echo an int variable",
			script: "age: int = 30\necho age",
			want:   "30\n",
		},
		{
			name: "else branch runs when condition is false",
			script: `age: int = 30
echo age
if age > 40
do echo 'I am old'
else
do echo 'I am still young'
endif`,
			want: "30\nI am still young\n",
		},
		{
			name:   "braced reference inside a string",
			script: "name: str = 'Jone'\necho \"Hello, ${name}\"",
			want:   "Hello, Jone\n",
		},
		{
			name:   "bare reference stops at non-name characters",
			script: "name: str = Jone\necho $name!",
			want:   "Jone!\n",
		},
		{
			name:   "echo a literal that is not a variable",
			script: "echo some_var",
			want:   "some_var\n",
		},
		{
			name:   "positional arguments",
			script: "echo $1\necho ${2}\necho $0",
			args:   []string{"first", "second"},
			want:   "first\nsecond\nscript.mb\n",
		},
		{
			name:   "missing positional argument",
			script: "echo [$3]",
			args:   []string{"first"},
			want:   "[]\n",
		},
		{
			name:   "environment fallback",
			script: "echo $HOME and ${USER}",
			want:   "/home/tester and tester\n",
		},
		{
			name:   "variables shadow the environment",
			script: "HOME: str = /tmp\necho $HOME",
			want:   "/tmp\n",
		},
		{
			name:   "unknown reference expands to nothing",
			script: "echo \"<$nothing_here>\"",
			want:   "<>\n",
		},
		{
			name:   "lone dollar is kept",
			script: "echo 'costs $ 5'",
			want:   "costs $ 5\n",
		},
		{
			name:   "substituted text resolves as a variable",
			script: "target: str = age\nage: int = 7\necho $target",
			want:   "7\n",
		},
		{
			name:   "string declarations expand at bind time",
			script: "who: str = world\ngreeting: str = hello $who\necho greeting",
			want:   "hello world\n",
		},
		{
			name:   "bool variable",
			script: "is_married: bool = false\necho is_married",
			want:   "false\n",
		},
		{
			name:   "top level declarations are visible before their line",
			script: "echo later\nlater: int = 5",
			want:   "5\n",
		},
		{
			name:   "then branch declaration binds when taken",
			script: "if 1 == 1\ndo late: str = hi\nendif\necho late",
			want:   "hi\n",
		},
		{
			name:   "branch declaration is not bound when skipped",
			script: "if 1 == 2\ndo late: str = hi\nendif\necho late",
			want:   "late\n",
		},
		{
			name:   "false condition without else does nothing",
			script: "if 3 < 2\ndo echo never\nendif\necho done",
			want:   "done\n",
		},
		{
			name:   "ordering on int variables",
			script: "age: int = 30\nif age >= 30\ndo echo adult\nelse\ndo echo minor\nendif",
			want:   "adult\n",
		},
		{
			name:   "equality on text operands",
			script: "if $1 == first\ndo echo matched\nelse\ndo echo missed\nendif",
			args:   []string{"first"},
			want:   "matched\n",
		},
		{
			name:   "equality across variants is false",
			script: "n: str = 5\nif n != 5\ndo echo different\nendif",
			want:   "different\n",
		},
		{
			name:   "quoted operands",
			script: "name: str = Jone\nif name == 'Jone'\ndo echo hi Jone\nendif",
			want:   "hi Jone\n",
		},
		{
			name:   "reassignment in a branch",
			script: "count: int = 1\nif count == 1\ndo count: int = 2\nendif\necho count",
			want:   "2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runScript(t, tt.script, tt.args...)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected output %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExecuteTypeMismatch(t *testing.T) {
	out, err := runScript(t, "echo before\nname: str = bob\nif name > 3\ndo echo x\nendif\necho after")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("Expected ErrTypeMismatch, got %v", err)
	}
	if out != "before\n" {
		t.Errorf("Execution should stop at the failing condition, got output %q", out)
	}

	var scriptErr *ScriptError
	if !errors.As(err, &scriptErr) {
		t.Fatalf("Expected *ScriptError, got %T", err)
	}
	if scriptErr.Location.Line != 3 {
		t.Errorf("Expected error on line 3, got %d", scriptErr.Location.Line)
	}
	if scriptErr.Code != "if name > 3" {
		t.Errorf("Expected code %q, got %q", "if name > 3", scriptErr.Code)
	}
}

func TestExecutorLookup(t *testing.T) {
	program, err := Parse("script.mb", "n: str = 5\nage: int = 30\nflag: bool = true")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	exec := NewExecutor(program, testInvocation(), &bytes.Buffer{})

	tests := []struct {
		name string
		want Value
	}{
		{"n", StrValue("5")},
		{"age", IntValue(30)},
		{"flag", BoolValue(true)},
	}
	for _, tt := range tests {
		got, ok := exec.Lookup(tt.name)
		if !ok {
			t.Errorf("Expected %s to be bound", tt.name)
			continue
		}
		if !Equal(got, tt.want) {
			t.Errorf("Lookup(%s) = %#v, want %#v", tt.name, got, tt.want)
		}
	}

	if _, ok := exec.Lookup("missing"); ok {
		t.Error("Expected missing to be unbound")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestExecuteWriteError(t *testing.T) {
	program, err := Parse("script.mb", "echo hi")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	err = NewExecutor(program, testInvocation(), failingWriter{}).Execute()
	var scriptErr *ScriptError
	if !errors.As(err, &scriptErr) {
		t.Fatalf("Expected *ScriptError, got %v", err)
	}
	if scriptErr.Location.Line != 1 {
		t.Errorf("Expected error on line 1, got %d", scriptErr.Location.Line)
	}
}

func TestExecutorLogging(t *testing.T) {
	program, err := Parse("script.mb", "age: int = 30\nif age > 40\ndo echo old\nelse\ndo echo young\nendif")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	exec := NewExecutor(program, testInvocation(), &bytes.Buffer{})
	exec.SetLogger(logger)
	if err := exec.Execute(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var sawElse bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "condition false, running else" {
			sawElse = true
			if entry.Data["line"] != 2 {
				t.Errorf("Expected line 2 on condition entry, got %v", entry.Data["line"])
			}
		}
	}
	if !sawElse {
		t.Error("Expected a debug entry for the else branch")
	}
}

func TestStrDeclarationKeepsStrType(t *testing.T) {
	program, err := Parse("script.mb", "age: int = 30\nalias: str = age\nif alias > 20\ndo echo older\nendif")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	exec := NewExecutor(program, testInvocation(), &bytes.Buffer{})

	err = exec.Execute()
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("Expected ErrTypeMismatch comparing a str binding, got %v", err)
	}

	got, ok := exec.Lookup("alias")
	if !ok {
		t.Fatal("Expected alias to be bound")
	}
	if !Equal(got, StrValue("30")) {
		t.Errorf("Expected alias to hold str 30, got %#v", got)
	}
}
