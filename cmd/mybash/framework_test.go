package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestCase represents a single script run through the CLI
type TestCase struct {
	Name     string            // Test name
	Script   string            // .mb script content
	Args     []string          // Arguments after the script path
	Env      map[string]string // Environment visible to the script
	LogLevel string            // --log-level, defaults to error
	ExitCode int               // Expected exit code
	Stdout   string            // Expected stdout content
	Stderr   string            // Expected stderr substring
}

// RunScriptTest writes the script to a temporary file, runs it and
// validates the results
func RunScriptTest(t *testing.T, testCase TestCase) {
	t.Helper()

	scriptPath := filepath.Join(t.TempDir(), "test.mb")
	if err := os.WriteFile(scriptPath, []byte(testCase.Script), 0o644); err != nil {
		t.Fatalf("Failed to write test script: %v", err)
	}

	exitCode, stdout, stderr := runWith(testCase, append([]string{scriptPath}, testCase.Args...))

	if exitCode != testCase.ExitCode {
		t.Errorf("Expected exit code %d, got %d\nStderr:\n%s", testCase.ExitCode, exitCode, stderr)
	}

	if testCase.Stdout != "" {
		actualStdout := strings.TrimSpace(stdout)
		expectedStdout := strings.TrimSpace(testCase.Stdout)
		if actualStdout != expectedStdout {
			t.Errorf("Stdout mismatch:\nExpected:\n%s\n\nActual:\n%s", expectedStdout, actualStdout)
		}
	}

	if testCase.Stderr != "" {
		expectedStderr := strings.TrimSpace(testCase.Stderr)
		if !strings.Contains(stderr, expectedStderr) {
			t.Errorf("Stderr mismatch:\nExpected to contain:\n%s\n\nActual:\n%s", expectedStderr, stderr)
		}
	}

	if testing.Verbose() {
		fmt.Printf("=== Test: %s ===\n", testCase.Name)
		fmt.Printf("Exit Code: %d\n", exitCode)
		fmt.Printf("Stdout:\n%s\n", stdout)
		fmt.Printf("Stderr:\n%s\n", stderr)
		fmt.Println("=================")
	}
}

func runWith(testCase TestCase, args []string) (int, string, string) {
	p := runParams{logLevel: "error", logFormat: "text"}
	if testCase.LogLevel != "" {
		p.logLevel = testCase.LogLevel
	}

	lookupEnv := func(key string) (string, bool) {
		v, ok := testCase.Env[key]
		return v, ok
	}

	var stdout, stderr bytes.Buffer
	code := run(args, &p, lookupEnv, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// LoadTestDataFile loads a test file from testdata directory
func LoadTestDataFile(filename string) (string, error) {
	content, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// ParseTestCase parses a test case from a structured comment format
func ParseTestCase(content string) *TestCase {
	lines := strings.Split(content, "\n")
	testCase := &TestCase{}

	var scriptLines []string
	var mode string

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(line, "# TEST:"):
			testCase.Name = strings.TrimSpace(strings.TrimPrefix(line, "# TEST:"))
		case strings.HasPrefix(line, "# EXPECT_EXIT:"):
			fmt.Sscanf(line, "# EXPECT_EXIT: %d", &testCase.ExitCode)
		case strings.HasPrefix(line, "# EXPECT_STDOUT:"):
			mode = "stdout"
		case strings.HasPrefix(line, "# EXPECT_STDERR:"):
			mode = "stderr"
		case strings.HasPrefix(line, "# ARGS:"):
			if argsStr := strings.TrimSpace(strings.TrimPrefix(line, "# ARGS:")); argsStr != "" {
				testCase.Args = strings.Fields(argsStr)
			}
		case strings.HasPrefix(line, "# ENV:"):
			key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "# ENV:")), "=")
			if ok {
				if testCase.Env == nil {
					testCase.Env = make(map[string]string)
				}
				testCase.Env[key] = value
			}
		case strings.HasPrefix(line, "# END_"):
			mode = ""
		case strings.HasPrefix(line, "#") && mode != "":
			content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
			switch mode {
			case "stdout":
				if testCase.Stdout != "" {
					testCase.Stdout += "\n"
				}
				testCase.Stdout += content
			case "stderr":
				if testCase.Stderr != "" {
					testCase.Stderr += "\n"
				}
				testCase.Stderr += content
			}
		case !strings.HasPrefix(line, "#"):
			scriptLines = append(scriptLines, raw)
		}
	}

	testCase.Script = strings.Join(scriptLines, "\n")
	return testCase
}
