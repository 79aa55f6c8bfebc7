package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mybash/internal/logging"
	"mybash/internal/mybash"
	"mybash/internal/source"
)

const usageExample = "example: mybash ./src/main.mb"

type runParams struct {
	logLevel  string
	logFormat string
}

var params = runParams{
	logLevel:  "error",
	logFormat: "text",
}

var rootCommand = &cobra.Command{
	Use:   path.Base(os.Args[0]) + " <script> [args...]",
	Short: "Run a mybash script",
	Long: `Run a mybash script.

Arguments after the script path are available to the script as $1, $2, ...
and the script path itself as $0.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return checkEnvironmentVariables(cmd)
	},
	Run: func(_ *cobra.Command, args []string) {
		os.Exit(run(args, &params, os.LookupEnv, os.Stdout, os.Stderr))
	},
}

func init() {
	rootCommand.PersistentFlags().StringVar(&params.logLevel, "log-level", params.logLevel, "set log level: debug, info, warn or error")
	rootCommand.PersistentFlags().StringVar(&params.logFormat, "log-format", params.logFormat, "set log format: text, json or json-pretty")

	// Everything after the script path belongs to the script.
	rootCommand.Flags().SetInterspersed(false)

	rootCommand.AddCommand(lexCommand, astCommand)
}

// run executes the script named by args[0] and returns the process exit
// code.
func run(args []string, params *runParams, lookupEnv func(string) (string, bool), stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintf(stderr, "missing file path: %s\n", usageExample)
		return 1
	}

	logger, err := logging.New(params.logLevel, params.logFormat, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	scriptPath := args[0]
	src, err := loadSource(scriptPath, stderr)
	if err != nil {
		return 1
	}
	logger.WithField("path", scriptPath).Debug("loaded script")

	program, err := mybash.Parse(scriptPath, src.Text)
	if err != nil {
		reportError(stderr, "Parse error", err, src.Raw)
		return 1
	}
	logger.WithFields(logrus.Fields{
		"path":       scriptPath,
		"statements": len(program.Statements),
	}).Debug("parsed script")

	inv := mybash.Invocation{
		Args:      append([]string{os.Args[0]}, args...),
		LookupEnv: lookupEnv,
	}
	executor := mybash.NewExecutor(program, inv, stdout)
	executor.SetLogger(logger)

	if err := executor.Execute(); err != nil {
		reportError(stderr, "Runtime error", err, src.Raw)
		return 1
	}

	logger.WithField("path", scriptPath).Debug("script finished")
	return 0
}

func loadSource(scriptPath string, stderr io.Writer) (*source.Source, error) {
	src, err := source.Load(scriptPath)
	switch {
	case errors.Is(err, source.ErrNotFound):
		fmt.Fprintf(stderr, "%v\n", err)
	case err != nil:
		fmt.Fprintf(stderr, "Error reading file: %v\n", err)
	}
	return src, err
}

func reportError(w io.Writer, prefix string, err error, raw string) {
	var scriptErr *mybash.ScriptError
	if errors.As(err, &scriptErr) {
		fmt.Fprint(w, mybash.FormatError(scriptErr, raw))
		return
	}
	fmt.Fprintf(w, "%s: %v\n", prefix, err)
}
