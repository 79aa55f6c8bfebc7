package logging

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

func GetLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warn":
		return logrus.WarnLevel, nil
	case "", "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.ErrorLevel, fmt.Errorf("invalid log level: %v", level)
	}
}

func GetFormatter(format string) (logrus.Formatter, error) {
	switch format {
	case "", "text":
		return &prettyFormatter{}, nil
	case "json":
		return &logrus.JSONFormatter{}, nil
	case "json-pretty":
		return &logrus.JSONFormatter{PrettyPrint: true}, nil
	default:
		return nil, fmt.Errorf("invalid log format: %v", format)
	}
}

// New returns a logger writing to out at the given level and format.
func New(level, format string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := GetLevel(level)
	if err != nil {
		return nil, err
	}
	formatter, err := GetFormatter(format)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(formatter)
	return logger, nil
}

// prettyFormatter prints `[LEVEL] message` followed by the entry's fields
// sorted by key.
type prettyFormatter struct{}

func (p *prettyFormatter) Format(e *logrus.Entry) ([]byte, error) {
	b := new(bytes.Buffer)

	level := strings.ToUpper(e.Level.String())
	fmt.Fprintf(b, "[%s] %s", level, e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, e.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}
