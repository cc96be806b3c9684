package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// New builds the service logger. level comes from config; when empty the
// GUARDIAN_LOG_LEVEL env variable is used, then INFO.
func New(name, level string, json bool) hclog.Logger {
	return NewWithOutput(name, level, json, os.Stdout)
}

// NewWithOutput is New with an explicit writer, mostly for tests.
func NewWithOutput(name, level string, json bool, out io.Writer) hclog.Logger {
	if level == "" {
		level = os.Getenv("GUARDIAN_LOG_LEVEL")
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      getLogLevel(strings.ToUpper(level)),
		Output:     out,
		JSONFormat: json,
	})
}

func getLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}
