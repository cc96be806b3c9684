package logger

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
)

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, hclog.Debug, getLogLevel("DEBUG"))
	assert.Equal(t, hclog.Warn, getLogLevel("WARN"))
	assert.Equal(t, hclog.Info, getLogLevel(""))
	assert.Equal(t, hclog.Info, getLogLevel("verbose"))
}

func TestNewWithOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput("test", "warn", false, &buf)

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown", "key", "value")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "key=value")
}

func TestNewWithOutputFallsBackToEnv(t *testing.T) {
	t.Setenv("GUARDIAN_LOG_LEVEL", "error")
	var buf bytes.Buffer
	l := NewWithOutput("test", "", false, &buf)

	l.Warn("hidden")
	assert.Empty(t, buf.String())
	assert.True(t, l.IsError())
}
