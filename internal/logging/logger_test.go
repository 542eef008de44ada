package logging

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := NewLogger(LogConfig{Level: LevelDebug, Format: "console", OutputPaths: []string{path}})
	require.NoError(t, err)
	l.Info("hello", String("k", "v"))
	assert.NoError(t, l.Sync())
	assert.FileExists(t, path)
}

func TestNewLogger_RejectsEmptyOutputs(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestNewLogger_RejectsBadLevel(t *testing.T) {
	_, err := NewLogger(LogConfig{Level: "loud", OutputPaths: []string{"stderr"}})
	assert.Error(t, err)
}

func TestFieldsReachZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).Named("engine").With(String("vm", "abc"))

	l.Warn("layer load failed", Err(errors.New("boom")), Int("features", 3), Bool("retry", false))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "engine", entry.LoggerName)
	ctx := entry.ContextMap()
	assert.Equal(t, "abc", ctx["vm"])
	assert.Equal(t, "boom", ctx["error"])
	assert.EqualValues(t, 3, ctx["features"])
}

func TestErrNil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestNopDoesNotPanic(t *testing.T) {
	l := NewNop()
	l.Debug("x")
	l.Named("a").With(Any("b", struct{}{})).Error("y")
}
