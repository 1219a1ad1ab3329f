package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("world", &buf, INFO)

	logger.Debug("скрыто %d", 1)
	logger.Info("spawn resolved at y=%d", 70)
	logger.Warn("queue full")

	out := buf.String()
	assert.NotContains(t, out, "скрыто")
	assert.Contains(t, out, "[INFO] [world] spawn resolved at y=70")
	assert.Contains(t, out, "[WARN] [world] queue full")
}

func TestGlobalFunctions_NoopWithoutInit(t *testing.T) {
	SetDefaultLogger(nil)
	assert.NotPanics(t, func() {
		Info("ничего не произойдет")
		Error("и тут тоже")
	})
}

func TestGlobalFunctions_UseDefault(t *testing.T) {
	var buf bytes.Buffer
	SetDefaultLogger(NewWriterLogger("", &buf, DEBUG))
	defer SetDefaultLogger(nil)

	Debug("tick %d", 3)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(buf.String()), "[DEBUG] tick 3"))
}

func TestLoggerManager_FileLogger(t *testing.T) {
	prev := LogDir
	LogDir = t.TempDir()
	defer func() { LogDir = prev }()

	lm := &LoggerManager{loggers: make(map[string]*Logger)}
	a, err := lm.GetLogger("storage")
	assert.NoError(t, err)
	b, err := lm.GetLogger("storage")
	assert.NoError(t, err)
	assert.Same(t, a, b)

	assert.NoError(t, lm.SetLogLevel("storage", ERROR, DEBUG))
	assert.Error(t, lm.SetLogLevel("missing", ERROR, DEBUG))
	assert.NoError(t, lm.CloseAll())
}

func TestGetStorageLogger_Shared(t *testing.T) {
	prev := LogDir
	LogDir = t.TempDir()
	defer func() { LogDir = prev }()

	l := GetStorageLogger()
	assert.Same(t, l, GetComponentLogger("storage"))
	assert.NoError(t, GetLoggerManager().CloseAll())
}
