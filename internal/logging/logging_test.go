package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestGet_BeforeInitialize(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := Get()
	require.NotNil(t, logger)
	logger.Info("dropped") // must not panic
}

func TestInitialize_Console(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(Config{Level: "info", Format: "console"}, zapcore.AddSync(&buf), false)

	Get().Info("extracted", zap.String("code", "06"))
	Get().Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "unsheet")
	assert.Contains(t, out, "extracted")
	assert.Contains(t, out, `"code": "06"`)
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, colorReset)
}

func TestInitialize_ConsoleColor(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(Config{Level: "debug", Format: "console"}, zapcore.AddSync(&buf), true)

	Get().Warn("careful")

	assert.Contains(t, buf.String(), colorYellow+"WARN"+colorReset)
}

func TestInitialize_JSON(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(Config{Level: "warn", Format: "json"}, zapcore.AddSync(&buf), false)

	Get().Info("ignored")
	Get().Error("extraction failed", zap.String("archive", "sheet10.zip"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "extraction failed", entry["msg"])
	assert.Equal(t, "sheet10.zip", entry["archive"])
}

func TestInitialize_InvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(Config{Level: "chatty", Format: "console"}, zapcore.AddSync(&buf), false)

	Get().Debug("no")
	Get().Info("yes")

	assert.NotContains(t, buf.String(), "no\n")
	assert.Contains(t, buf.String(), "yes")
}

func TestInitialize_OnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var first, second bytes.Buffer
	Initialize(Config{Level: "info"}, zapcore.AddSync(&first), false)
	Initialize(Config{Level: "info"}, zapcore.AddSync(&second), false)

	Get().Info("hello")

	assert.Contains(t, first.String(), "hello")
	assert.Empty(t, second.String())
}

func TestInitialize_File(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logFile := filepath.Join(t.TempDir(), "unsheet.log")
	var console bytes.Buffer
	cfg := DefaultConfig()
	cfg.File = logFile
	Initialize(cfg, zapcore.AddSync(&console), false)

	Get().Info("to both", zap.String("folder", "pca"))
	Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"folder":"pca"`)
	assert.Contains(t, console.String(), "to both")
}
