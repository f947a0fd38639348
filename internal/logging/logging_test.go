package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), "log line must be JSON: %s", buf.String())
	return out
}

func TestSetup_JSONRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Level: "info", Format: "json", Output: &buf})

	logger.Info("hello",
		slog.String("component", "test"),
		slog.Int("count", 3),
		slog.Bool("ok", true),
		slog.Any("error", errors.New("boom")),
	)

	line := decodeLine(t, &buf)
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "test", line["component"])
	assert.EqualValues(t, 3, line["count"])
	assert.Equal(t, true, line["ok"])
	assert.Equal(t, "boom", line["error"])
	assert.Contains(t, line, "time")
}

func TestSetup_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Level: "warn", Output: &buf})

	logger.Info("dropped")
	assert.Zero(t, buf.Len(), "info must be filtered at warn level")

	logger.Warn("kept")
	assert.Equal(t, "kept", decodeLine(t, &buf)["msg"])
}

func TestHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Level: "debug", Output: &buf})

	logger.With(slog.String("component", "engine")).
		WithGroup("stats").
		Debug("tick", slog.Int("total", 5), slog.Duration("took", 2*time.Millisecond))

	line := decodeLine(t, &buf)
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "engine", line["component"], "attrs bound before the group stay unqualified")
	assert.EqualValues(t, 5, line["stats.total"])
}

func TestHandler_InlineGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Output: &buf})

	logger.Info("startup", slog.Group("build", slog.String("version", "dev")))

	assert.Equal(t, "dev", decodeLine(t, &buf)["build.version"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("DEBUG").String())
	assert.Equal(t, "warn", parseLevel("warning").String())
	assert.Equal(t, "info", parseLevel("").String())
	assert.Equal(t, "trace", parseLevel("trace").String())
}
