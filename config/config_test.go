package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/rlog/core"
	"github.com/philipp01105/rlog/reporter"
	"github.com/philipp01105/rlog/reporter/consolereporter"
	"github.com/philipp01105/rlog/reporter/filereporter"
	"github.com/philipp01105/rlog/reporter/logrusreporter"
	"github.com/philipp01105/rlog/reporter/zapreporter"
	"github.com/philipp01105/rlog/reporter/zerologreporter"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default().Level, cfg.Level)
	assert.True(t, cfg.Console.Enabled)
	assert.Equal(t, "text", cfg.Console.Format)
	assert.False(t, cfg.File.Enabled)
	assert.False(t, cfg.Zap.Enabled)
	assert.Empty(t, cfg.Fields)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("RLOG_LEVEL", "debug")
	t.Setenv("RLOG_CALLER", "true")
	t.Setenv("RLOG_FIELDS", "service=api, region = eu,broken")
	t.Setenv("RLOG_CONSOLE_FORMAT", "json")
	t.Setenv("RLOG_CONSOLE_ASYNC", "true")
	t.Setenv("RLOG_CONSOLE_BUFFER_SIZE", "64")
	t.Setenv("RLOG_CONSOLE_OVERFLOW", "drop_oldest")
	t.Setenv("RLOG_FILE_ENABLED", "true")
	t.Setenv("RLOG_FILE_PATH", "/tmp/app.log")
	t.Setenv("RLOG_FILE_MAX_SIZE_MB", "10")
	t.Setenv("RLOG_FILE_ROTATE_INTERVAL", "24h")
	t.Setenv("RLOG_ZAP_ENABLED", "true")
	t.Setenv("RLOG_ZEROLOG_CONSOLE", "true")
	t.Setenv("RLOG_LOGRUS_ENABLED", "true")
	t.Setenv("RLOG_LOGRUS_OUTPUT", "stderr")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, cfg.Caller)
	assert.Equal(t, map[string]string{"service": "api", "region": "eu"}, cfg.Fields)
	assert.Equal(t, "json", cfg.Console.Format)
	assert.True(t, cfg.Console.Async)
	assert.Equal(t, 64, cfg.Console.BufferSize)
	assert.Equal(t, "drop_oldest", cfg.Console.Overflow)
	assert.True(t, cfg.File.Enabled)
	assert.Equal(t, "/tmp/app.log", cfg.File.Path)
	assert.Equal(t, 10, cfg.File.MaxSizeMB)
	assert.Equal(t, 24*time.Hour, cfg.File.RotateInterval)
	assert.True(t, cfg.Zap.Enabled)
	assert.False(t, cfg.Zerolog.Enabled)
	assert.True(t, cfg.Zerolog.Console)
	assert.Equal(t, "stdout", cfg.Zerolog.Output)
	assert.True(t, cfg.Logrus.Enabled)
	assert.Equal(t, "stderr", cfg.Logrus.Output)
}

func TestLoad_InvalidLevel(t *testing.T) {
	t.Setenv("RLOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidLevel)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Level = "loud"
	cfg.Console.Format = "xml"
	cfg.Console.Output = "printer"
	cfg.File.Enabled = true
	cfg.File.MaxBackups = -1

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"level", "console.format", "console.output", "file.path", "rotation limits"} {
		assert.Contains(t, msg, want)
	}
}

func TestPresets(t *testing.T) {
	dev := NewDevelopment()
	require.NoError(t, dev.Validate())
	assert.Equal(t, "debug", dev.Level)
	assert.True(t, dev.Caller)

	prod := NewProduction()
	require.NoError(t, prod.Validate())
	assert.Equal(t, "json", prod.Console.Format)
	assert.True(t, prod.Console.Async)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("RLOG_LEVEL=trace\nRLOG_CONSOLE_OUTPUT=stderr\n"), 0644))

	// Registered so the variables are restored after the test
	t.Setenv("RLOG_LEVEL", "")
	t.Setenv("RLOG_CONSOLE_OUTPUT", "")
	os.Unsetenv("RLOG_LEVEL")
	os.Unsetenv("RLOG_CONSOLE_OUTPUT")

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.Level)
	assert.Equal(t, "stderr", cfg.Console.Output)
}

func TestLoadDotEnv_NoFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestLoadDotEnv_ExistingWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RLOG_LEVEL=trace\n"), 0644))
	t.Setenv("RLOG_LEVEL", "warn")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "warn", os.Getenv("RLOG_LEVEL"))
}

func TestBuild_Console(t *testing.T) {
	var out bytes.Buffer
	cfg := Default()
	cfg.Console.TimestampFormat = "15:04"
	cfg.Fields = map[string]string{"b": "2", "a": "1"}

	l, err := Build(cfg, WithStdout(&out))
	require.NoError(t, err)

	l.Info("hello")
	l.Debug("hidden")
	require.NoError(t, l.Close())

	line := out.String()
	assert.Contains(t, line, "[INFO] hello a=1 b=2")
	assert.NotContains(t, line, "hidden")

	reps := l.Reporters()
	require.Len(t, reps, 1)
	assert.IsType(t, &consolereporter.SyncReporter{}, reps[0])
}

func TestBuild_Stderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cfg := Default()
	cfg.Console.Output = "stderr"

	l, err := Build(cfg, WithStdout(&stdout), WithStderr(&stderr))
	require.NoError(t, err)
	l.Warn("to stderr")

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "to stderr")
}

func TestBuild_AllReporters(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	cfg := NewProduction()
	cfg.Console.Output = "stderr"
	cfg.Console.Overflow = "block"
	cfg.File.Enabled = true
	cfg.File.Path = path
	cfg.Zap.Enabled = true

	l, err := Build(cfg, WithStdout(&stdout), WithStderr(&stderr))
	require.NoError(t, err)

	reps := l.Reporters()
	require.Len(t, reps, 3)
	assert.IsType(t, &consolereporter.AsyncReporter{}, reps[0])
	assert.IsType(t, &filereporter.SyncReporter{}, reps[1])
	assert.IsType(t, &zapreporter.Reporter{}, reps[2])

	l.Errorw("disk", core.Field{Key: "free", Type: core.IntType, Int64: 3})
	require.NoError(t, l.Close())

	// console JSON on stderr, zap JSON on stdout
	for _, out := range []*bytes.Buffer{&stderr, &stdout} {
		var m map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &m), out.String())
		assert.Equal(t, float64(3), m["free"])
		assert.Equal(t, "disk", m["message"])
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"disk"`)
}

func TestBuild_BackendReporters(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cfg := Default()
	cfg.Console.Enabled = false
	cfg.Zerolog.Enabled = true
	cfg.Logrus.Enabled = true
	cfg.Logrus.Output = "stderr"

	l, err := Build(cfg, WithStdout(&stdout), WithStderr(&stderr))
	require.NoError(t, err)

	reps := l.Reporters()
	require.Len(t, reps, 2)
	assert.IsType(t, &zerologreporter.Reporter{}, reps[0])
	assert.IsType(t, &logrusreporter.Reporter{}, reps[1])

	l.Infow("ready", core.Field{Key: "port", Type: core.IntType, Int64: 8080})

	var zm, lm map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &zm), stdout.String())
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(stderr.Bytes()), &lm), stderr.String())
	assert.Equal(t, "ready", zm["message"])
	assert.Equal(t, "ready", lm["msg"])
	assert.Equal(t, float64(8080), zm["port"])
	assert.Equal(t, float64(8080), lm["port"])
}

func TestValidate_BackendOutputs(t *testing.T) {
	cfg := Default()
	cfg.Zerolog.Enabled = true
	cfg.Zerolog.Output = "syslog"
	cfg.Logrus.Enabled = true
	cfg.Logrus.Output = "file"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zerolog.output")
	assert.Contains(t, err.Error(), "logrus.output")
}

func TestBuild_Invalid(t *testing.T) {
	cfg := Default()
	cfg.Level = "nope"
	_, err := Build(cfg)
	assert.ErrorIs(t, err, core.ErrInvalidLevel)

	assert.Panics(t, func() { MustBuild(cfg) })
}

func TestOverflowPolicy(t *testing.T) {
	assert.Nil(t, overflowPolicy(""))

	p := overflowPolicy("drop_oldest")
	for _, l := range core.AllLevels() {
		assert.Equal(t, reporter.DropOldest, p[l])
	}
}
