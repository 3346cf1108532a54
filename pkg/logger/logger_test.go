package logger

import (
	"os"
	"path/filepath"
	"testing"

	"paperly/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLogger_WritesJSONFile(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	file := filepath.Join(t.TempDir(), "logs", "app.log")

	l, err := InitLogger(config.LogConfig{Level: "warn", Filename: file, MaxSize: 1})
	require.NoError(t, err)
	require.NotNil(t, l)

	Info("不会写入")
	Warn("缓存不可用", zap.String("driver", "redis"))
	_ = Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"缓存不可用"`)
	assert.Contains(t, string(data), `"driver":"redis"`)
	assert.NotContains(t, string(data), "不会写入")
}

func TestInitLogger_WithoutFile(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = InitLogger(config.LogConfig{Level: "info"})
	require.NoError(t, err)
	Info("discarded")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, "debug", getLogLevel("debug").String())
	assert.Equal(t, "error", getLogLevel("error").String())
	assert.Equal(t, "info", getLogLevel("bogus").String())
}
