package logging

import (
	"os"
	"path/filepath"
	"testing"

	"roomdesk/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesServiceFieldsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")

	logger, closer, err := New(
		config.LoggingConfig{Level: "debug", Output: "file", FilePath: path},
		config.AppConfig{Name: "roomdesk", Environment: "test", Version: "1.2.3"},
	)
	require.NoError(t, err)
	require.NotNil(t, closer)

	logger.Info().Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"service":"roomdesk"`)
	assert.Contains(t, string(data), `"env":"test"`)
	assert.Contains(t, string(data), `"version":"1.2.3"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestNewEmptyLevelDefaultsToInfo(t *testing.T) {
	logger, closer, err := New(config.LoggingConfig{}, config.AppConfig{})
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.Equal(t, "info", logger.GetLevel().String())
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Level: "loud"}, config.AppConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown logging.level")
}

func TestNewRejectsUnknownOutput(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Output: "syslog"}, config.AppConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown logging.output")
}

func TestNewFileOutputRequiresPath(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Output: "file"}, config.AppConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file_path")
}
