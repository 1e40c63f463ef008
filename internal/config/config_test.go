package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
app:
  name: roomdesk
  environment: test
telegram:
  bot_token: "123456:test-token"
backend:
  base_url: "http://localhost:5000"
session:
  path: "/tmp/sessions.db"
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "roomdesk", cfg.App.Name)
	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)

	// defaults
	assert.Equal(t, 10, cfg.Backend.TimeoutSeconds)
	assert.Equal(t, 10.0, cfg.Backend.RateRPS)
	assert.Equal(t, 6, cfg.Bot.PaginationSize)
	assert.Equal(t, 5, cfg.Bot.BookingsPaginationSize)
	assert.Equal(t, 600, cfg.Bot.QuoteDebounceMs)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "123456:from-env")

	cfg, err := Load(writeConfig(t, `
telegram:
  bot_token: "${TEST_BOT_TOKEN}"
backend:
  base_url: "http://localhost:5000"
session:
  path: "/tmp/sessions.db"
`))
	require.NoError(t, err)
	assert.Equal(t, "123456:from-env", cfg.Telegram.BotToken)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "MissingBotToken",
			content: `
backend:
  base_url: "http://localhost:5000"
session:
  path: "/tmp/sessions.db"
`,
			wantErr: "telegram bot token is required",
		},
		{
			name: "MissingBaseURL",
			content: `
telegram:
  bot_token: "123456:test"
session:
  path: "/tmp/sessions.db"
`,
			wantErr: "backend base_url is required",
		},
		{
			name: "InvalidBaseURL",
			content: `
telegram:
  bot_token: "123456:test"
backend:
  base_url: "not a url"
session:
  path: "/tmp/sessions.db"
`,
			wantErr: "base_url is invalid",
		},
		{
			name: "MissingSessionPath",
			content: `
telegram:
  bot_token: "123456:test"
backend:
  base_url: "http://localhost:5000"
`,
			wantErr: "session store path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
