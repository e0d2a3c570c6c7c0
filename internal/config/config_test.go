package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.6, cfg.Assessment.OptionConfidence)
	assert.Equal(t, 0.6, cfg.Assessment.QuestionConfidence)
	assert.Equal(t, 3, cfg.Chat.HistoryWindow)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
port = 9090

[assessment]
option_confidence = 0.7
question_confidence = 0.8

[database]
driver = "sqlite"
sqlite_path = "/tmp/test.db"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ASSESSMENT_QUESTION_CONFIDENCE", "0.9")
	t.Setenv("CHAT_HISTORY_WINDOW", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, 0.7, cfg.Assessment.OptionConfidence)
	assert.Equal(t, 0.9, cfg.Assessment.QuestionConfidence)
	assert.Equal(t, 5, cfg.Chat.HistoryWindow)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/test.db", cfg.Database.SQLite)
}

func TestLoadRejectsOutOfRangeThreshold(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("ASSESSMENT_OPTION_CONFIDENCE", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assessment.option_confidence")
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Driver = "oracle"

	require.Error(t, cfg.Validate())
}

func TestGetEnvAsFloatFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_FLOAT", "not-a-number")

	assert.Equal(t, 0.25, getEnvAsFloat("SOME_FLOAT", 0.25))
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, "root:@tcp(127.0.0.1:3306)/sarvuday?parseTime=true&loc=Local&charset=utf8mb4", cfg.MySQLDSN())
}
