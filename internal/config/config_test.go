package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"PORT", "LOG_LEVEL", "LOG_DIR", "API_KEY", "DAILY_CHECK_HOUR",
		"DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME",
	}
	for _, v := range vars {
		// t.Setenv registers the restore; unset after so the test
		// starts from a clean slate.
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

// TestLoad tests configuration loading from environment
func TestLoad(t *testing.T) {
	t.Run("loads config with defaults when no env vars set", func(t *testing.T) {
		clearEnvVars(t)
		// Must set API_KEY or it fails validation
		t.Setenv("API_KEY", "test-key")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port, "Should use default port")
		assert.Equal(t, "INFO", cfg.LogLevel)
		assert.Equal(t, "postgres", cfg.DBUser)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "lifecycle", cfg.DBName)
		assert.Equal(t, 3, cfg.DailyCheckHour)
		assert.Equal(t, "test-key", cfg.APIKey)
	})

	t.Run("loads config from environment variables", func(t *testing.T) {
		clearEnvVars(t)

		t.Setenv("PORT", "3000")
		t.Setenv("API_KEY", "custom-api-key")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("DAILY_CHECK_HOUR", "5")
		t.Setenv("DB_USER", "customuser")
		t.Setenv("DB_PASSWORD", "custompass")
		t.Setenv("DB_HOST", "db.example.com")
		t.Setenv("DB_PORT", "5433")
		t.Setenv("DB_NAME", "customdb")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, "custom-api-key", cfg.APIKey)
		assert.Equal(t, "DEBUG", cfg.LogLevel)
		assert.Equal(t, 5, cfg.DailyCheckHour)
		assert.Equal(t, "customuser", cfg.DBUser)
		assert.Equal(t, "custompass", cfg.DBPassword)
		assert.Equal(t, "db.example.com", cfg.DBHost)
		assert.Equal(t, "5433", cfg.DBPort)
		assert.Equal(t, "customdb", cfg.DBName)
	})

	t.Run("returns error when API_KEY is missing", func(t *testing.T) {
		clearEnvVars(t)
		os.Unsetenv("API_KEY")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "API_KEY")
		assert.Contains(t, err.Error(), "must be set")
	})

	t.Run("returns error for invalid PORT", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "test-key")
		t.Setenv("PORT", "not-a-number")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "PORT")
	})

	t.Run("returns error for out of range DAILY_CHECK_HOUR", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "test-key")
		t.Setenv("DAILY_CHECK_HOUR", "24")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "DAILY_CHECK_HOUR")
	})
}

func TestGetDBConnString(t *testing.T) {
	cfg := &Config{
		DBUser:     "u",
		DBPassword: "p",
		DBHost:     "h",
		DBPort:     "5432",
		DBName:     "d",
	}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.GetDBConnString())
}

func TestValidateEnv(t *testing.T) {
	setAll := func(t *testing.T) {
		t.Setenv("ENV_SCHEMA_VERSION", ExpectedEnvSchemaVersion)
		t.Setenv("DB_USER", "u")
		t.Setenv("DB_PASSWORD", "p")
		t.Setenv("DB_HOST", "h")
		t.Setenv("DB_PORT", "5432")
		t.Setenv("DB_NAME", "d")
		t.Setenv("API_KEY", "k")
	}

	t.Run("passes when all required vars set", func(t *testing.T) {
		setAll(t)
		assert.NoError(t, ValidateEnv())
	})

	t.Run("fails on missing schema version", func(t *testing.T) {
		setAll(t)
		os.Unsetenv("ENV_SCHEMA_VERSION")
		err := ValidateEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ENV_SCHEMA_VERSION")
	})

	t.Run("fails on schema version mismatch", func(t *testing.T) {
		setAll(t)
		t.Setenv("ENV_SCHEMA_VERSION", "0.9")
		err := ValidateEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mismatch")
	})

	t.Run("names missing variables", func(t *testing.T) {
		setAll(t)
		os.Unsetenv("DB_PASSWORD")
		os.Unsetenv("API_KEY")
		err := ValidateEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_PASSWORD")
		assert.Contains(t, err.Error(), "API_KEY")
	})

	t.Run("warns on example values", func(t *testing.T) {
		setAll(t)
		t.Setenv("API_KEY", "generate_with_openssl_rand_hex_32")
		warnings, err := ValidateEnvWithWarnings()
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "API_KEY")
	})
}
