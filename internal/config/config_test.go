package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProductionConfig() *Config {
	return &Config{
		Env:        "production",
		DBDriver:   "postgres",
		DBSSLMode:  "require",
		JWTSecret:  "secure-secret-at-least-32-chars-long",
		DBPassword: "secure-password",
		Port:       "8080",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid production", func(_ *Config) {}, false},
		{"production with disabled ssl", func(c *Config) { c.DBSSLMode = "disable" }, true},
		{"production with empty ssl", func(c *Config) { c.DBSSLMode = "" }, true},
		{"production with default secret", func(c *Config) { c.JWTSecret = defaultJWTSecret }, true},
		{"production with short secret", func(c *Config) { c.JWTSecret = "short" }, true},
		{"production with sqlite", func(c *Config) { c.DBDriver = "sqlite" }, true},
		{"production with weak db password", func(c *Config) { c.DBPassword = "password" }, true},
		{"development with sqlite", func(c *Config) { c.Env = "development"; c.DBDriver = "sqlite"; c.DBSSLMode = "" }, false},
		{"unknown driver", func(c *Config) { c.Env = "development"; c.DBDriver = "mysql" }, true},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"sampler ratio out of range", func(c *Config) { c.TracingSamplerRatio = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validProductionConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("DB_DRIVER")
	defer viper.Reset()

	os.Setenv("APP_ENV", "test")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("DB_DRIVER", "SQLite")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "8375", c.Port)
	assert.Equal(t, 25, c.DBMaxOpenConns)
	assert.False(t, c.IsProduction())
}
