package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		JWT:        JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
		Database:   DatabaseConfig{Host: "localhost", User: "footstep", DBName: "footstep"},
		Redis:      RedisConfig{Addr: "localhost:6379"},
		Moderation: ModerationConfig{ReportThreshold: 3, BanDays: 30},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := validConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("short secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWT.Secret = "short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing threshold", func(t *testing.T) {
		cfg := validConfig()
		cfg.Moderation.ReportThreshold = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, 3, cfg.Moderation.ReportThreshold)
	assert.Equal(t, 30, cfg.Moderation.BanDays)
	assert.Equal(t, 30*24*time.Hour, cfg.Moderation.BanDuration())
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "8080", cfg.Server.Port)
}
