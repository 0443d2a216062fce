package config_test

import (
	"testing"
	"time"

	"storefront/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.FromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, config.DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestFromViper_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MONGO")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.FromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, config.DriverMongo, cfg.StorageDriver)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestFromViper_RejectsUnknownDriver(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "cassandra")

	_, err := config.FromViper(v)
	assert.ErrorContains(t, err, "unsupported STORAGE_DRIVER")
}

func TestFromViper_JWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	v := viper.New()
	v.Set("STORAGE_DRIVER", config.DriverPostgres)
	_, err := config.FromViper(v)
	assert.ErrorContains(t, err, "JWT_SECRET is required")

	v = viper.New()
	v.Set("STORAGE_DRIVER", config.DriverMemory)
	first, err := config.FromViper(v)
	require.NoError(t, err)
	assert.NotEmpty(t, first.JWTSecret)

	v = viper.New()
	v.Set("STORAGE_DRIVER", config.DriverMemory)
	second, err := config.FromViper(v)
	require.NoError(t, err)
	assert.NotEqual(t, first.JWTSecret, second.JWTSecret)
}
