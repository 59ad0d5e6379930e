package database

import (
	"testing"
	"time"

	"storefront/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	base := config.DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "postgres",
		Password:        "secret",
		Database:        "storefront",
		MaxConnections:  20,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	t.Run("service settings", func(t *testing.T) {
		cfg := base
		cfg.MaxConnIdleTime = 2 * time.Minute
		cfg.HealthCheckPeriod = 15 * time.Second
		cfg.StatementTimeout = 5 * time.Second

		pc, err := PoolConfig(cfg)
		require.NoError(t, err)

		assert.Equal(t, int32(20), pc.MaxConns)
		assert.Equal(t, int32(2), pc.MinConns)
		assert.Equal(t, 5*time.Minute, pc.MaxConnLifetime)
		assert.Equal(t, 2*time.Minute, pc.MaxConnIdleTime)
		assert.Equal(t, 15*time.Second, pc.HealthCheckPeriod)
		assert.Equal(t, "storefront-checkout", pc.ConnConfig.RuntimeParams["application_name"])
		assert.Equal(t, "5000", pc.ConnConfig.RuntimeParams["statement_timeout"])
	})

	t.Run("zero durations keep pool defaults", func(t *testing.T) {
		defaults, err := PoolConfig(base)
		require.NoError(t, err)

		assert.Positive(t, defaults.MaxConnIdleTime)
		assert.Positive(t, defaults.HealthCheckPeriod)
		assert.NotContains(t, defaults.ConnConfig.RuntimeParams, "statement_timeout")
	})
}
