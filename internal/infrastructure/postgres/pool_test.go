package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticashop/backoffice-api/pkg/config"
)

func TestPoolConfig(t *testing.T) {
	cfg := config.DBConfig{
		Host: "127.0.0.1", Port: 5432, User: "app", Password: "secreto", DBName: "ticashop", SSLMode: "disable",
		MaxConns: 8, MinConns: 1, TimeZone: "America/Santiago",
	}

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(1), pc.MinConns)
	assert.Equal(t, "America/Santiago", pc.ConnConfig.RuntimeParams["timezone"])
	assert.Equal(t, "127.0.0.1", pc.ConnConfig.Host)
	assert.Equal(t, "ticashop", pc.ConnConfig.Database)
	assert.NotNil(t, pc.AfterConnect)
}

func TestPoolConfig_DatabaseURLTienePrioridad(t *testing.T) {
	cfg := config.DBConfig{
		DatabaseURL: "postgres://app:x@10.0.0.5:6543/ventas?sslmode=disable",
		Host:        "ignorado", Port: 5432, DBName: "otro",
		MaxConns: 4, ForceIPv4: true,
	}

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", pc.ConnConfig.Host)
	assert.Equal(t, uint16(6543), pc.ConnConfig.Port)
	assert.Equal(t, "ventas", pc.ConnConfig.Database)
	assert.Equal(t, int32(4), pc.MaxConns)
	_, hasTZ := pc.ConnConfig.RuntimeParams["timezone"]
	assert.False(t, hasTZ)
}

func TestPoolConfig_DSNInvalido(t *testing.T) {
	_, err := poolConfig(config.DBConfig{DatabaseURL: "postgres://%zz"})
	assert.Error(t, err)
}
