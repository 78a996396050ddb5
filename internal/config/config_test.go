package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	require.Equal(t, "mongo", cfg.Database.Driver)
	require.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	require.Equal(t, "filevault", cfg.Database.Name)
	require.Equal(t, "inline", cfg.Storage.Backend)
	require.Equal(t, 15, cfg.Auth.AccessTTLMinutes)
	require.Equal(t, 168, cfg.Auth.RefreshTTLHours)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FILEVAULT_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("FILEVAULT_DATABASE_DRIVER", "sqlite")
	t.Setenv("FILEVAULT_AUTH_JWTSECRET", "env-secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "env-secret", cfg.Auth.JWTSecret)
}
