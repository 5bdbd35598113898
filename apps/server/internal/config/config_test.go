package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phase10-tracker/apps/server/internal/store"
)

func TestParseDefaults(t *testing.T) {
	fset := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := Parse(fset, nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, store.ModeSQLite, cfg.StoreMode)
	assert.Equal(t, 2, cfg.MinPlayers)
	assert.Equal(t, 6, cfg.MaxPlayers)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.PINHash)
}

func TestParseEnvAndFlagOverrides(t *testing.T) {
	t.Setenv("PHASE10_STORE", "mem")
	t.Setenv("PHASE10_MAX_PLAYERS", "4")

	fset := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := Parse(fset, []string{"-addr", "127.0.0.1:9999"})
	require.NoError(t, err)

	assert.Equal(t, store.ModeMemory, cfg.StoreMode)
	assert.Equal(t, 4, cfg.MaxPlayers)
	assert.Equal(t, "127.0.0.1:9999", cfg.Addr)
}

func TestParseRejectsUnknownStore(t *testing.T) {
	fset := flag.NewFlagSet("server", flag.ContinueOnError)
	_, err := Parse(fset, []string{"-store", "redis"})
	assert.Error(t, err)
}

func TestParseRejectsBadPlayerLimits(t *testing.T) {
	t.Setenv("PHASE10_MIN_PLAYERS", "5")
	t.Setenv("PHASE10_MAX_PLAYERS", "3")
	fset := flag.NewFlagSet("server", flag.ContinueOnError)
	_, err := Parse(fset, nil)
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("PHASE10_LOG_LEVEL=debug\n"), 0o600))
	t.Setenv("PHASE10_LOG_LEVEL", "")
	os.Unsetenv("PHASE10_LOG_LEVEL")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "debug", os.Getenv("PHASE10_LOG_LEVEL"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
