package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, StoreFile, cfg.Store)
	require.Equal(t, ClockSystem, cfg.Clock)
	require.Equal(t, LockLocal, cfg.Lock)
	require.Equal(t, 400*time.Millisecond, cfg.SlotDuration)
	require.Equal(t, DefaultGenesis, cfg.Genesis)
	require.Equal(t, 5, cfg.MaxRetries)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfgPath := filepath.Join(dir, "landau.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store: memory\ninterval: 5s\npools: a, b\n"), 0o644))
	t.Setenv("LANDAU_LOG_LEVEL", "debug")
	t.Setenv("LANDAU_GENESIS", "2025-06-01T00:00:00Z")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("store", "file", "")
	flags.Int("max-retries", 5, "")
	require.NoError(t, flags.Parse([]string{"--max-retries=2"}))

	cfg, err := Load(cfgPath, flags)
	require.NoError(t, err)
	require.Equal(t, StoreMemory, cfg.Store, "config file beats an unset flag default")
	require.Equal(t, 2, cfg.MaxRetries, "explicit flag wins")
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 5*time.Second, cfg.Interval)
	require.Equal(t, []string{"a", "b"}, cfg.Pools)
	require.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), cfg.Genesis)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LANDAU_LOCK_TTL=3s\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("LANDAU_LOCK_TTL") })

	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, cfg.LockTTL)
}

func TestValidate(t *testing.T) {
	base := Config{Store: StoreMemory, Clock: ClockSystem, SlotDuration: time.Second, Lock: LockLocal}
	require.NoError(t, base.Validate())

	bad := base
	bad.Store = StorePostgres
	require.Error(t, bad.Validate())

	bad = base
	bad.Clock = ClockChain
	require.Error(t, bad.Validate())

	bad = base
	bad.Lock = "zookeeper"
	require.Error(t, bad.Validate())
}
