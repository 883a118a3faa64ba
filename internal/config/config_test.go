package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darshit3596/shreejida/internal/model"
)

// isolate points the user config directory at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, "shreejida", "handle.yaml"), cfg.SlotPath)
	assert.Equal(t, model.DefaultSettings(), cfg.DefaultSettings())
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
slot_path: /var/lib/shreejida/handle.yaml
shop:
  name: Patel Tyres
  tag_line: Since 1998
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/shreejida/handle.yaml", cfg.SlotPath)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	s := cfg.DefaultSettings()
	assert.Equal(t, "Patel Tyres", s.ShopName)
	assert.Equal(t, "Since 1998", s.TagLine)
	assert.Equal(t, model.DefaultSettings().Address, s.Address)
	assert.Equal(t, int64(1), s.InvoiceCounter)
}

func TestLoad_UserConfigDir(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shreejida"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shreejida", "config.yaml"), []byte("log_level: error\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shop:\n  name: From File\n"), 0o644))
	t.Setenv("SHREEJIDA_SHOP_NAME", "From Env")
	t.Setenv("SHREEJIDA_SLOT_PATH", "/tmp/slot.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.Shop.Name)
	assert.Equal(t, "/tmp/slot.yaml", cfg.SlotPath)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidLevel(t *testing.T) {
	isolate(t)
	t.Setenv("SHREEJIDA_LOG_LEVEL", "chatty")

	_, err := Load("")
	assert.Error(t, err)
}
