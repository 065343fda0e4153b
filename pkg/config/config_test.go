package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadPathsFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHESSWIDGET_CONFIG_DIR", dir)
	t.Setenv("CHESSWIDGET_LOG_FILE", "")
	t.Setenv("CHESSWIDGET_DEBUG", "true")

	p, err := LoadPaths()
	require.NoError(t, err)
	assert.Equal(t, dir, p.ConfigDir)
	assert.True(t, p.Debug)
	assert.Equal(t, filepath.Join(dir, "game_state.json"), p.SaveFile())
	assert.Equal(t, filepath.Join(dir, "encryption_keys.json"), p.KeyFile())
	assert.Equal(t, filepath.Join(dir, "settings.json"), p.SettingsFile())
	assert.Equal(t, filepath.Join(dir, "chesswidget.log"), p.LogFile)
}

func TestLoadPathsBadEnv(t *testing.T) {
	t.Setenv("CHESSWIDGET_DEBUG", "maybe")
	_, err := LoadPaths()
	assert.Error(t, err)
}

func TestLoadSettingsDefaults(t *testing.T) {
	s := LoadSettings(filepath.Join(t.TempDir(), "settings.json"), zap.NewNop())

	assert.True(t, s.AutoSave())
	assert.Equal(t, 0.8, s.Float(KeyOpacity))
	assert.Equal(t, 5555, s.Int(KeyNetworkPort))
	assert.Equal(t, "Ctrl+Alt+C", s.String(KeyShortcut))
	assert.Equal(t, "Player", s.String(KeyPlayerName))
}

func TestLoadSettingsMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"auto_save": false, "opacity": 0.5, "theme": "dark"}`), 0o600))

	s := LoadSettings(path, nil)
	assert.False(t, s.AutoSave())
	assert.Equal(t, 0.5, s.Float(KeyOpacity))
	assert.True(t, s.Bool(KeyAlwaysOnTop), "unset keys keep their defaults")

	v, ok := s.Get("theme")
	require.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestLoadSettingsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"auto_save": fal`), 0o600))

	s := LoadSettings(path, nil)
	assert.Equal(t, len(Defaults()), len(s.Keys()))
	assert.True(t, s.AutoSave())
}

func TestSettingsWrongTypeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"auto_save": "no", "network_port": "x"}`), 0o600))

	s := LoadSettings(path, nil)
	assert.True(t, s.AutoSave())
	assert.Equal(t, 5555, s.Int(KeyNetworkPort))
}

func TestSettingsSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	s := LoadSettings(path, nil)
	s.Set(KeyAutoSave, false)
	require.NoError(t, s.Save())

	reloaded := LoadSettings(path, nil)
	assert.False(t, reloaded.AutoSave())
	assert.Equal(t, s.Keys(), reloaded.Keys())
}

func TestFileSourceRereads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	src := NewFileSource(path, nil)
	assert.True(t, src.AutoSave())

	require.NoError(t, os.WriteFile(path, []byte(`{"auto_save": false}`), 0o600))
	assert.False(t, src.AutoSave())
}
