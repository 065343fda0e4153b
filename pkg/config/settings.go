package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// Setting keys.
const (
	KeyOpacity        = "opacity"
	KeyShortcut       = "shortcut"
	KeyAlwaysOnTop    = "always_on_top"
	KeyStartMinimized = "start_minimized"
	KeyAutoSave       = "auto_save"
	KeySoundEnabled   = "sound_enabled"
	KeyNetworkPort    = "network_port"
	KeyPlayerName     = "player_name"
)

// Defaults returns a fresh copy of the default settings.
func Defaults() map[string]any {
	return map[string]any{
		KeyOpacity:        0.8,
		KeyShortcut:       "Ctrl+Alt+C",
		KeyAlwaysOnTop:    true,
		KeyStartMinimized: false,
		KeyAutoSave:       true,
		KeySoundEnabled:   true,
		KeyNetworkPort:    5555,
		KeyPlayerName:     "Player",
	}
}

// Settings is a flat key/value map: defaults with the user's overrides
// merged on top.
type Settings struct {
	path   string
	values map[string]any
}

// LoadSettings never fails. A missing file yields the defaults; a
// malformed one is ignored with a warning.
func LoadSettings(path string, logger *zap.Logger) *Settings {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Settings{path: path, values: Defaults()}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read settings, using defaults", zap.String("path", path), zap.Error(err))
		}
		return s
	}
	var user map[string]any
	if err := json.Unmarshal(data, &user); err != nil {
		logger.Warn("malformed settings, using defaults", zap.String("path", path), zap.Error(err))
		return s
	}
	for k, v := range user {
		s.values[k] = v
	}
	return s
}

func (s *Settings) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Settings) Set(key string, v any) {
	s.values[key] = v
}

// Bool returns the value of key, falling back to the default when the
// stored value is missing or of the wrong type.
func (s *Settings) Bool(key string) bool {
	if b, ok := s.values[key].(bool); ok {
		return b
	}
	b, _ := Defaults()[key].(bool)
	return b
}

func (s *Settings) String(key string) string {
	if v, ok := s.values[key].(string); ok {
		return v
	}
	v, _ := Defaults()[key].(string)
	return v
}

func (s *Settings) Float(key string) float64 {
	if f, ok := toFloat(s.values[key]); ok {
		return f
	}
	f, _ := toFloat(Defaults()[key])
	return f
}

func (s *Settings) Int(key string) int {
	return int(s.Float(key))
}

func (s *Settings) AutoSave() bool {
	return s.Bool(KeyAutoSave)
}

// Keys returns the setting names in sorted order.
func (s *Settings) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Save writes every value, defaults included, back to the settings file.
func (s *Settings) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	data, err := json.MarshalIndent(s.values, "", "    ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// FileSource re-reads the settings file on every call so an edit takes
// effect on the next mutating operation.
type FileSource struct {
	path   string
	logger *zap.Logger
}

func NewFileSource(path string, logger *zap.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

func (f *FileSource) Settings() *Settings {
	return LoadSettings(f.path, f.logger)
}

func (f *FileSource) AutoSave() bool {
	return f.Settings().AutoSave()
}
