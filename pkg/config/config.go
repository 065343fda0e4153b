// Package config locates the widget's files and loads user settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

const (
	AppName    = "Widget Chess"
	AppVersion = "1.0.0"

	dirName          = "widget_chess"
	saveFileName     = "game_state.json"
	keyFileName      = "encryption_keys.json"
	settingsFileName = "settings.json"
	logFileName      = "chesswidget.log"
)

// Paths holds the on-disk locations used by the widget. Every field can
// be overridden from the environment.
type Paths struct {
	ConfigDir string `env:"CHESSWIDGET_CONFIG_DIR"`
	LogFile   string `env:"CHESSWIDGET_LOG_FILE"`
	Debug     bool   `env:"CHESSWIDGET_DEBUG" envDefault:"false"`
}

// LoadPaths reads overrides from the environment and fills in the
// defaults under ~/.config/widget_chess.
func LoadPaths() (Paths, error) {
	var p Paths
	if err := env.Parse(&p); err != nil {
		return Paths{}, fmt.Errorf("parse env: %w", err)
	}
	if p.ConfigDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("locate home directory: %w", err)
		}
		p.ConfigDir = filepath.Join(home, ".config", dirName)
	}
	if p.LogFile == "" {
		p.LogFile = filepath.Join(p.ConfigDir, logFileName)
	}
	return p, nil
}

func (p Paths) SaveFile() string     { return filepath.Join(p.ConfigDir, saveFileName) }
func (p Paths) KeyFile() string      { return filepath.Join(p.ConfigDir, keyFileName) }
func (p Paths) SettingsFile() string { return filepath.Join(p.ConfigDir, settingsFileName) }

// EnsureDir creates the config directory.
func (p Paths) EnsureDir() error {
	return os.MkdirAll(p.ConfigDir, 0o700)
}
