package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/qnkhuat/chesswidget/pkg/cipher"
	"github.com/qnkhuat/chesswidget/pkg/config"
	"github.com/qnkhuat/chesswidget/pkg/logging"
	"github.com/qnkhuat/chesswidget/pkg/oracle"
	"github.com/qnkhuat/chesswidget/pkg/session"
	"github.com/qnkhuat/chesswidget/pkg/store"
)

// app is everything a command needs, built from the environment.
type app struct {
	paths    config.Paths
	logger   *zap.Logger
	settings *config.FileSource
	ctl      *session.Controller
}

// openApp wires the widget together and restores the last saved game.
// A missing or unreadable save leaves a fresh game in place.
func openApp(opts *RootOptions) (*app, error) {
	paths, err := config.LoadPaths()
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDir(); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	logger, err := logging.New(paths.LogFile, "CLIENT", paths.Debug || opts.Verbose)
	if err != nil {
		return nil, err
	}

	sealer := cipher.New(cipher.NewFileKeyProvider(paths.KeyFile(), logger))
	st := store.New(oracle.NewEngine(), sealer, paths.SaveFile(), store.WithLogger(logger))
	settings := config.NewFileSource(paths.SettingsFile(), logger)
	ctl := session.New(st, settings, logger)

	if res := ctl.Load(); !res.OK {
		logger.Info("starting a new game", zap.Error(res.Err))
	}
	return &app{paths: paths, logger: logger, settings: settings, ctl: ctl}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// persist makes sure a mutation reaches disk before the process exits.
// With auto-save on the controller already wrote the file; otherwise
// the change is only kept when force is set.
func (a *app) persist(out session.Outcome, force bool) (saved bool, err error) {
	if out.AutoSaved {
		return out.Save.OK, out.Save.Err
	}
	if !force {
		return false, nil
	}
	res := a.ctl.Save()
	return res.OK, res.Err
}
