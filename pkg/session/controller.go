// Package session is the entry point the presentation layer talks to. It
// forwards moves and lifecycle commands to a store.Store, triggers
// auto-save after each mutation, and answers the queries a board view polls
// after every call.
package session

import (
	"go.uber.org/zap"

	"github.com/qnkhuat/chesswidget/pkg/oracle"
	"github.com/qnkhuat/chesswidget/pkg/store"
)

// Settings is consulted on every mutating call, so a change to the
// auto-save option applies from the next move on.
type Settings interface {
	AutoSave() bool
}

// Outcome describes a mutating call. Save is only meaningful when
// AutoSaved is set.
type Outcome struct {
	Applied   bool
	AutoSaved bool
	Save      store.Result
}

// SaveFailed reports whether the change was kept in memory but did not
// reach the save file.
func (o Outcome) SaveFailed() bool {
	return o.Applied && o.AutoSaved && !o.Save.OK
}

type Controller struct {
	store    *store.Store
	settings Settings
	logger   *zap.Logger
}

func New(st *store.Store, settings Settings, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{store: st, settings: settings, logger: logger}
}

// MakeMove plays a UCI move such as "e2e4" or "e7e8q".
func (c *Controller) MakeMove(uci string) Outcome {
	m, err := oracle.ParseMove(uci)
	if err != nil {
		c.logger.Debug("unparsable move", zap.String("uci", uci), zap.Error(err))
		return Outcome{}
	}
	return c.play(m)
}

// MakeMoveFromSquares plays the move between two squares. promotion is one
// of "q", "r", "b", "n" or empty.
func (c *Controller) MakeMoveFromSquares(from, to, promotion string) Outcome {
	return c.MakeMove(from + to + promotion)
}

func (c *Controller) play(m oracle.Move) Outcome {
	if !c.store.ApplyMove(m) {
		return Outcome{}
	}
	return c.afterMutation()
}

func (c *Controller) NewGame() Outcome {
	c.store.StartNewSession()
	return c.afterMutation()
}

func (c *Controller) ResetBoard() Outcome {
	c.store.ResetBoard()
	return c.afterMutation()
}

// SetFEN loads an arbitrary position and starts a fresh history from it.
func (c *Controller) SetFEN(fen string) Outcome {
	if !c.store.SetPosition(fen) {
		return Outcome{}
	}
	return c.afterMutation()
}

func (c *Controller) SetPlayers(white, black string) Outcome {
	c.store.SetPlayers(white, black)
	return c.afterMutation()
}

// afterMutation is the post-move hook. A failed auto-save is logged and
// reported; the in-memory change stays.
func (c *Controller) afterMutation() Outcome {
	out := Outcome{Applied: true}
	if c.settings == nil || !c.settings.AutoSave() {
		return out
	}
	out.AutoSaved = true
	out.Save = c.store.Persist()
	if !out.Save.OK {
		c.logger.Warn("auto-save failed, game kept in memory only", zap.Error(out.Save.Err))
	}
	return out
}

func (c *Controller) Save() store.Result {
	return c.store.Persist()
}

func (c *Controller) Load() store.Result {
	return c.store.Restore()
}

func (c *Controller) CurrentTurn() oracle.Color { return c.store.Turn() }
func (c *Controller) IsInCheck() bool { return c.store.IsCheck() }
func (c *Controller) IsInCheckmate() bool { return c.store.IsCheckmate() }
func (c *Controller) IsGameOver() bool { return c.store.IsGameOver() }
func (c *Controller) Result() oracle.Result { return c.store.Result() }
func (c *Controller) MoveHistory() []store.MoveRecord { return c.store.MoveHistory() }
func (c *Controller) LastMove() (oracle.Move, bool) { return c.store.LastMove() }
func (c *Controller) FEN() string { return c.store.FEN() }
func (c *Controller) State() store.State { return c.store.State() }
func (c *Controller) GameID() string { return c.store.GameID() }
func (c *Controller) Players() (string, string) { return c.store.Players() }
func (c *Controller) PieceAt(sq oracle.Square) oracle.Piece { return c.store.PieceAt(sq) }

// LegalMovesFrom lists the legal moves starting on a square given in
// coordinates like "e2". An unparsable square has no moves.
func (c *Controller) LegalMovesFrom(square string) []oracle.Move {
	sq, err := oracle.ParseSquare(square)
	if err != nil {
		return nil
	}
	return c.store.LegalMovesFrom(sq)
}
