// Package store holds the state of one game: the current position, the
// move history and the session metadata. It applies moves after checking
// them against an oracle.Oracle and saves itself through an encrypted
// envelope.
//
// Public operations never panic or return bare errors for bad input or
// failed I/O: moves are accepted or rejected with a bool, and Persist and
// Restore report a Result.
package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qnkhuat/chesswidget/pkg/cipher"
	"github.com/qnkhuat/chesswidget/pkg/oracle"
)

// Sealer encrypts and decrypts save-file payloads.
type Sealer interface {
	Encrypt(plaintext []byte) (cipher.Envelope, error)
	Decrypt(e cipher.Envelope) ([]byte, error)
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithClock replaces time.Now for timestamps and game ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

type Store struct {
	mu     sync.Mutex
	oracle oracle.Oracle
	sealer Sealer
	path   string
	logger *zap.Logger
	now    func() time.Time

	pos       oracle.Position
	history   []MoveRecord
	lastMove  *oracle.Move
	gameID    string
	white     string
	black     string
	startTime string
	lastSave  string
	started   bool
}

// New returns a store holding the standard starting position. savePath is
// the encrypted save file used by Persist and Restore.
func New(o oracle.Oracle, sealer Sealer, savePath string, opts ...Option) *Store {
	s := &Store{
		oracle: o,
		sealer: sealer,
		path:   savePath,
		logger: zap.NewNop(),
		now:    time.Now,
		white:  DefaultWhitePlayer,
		black:  DefaultBlackPlayer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pos = o.Start()
	s.history = []MoveRecord{}
	s.startTime = formatTime(s.now())
	return s
}

// ApplyMove plays m if the game is not over and the oracle lists m among
// the legal moves of the current position. It does no I/O; saving after a move is up to the
// caller.
func (s *Store) ApplyMove(m oracle.Move) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.oracle.IsTerminal(s.pos) {
		s.logger.Debug("game is over", zap.Stringer("move", m), zap.String("result", string(s.oracle.Result(s.pos))))
		return false
	}
	if !oracle.Contains(s.oracle.LegalMoves(s.pos), m) {
		s.logger.Debug("rejected move", zap.Stringer("move", m), zap.String("fen", s.oracle.ToFEN(s.pos)))
		return false
	}
	san, err := s.oracle.SAN(s.pos, m)
	if err != nil {
		s.logger.Warn("failed to encode move", zap.Stringer("move", m), zap.Error(err))
		return false
	}
	next, err := s.oracle.Apply(s.pos, m)
	if err != nil {
		s.logger.Warn("oracle refused a listed move", zap.Stringer("move", m), zap.Error(err))
		return false
	}

	mover := s.pos.Turn()
	s.pos = next
	s.history = append(s.history, MoveRecord{
		Move:      san,
		UCI:       m.String(),
		Timestamp: formatTime(s.now()),
		FEN:       s.oracle.ToFEN(next),
		Turn:      mover.String(),
	})
	s.lastMove = &m
	s.started = true

	s.logger.Info("move", zap.String("san", san), zap.Stringer("uci", m), zap.Int("ply", len(s.history)))
	return true
}

// StartNewSession discards the current game and begins a fresh one with a
// new game id. Player names carry over.
func (s *Store) StartNewSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pos = s.oracle.Start()
	s.history = []MoveRecord{}
	s.lastMove = nil
	s.gameID = newGameID(now)
	s.startTime = formatTime(now)
	s.lastSave = ""
	s.started = true
	s.logger.Info("new session", zap.String("game_id", s.gameID))
}

// ResetBoard has the same effect as StartNewSession. The two differ only in
// how the presentation layer confirms them with the user.
func (s *Store) ResetBoard() {
	s.StartNewSession()
}

// SetPosition replaces the board with fen and starts a fresh history from
// it. The game id and players are kept.
func (s *Store) SetPosition(fen string) bool {
	pos, err := s.oracle.FromFEN(fen)
	if err != nil {
		s.logger.Warn("rejected position", zap.String("fen", fen), zap.Error(err))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = pos
	s.history = []MoveRecord{}
	s.lastMove = nil
	s.started = true
	return true
}

func (s *Store) SetPlayers(white, black string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if white != "" {
		s.white = white
	}
	if black != "" {
		s.black = black
	}
}

// Serialize snapshots the session. A session without an id is assigned a
// timestamp id, which it then keeps.
func (s *Store) Serialize() GameSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serializeLocked()
}

func (s *Store) serializeLocked() GameSession {
	now := s.now()
	if s.gameID == "" {
		s.gameID = newGameID(now)
	}
	return GameSession{
		GameID:        s.gameID,
		FEN:           s.oracle.ToFEN(s.pos),
		MoveHistory:   append([]MoveRecord{}, s.history...),
		WhitePlayer:   s.white,
		BlackPlayer:   s.black,
		GameStartTime: s.startTime,
		LastSaveTime:  formatTime(now),
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.oracle.IsTerminal(s.pos):
		return Terminal
	case s.started || len(s.history) > 0:
		return InProgress
	default:
		return Empty
	}
}

func (s *Store) Turn() oracle.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos.Turn()
}

func (s *Store) IsCheck() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oracle.IsCheck(s.pos)
}

func (s *Store) IsCheckmate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oracle.IsCheckmate(s.pos)
}

func (s *Store) IsGameOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oracle.IsTerminal(s.pos)
}

func (s *Store) Result() oracle.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oracle.Result(s.pos)
}

func (s *Store) FEN() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oracle.ToFEN(s.pos)
}

func (s *Store) PieceAt(sq oracle.Square) oracle.Piece {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oracle.PieceAt(s.pos, sq)
}

func (s *Store) LegalMoves() []oracle.Move {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oracle.LegalMoves(s.pos)
}

// LegalMovesFrom returns the legal moves starting on sq.
func (s *Store) LegalMovesFrom(sq oracle.Square) []oracle.Move {
	var out []oracle.Move
	for _, m := range s.LegalMoves() {
		if m.From == sq {
			out = append(out, m)
		}
	}
	return out
}

// MoveHistory returns a copy of the history in play order.
func (s *Store) MoveHistory() []MoveRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MoveRecord{}, s.history...)
}

func (s *Store) LastMove() (oracle.Move, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastMove == nil {
		return oracle.Move{}, false
	}
	return *s.lastMove, true
}

func (s *Store) GameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID
}

func (s *Store) Players() (white, black string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.white, s.black
}

func (s *Store) LastSaveTime() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSave
}
