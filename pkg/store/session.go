package store

import (
	"errors"
	"time"
)

var (
	// ErrNoSave is reported by Restore when there is no save file.
	ErrNoSave = errors.New("no saved game")
	// ErrFormat is reported when a decrypted payload is not a valid session.
	ErrFormat = errors.New("malformed game session")
)

const (
	DefaultWhitePlayer = "Player 1"
	DefaultBlackPlayer = "Player 2"

	gameIDLayout = "20060102150405"
	// Matches the ISO 8601 form of earlier save files.
	timestampLayout = "2006-01-02T15:04:05.000000"
)

// MoveRecord is one entry of the move history. Records are never modified
// after they are appended.
type MoveRecord struct {
	Move      string `json:"move"`
	UCI       string `json:"uci"`
	Timestamp string `json:"timestamp"`
	FEN       string `json:"fen"`
	Turn      string `json:"turn"`
}

// GameSession is the serialized form of a game, and the plaintext of the
// save file.
type GameSession struct {
	GameID        string       `json:"game_id"`
	FEN           string       `json:"fen"`
	MoveHistory   []MoveRecord `json:"move_history"`
	WhitePlayer   string       `json:"white_player"`
	BlackPlayer   string       `json:"black_player"`
	GameStartTime string       `json:"game_start_time"`
	LastSaveTime  string       `json:"last_save_time"`
}

type State int

const (
	Empty State = iota
	InProgress
	Terminal
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case InProgress:
		return "in progress"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Result reports the outcome of a persistence operation. Err carries the
// cause when OK is false.
type Result struct {
	OK  bool
	Err error
}

func success() Result {
	return Result{OK: true}
}

func failure(err error) Result {
	return Result{Err: err}
}

func formatTime(t time.Time) string {
	return t.Format(timestampLayout)
}

func newGameID(t time.Time) string {
	return t.Format(gameIDLayout)
}
