// Package oracle defines the rules-engine contract the game store depends
// on. The store never generates or validates moves itself: it asks an
// Oracle, and any engine that satisfies the interface can be substituted.
package oracle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIllegalMove is returned by Apply when the move is not in the
	// legal set of the position.
	ErrIllegalMove = errors.New("illegal move")
	// ErrInvalidFEN is returned by FromFEN on malformed input.
	ErrInvalidFEN = errors.New("invalid fen")
	// ErrInvalidMove is returned when a move or square string cannot be parsed.
	ErrInvalidMove = errors.New("invalid move notation")
)

// Position is an engine-owned board state. Callers treat it as opaque and
// never mutate it; Apply returns a new Position.
type Position interface {
	Turn() Color
}

// Oracle authoritatively computes legal moves and game outcome.
type Oracle interface {
	Start() Position
	LegalMoves(pos Position) []Move
	Apply(pos Position, m Move) (Position, error)
	IsTerminal(pos Position) bool
	Result(pos Position) Result
	IsCheck(pos Position) bool
	IsCheckmate(pos Position) bool
	ToFEN(pos Position) string
	FromFEN(fen string) (Position, error)
	// SAN encodes m in standard algebraic notation relative to pos, the
	// position before the move is played.
	SAN(pos Position, m Move) (string, error)
	PieceAt(pos Position, sq Square) Piece
}

type Color int8

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// Other returns the opposing side.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// ParseColor accepts "white" or "black" in any case.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(s) {
	case "white":
		return White, nil
	case "black":
		return Black, nil
	}
	return NoColor, fmt.Errorf("unknown color %q", s)
}

// Result is the game outcome in PGN form.
type Result string

const (
	InProgress Result = "*"
	WhiteWins  Result = "1-0"
	BlackWins  Result = "0-1"
	Draw       Result = "1/2-1/2"
)

// Square indexes the board from a1 (0) to h8 (63).
type Square int8

const NoSquare Square = -1

// NewSquare builds a square from zero based file and rank.
func NewSquare(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(rank*8 + file)
}

// ParseSquare parses coordinates like "e2".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("%w: square %q", ErrInvalidMove, s)
	}
	f, r := int(s[0])-'a', int(s[1])-'1'
	sq := NewSquare(f, r)
	if sq == NoSquare {
		return NoSquare, fmt.Errorf("%w: square %q", ErrInvalidMove, s)
	}
	return sq, nil
}

func (sq Square) File() int { return int(sq) % 8 }
func (sq Square) Rank() int { return int(sq) / 8 }

func (sq Square) String() string {
	if sq < 0 || sq > 63 {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

type PieceType int8

const (
	NoPieceType PieceType = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

var pieceLetters = map[PieceType]byte{
	King: 'k', Queen: 'q', Rook: 'r', Bishop: 'b', Knight: 'n', Pawn: 'p',
}

// Piece is an occupant of a square. The zero value is an empty square.
type Piece struct {
	Type  PieceType
	Color Color
}

// Symbol returns the FEN letter of the piece, upper case for white, or ""
// for an empty square.
func (p Piece) Symbol() string {
	l, ok := pieceLetters[p.Type]
	if !ok {
		return ""
	}
	if p.Color == White {
		l -= 'a' - 'A'
	}
	return string(l)
}

// Move is a from/to pair with an optional promotion piece.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
}

// String returns the UCI encoding, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if l, ok := pieceLetters[m.Promotion]; ok && m.Promotion != King && m.Promotion != Pawn {
		s += string(l)
	}
	return s
}

// ParseMove decodes a UCI move string.
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, err
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		m.Promotion, err = ParsePromotion(s[4:])
		if err != nil {
			return Move{}, err
		}
	}
	return m, nil
}

// ParsePromotion accepts q, r, b or n. An empty string means no promotion.
func ParsePromotion(s string) (PieceType, error) {
	switch strings.ToLower(s) {
	case "":
		return NoPieceType, nil
	case "q":
		return Queen, nil
	case "r":
		return Rook, nil
	case "b":
		return Bishop, nil
	case "n":
		return Knight, nil
	}
	return NoPieceType, fmt.Errorf("%w: promotion %q", ErrInvalidMove, s)
}

// Contains reports whether m is in moves.
func Contains(moves []Move, m Move) bool {
	for _, legal := range moves {
		if legal == m {
			return true
		}
	}
	return false
}
