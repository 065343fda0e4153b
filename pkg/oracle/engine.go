package oracle

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Engine is the Oracle backed by github.com/notnil/chess.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// fivefold is the repetition count that ends a game without a claim.
const fivefold = 5

type position struct {
	pos     *chess.Position
	inCheck bool
	// seen counts the occurrences of each repetitionKey along the line of
	// play that led here, this position included.
	seen map[string]int
}

func (p *position) Turn() Color {
	return colorFrom(p.pos.Turn())
}

func (e *Engine) Start() Position {
	p, err := e.FromFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

func (e *Engine) LegalMoves(pos Position) []Move {
	p := e.unwrap(pos)
	valid := p.pos.ValidMoves()
	moves := make([]Move, 0, len(valid))
	for _, m := range valid {
		moves = append(moves, moveFrom(m))
	}
	return moves
}

func (e *Engine) Apply(pos Position, m Move) (Position, error) {
	p := e.unwrap(pos)
	cm := p.find(m)
	if cm == nil {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	next := p.pos.Update(cm)
	seen := make(map[string]int, len(p.seen)+1)
	for k, n := range p.seen {
		seen[k] = n
	}
	seen[repetitionKey(next)]++
	return &position{pos: next, inCheck: cm.HasTag(chess.Check), seen: seen}, nil
}

// repetitionKey identifies a position for repetition purposes: placement,
// side to move, castling rights and en passant square.
func repetitionKey(pos *chess.Position) string {
	fields := strings.Fields(pos.String())
	if len(fields) < 4 {
		return pos.String()
	}
	return strings.Join(fields[:4], " ")
}

func (e *Engine) IsTerminal(pos Position) bool {
	return e.Result(pos) != InProgress
}

func (e *Engine) Result(pos Position) Result {
	p := e.unwrap(pos)
	switch p.pos.Status() {
	case chess.Checkmate:
		if p.pos.Turn() == chess.White {
			return BlackWins
		}
		return WhiteWins
	case chess.Stalemate:
		return Draw
	}
	if p.seen[repetitionKey(p.pos)] >= fivefold {
		return Draw
	}
	// Insufficient material and the 75 move rule are only evaluated by
	// chess.Game, so load the position into a throwaway game.
	opt, err := chess.FEN(p.pos.String())
	if err != nil {
		return InProgress
	}
	if chess.NewGame(opt).Outcome() == chess.Draw {
		return Draw
	}
	return InProgress
}

func (e *Engine) IsCheck(pos Position) bool {
	return e.unwrap(pos).inCheck
}

func (e *Engine) IsCheckmate(pos Position) bool {
	return e.unwrap(pos).pos.Status() == chess.Checkmate
}

func (e *Engine) ToFEN(pos Position) string {
	return e.unwrap(pos).pos.String()
}

func (e *Engine) FromFEN(fen string) (Position, error) {
	opt, err := chess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	pos := chess.NewGame(opt).Position()
	return &position{pos: pos, inCheck: probeCheck(pos), seen: map[string]int{repetitionKey(pos): 1}}, nil
}

func (e *Engine) SAN(pos Position, m Move) (string, error) {
	p := e.unwrap(pos)
	cm := p.find(m)
	if cm == nil {
		return "", fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	return chess.AlgebraicNotation{}.Encode(p.pos, cm), nil
}

func (e *Engine) PieceAt(pos Position, sq Square) Piece {
	if sq < 0 || sq > 63 {
		return Piece{}
	}
	cp := e.unwrap(pos).pos.Board().Piece(chess.Square(sq))
	if cp == chess.NoPiece {
		return Piece{}
	}
	return Piece{Type: pieceTypeFrom(cp.Type()), Color: colorFrom(cp.Color())}
}

func (e *Engine) unwrap(pos Position) *position {
	p, ok := pos.(*position)
	if !ok {
		panic(fmt.Sprintf("oracle: position %T was not created by this engine", pos))
	}
	return p
}

// find returns the engine move matching m, or nil when m is not legal.
func (p *position) find(m Move) *chess.Move {
	for _, cm := range p.pos.ValidMoves() {
		if moveFrom(cm) == m {
			return cm
		}
	}
	return nil
}

// probeCheck reports whether the side to move is attacked by handing the
// move to the opponent and looking for a king capture. The opponent's king
// is taken off the board first so a checker pinned to it still counts.
func probeCheck(pos *chess.Position) bool {
	switch pos.Status() {
	case chess.Checkmate:
		return true
	case chess.Stalemate:
		return false
	}
	king, other := chess.WhiteKing, byte('k')
	if pos.Turn() == chess.Black {
		king, other = chess.BlackKing, 'K'
	}
	kingSq := chess.NoSquare
	for sq, pc := range pos.Board().SquareMap() {
		if pc == king {
			kingSq = sq
			break
		}
	}
	if kingSq == chess.NoSquare {
		return false
	}
	fields := strings.Fields(pos.String())
	if len(fields) != 6 {
		return false
	}
	fields[0] = removePiece(fields[0], other)
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	fields[2], fields[3] = "-", "-"
	opt, err := chess.FEN(strings.Join(fields, " "))
	if err != nil {
		return false
	}
	for _, m := range chess.NewGame(opt).Position().ValidMoves() {
		if m.S2() == kingSq {
			return true
		}
	}
	return false
}

// removePiece blanks every occurrence of piece in a FEN placement field.
func removePiece(placement string, piece byte) string {
	ranks := strings.Split(placement, "/")
	for i, rank := range ranks {
		var expanded []byte
		for j := 0; j < len(rank); j++ {
			c := rank[j]
			switch {
			case c >= '1' && c <= '8':
				for n := byte('0'); n < c; n++ {
					expanded = append(expanded, '1')
				}
			case c == piece:
				expanded = append(expanded, '1')
			default:
				expanded = append(expanded, c)
			}
		}
		var sb strings.Builder
		empty := 0
		for _, c := range expanded {
			if c == '1' {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(c)
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		ranks[i] = sb.String()
	}
	return strings.Join(ranks, "/")
}

func colorFrom(c chess.Color) Color {
	switch c {
	case chess.White:
		return White
	case chess.Black:
		return Black
	default:
		return NoColor
	}
}

func pieceTypeFrom(pt chess.PieceType) PieceType {
	switch pt {
	case chess.King:
		return King
	case chess.Queen:
		return Queen
	case chess.Rook:
		return Rook
	case chess.Bishop:
		return Bishop
	case chess.Knight:
		return Knight
	case chess.Pawn:
		return Pawn
	default:
		return NoPieceType
	}
}

func moveFrom(m *chess.Move) Move {
	return Move{
		From:      Square(m.S1()),
		To:        Square(m.S2()),
		Promotion: pieceTypeFrom(m.Promo()),
	}
}
