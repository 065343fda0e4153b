// Package gui draws the board in a terminal and forwards clicks to a
// session.Controller. It keeps no game state of its own: after every call
// into the controller it re-reads the position and redraws.
package gui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/qnkhuat/chesswidget/pkg/oracle"
	"github.com/qnkhuat/chesswidget/pkg/session"
)

const (
	numrows = 8
	numcols = 8
)

var glyphs = map[string]string{
	"K": "♔", "Q": "♕", "R": "♖", "B": "♗", "N": "♘", "P": "♙",
	"k": "♚", "q": "♛", "r": "♜", "b": "♝", "n": "♞", "p": "♟",
}

type Board struct {
	App    *tview.Application
	Table  *tview.Table
	Status *tview.TextView
	Log    *tview.TextView
	Layout *tview.Grid

	ctl           *session.Controller
	logger        *zap.Logger
	theme         Theme
	flipped       bool
	selecting     bool
	lastSelection oracle.Square
	highlights    map[oracle.Square]bool
	message       string
}

func NewBoard(ctl *session.Controller, theme Theme, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Board{
		App:        tview.NewApplication(),
		Table:      tview.NewTable(),
		Status:     tview.NewTextView().SetDynamicColors(true),
		Log:        tview.NewTextView().SetDynamicColors(true).SetScrollable(true),
		ctl:        ctl,
		logger:     logger,
		theme:      theme,
		highlights: make(map[oracle.Square]bool),
	}
	b.Log.SetBorder(true).SetTitle(" Move History ")

	help := tview.NewTextView().
		SetText("n new  r reset  s save  l load  f flip  esc quit")

	b.Layout = tview.NewGrid().
		SetRows(-1, 10, 3, 1, -1).
		SetColumns(-1, 30, 24, -1).
		AddItem(b.Table, 1, 1, 1, 1, 0, 0, true).
		AddItem(b.Log, 1, 2, 2, 1, 0, 0, false).
		AddItem(b.Status, 2, 1, 1, 1, 0, 0, false).
		AddItem(help, 3, 1, 1, 2, 0, 0, false)

	b.initTable()
	b.App.SetInputCapture(b.handleKey)
	b.Render()
	return b
}

// Run blocks until the user quits.
func (b *Board) Run() error {
	return b.App.SetRoot(b.Layout, true).EnableMouse(true).Run()
}

// Flip turns the board so black plays from the bottom.
func (b *Board) Flip() {
	b.flipped = !b.flipped
	b.Render()
}

func (b *Board) initTable() {
	b.Table.SetSelectable(true, true)
	b.Table.Select(0, 1).SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			b.App.Stop()
		}
	}).SetSelectedFunc(func(row, col int) {
		b.Select(b.posToSquare(row, col))
		b.Render()
	})
}

// Select handles a click on sq: the first click picks a piece, the second
// picks its destination.
func (b *Board) Select(sq oracle.Square) {
	if sq == oracle.NoSquare {
		return
	}
	if !b.selecting {
		if len(b.ctl.LegalMovesFrom(sq.String())) == 0 {
			return
		}
		b.highlights[sq] = true
		b.selecting = true
		b.lastSelection = sq
		return
	}

	from := b.lastSelection
	b.clearSelection()
	if sq == from { // chose the same square to deselect
		return
	}

	out := b.ctl.MakeMoveFromSquares(from.String(), sq.String(), b.promotionFor(from, sq))
	switch {
	case !out.Applied:
		b.logger.Debug("invalid move", zap.String("from", from.String()), zap.String("to", sq.String()))
		b.message = "[red]illegal move[-]"
	case out.SaveFailed():
		b.message = "[yellow]auto-save failed[-]"
	default:
		b.message = ""
	}
}

// promotionFor picks a queen for a pawn reaching the last rank.
func (b *Board) promotionFor(from, to oracle.Square) string {
	p := b.ctl.PieceAt(from)
	if p.Type != oracle.Pawn || (to.Rank() != 0 && to.Rank() != 7) {
		return ""
	}
	return "q"
}

func (b *Board) clearSelection() {
	b.selecting = false
	b.lastSelection = oracle.NoSquare
	for sq := range b.highlights {
		delete(b.highlights, sq)
	}
}

func (b *Board) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() != tcell.KeyRune {
		return event
	}
	switch event.Rune() {
	case 'n':
		b.report("new game", b.ctl.NewGame())
	case 'r':
		b.report("board reset", b.ctl.ResetBoard())
	case 's':
		if res := b.ctl.Save(); res.OK {
			b.message = "[green]saved[-]"
		} else {
			b.message = "[red]save failed[-]"
		}
	case 'l':
		if res := b.ctl.Load(); res.OK {
			b.message = "[green]loaded[-]"
		} else {
			b.message = "[red]no saved game could be loaded[-]"
		}
	case 'f':
		b.flipped = !b.flipped
	default:
		return event
	}
	b.clearSelection()
	b.Render()
	return nil
}

func (b *Board) report(what string, out session.Outcome) {
	if out.SaveFailed() {
		b.message = fmt.Sprintf("[yellow]%s, auto-save failed[-]", what)
		return
	}
	b.message = "[green]" + what + "[-]"
}

// Render redraws the board, status line and move log from the controller.
func (b *Board) Render() {
	checkSq := oracle.NoSquare
	if b.ctl.IsInCheck() {
		checkSq = b.kingSquare(b.ctl.CurrentTurn())
	}
	last, hasLast := b.ctl.LastMove()

	// Step through the ranks starting with the top row
	for r := 0; r <= numrows; r++ {
		for f := 0; f <= numcols; f++ {
			if f == 0 && r != numrows { // draw rank square
				rank := numrows - r
				if b.flipped {
					rank = r + 1
				}
				b.Table.SetCell(r, f, tview.NewTableCell(fmt.Sprintf("%d", rank)).
					SetAlign(tview.AlignCenter).
					SetTextColor(b.theme.Label).
					SetSelectable(false))
				continue
			}
			if r == numrows && f > 0 { // draw files square
				file := f - 1
				if b.flipped {
					file = numcols - f
				}
				b.Table.SetCell(r, f, tview.NewTableCell(fmt.Sprintf(" %c", 'a'+file)).
					SetAlign(tview.AlignCenter).
					SetTextColor(b.theme.Label).
					SetSelectable(false))
				continue
			}
			if r == numrows && f == 0 { // the bottom left tile is not used
				b.Table.SetCell(r, f, tview.NewTableCell("").SetSelectable(false))
				continue
			}

			sq := b.posToSquare(r, f)
			p := b.ctl.PieceAt(sq)
			isLast := hasLast && (sq == last.From || sq == last.To)
			cell := tview.NewTableCell(" " + pieceGlyph(p) + " ").
				SetAlign(tview.AlignCenter).
				SetBackgroundColor(b.squareColor(sq, isLast, sq == checkSq))
			if p.Color == oracle.White {
				cell.SetTextColor(b.theme.White)
			} else {
				cell.SetTextColor(b.theme.Black)
			}
			b.Table.SetCell(r, f, cell)
		}
	}

	b.Status.SetText(b.statusText())
	b.Log.SetText(moveLogText(b.ctl))
	b.Log.ScrollToEnd()
}

func (b *Board) statusText() string {
	st := b.ctl.Status()
	color := "white"
	switch st.Kind {
	case session.StatusCheck:
		color = "orange"
	case session.StatusCheckmate:
		color = "red"
	}
	white, black := b.ctl.Players()
	player := white
	if st.Turn == oracle.Black {
		player = black
	}
	text := fmt.Sprintf("[%s]%s[-] (%s, %s)", color, st.Text, player, st.Turn)
	if b.message != "" {
		text += "\n" + b.message
	}
	return text
}

// moveLogText numbers the history the way a score sheet does.
func moveLogText(ctl *session.Controller) string {
	history := ctl.MoveHistory()
	if len(history) == 0 {
		return "[grey]No moves yet[-]"
	}
	var sb strings.Builder
	for i, rec := range history {
		n := i/2 + 1
		if i%2 == 0 {
			fmt.Fprintf(&sb, "%d. %s\n", n, rec.Move)
		} else {
			fmt.Fprintf(&sb, "%d... %s\n", n, rec.Move)
		}
	}
	return sb.String()
}

func (b *Board) kingSquare(c oracle.Color) oracle.Square {
	for sq := oracle.Square(0); sq < 64; sq++ {
		if p := b.ctl.PieceAt(sq); p.Type == oracle.King && p.Color == c {
			return sq
		}
	}
	return oracle.NoSquare
}

func (b *Board) squareColor(sq oracle.Square, last, check bool) tcell.Color {
	switch {
	case b.highlights[sq]:
		return b.theme.SquareHigh
	case check:
		return b.theme.SquareCheck
	case last:
		return b.theme.SquareLast
	case (sq.File()+sq.Rank())%2 == 0:
		return b.theme.SquareDark
	default:
		return b.theme.SquareLight
	}
}

// posToSquare maps a table cell to a square. Column 0 holds the rank labels
// and row 8 the file labels.
func (b *Board) posToSquare(row, col int) oracle.Square {
	if row < 0 || row >= numrows || col < 1 || col > numcols {
		return oracle.NoSquare
	}
	rank, file := numrows-row-1, col-1
	if b.flipped { // black at the bottom
		rank, file = row, numcols-col
	}
	return oracle.NewSquare(file, rank)
}

func pieceGlyph(p oracle.Piece) string {
	if g, ok := glyphs[p.Symbol()]; ok {
		return g
	}
	return " "
}
