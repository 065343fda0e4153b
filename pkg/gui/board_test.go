package gui

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qnkhuat/chesswidget/pkg/cipher"
	"github.com/qnkhuat/chesswidget/pkg/oracle"
	"github.com/qnkhuat/chesswidget/pkg/session"
	"github.com/qnkhuat/chesswidget/pkg/store"
)

func newTestBoard(t *testing.T) (*Board, *session.Controller) {
	t.Helper()
	sealer := cipher.New(cipher.StaticKeyProvider(bytes.Repeat([]byte{3}, cipher.KeySize)))
	st := store.New(oracle.NewEngine(), sealer, filepath.Join(t.TempDir(), "game_state.json"))
	ctl := session.New(st, nil, nil)
	return NewBoard(ctl, ThemeDefault, nil), ctl
}

func sq(t *testing.T, s string) oracle.Square {
	t.Helper()
	v, err := oracle.ParseSquare(s)
	require.NoError(t, err)
	return v
}

func TestPosToSquare(t *testing.T) {
	b, _ := newTestBoard(t)

	assert.Equal(t, "a1", b.posToSquare(7, 1).String())
	assert.Equal(t, "h8", b.posToSquare(0, 8).String())
	assert.Equal(t, "e2", b.posToSquare(6, 5).String())
	assert.Equal(t, oracle.NoSquare, b.posToSquare(8, 1), "file label row")
	assert.Equal(t, oracle.NoSquare, b.posToSquare(3, 0), "rank label column")

	b.flipped = true
	assert.Equal(t, "h8", b.posToSquare(7, 1).String())
	assert.Equal(t, "a1", b.posToSquare(0, 8).String())
}

func TestSelectPlaysMove(t *testing.T) {
	b, ctl := newTestBoard(t)

	b.Select(sq(t, "e2"))
	assert.True(t, b.selecting)
	assert.True(t, b.highlights[sq(t, "e2")])

	b.Select(sq(t, "e4"))
	assert.False(t, b.selecting)
	assert.Empty(t, b.highlights)
	require.Len(t, ctl.MoveHistory(), 1)
	assert.Equal(t, "e4", ctl.MoveHistory()[0].Move)

	b.Render()
	cell := b.Table.GetCell(4, 5) // e4
	assert.Equal(t, " ♙ ", cell.Text)
	assert.Equal(t, "   ", b.Table.GetCell(6, 5).Text, "e2 is empty")
}

func TestSelectIgnoresEmptySquare(t *testing.T) {
	b, ctl := newTestBoard(t)

	b.Select(sq(t, "e4"))
	assert.False(t, b.selecting)

	b.Select(sq(t, "g1"))
	b.Select(sq(t, "g1"))
	assert.False(t, b.selecting, "second click on the same square deselects")
	assert.Empty(t, ctl.MoveHistory())
}

func TestSelectIllegalDestination(t *testing.T) {
	b, ctl := newTestBoard(t)

	b.Select(sq(t, "e2"))
	b.Select(sq(t, "e5"))
	assert.Empty(t, ctl.MoveHistory())
	assert.Contains(t, b.message, "illegal move")
}

func TestSelectPromotesToQueen(t *testing.T) {
	b, ctl := newTestBoard(t)
	require.True(t, ctl.SetFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1").Applied)

	b.Select(sq(t, "a7"))
	b.Select(sq(t, "a8"))
	require.Len(t, ctl.MoveHistory(), 1)
	assert.Equal(t, "a7a8q", ctl.MoveHistory()[0].UCI)
}

func TestRenderHighlightsLastMoveAndCheck(t *testing.T) {
	b, ctl := newTestBoard(t)
	for _, m := range []string{"e2e4", "f7f6", "d2d4", "g7g5", "d1h5"} {
		require.True(t, ctl.MakeMove(m).Applied, m)
	}
	b.Render()

	h5 := b.Table.GetCell(3, 8)
	assert.Equal(t, b.theme.SquareLast, h5.BackgroundColor)
	e8 := b.Table.GetCell(0, 5)
	assert.Equal(t, b.theme.SquareCheck, e8.BackgroundColor)
	assert.Contains(t, b.Status.GetText(false), "CHECKMATE! WHITE WINS")
}

func TestMoveLogText(t *testing.T) {
	_, ctl := newTestBoard(t)
	assert.Contains(t, moveLogText(ctl), "No moves yet")

	require.True(t, ctl.MakeMove("e2e4").Applied)
	require.True(t, ctl.MakeMove("e7e5").Applied)
	require.True(t, ctl.MakeMove("g1f3").Applied)
	assert.Equal(t, "1. e4\n1... e5\n2. Nf3\n", moveLogText(ctl))
}

func TestHandleKey(t *testing.T) {
	b, ctl := newTestBoard(t)
	require.True(t, ctl.MakeMove("e2e4").Applied)

	assert.Nil(t, b.handleKey(tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone)))
	assert.Contains(t, b.message, "saved")

	assert.Nil(t, b.handleKey(tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone)))
	assert.Empty(t, ctl.MoveHistory())

	assert.Nil(t, b.handleKey(tcell.NewEventKey(tcell.KeyRune, 'l', tcell.ModNone)))
	assert.Len(t, ctl.MoveHistory(), 1)

	assert.Nil(t, b.handleKey(tcell.NewEventKey(tcell.KeyRune, 'f', tcell.ModNone)))
	assert.True(t, b.flipped)

	ev := tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)
	assert.Equal(t, ev, b.handleKey(ev))
}

func TestThemeFromSetting(t *testing.T) {
	th, err := ThemeFromSetting(map[string]interface{}{"light": "#ffffff", "dark": "not a color"})
	require.NoError(t, err)
	assert.Equal(t, tcell.NewHexColor(0xffffff), th.SquareLight)
	assert.Equal(t, ThemeDefault.SquareDark, th.SquareDark)

	th, err = ThemeFromSetting(nil)
	require.NoError(t, err)
	assert.Equal(t, ThemeDefault, th)

	_, err = ThemeFromSetting([]interface{}{1, 2})
	assert.Error(t, err)

	assert.Equal(t, "#f0d9b5", ThemeDefault.Hex().Light)
}
