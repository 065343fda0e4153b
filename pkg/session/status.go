package session

import (
	"github.com/qnkhuat/chesswidget/pkg/oracle"
)

type StatusKind int

const (
	StatusTurn StatusKind = iota
	StatusCheck
	StatusCheckmate
	StatusDraw
)

// Status is the turn indicator shown next to the board.
type Status struct {
	Kind StatusKind
	Turn oracle.Color
	Text string
}

// Status summarizes whose turn it is and whether the game has ended.
func (c *Controller) Status() Status {
	turn := c.CurrentTurn()
	switch {
	case c.IsInCheckmate():
		winner := "WHITE"
		if turn == oracle.White {
			winner = "BLACK"
		}
		return Status{Kind: StatusCheckmate, Turn: turn, Text: "CHECKMATE! " + winner + " WINS"}
	case c.IsGameOver():
		return Status{Kind: StatusDraw, Turn: turn, Text: "DRAW"}
	case c.IsInCheck():
		return Status{Kind: StatusCheck, Turn: turn, Text: "CHECK! YOUR TURN"}
	default:
		return Status{Kind: StatusTurn, Turn: turn, Text: "YOUR TURN"}
	}
}
