package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/qnkhuat/chesswidget/pkg/oracle"
	"github.com/qnkhuat/chesswidget/pkg/session"
)

// printer writes human readable command output.
type printer struct {
	w io.Writer

	ok   *color.Color
	warn *color.Color
	bad  *color.Color
	dim  *color.Color
}

func newPrinter(w io.Writer, opts *RootOptions) *printer {
	p := &printer{
		w:    w,
		ok:   color.New(color.FgGreen, color.Bold),
		warn: color.New(color.FgYellow),
		bad:  color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
	if opts.NoColor {
		for _, c := range []*color.Color{p.ok, p.warn, p.bad, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) Line(format string, a ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", a...)
}

func (p *printer) OK(format string, a ...interface{}) {
	p.ok.Fprintf(p.w, format+"\n", a...)
}

func (p *printer) Warn(format string, a ...interface{}) {
	p.warn.Fprintf(p.w, format+"\n", a...)
}

func (p *printer) Bad(format string, a ...interface{}) {
	p.bad.Fprintf(p.w, format+"\n", a...)
}

func (p *printer) Dim(format string, a ...interface{}) {
	p.dim.Fprintf(p.w, format+"\n", a...)
}

// Status prints the turn indicator in the color the board uses for it.
func (p *printer) Status(st session.Status, white, black string) {
	player := white
	if st.Turn == oracle.Black {
		player = black
	}
	line := fmt.Sprintf("%s (%s, %s)", st.Text, player, st.Turn)
	switch st.Kind {
	case session.StatusCheckmate:
		p.Bad("%s", line)
	case session.StatusCheck, session.StatusDraw:
		p.Warn("%s", line)
	default:
		p.OK("%s", line)
	}
}

// Saved reports the fate of a mutation's save.
func (p *printer) Saved(saved bool, err error) {
	switch {
	case err != nil:
		p.Warn("not saved: %v", err)
	case !saved:
		p.Dim("auto-save is off; pass --save to keep this change")
	}
}
