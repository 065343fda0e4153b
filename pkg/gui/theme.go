package gui

import (
	"encoding/json"
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Theme is used for coloring the board
type Theme struct {
	SquareLight tcell.Color
	SquareDark  tcell.Color
	SquareHigh  tcell.Color
	SquareLast  tcell.Color
	SquareCheck tcell.Color
	White       tcell.Color
	Black       tcell.Color
	Label       tcell.Color
}

// ThemeHex is the settings file form of a Theme
type ThemeHex struct {
	Light     string `json:"light"`
	Dark      string `json:"dark"`
	Highlight string `json:"highlight"`
	LastMove  string `json:"last_move"`
	Check     string `json:"check,omitempty"`
}

// fmtHex returns a one character hex for the ColorDefault
// and otherwise it returns a standard hex.
func fmtHex(v int32) string {
	if v == -1 {
		return "#0"
	}
	return fmt.Sprintf("#%06x", v)
}

// Hex converts a Theme to a ThemeHex
func (t Theme) Hex() ThemeHex {
	return ThemeHex{
		Light:     fmtHex(t.SquareLight.Hex()),
		Dark:      fmtHex(t.SquareDark.Hex()),
		Highlight: fmtHex(t.SquareHigh.Hex()),
		LastMove:  fmtHex(t.SquareLast.Hex()),
		Check:     fmtHex(t.SquareCheck.Hex()),
	}
}

// Apply overrides the colors of base with the ones set in t. Empty or
// unknown colors keep the base value.
func (t ThemeHex) Apply(base Theme) Theme {
	set := func(dst *tcell.Color, hex string) {
		if hex == "" {
			return
		}
		if c := tcell.GetColor(hex); c != tcell.ColorDefault {
			*dst = c
		}
	}
	set(&base.SquareLight, t.Light)
	set(&base.SquareDark, t.Dark)
	set(&base.SquareHigh, t.Highlight)
	set(&base.SquareLast, t.LastMove)
	set(&base.SquareCheck, t.Check)
	return base
}

// ThemeFromSetting decodes the board_colors setting, which arrives from
// the settings file as a generic JSON value, on top of ThemeDefault.
func ThemeFromSetting(v interface{}) (Theme, error) {
	if v == nil {
		return ThemeDefault, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ThemeDefault, fmt.Errorf("theme: %w", err)
	}
	var hex ThemeHex
	if err := json.Unmarshal(data, &hex); err != nil {
		return ThemeDefault, fmt.Errorf("theme: %w", err)
	}
	return hex.Apply(ThemeDefault), nil
}

// ThemeDefault matches the widget's wooden board
var ThemeDefault = Theme{
	SquareLight: tcell.NewHexColor(0xf0d9b5),
	SquareDark:  tcell.NewHexColor(0xb58863),
	SquareHigh:  tcell.NewHexColor(0xaaa23b),
	SquareLast:  tcell.NewHexColor(0x7eb36b),
	SquareCheck: tcell.NewHexColor(0xff9900),
	White:       tcell.ColorWhite,
	Black:       tcell.ColorBlack,
	Label:       tcell.Color247,
}
