// Package ui holds the shared look and page stack of the browser.
package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor        tcell.Color
	FgColor        tcell.Color
	BorderColor    tcell.Color
	TableHeaderFg  tcell.Color
	TableCursorFg  tcell.Color
	TableCursorBg  tcell.Color
	TitleColor     tcell.Color
	SentColor      tcell.Color
	ReceivedColor  tcell.Color
	DayColor       tcell.Color
	FlashInfoColor tcell.Color
	FlashWarnColor tcell.Color
	FlashErrColor  tcell.Color
}

// DefaultTheme returns a k9s-inspired dark theme.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:        tcell.ColorBlack,
		FgColor:        tcell.ColorCadetBlue,
		BorderColor:    tcell.ColorDodgerBlue,
		TableHeaderFg:  tcell.ColorWhite,
		TableCursorFg:  tcell.ColorBlack,
		TableCursorBg:  tcell.ColorAqua,
		TitleColor:     tcell.ColorFuchsia,
		SentColor:      tcell.ColorLightGreen,
		ReceivedColor:  tcell.ColorLightSkyBlue,
		DayColor:       tcell.ColorOrange,
		FlashInfoColor: tcell.ColorNavajoWhite,
		FlashWarnColor: tcell.ColorOrange,
		FlashErrColor:  tcell.ColorOrangeRed,
	}
}

// Tag returns c as a tview color tag body, e.g. "#ff8c00".
func Tag(c tcell.Color) string {
	return fmt.Sprintf("#%06x", c.Hex())
}

// Frame applies the theme's border and title to a boxed primitive.
func (t *Theme) Frame(b *tview.Box, title string) {
	b.SetBorder(true).
		SetBorderColor(t.BorderColor).
		SetBackgroundColor(t.BgColor).
		SetTitle(" " + title + " ").
		SetTitleColor(t.TitleColor)
}
