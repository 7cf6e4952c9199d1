package views

import (
	"github.com/rivo/tview"

	"github.com/matheus3301/wxbak/internal/tui/ui"
)

// DateList lets the user jump to one day of a conversation.
type DateList struct {
	*tview.List
	dates    []string
	onSelect func(date string)
}

// NewDateList creates the day picker.
func NewDateList(theme *ui.Theme) *DateList {
	l := tview.NewList().ShowSecondaryText(false)
	theme.Frame(l.Box, "Days")
	dl := &DateList{List: l}
	l.SetSelectedFunc(func(i int, _, _ string, _ rune) {
		if dl.onSelect != nil && i < len(dl.dates) {
			dl.onSelect(dl.dates[i])
		}
	})
	return dl
}

// SetOnSelect sets the callback run with the chosen day.
func (dl *DateList) SetOnSelect(fn func(date string)) {
	dl.onSelect = fn
}

// Update replaces the days, newest first.
func (dl *DateList) Update(dates []string) {
	dl.dates = dates
	dl.Clear()
	for _, d := range dates {
		dl.AddItem(d, "", 0, nil)
	}
}
