package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/matheus3301/wxbak/internal/tui/model"
	"github.com/matheus3301/wxbak/internal/tui/ui"
)

// StatusBar shows the daemon state, the open account, key hints and
// the flash message.
type StatusBar struct {
	*tview.TextView
	theme   *ui.Theme
	state   string
	account string
	hints   []string
	flash   string
	level   model.Level
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)
	return &StatusBar{TextView: tv, theme: theme}
}

// SetState updates the daemon state.
func (sb *StatusBar) SetState(state string) {
	sb.state = state
	sb.render()
}

// SetAccount updates the account label.
func (sb *StatusBar) SetAccount(name string) {
	sb.account = name
	sb.render()
}

// SetHints updates the key hints for the current page.
func (sb *StatusBar) SetHints(hints []string) {
	sb.hints = hints
	sb.render()
}

// SetFlash sets a temporary message; empty clears it.
func (sb *StatusBar) SetFlash(msg string, level model.Level) {
	sb.flash, sb.level = msg, level
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	state := sb.state
	if state == "" {
		state = "?"
	}
	line := fmt.Sprintf(" [::b]wxbak[-:-:-] | %s", tview.Escape(state))
	if sb.account != "" {
		line += " | " + display(sb.account)
	}
	if len(sb.hints) > 0 {
		line += " | [::d]" + tview.Escape(strings.Join(sb.hints, "  ")) + "[-:-:-]"
	}
	if sb.flash != "" {
		color := sb.theme.FlashInfoColor
		switch sb.level {
		case model.Warn:
			color = sb.theme.FlashWarnColor
		case model.Err:
			color = sb.theme.FlashErrColor
		}
		line += fmt.Sprintf(" | [%s]%s[-]", ui.Tag(color), tview.Escape(sb.flash))
	}
	_, _ = fmt.Fprint(sb, line)
}
