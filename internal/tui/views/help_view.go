package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/wxbak/internal/tui/ui"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	theme.Frame(tv.Box, "Help")

	k := ui.Tag(theme.BorderColor)
	_, _ = fmt.Fprintf(tv, `
  [::b]Everywhere[-:-:-]

  [%[1]s]Enter[-:-:-]    Open selection       [%[1]s]Esc[-:-:-]   Go back
  [%[1]s]?[-:-:-]        Help                 [%[1]s]q[-:-:-]     Quit

  [::b]Conversations[-:-:-]

  [%[1]s]/[-:-:-]        Filter by name or preview
  [%[1]s]r[-:-:-]        Reload

  [::b]Messages[-:-:-]

  [%[1]s]a[-:-:-]        Whole history        [%[1]s]d[-:-:-]     Pick a day
  [%[1]s]o[-:-:-]        Older page           [%[1]s]n[-:-:-]     Newer page
  [%[1]s]s[-:-:-]        Statistics
`, k)
	return &HelpView{TextView: tv}
}
