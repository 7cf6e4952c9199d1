package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/matheus3301/wxbak/internal/conversation"
	"github.com/matheus3301/wxbak/internal/message"
	"github.com/matheus3301/wxbak/internal/tui/ui"
)

const barWidth = 30

// StatsView summarizes a conversation: totals, kinds and an hourly
// histogram.
type StatsView struct {
	*tview.TextView
	loc *time.Location
}

// NewStatsView creates the statistics view.
func NewStatsView(theme *ui.Theme, loc *time.Location) *StatsView {
	tv := tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	theme.Frame(tv.Box, "Statistics")
	return &StatsView{TextView: tv, loc: loc}
}

// Update renders st for the conversation named name.
func (sv *StatsView) Update(name string, st *conversation.Stats) {
	sv.Clear()
	sv.SetTitle(" Statistics: " + tview.Escape(name) + " ")
	if st == nil {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  [::b]Messages[-:-:-]  %d  (sent %d, received %d)\n", st.Total, st.Sent, st.Received)
	if st.Total > 0 {
		fmt.Fprintf(&b, "  [::b]First[-:-:-]     %s\n", time.Unix(st.First, 0).In(sv.loc).Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "  [::b]Last[-:-:-]      %s\n", time.Unix(st.Last, 0).In(sv.loc).Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "  [::b]Active days[-:-:-] %d\n", len(st.ByDay))
	}

	b.WriteString("\n  [::b]By kind[-:-:-]\n")
	for _, k := range message.Kinds() {
		if n := st.ByKind[k.String()]; n > 0 {
			fmt.Fprintf(&b, "  %-10s %6d\n", k, n)
		}
	}

	peak := 0
	for _, n := range st.Hourly {
		peak = max(peak, n)
	}
	b.WriteString("\n  [::b]By hour[-:-:-]\n")
	for h, n := range st.Hourly {
		bar := 0
		if peak > 0 {
			bar = n * barWidth / peak
		}
		fmt.Fprintf(&b, "  %02d %s %d\n", h, strings.Repeat("█", bar), n)
	}
	_, _ = fmt.Fprint(sv, b.String())
	sv.ScrollToBeginning()
}
