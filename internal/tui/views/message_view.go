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

// MessageView displays one page of a conversation, oldest at the top.
type MessageView struct {
	*tview.TextView
	theme *ui.Theme
	loc   *time.Location
}

// NewMessageView creates the transcript view. Times render in loc.
func NewMessageView(theme *ui.Theme, loc *time.Location) *MessageView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	theme.Frame(tv.Box, "Messages")
	return &MessageView{TextView: tv, theme: theme, loc: loc}
}

// Update renders page; label describes the window on the title.
func (mv *MessageView) Update(page *conversation.Page, label string) {
	mv.Clear()
	if page == nil {
		return
	}
	mv.SetTitle(tview.Escape(fmt.Sprintf(" %s [%s] ", page.Contact.Nickname, label)))

	if len(page.Messages) == 0 {
		_, _ = fmt.Fprint(mv, "\n  [::d]No messages in this window.[-:-:-]\n")
		return
	}

	var b strings.Builder
	day := ""
	// Pages are newest first.
	for i := len(page.Messages) - 1; i >= 0; i-- {
		m := page.Messages[i]
		t := time.Unix(m.CreateTime, 0).In(mv.loc)
		if d := t.Format("2006-01-02"); d != day {
			day = d
			fmt.Fprintf(&b, "[%s::b]── %s ──[-:-:-]\n", ui.Tag(mv.theme.DayColor), d)
		}

		who, color := "", mv.theme.ReceivedColor
		switch {
		case m.Direction == message.Sent:
			who, color = "You", mv.theme.SentColor
		case m.Sender != "":
			who = m.Sender
		case !page.Contact.IsGroup:
			who = page.Contact.Nickname
		}
		if m.Kind == message.KindSystem.String() || m.Kind == message.KindRecall.String() {
			fmt.Fprintf(&b, "  [::d]%s %s[-:-:-]\n", t.Format("15:04"), display(m.Content))
			continue
		}
		fmt.Fprintf(&b, "[%s::b]%s[-:-:-] [::d]%s[-:-:-]\n%s\n\n",
			ui.Tag(color), display(who), t.Format("15:04"), display(m.Content))
	}
	_, _ = fmt.Fprint(mv, b.String())
	mv.ScrollToEnd()
}
