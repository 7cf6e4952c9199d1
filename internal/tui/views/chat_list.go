package views

import (
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/wxbak/internal/conversation"
	"github.com/matheus3301/wxbak/internal/tui/ui"
)

// ChatList is the conversation table of one account (K9s-inspired).
type ChatList struct {
	*tview.Table
	theme  *ui.Theme
	loc    *time.Location
	now    func() time.Time
	chats  []conversation.Summary
	shown  []int
	filter string
}

// NewChatList creates the conversation table. Times render in loc.
func NewChatList(theme *ui.Theme, loc *time.Location) *ChatList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	table.SetSelectedStyle(tcell.StyleDefault.Foreground(theme.TableCursorFg).Background(theme.TableCursorBg))
	theme.Frame(table.Box, "Conversations")
	return &ChatList{Table: table, theme: theme, loc: loc, now: time.Now}
}

// Update replaces the conversations, keeping the filter.
func (cl *ChatList) Update(chats []conversation.Summary) {
	cl.chats = chats
	cl.render()
}

// SetFilter shows only conversations whose name, ID or preview contains
// filter, ignoring case.
func (cl *ChatList) SetFilter(filter string) {
	cl.filter = strings.TrimSpace(filter)
	cl.render()
}

// Filter returns the active filter.
func (cl *ChatList) Filter() string {
	return cl.filter
}

// Selected returns the highlighted conversation.
func (cl *ChatList) Selected() (conversation.Summary, bool) {
	row, _ := cl.GetSelection()
	if idx := row - 1; idx >= 0 && idx < len(cl.shown) {
		return cl.chats[cl.shown[idx]], true
	}
	return conversation.Summary{}, false
}

func (cl *ChatList) render() {
	cl.Clear()
	header(cl.Table, cl.theme, " NAME", " MSGS", " LAST MESSAGE", " TIME")

	cl.shown = cl.shown[:0]
	now := cl.now()
	for i, c := range cl.chats {
		if cl.filter != "" && !containsFold(c.Contact.Nickname, cl.filter) &&
			!containsFold(c.Contact.ExternalID, cl.filter) && !containsFold(c.LastMessagePreview, cl.filter) {
			continue
		}
		cl.shown = append(cl.shown, i)
		row := len(cl.shown)

		name := display(c.Contact.Nickname)
		if c.Contact.IsGroup {
			name = "# " + name
		}
		cl.SetCell(row, 0, tview.NewTableCell(" "+name).SetMaxWidth(30).SetExpansion(1))
		cl.SetCell(row, 1, tview.NewTableCell(" "+strconv.Itoa(c.MessageCount)).SetAlign(tview.AlignRight))
		cl.SetCell(row, 2, tview.NewTableCell(" "+display(c.LastMessagePreview)).SetMaxWidth(48).SetExpansion(2))
		cl.SetCell(row, 3, tview.NewTableCell(" "+stamp(c.LastMessageAt, cl.loc, now)))
	}

	title := "Conversations"
	if cl.filter != "" {
		title += " /" + cl.filter
	}
	cl.SetTitle(tview.Escape(" " + title + " [" + strconv.Itoa(len(cl.shown)) + "] "))
	if len(cl.shown) > 0 {
		cl.Select(1, 0)
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
