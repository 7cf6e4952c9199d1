package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/wxbak/internal/identity"
	"github.com/matheus3301/wxbak/internal/tui/ui"
)

// AccountList shows the accounts of the backup.
type AccountList struct {
	*tview.Table
	theme    *ui.Theme
	accounts []identity.Account
}

// NewAccountList creates the account table.
func NewAccountList(theme *ui.Theme) *AccountList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	table.SetSelectedStyle(tcell.StyleDefault.Foreground(theme.TableCursorFg).Background(theme.TableCursorBg))
	theme.Frame(table.Box, "Accounts")
	return &AccountList{Table: table, theme: theme}
}

// Update replaces the rows.
func (al *AccountList) Update(accounts []identity.Account) {
	al.accounts = accounts
	al.Clear()
	header(al.Table, al.theme, " NICKNAME", " WECHAT ID", " MD5")
	for i, a := range accounts {
		row := i + 1
		al.SetCell(row, 0, tview.NewTableCell(" "+display(a.DisplayName)).SetExpansion(1))
		al.SetCell(row, 1, tview.NewTableCell(" "+display(a.ExternalID)).SetExpansion(1))
		al.SetCell(row, 2, tview.NewTableCell(" "+a.Hash))
	}
	if len(accounts) > 0 {
		al.Select(1, 0)
	}
}

// Selected returns the hash of the highlighted account.
func (al *AccountList) Selected() string {
	row, _ := al.GetSelection()
	if idx := row - 1; idx >= 0 && idx < len(al.accounts) {
		return al.accounts[idx].Hash
	}
	return ""
}

func header(t *tview.Table, theme *ui.Theme, titles ...string) {
	for col, h := range titles {
		t.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(theme.TableHeaderFg).
			SetAttributes(tcell.AttrBold))
	}
}
