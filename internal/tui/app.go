// Package tui is a terminal browser for a backup served by wxbakd.
package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/wxbak/internal/tui/keys"
	"github.com/matheus3301/wxbak/internal/tui/model"
	"github.com/matheus3301/wxbak/internal/tui/ui"
	"github.com/matheus3301/wxbak/internal/tui/views"
)

const (
	pageAccounts = "accounts"
	pageChats    = "chats"
	pageMessages = "messages"
	pageDates    = "dates"
	pageStats    = "stats"
	pageHelp     = "help"

	flashFor = 5 * time.Second
)

// App is the main TUI application shell.
type App struct {
	app       *tview.Application
	pages     *ui.Pages
	vm        *model.ViewModel
	registry  *keys.Registry
	statusBar *views.StatusBar
	accounts  *views.AccountList
	chatList  *views.ChatList
	msgView   *views.MessageView
	dates     *views.DateList
	stats     *views.StatsView
	help      *views.HelpView
	filter    *tview.InputField
	layout    *tview.Flex
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApp creates the browser over src. Times are shown in loc.
func NewApp(src model.Source, loc *time.Location) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		pages:     ui.NewPages(),
		vm:        model.NewViewModel(src),
		registry:  keys.NewRegistry(),
		statusBar: views.NewStatusBar(theme),
		accounts:  views.NewAccountList(theme),
		chatList:  views.NewChatList(theme, loc),
		msgView:   views.NewMessageView(theme, loc),
		dates:     views.NewDateList(theme),
		stats:     views.NewStatsView(theme, loc),
		help:      views.NewHelpView(theme),
		filter:    tview.NewInputField().SetLabel("/"),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	key := func(r rune, desc string, fn func()) *keys.Action {
		return &keys.Action{Key: tcell.KeyRune, Rune: r, Description: desc, Handler: fn}
	}

	a.registry.AddGlobal(key('q', "q:quit", a.Stop))
	a.registry.AddGlobal(key('?', "?:help", func() { a.push(pageHelp, a.help) }))

	a.registry.AddPage(pageChats, key('/', "/:filter", a.showFilter))
	a.registry.AddPage(pageChats, key('r', "r:reload", func() { a.openAccount(a.vm.ActiveAccount()) }))

	a.registry.AddPage(pageMessages, key('a', "a:all", func() { a.reload(a.vm.ShowAll) }))
	a.registry.AddPage(pageMessages, key('d', "d:days", a.showDates))
	a.registry.AddPage(pageMessages, key('s', "s:stats", a.showStats))
	a.registry.AddPage(pageMessages, key('o', "o:older", func() { a.page(a.vm.Older, "Oldest page reached") }))
	a.registry.AddPage(pageMessages, key('n', "n:newer", func() { a.page(a.vm.Newer, "Newest page reached") }))
}

func (a *App) setupCallbacks() {
	a.accounts.SetSelectedFunc(func(int, int) {
		if hash := a.accounts.Selected(); hash != "" {
			a.openAccount(hash)
		}
	})
	a.chatList.SetSelectedFunc(func(int, int) {
		if c, ok := a.chatList.Selected(); ok {
			a.openChat(c.TableName)
		}
	})
	a.dates.SetOnSelect(func(date string) {
		a.reload(func(ctx context.Context) error { return a.vm.ShowDay(ctx, date) })
		a.back()
	})
	a.filter.SetChangedFunc(a.chatList.SetFilter)
	a.filter.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			a.filter.SetText("")
		}
		a.layout.ResizeItem(a.filter, 0, 0)
		a.app.SetFocus(a.chatList)
	})
	a.pages.SetOnChange(func(top string) {
		a.statusBar.SetHints(a.registry.Hints(top))
	})
}

func (a *App) setupLayout() {
	a.pages.AddPage(pageAccounts, a.accounts, true, true)
	a.pages.AddPage(pageChats, a.chatList, true, false)
	a.pages.AddPage(pageMessages, a.msgView, true, false)
	a.pages.AddPage(pageDates, a.dates, true, false)
	a.pages.AddPage(pageStats, a.stats, true, false)
	a.pages.AddPage(pageHelp, a.help, true, false)
	a.pages.Reset(pageAccounts, a.accounts)

	a.layout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.filter, 0, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(a.layout, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Let the filter field handle all keys normally.
		if a.app.GetFocus() == a.filter {
			return event
		}
		if event.Key() == tcell.KeyEscape {
			a.back()
			return nil
		}
		// Enter belongs to the focused list.
		if event.Key() == tcell.KeyEnter {
			return event
		}
		if a.registry.HandleEvent(a.pages.Current(), event) {
			return nil
		}
		return event
	})
}

// push shows a page and focuses it; must run on the UI goroutine.
func (a *App) push(name string, focus tview.Primitive) {
	a.app.SetFocus(a.pages.Push(name, focus))
}

func (a *App) back() {
	if focus := a.pages.Pop(); focus != nil {
		a.app.SetFocus(focus)
	}
}

func (a *App) openAccount(hash string) {
	if hash == "" {
		return
	}
	go func() {
		if err := a.vm.OpenAccount(a.ctx, hash); err != nil {
			a.fail("Load failed: " + err.Error())
			return
		}
		name := hash
		for _, acc := range a.vm.Accounts() {
			if acc.Hash == hash {
				name = acc.DisplayName
			}
		}
		a.app.QueueUpdateDraw(func() {
			a.statusBar.SetAccount(name)
			a.chatList.Update(a.vm.Conversations())
			a.push(pageChats, a.chatList)
		})
	}()
}

func (a *App) openChat(table string) {
	go func() {
		if err := a.vm.OpenConversation(a.ctx, table); err != nil {
			a.fail("Load failed: " + err.Error())
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.renderMessages()
			a.push(pageMessages, a.msgView)
		})
	}()
}

// reload runs fn against the open conversation and redraws it.
func (a *App) reload(fn func(context.Context) error) {
	go func() {
		if err := fn(a.ctx); err != nil {
			a.fail("Load failed: " + err.Error())
			return
		}
		a.app.QueueUpdateDraw(a.renderMessages)
	}()
}

func (a *App) page(fn func(context.Context) (bool, error), edge string) {
	go func() {
		moved, err := fn(a.ctx)
		switch {
		case err != nil:
			a.fail("Load failed: " + err.Error())
		case !moved:
			a.note(model.Info, edge)
		default:
			a.app.QueueUpdateDraw(a.renderMessages)
		}
	}()
}

func (a *App) showDates() {
	go func() {
		if err := a.vm.LoadDates(a.ctx); err != nil {
			a.fail("Load failed: " + err.Error())
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.dates.Update(a.vm.Dates())
			a.push(pageDates, a.dates)
		})
	}()
}

func (a *App) showStats() {
	go func() {
		if err := a.vm.LoadStats(a.ctx); err != nil {
			a.fail("Load failed: " + err.Error())
			return
		}
		a.app.QueueUpdateDraw(func() {
			name := ""
			if p := a.vm.Page(); p != nil {
				name = p.Contact.Nickname
			}
			a.stats.Update(name, a.vm.Stats())
			a.push(pageStats, a.stats)
		})
	}()
}

func (a *App) showFilter() {
	a.layout.ResizeItem(a.filter, 1, 0)
	a.filter.SetText(a.chatList.Filter())
	a.app.SetFocus(a.filter)
}

func (a *App) renderMessages() {
	q := a.vm.Query()
	label := "latest day"
	switch {
	case q.Date != "":
		label = q.Date
	case q.All:
		label = "all"
	}
	if q.Offset > 0 {
		label += ", older"
	}
	a.msgView.Update(a.vm.Page(), label)
}

func (a *App) fail(msg string) {
	a.note(model.Err, msg)
}

func (a *App) note(level model.Level, msg string) {
	a.vm.Flash.Set(level, msg, flashFor)
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetFlash(a.vm.Flash.Get())
	})
}

// Run loads the account list and starts the event loop. Blocks.
func (a *App) Run() error {
	go func() {
		if err := a.vm.LoadHealth(a.ctx); err != nil {
			a.fail("Daemon unreachable: " + err.Error())
		}
		if err := a.vm.LoadAccounts(a.ctx); err != nil {
			a.fail("Load failed: " + err.Error())
		}

		a.app.QueueUpdateDraw(func() {
			a.accounts.Update(a.vm.Accounts())
			if h := a.vm.Health(); h != nil {
				a.statusBar.SetState(h.State)
			}
			a.statusBar.SetHints(a.registry.Hints(a.pages.Current()))
		})

		a.startRefreshLoop()
	}()

	return a.app.Run()
}

// startRefreshLoop polls the daemon state and expires the flash message.
func (a *App) startRefreshLoop() {
	ticker := time.NewTicker(5 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				state := "UNREACHABLE"
				if err := a.vm.LoadHealth(a.ctx); err == nil {
					state = a.vm.Health().State
				}
				a.app.QueueUpdateDraw(func() {
					a.statusBar.SetState(state)
					a.statusBar.SetFlash(a.vm.Flash.Get())
				})
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
