package model

import (
	"context"
	"sync"

	"github.com/matheus3301/wxbak/internal/conversation"
	"github.com/matheus3301/wxbak/internal/identity"
	"github.com/matheus3301/wxbak/internal/tui/client"
)

// Source is the daemon API the view model reads from.
type Source interface {
	Health(ctx context.Context) (*client.Health, error)
	Accounts(ctx context.Context) ([]identity.Account, error)
	Conversations(ctx context.Context, accountHash string, minCount int) ([]conversation.Summary, error)
	Messages(ctx context.Context, q client.MessageQuery) (*conversation.Page, error)
	Dates(ctx context.Context, accountHash, table string) ([]string, error)
	Stats(ctx context.Context, accountHash, table string) (*conversation.Stats, error)
}

// PageSize is the number of messages fetched per page.
const PageSize = 100

// ViewModel caches what the browser shows and tracks the current selection.
type ViewModel struct {
	mu sync.RWMutex

	src      Source
	health   *client.Health
	accounts []identity.Account
	chats    []conversation.Summary
	page     *conversation.Page
	dates    []string
	stats    *conversation.Stats

	account string
	table   string
	query   client.MessageQuery

	Flash Flash
}

// NewViewModel creates a view model reading from src.
func NewViewModel(src Source) *ViewModel {
	return &ViewModel{src: src}
}

// LoadHealth fetches the daemon state.
func (vm *ViewModel) LoadHealth(ctx context.Context) error {
	h, err := vm.src.Health(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.health = h
	vm.mu.Unlock()
	return nil
}

// LoadAccounts fetches the account list.
func (vm *ViewModel) LoadAccounts(ctx context.Context) error {
	accounts, err := vm.src.Accounts(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.accounts = accounts
	vm.mu.Unlock()
	return nil
}

// OpenAccount makes hash the active account and loads its conversations.
func (vm *ViewModel) OpenAccount(ctx context.Context, hash string) error {
	chats, err := vm.src.Conversations(ctx, hash, -1)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.account, vm.table = hash, ""
	vm.chats = chats
	vm.page, vm.dates, vm.stats = nil, nil, nil
	vm.mu.Unlock()
	return nil
}

// OpenConversation makes table active and loads its default window.
func (vm *ViewModel) OpenConversation(ctx context.Context, table string) error {
	vm.mu.RLock()
	account := vm.account
	vm.mu.RUnlock()
	return vm.load(ctx, client.MessageQuery{AccountHash: account, Table: table, Limit: PageSize})
}

// ShowDay reloads the active conversation restricted to one day.
func (vm *ViewModel) ShowDay(ctx context.Context, date string) error {
	q := vm.current()
	q.Date, q.All, q.Offset = date, false, 0
	return vm.load(ctx, q)
}

// ShowAll reloads the active conversation over its whole history.
func (vm *ViewModel) ShowAll(ctx context.Context) error {
	q := vm.current()
	q.Date, q.All, q.Offset = "", true, 0
	return vm.load(ctx, q)
}

// Older loads the next page back in time. It reports false when the
// current page was the last one.
func (vm *ViewModel) Older(ctx context.Context) (bool, error) {
	vm.mu.RLock()
	full := vm.page != nil && len(vm.page.Messages) == vm.query.Limit
	vm.mu.RUnlock()
	if !full {
		return false, nil
	}
	q := vm.current()
	q.Offset += q.Limit
	return true, vm.load(ctx, q)
}

// Newer loads the previous page; false when already at the newest one.
func (vm *ViewModel) Newer(ctx context.Context) (bool, error) {
	q := vm.current()
	if q.Offset == 0 {
		return false, nil
	}
	q.Offset = max(0, q.Offset-q.Limit)
	return true, vm.load(ctx, q)
}

// LoadDates fetches the days of the active conversation.
func (vm *ViewModel) LoadDates(ctx context.Context) error {
	q := vm.current()
	dates, err := vm.src.Dates(ctx, q.AccountHash, q.Table)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.dates = dates
	vm.mu.Unlock()
	return nil
}

// LoadStats fetches the statistics of the active conversation.
func (vm *ViewModel) LoadStats(ctx context.Context) error {
	q := vm.current()
	st, err := vm.src.Stats(ctx, q.AccountHash, q.Table)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.stats = st
	vm.mu.Unlock()
	return nil
}

func (vm *ViewModel) load(ctx context.Context, q client.MessageQuery) error {
	page, err := vm.src.Messages(ctx, q)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	if vm.table != q.Table {
		vm.dates, vm.stats = nil, nil
	}
	vm.table = q.Table
	vm.query = q
	vm.page = page
	vm.mu.Unlock()
	return nil
}

func (vm *ViewModel) current() client.MessageQuery {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.query
}

// Health returns the last fetched daemon state.
func (vm *ViewModel) Health() *client.Health {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.health
}

// Accounts returns a snapshot of the account list.
func (vm *ViewModel) Accounts() []identity.Account {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.accounts
}

// Conversations returns a snapshot of the active account's conversations.
func (vm *ViewModel) Conversations() []conversation.Summary {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.chats
}

// Page returns the loaded page, or nil.
func (vm *ViewModel) Page() *conversation.Page {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.page
}

// Query returns the query behind the loaded page.
func (vm *ViewModel) Query() client.MessageQuery {
	return vm.current()
}

// Dates returns the loaded days, newest first.
func (vm *ViewModel) Dates() []string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.dates
}

// Stats returns the loaded statistics, or nil.
func (vm *ViewModel) Stats() *conversation.Stats {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.stats
}

// ActiveAccount returns the hash of the open account.
func (vm *ViewModel) ActiveAccount() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.account
}
