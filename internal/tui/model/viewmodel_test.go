package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matheus3301/wxbak/internal/conversation"
	"github.com/matheus3301/wxbak/internal/identity"
	"github.com/matheus3301/wxbak/internal/tui/client"
)

// fakeSource serves a single conversation of n messages.
type fakeSource struct {
	n       int
	queries []client.MessageQuery
}

func (f *fakeSource) Health(context.Context) (*client.Health, error) {
	return &client.Health{State: "SERVING"}, nil
}

func (f *fakeSource) Accounts(context.Context) ([]identity.Account, error) {
	return []identity.Account{{Hash: "h1", DisplayName: "Me"}}, nil
}

func (f *fakeSource) Conversations(_ context.Context, hash string, _ int) ([]conversation.Summary, error) {
	if hash != "h1" {
		return nil, errors.New("unknown account")
	}
	return []conversation.Summary{{TableName: "Chat_a", MessageCount: f.n}}, nil
}

func (f *fakeSource) Messages(_ context.Context, q client.MessageQuery) (*conversation.Page, error) {
	f.queries = append(f.queries, q)
	page := &conversation.Page{}
	for i := q.Offset; i < f.n && i < q.Offset+q.Limit; i++ {
		page.Messages = append(page.Messages, conversation.Entry{LocalID: int64(f.n - i)})
	}
	return page, nil
}

func (f *fakeSource) Dates(context.Context, string, string) ([]string, error) {
	return []string{"2024-05-01"}, nil
}

func (f *fakeSource) Stats(context.Context, string, string) (*conversation.Stats, error) {
	return &conversation.Stats{Total: f.n}, nil
}

func TestBrowse(t *testing.T) {
	src := &fakeSource{n: 250}
	vm := NewViewModel(src)
	ctx := context.Background()

	if err := vm.LoadAccounts(ctx); err != nil {
		t.Fatal(err)
	}
	if err := vm.OpenAccount(ctx, vm.Accounts()[0].Hash); err != nil {
		t.Fatal(err)
	}
	if got := vm.Conversations(); len(got) != 1 {
		t.Fatalf("conversations = %+v", got)
	}
	if err := vm.OpenConversation(ctx, "Chat_a"); err != nil {
		t.Fatal(err)
	}
	if got := len(vm.Page().Messages); got != PageSize {
		t.Fatalf("page size = %d", got)
	}

	// Paging back and forth.
	for _, want := range []int{100, 200} {
		ok, err := vm.Older(ctx)
		if err != nil || !ok {
			t.Fatalf("Older() = %v, %v", ok, err)
		}
		if vm.Query().Offset != want {
			t.Errorf("offset = %d, want %d", vm.Query().Offset, want)
		}
	}
	if ok, _ := vm.Older(ctx); ok {
		t.Error("Older() past the last page")
	}
	if ok, _ := vm.Newer(ctx); !ok || vm.Query().Offset != 100 {
		t.Errorf("Newer() offset = %d", vm.Query().Offset)
	}

	if err := vm.ShowDay(ctx, "2024-05-01"); err != nil {
		t.Fatal(err)
	}
	q := vm.Query()
	if q.Date != "2024-05-01" || q.Offset != 0 || q.All {
		t.Errorf("day query = %+v", q)
	}
	if err := vm.ShowAll(ctx); err != nil {
		t.Fatal(err)
	}
	if q := vm.Query(); !q.All || q.Date != "" || q.Table != "Chat_a" || q.AccountHash != "h1" {
		t.Errorf("all query = %+v", q)
	}
	if ok, _ := vm.Newer(ctx); ok {
		t.Error("Newer() at the newest page")
	}

	if err := vm.LoadStats(ctx); err != nil {
		t.Fatal(err)
	}
	if vm.Stats().Total != 250 {
		t.Errorf("stats = %+v", vm.Stats())
	}
}

func TestOpenAccountKeepsStateOnError(t *testing.T) {
	vm := NewViewModel(&fakeSource{n: 1})
	ctx := context.Background()
	if err := vm.OpenAccount(ctx, "h1"); err != nil {
		t.Fatal(err)
	}
	if err := vm.OpenAccount(ctx, "h2"); err == nil {
		t.Fatal("expected error")
	}
	if vm.ActiveAccount() != "h1" {
		t.Errorf("active account = %q", vm.ActiveAccount())
	}
}

func TestFlash(t *testing.T) {
	var f Flash
	f.Set(Warn, "careful", time.Hour)
	if msg, level := f.Get(); msg != "careful" || level != Warn {
		t.Errorf("Get() = %q, %v", msg, level)
	}
	f.Set(Info, "gone", -time.Second)
	if msg, _ := f.Get(); msg != "" {
		t.Errorf("expired flash = %q", msg)
	}
}
