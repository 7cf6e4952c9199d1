package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matheus3301/wxbak/internal/api"
	"github.com/matheus3301/wxbak/internal/conversation"
	"github.com/matheus3301/wxbak/internal/fixture"
	"github.com/matheus3301/wxbak/internal/remark"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	if _, err := fixture.WriteDemo(root, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	srv := api.NewServer(conversation.New(nil, conversation.WithLocation(time.UTC)), api.Options{Root: root}, nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return New(strings.TrimPrefix(ts.URL, "http://"))
}

func TestClient(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	hash := remark.Hash(fixture.DemoOwner)
	table := "Chat_" + remark.Hash(fixture.DemoAlice)

	h, err := c.Health(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if h.State != "SERVING" {
		t.Errorf("state = %q", h.State)
	}

	accounts, err := c.Accounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 || accounts[0].Hash != hash {
		t.Fatalf("accounts = %+v", accounts)
	}

	chats, err := c.Conversations(ctx, hash, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 1 || chats[0].TableName != table {
		t.Fatalf("chats = %+v", chats)
	}

	page, err := c.Messages(ctx, MessageQuery{AccountHash: hash, Table: table, Date: "2024-04-29"})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Messages) != 2 {
		t.Errorf("got %d messages on 2024-04-29, want 2", len(page.Messages))
	}

	page, err = c.Messages(ctx, MessageQuery{AccountHash: hash, Table: table, All: true, Limit: 4, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Messages) != 4 {
		t.Errorf("got %d messages, want 4", len(page.Messages))
	}

	dates, err := c.Dates(ctx, hash, table)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 3 {
		t.Errorf("dates = %v", dates)
	}

	st, err := c.Stats(ctx, hash, table)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 6 {
		t.Errorf("total = %d", st.Total)
	}
}

func TestClientError(t *testing.T) {
	c := newClient(t)

	_, err := c.Conversations(context.Background(), "nope", -1)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d", apiErr.Status)
	}
}
