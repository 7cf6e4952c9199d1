// Package client talks to a running wxbakd over its HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/matheus3301/wxbak/internal/conversation"
	"github.com/matheus3301/wxbak/internal/identity"
)

// Client wraps HTTP calls to the daemon.
type Client struct {
	base string
	http *http.Client
}

// Health is the daemon state reported by /healthz.
type Health struct {
	State string `json:"state"`
	Since int64  `json:"since"`
}

// Error is a non-success reply from the daemon.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("wxbakd: %d: %s", e.Status, e.Message)
}

// MessageQuery selects a page of messages.
type MessageQuery struct {
	AccountHash string
	Table       string
	Date        string // one day, YYYY-MM-DD; empty = daemon default window
	All         bool
	Limit       int
	Offset      int
}

// New returns a client for the daemon listening on addr (host:port).
func New(addr string) *Client {
	return &Client{
		base: "http://" + addr,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Health fetches the daemon state.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/healthz", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Accounts lists the accounts in the served backup.
func (c *Client) Accounts(ctx context.Context) ([]identity.Account, error) {
	var out []identity.Account
	err := c.get(ctx, "/api/users", nil, &out)
	return out, err
}

// Conversations lists the conversations of an account. minCount < 0 uses
// the daemon's configured threshold.
func (c *Client) Conversations(ctx context.Context, accountHash string, minCount int) ([]conversation.Summary, error) {
	q := url.Values{"userMd5": {accountHash}}
	if minCount >= 0 {
		q.Set("minCount", strconv.Itoa(minCount))
	}
	var out []conversation.Summary
	err := c.get(ctx, "/api/chats", q, &out)
	return out, err
}

// Messages fetches one page of a conversation, newest first.
func (c *Client) Messages(ctx context.Context, mq MessageQuery) (*conversation.Page, error) {
	q := url.Values{"userMd5": {mq.AccountHash}, "table": {mq.Table}}
	if mq.Date != "" {
		q.Set("startDate", mq.Date)
		q.Set("endDate", mq.Date)
	}
	if mq.All {
		q.Set("window", string(conversation.AllMessages))
	}
	if mq.Limit > 0 {
		q.Set("limit", strconv.Itoa(mq.Limit))
	}
	if mq.Offset > 0 {
		q.Set("offset", strconv.Itoa(mq.Offset))
	}
	var page conversation.Page
	if err := c.get(ctx, "/api/chats/messages", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Dates lists the days holding messages, newest first.
func (c *Client) Dates(ctx context.Context, accountHash, table string) ([]string, error) {
	var out []string
	err := c.get(ctx, "/api/chats/dates", url.Values{"userMd5": {accountHash}, "table": {table}}, &out)
	return out, err
}

// Stats fetches the statistics of a conversation.
func (c *Client) Stats(ctx context.Context, accountHash, table string) (*conversation.Stats, error) {
	var st conversation.Stats
	if err := c.get(ctx, "/api/chats/stats", url.Values{"userMd5": {accountHash}, "table": {table}}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, data any) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if !env.Success {
		return &Error{Status: resp.StatusCode, Message: env.Error}
	}
	if len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, data)
}
