// Package conversation discovers the chat tables of an account, ranks them
// into a conversation list and serves windowed message pages.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/wxbak/internal/layout"
	"github.com/matheus3301/wxbak/internal/message"
	"github.com/matheus3301/wxbak/internal/remark"
	"github.com/matheus3301/wxbak/internal/store"
)

// DefaultLimit is the page size used when a query does not set one.
const DefaultLimit = 100

// WindowPolicy picks the messages returned when a query names no dates.
type WindowPolicy string

const (
	// LatestDay restricts to the calendar day of the newest message.
	LatestDay WindowPolicy = "latest_day"
	// AllMessages applies no bound.
	AllMessages WindowPolicy = "all"
)

// Indexer reads conversations out of a backup. It holds no open handles;
// every call opens and closes its own.
type Indexer struct {
	logger   *zap.Logger
	location *time.Location
	window   WindowPolicy
	limit    int
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLocation sets the time zone used for calendar days.
func WithLocation(loc *time.Location) Option {
	return func(ix *Indexer) {
		if loc != nil {
			ix.location = loc
		}
	}
}

// WithWindow sets the default window policy.
func WithWindow(p WindowPolicy) Option {
	return func(ix *Indexer) {
		if p != "" {
			ix.window = p
		}
	}
}

// WithLimit sets the default page size.
func WithLimit(n int) Option {
	return func(ix *Indexer) {
		if n > 0 {
			ix.limit = n
		}
	}
}

// New returns an Indexer. A nil logger discards output.
func New(logger *zap.Logger, opts ...Option) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	ix := &Indexer{
		logger:   logger,
		location: time.Local,
		window:   LatestDay,
		limit:    DefaultLimit,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Location returns the time zone used for calendar days.
func (ix *Indexer) Location() *time.Location {
	return ix.location
}

// List returns the conversations of an account, most recent first. Tables
// with minCount or fewer messages are omitted when minCount is positive.
func (ix *Indexer) List(ctx context.Context, root, accountHash string, minCount int) ([]Summary, error) {
	if err := checkAccount(root, accountHash); err != nil {
		return nil, err
	}
	if minCount < 0 {
		return nil, inputErr("minCount", "must not be negative")
	}
	accountHash = strings.ToLower(accountHash)
	log := ix.logger.With(zap.String("account", accountHash))

	dir := ix.contacts(ctx, root, accountHash)
	var out []Summary
	for _, path := range layout.MessageDBPaths(root, accountHash) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, ix.scanShard(ctx, log.With(zap.String("shard", path)), path, dir, minCount)...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastMessageAt > out[j].LastMessageAt
	})
	return out, nil
}

func (ix *Indexer) scanShard(ctx context.Context, log *zap.Logger, path string, dir remark.Directory, minCount int) []Summary {
	db, err := store.Open(ctx, path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("skip shard", zap.Error(err))
		}
		return nil
	}
	defer func() { _ = db.Close() }()

	tables, err := db.ChatTables(ctx)
	if err != nil {
		log.Warn("skip shard", zap.Error(err))
		return nil
	}

	var out []Summary
	for _, table := range tables {
		s, ok, err := ix.summarize(ctx, db, table, dir, minCount)
		if err != nil {
			log.Warn("skip table", zap.String("table", table), zap.Error(err))
			continue
		}
		if ok {
			out = append(out, s)
		}
	}
	return out
}

// summarize builds the summary of one table; ok is false when the table
// falls under minCount.
func (ix *Indexer) summarize(ctx context.Context, db *store.DB, table string, dir remark.Directory, minCount int) (Summary, bool, error) {
	count, err := db.CountRows(ctx, table)
	if err != nil {
		return Summary{}, false, err
	}
	if minCount > 0 && count <= minCount {
		return Summary{}, false, nil
	}

	contact := resolveContact(dir, table)
	s := Summary{TableName: table, MessageCount: count, Contact: contact}

	latest, err := db.LatestMessage(ctx, table)
	if err != nil {
		return Summary{}, false, err
	}
	if latest != nil {
		s.LastMessageAt = latest.CreateTime
		s.LastMessagePreview = message.Preview(*latest, contact.IsGroup, dir)
	}
	return s, true, nil
}

// Conversation returns the summary of a single table.
func (ix *Indexer) Conversation(ctx context.Context, root, accountHash, table string) (*Summary, error) {
	if err := checkTarget(root, accountHash, table); err != nil {
		return nil, err
	}
	accountHash = strings.ToLower(accountHash)
	dir := ix.contacts(ctx, root, accountHash)

	var s Summary
	err := ix.withTable(ctx, root, accountHash, table, func(db *store.DB) error {
		var err error
		s, _, err = ix.summarize(ctx, db, table, dir, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Messages returns one page of a conversation, newest first.
func (ix *Indexer) Messages(ctx context.Context, q Query) (*Page, error) {
	if err := checkTarget(q.Root, q.AccountHash, q.Table); err != nil {
		return nil, err
	}
	if q.Limit < 0 {
		return nil, inputErr("limit", "must not be negative")
	}
	if q.Offset < 0 {
		return nil, inputErr("offset", "must not be negative")
	}
	if q.Window != "" && q.Window != LatestDay && q.Window != AllMessages {
		return nil, inputErr("window", "%q is not %s or %s", q.Window, LatestDay, AllMessages)
	}
	explicit, err := ix.parseRange(q.Start, q.End)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit == 0 {
		limit = ix.limit
	}
	hash := strings.ToLower(q.AccountHash)

	dir := ix.contacts(ctx, q.Root, hash)
	page := &Page{Contact: resolveContact(dir, q.Table), Messages: []Entry{}}

	err = ix.withTable(ctx, q.Root, hash, q.Table, func(db *store.DB) error {
		w := explicit
		if q.Start == "" && q.End == "" {
			var err error
			if w, err = ix.defaultWindow(ctx, db, q.Table, q.Window); err != nil {
				return err
			}
		}
		page.Window = w

		rows, err := db.Messages(ctx, q.Table, w, limit, q.Offset)
		if err != nil {
			return err
		}
		for _, m := range rows {
			page.Messages = append(page.Messages, entry(m, page.Contact.IsGroup, dir))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Dates returns the distinct calendar days holding messages, newest first,
// formatted YYYY-MM-DD.
func (ix *Indexer) Dates(ctx context.Context, root, accountHash, table string) ([]string, error) {
	if err := checkTarget(root, accountHash, table); err != nil {
		return nil, err
	}
	dates := []string{}
	seen := make(map[string]struct{})
	err := ix.withTable(ctx, root, strings.ToLower(accountHash), table, func(db *store.DB) error {
		return db.Timeline(ctx, table, func(s store.Stamp) error {
			day := time.Unix(s.CreateTime, 0).In(ix.location).Format(dateLayout)
			if _, ok := seen[day]; !ok {
				seen[day] = struct{}{}
				dates = append(dates, day)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return dates, nil
}

// Stats aggregates the messages of a conversation.
func (ix *Indexer) Stats(ctx context.Context, root, accountHash, table string) (*Stats, error) {
	if err := checkTarget(root, accountHash, table); err != nil {
		return nil, err
	}
	st := &Stats{ByKind: make(map[string]int), ByDay: []DayCount{}}
	perDay := make(map[string]int)

	err := ix.withTable(ctx, root, strings.ToLower(accountHash), table, func(db *store.DB) error {
		return db.Timeline(ctx, table, func(s store.Stamp) error {
			st.Total++
			if s.Direction == message.Sent {
				st.Sent++
			} else {
				st.Received++
			}
			if st.Last == 0 || s.CreateTime > st.Last {
				st.Last = s.CreateTime
			}
			if st.First == 0 || s.CreateTime < st.First {
				st.First = s.CreateTime
			}
			st.ByKind[message.Classify(s.Type).String()]++

			t := time.Unix(s.CreateTime, 0).In(ix.location)
			perDay[t.Format(dateLayout)]++
			st.Hourly[t.Hour()]++
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	for day, n := range perDay {
		st.ByDay = append(st.ByDay, DayCount{Date: day, Count: n})
	}
	sort.Slice(st.ByDay, func(i, j int) bool { return st.ByDay[i].Date < st.ByDay[j].Date })
	return st, nil
}

// withTable runs fn on the first shard that holds table. It returns an
// error wrapping store.ErrNotFound when no shard does.
func (ix *Indexer) withTable(ctx context.Context, root, accountHash, table string, fn func(*store.DB) error) error {
	for _, path := range layout.MessageDBPaths(root, accountHash) {
		found, err := ix.tryShard(ctx, path, table, fn)
		if err != nil {
			return err
		}
		if found {
			return nil
		}
	}
	return fmt.Errorf("table %s: %w", table, store.ErrNotFound)
}

func (ix *Indexer) tryShard(ctx context.Context, path, table string, fn func(*store.DB) error) (bool, error) {
	db, err := store.Open(ctx, path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			ix.logger.Warn("skip shard", zap.String("shard", path), zap.Error(err))
		}
		return false, nil
	}
	defer func() { _ = db.Close() }()

	ok, err := db.HasTable(ctx, table)
	if err != nil {
		ix.logger.Warn("skip shard", zap.String("shard", path), zap.Error(err))
		return false, nil
	}
	if !ok {
		return false, nil
	}
	return true, fn(db)
}

// contacts loads the Friend table of an account. A missing or unreadable
// contact database yields an empty directory.
func (ix *Indexer) contacts(ctx context.Context, root, accountHash string) remark.Directory {
	path := layout.ContactDBPath(root, accountHash)
	db, err := store.Open(ctx, path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			ix.logger.Warn("contacts unavailable", zap.String("path", path), zap.Error(err))
		}
		return remark.Directory{}
	}
	defer func() { _ = db.Close() }()

	friends, err := db.Friends(ctx)
	if err != nil {
		ix.logger.Warn("contacts unavailable", zap.String("path", path), zap.Error(err))
		return remark.Directory{}
	}
	return remark.NewDirectory(friends)
}

func resolveContact(dir remark.Directory, table string) Contact {
	hash := layout.ContactHash(table)
	c := Contact{Hash: hash, ExternalID: UnknownContact}

	friend, ok := dir.ByHash(hash)
	if ok && friend.ExternalID != "" {
		c.ExternalID = friend.ExternalID
	}
	c.IsGroup = remark.IsGroup(c.ExternalID)
	if ok {
		c.Nickname = remark.Resolve(c.ExternalID, friend, c.IsGroup)
	} else {
		c.Nickname = remark.FriendlyName(c.ExternalID, "", c.IsGroup)
	}
	return c
}

func entry(m message.Raw, isGroup bool, names message.NameResolver) Entry {
	f := message.Format(m, isGroup, names)
	return Entry{
		LocalID:    m.LocalID,
		ServerID:   m.ServerID,
		CreateTime: m.CreateTime,
		Type:       m.Type,
		Kind:       message.Classify(m.Type).String(),
		Direction:  m.Direction,
		Status:     m.Status,
		Sender:     f.Sender,
		Content:    f.Text,
		Raw:        m.Payload,
	}
}

func checkAccount(root, hash string) error {
	if root == "" {
		return inputErr("root", "must be set")
	}
	if !layout.IsAccountHash(hash) {
		return inputErr("accountHash", "%q is not a 32 character hex digest", hash)
	}
	return nil
}

func checkTarget(root, accountHash, table string) error {
	if err := checkAccount(root, accountHash); err != nil {
		return err
	}
	if err := layout.ValidateTableName(table); err != nil {
		return &InputError{Field: "table", Reason: err.Error()}
	}
	return nil
}
