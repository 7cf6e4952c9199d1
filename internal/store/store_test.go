package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matheus3301/wxbak/internal/fixture"
	"github.com/matheus3301/wxbak/internal/layout"
	"github.com/matheus3301/wxbak/internal/message"
	"github.com/matheus3301/wxbak/internal/remark"
)

const owner = "wxid_owner0000001"

func testAccount(t *testing.T) (*fixture.Backup, *fixture.Account) {
	t.Helper()
	b, err := fixture.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	acc, err := b.Account(remark.Hash(owner))
	if err != nil {
		t.Fatal(err)
	}
	return b, acc
}

func openShard(t *testing.T, b *fixture.Backup, acc *fixture.Account, n int) *DB {
	t.Helper()
	db, err := Open(context.Background(), layout.MessageDBPath(b.Root, acc.Hash, n))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope.sqlite"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}

func TestOpenIsReadOnly(t *testing.T) {
	b, acc := testAccount(t)
	if _, err := acc.WriteChat(1, "wxid_peer00000001", false, fixture.Row{CreateTime: 1, Type: 1, Payload: "x"}); err != nil {
		t.Fatal(err)
	}
	db := openShard(t, b, acc, 1)
	if _, err := db.Exec(`CREATE TABLE t (x INTEGER)`); err == nil {
		t.Fatal("write on read-only handle should fail")
	}
}

func TestFriends(t *testing.T) {
	b, acc := testAccount(t)
	if err := acc.WriteFriends(
		fixture.Friend{ExternalID: "wxid_alice0000001", Remark: &remark.Fields{Nickname: "Alice"}},
		fixture.Friend{ExternalID: "wxid_nobody000001"},
	); err != nil {
		t.Fatal(err)
	}

	db, err := Open(context.Background(), layout.ContactDBPath(b.Root, acc.Hash))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	friends, err := db.Friends(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(friends) != 2 {
		t.Fatalf("len = %d, want 2", len(friends))
	}
	dir := remark.NewDirectory(friends)
	if got := dir.Name("wxid_alice0000001", false); got != "Alice" {
		t.Errorf("Name(alice) = %q", got)
	}
	c, _ := dir.ByHash(remark.Hash("wxid_nobody000001"))
	if c.RawRemark != "null" {
		t.Errorf("NULL remark quoted = %q, want null", c.RawRemark)
	}
}

func TestChatTables(t *testing.T) {
	b, acc := testAccount(t)
	chat, err := acc.WriteChat(1, "wxid_peer00000001", false, fixture.Row{CreateTime: 1, Type: 1})
	if err != nil {
		t.Fatal(err)
	}
	ext, err := acc.WriteChat(1, "wxid_peer00000002", true, fixture.Row{CreateTime: 2, Type: 1})
	if err != nil {
		t.Fatal(err)
	}
	// Neither matches: no underscore after the prefix, and an unrelated table.
	if err := acc.WriteRawShard(1, `CREATE TABLE ChatX (a INTEGER)`, `CREATE TABLE Friend (a INTEGER)`); err != nil {
		t.Fatal(err)
	}

	db := openShard(t, b, acc, 1)
	tables, err := db.ChatTables(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 2 || tables[0] != chat || tables[1] != ext {
		t.Errorf("tables = %v, want [%s %s]", tables, chat, ext)
	}

	ok, err := db.HasTable(context.Background(), chat)
	if err != nil || !ok {
		t.Errorf("HasTable(%s) = %v, %v", chat, ok, err)
	}
	ok, err = db.HasTable(context.Background(), "Chat_missing")
	if err != nil || ok {
		t.Errorf("HasTable(missing) = %v, %v", ok, err)
	}
}

func TestMessagesWindowAndOrder(t *testing.T) {
	b, acc := testAccount(t)
	table, err := acc.WriteChat(1, "wxid_peer00000001", false,
		fixture.Row{ServerID: 11, CreateTime: 100, Type: message.TypeText, Payload: "a", Des: 0},
		fixture.Row{ServerID: 12, CreateTime: 300, Type: message.TypeText, Payload: "c", Des: 1},
		fixture.Row{ServerID: 13, CreateTime: 200, Type: message.TypeImage, Payload: "b", Des: 1},
	)
	if err != nil {
		t.Fatal(err)
	}
	db := openShard(t, b, acc, 1)
	ctx := context.Background()

	msgs, err := db.Messages(ctx, table, Window{}, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 || msgs[0].CreateTime != 300 || msgs[2].CreateTime != 100 {
		t.Fatalf("order = %+v", msgs)
	}
	if msgs[0].Direction != message.Received || msgs[2].Direction != message.Sent {
		t.Errorf("directions = %s, %s", msgs[0].Direction, msgs[2].Direction)
	}
	if msgs[0].ServerID != 12 || msgs[0].LocalID != 2 {
		t.Errorf("ids = %d/%d", msgs[0].ServerID, msgs[0].LocalID)
	}

	msgs, err = db.Messages(ctx, table, Window{From: 150, To: 300}, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Errorf("windowed len = %d, want 2", len(msgs))
	}

	msgs, err = db.Messages(ctx, table, Window{}, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].CreateTime != 200 {
		t.Errorf("paged = %+v", msgs)
	}

	n, err := db.CountRows(ctx, table)
	if err != nil || n != 3 {
		t.Errorf("CountRows = %d, %v", n, err)
	}
	ts, ok, err := db.MaxCreateTime(ctx, table)
	if err != nil || !ok || ts != 300 {
		t.Errorf("MaxCreateTime = %d, %v, %v", ts, ok, err)
	}
	latest, err := db.LatestMessage(ctx, table)
	if err != nil || latest == nil || latest.Payload != "c" {
		t.Errorf("LatestMessage = %+v, %v", latest, err)
	}

	var seen []int64
	if err := db.Timeline(ctx, table, func(s Stamp) error {
		seen = append(seen, s.CreateTime)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 3 || seen[0] != 300 {
		t.Errorf("timeline = %v", seen)
	}
}

func TestEmptyTable(t *testing.T) {
	b, acc := testAccount(t)
	table, err := acc.WriteChat(1, "wxid_peer00000001", false)
	if err != nil {
		t.Fatal(err)
	}
	db := openShard(t, b, acc, 1)
	ctx := context.Background()

	if _, ok, err := db.MaxCreateTime(ctx, table); err != nil || ok {
		t.Errorf("MaxCreateTime(empty) ok = %v, err = %v", ok, err)
	}
	if m, err := db.LatestMessage(ctx, table); err != nil || m != nil {
		t.Errorf("LatestMessage(empty) = %+v, %v", m, err)
	}
}

func TestBlobPayloadDecoded(t *testing.T) {
	b, acc := testAccount(t)
	table, err := acc.WriteChat(1, "wxid_peer00000001", false,
		fixture.Row{CreateTime: 1, Type: message.TypeText, Blob: []byte("héllo")},
		fixture.Row{CreateTime: 2, Type: message.TypeText, Blob: []byte{0xff, 0xfe, 'a'}},
	)
	if err != nil {
		t.Fatal(err)
	}
	db := openShard(t, b, acc, 1)
	msgs, err := db.Messages(context.Background(), table, Window{}, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if msgs[1].Payload != "héllo" {
		t.Errorf("blob payload = %q", msgs[1].Payload)
	}
	if msgs[0].Payload != "\ufffd\ufffda" {
		t.Errorf("invalid utf-8 payload = %q", msgs[0].Payload)
	}
}

func TestBinaryBlobIsCorrupt(t *testing.T) {
	b, acc := testAccount(t)
	garbage := append(bytes.Repeat([]byte{0xff}, 60), bytes.Repeat([]byte("a"), 40)...)
	table, err := acc.WriteChat(1, "wxid_peer00000001", false,
		fixture.Row{CreateTime: 1, Type: message.TypeText, Blob: garbage},
		fixture.Row{CreateTime: 2, Type: message.TypeSystem, Blob: garbage},
		fixture.Row{CreateTime: 3, Type: 9999, Blob: garbage},
	)
	if err != nil {
		t.Fatal(err)
	}
	db := openShard(t, b, acc, 1)
	msgs, err := db.Messages(context.Background(), table, Window{}, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]string{
		message.TypeText:   "[文本消息]",
		message.TypeSystem: "[系统消息]",
		9999:               "[消息类型: 9999]",
	}
	if len(msgs) != len(want) {
		t.Fatalf("got %d messages", len(msgs))
	}
	for _, m := range msgs {
		if !message.IsCorrupt(m.Payload) {
			t.Errorf("type %d payload not corrupt: %q", m.Type, m.Payload)
		}
		if got := message.Content(m.Type, m.Payload); got != want[m.Type] {
			t.Errorf("Content(type %d) = %q, want %q", m.Type, got, want[m.Type])
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := quoteIdent(`a"b`); got != `"a""b"` {
		t.Errorf("quoteIdent = %s", got)
	}
}
