package fixture

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/wxbak/internal/layout"
	"github.com/matheus3301/wxbak/internal/remark"
)

func TestWriteFriendsMigratesOnce(t *testing.T) {
	b, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	acc, err := b.Account(remark.Hash("wxid_owner0000001"))
	if err != nil {
		t.Fatal(err)
	}
	if err := acc.WriteFriends(Friend{ExternalID: "wxid_a000000001", Remark: &remark.Fields{Nickname: "A"}}); err != nil {
		t.Fatal(err)
	}
	if err := acc.WriteFriends(Friend{ExternalID: "wxid_b000000001"}); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite3", layout.ContactDBPath(b.Root, acc.Hash))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	version, changed, err := migrateContacts(db)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("third migration should be a no-op")
	}
	if version != ContactSchemaVersion {
		t.Errorf("version = %d, want %d", version, ContactSchemaVersion)
	}

	var quoted string
	if err := db.QueryRow(`SELECT lower(quote(dbContactRemark)) FROM Friend WHERE userName = ?`, "wxid_a000000001").Scan(&quoted); err != nil {
		t.Fatal(err)
	}
	if got := remark.Decode(quoted); got != "A" {
		t.Errorf("Decode(%q) = %q, want A", quoted, got)
	}
}

func TestAccountRejectsBadHash(t *testing.T) {
	b, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Account("../escape"); err == nil {
		t.Error("expected error for invalid hash")
	}
}

func TestWriteChatShardRange(t *testing.T) {
	b, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	acc, err := b.Account(remark.Hash("wxid_owner0000001"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := acc.WriteChat(5, "wxid_x", false); err == nil {
		t.Error("expected error for shard 5")
	}
}

func TestWriteDemo(t *testing.T) {
	root := t.TempDir()
	if _, err := WriteDemo(root, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	hash := remark.Hash(DemoOwner)
	for _, p := range []string{
		layout.LoginInfoPath(root),
		layout.ContactDBPath(root, hash),
		layout.MessageDBPath(root, hash, 1),
		layout.MessageDBPath(root, hash, 2),
		layout.MessageDBPath(root, hash, 3),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", filepath.Base(p), err)
		}
	}
	if _, err := os.Stat(layout.MessageDBPath(root, hash, 4)); !os.IsNotExist(err) {
		t.Errorf("shard 4 should not exist, stat err = %v", err)
	}
}
