// Package fixture writes synthetic backups in the on-disk layout of a
// WeChat iOS Documents directory. Tests use it for end-to-end coverage and
// wxbakctl uses it to produce a demo backup.
package fixture

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/matheus3301/wxbak/internal/layout"
	"github.com/matheus3301/wxbak/internal/remark"
)

// Login is one account entry of LoginInfo2.dat.
type Login struct {
	ExternalID string
	Nickname   string
}

// Friend is one row of the Friend table. A nil Remark stores NULL.
type Friend struct {
	ExternalID string
	Remark     *remark.Fields
}

// Row is one message row of a chat table.
type Row struct {
	ServerID   int64
	CreateTime int64
	Payload    string
	Blob       []byte
	Type       int
	Des        int
	Status     int
}

// Backup is a synthetic backup rooted at Root.
type Backup struct {
	Root string
}

// New creates the backup root directory.
func New(root string) (*Backup, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("create backup root: %w", err)
	}
	return &Backup{Root: root}, nil
}

// WriteLoginInfo writes LoginInfo2.dat with each external ID followed by a
// short binary record holding its nickname.
func (b *Backup) WriteLoginInfo(logins ...Login) error {
	var buf []byte
	buf = append(buf, "bplist00\x00\x01"...)
	for _, l := range logins {
		buf = append(buf, 0x00, 0x10)
		buf = append(buf, l.ExternalID...)
		buf = append(buf, 0x00, 0x08, 'A', 'U', 'T', 'H', 0x00, 0x12)
		if l.Nickname != "" {
			buf = append(buf, l.Nickname...)
			buf = append(buf, 0x00)
		}
		buf = append(buf, 0x01, 0x02, 0x03)
	}
	return os.WriteFile(layout.LoginInfoPath(b.Root), buf, 0600)
}

// Account creates the directory tree of the account keyed by hash.
func (b *Backup) Account(hash string) (*Account, error) {
	if err := layout.ValidateAccountHash(hash); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(layout.DBDir(b.Root, hash), 0700); err != nil {
		return nil, fmt.Errorf("create account dir: %w", err)
	}
	return &Account{root: b.Root, Hash: strings.ToLower(hash)}, nil
}

// Account writes the databases of one account.
type Account struct {
	root string
	Hash string
}

// WriteAvatar stores data as the account's last head image.
func (a *Account) WriteAvatar(data []byte) error {
	path := layout.AvatarPath(a.root, a.Hash)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// WriteFriends creates WCDB_Contact.sqlite if needed and inserts friends.
func (a *Account) WriteFriends(friends ...Friend) error {
	db, err := openWritable(layout.ContactDBPath(a.root, a.Hash))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if _, _, err := migrateContacts(db); err != nil {
		return err
	}

	for _, f := range friends {
		var blob any
		if f.Remark != nil {
			blob = remark.Encode(*f.Remark)
		}
		if _, err := db.Exec(`INSERT OR REPLACE INTO Friend (userName, dbContactRemark) VALUES (?, ?)`, f.ExternalID, blob); err != nil {
			return fmt.Errorf("insert friend %s: %w", f.ExternalID, err)
		}
	}
	return nil
}

// WriteChat appends rows to the chat table of externalID in shard n and
// returns the table name. ext selects the ChatExt2_ prefix.
func (a *Account) WriteChat(n int, externalID string, ext bool, rows ...Row) (string, error) {
	if n < 1 || n > layout.ShardCount {
		return "", fmt.Errorf("shard %d out of range", n)
	}
	table := "Chat_" + remark.Hash(externalID)
	if ext {
		table = "ChatExt2_" + remark.Hash(externalID)
	}

	db, err := openWritable(layout.MessageDBPath(a.root, a.Hash, n))
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS ` + table + ` (
		TableVer INTEGER DEFAULT 1,
		MesLocalID INTEGER PRIMARY KEY AUTOINCREMENT,
		MesSvrID INTEGER DEFAULT 0,
		CreateTime INTEGER DEFAULT 0,
		Message TEXT,
		Status INTEGER DEFAULT 0,
		ImgStatus INTEGER DEFAULT 0,
		Type INTEGER,
		Des INTEGER)`); err != nil {
		return "", fmt.Errorf("create %s: %w", table, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	stmt, err := tx.Prepare(`INSERT INTO ` + table + ` (MesSvrID, CreateTime, Message, Status, Type, Des) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return "", err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		var payload any = r.Payload
		if r.Blob != nil {
			payload = r.Blob
		}
		if _, err := stmt.Exec(r.ServerID, r.CreateTime, payload, r.Status, r.Type, r.Des); err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return table, nil
}

// WriteRawShard creates shard n holding only the given SQL, for corrupt or
// unexpected schemas.
func (a *Account) WriteRawShard(n int, statements ...string) error {
	db, err := openWritable(layout.MessageDBPath(a.root, a.Hash, n))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	for _, s := range statements {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s, err)
		}
	}
	return nil
}

func openWritable(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	return db, nil
}
