package identity

import (
	"os"
	"sort"
	"strings"

	"github.com/matheus3301/wxbak/internal/layout"
)

// ScanAccountDirs returns the lower-cased names of directories under root
// that look like account hashes and contain a DB directory. A missing root
// yields nil.
func ScanAccountDirs(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var hashes []string
	for _, e := range entries {
		if !e.IsDir() || !layout.IsAccountHash(e.Name()) {
			continue
		}
		hash := strings.ToLower(e.Name())
		if fi, err := os.Stat(layout.DBDir(root, e.Name())); err != nil || !fi.IsDir() {
			continue
		}
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)
	return hashes
}

// ListAccounts returns every account directory under root, named from
// LoginInfo2.dat where possible and by placeholder otherwise.
func ListAccounts(root string) []Account {
	known := ReadLoginInfo(root)

	hashes := ScanAccountDirs(root)
	accounts := make([]Account, 0, len(hashes))
	for _, hash := range hashes {
		accounts = append(accounts, resolve(root, hash, known))
	}
	return accounts
}

// LookupAccount returns the account stored under hash, if its directory exists.
func LookupAccount(root, hash string) (Account, bool) {
	hash = strings.ToLower(hash)
	if !layout.IsAccountHash(hash) {
		return Account{}, false
	}
	if fi, err := os.Stat(layout.DBDir(root, hash)); err != nil || !fi.IsDir() {
		return Account{}, false
	}
	return resolve(root, hash, ReadLoginInfo(root)), true
}

func resolve(root, hash string, known map[string]Account) Account {
	acc, ok := known[hash]
	if !ok {
		acc = Placeholder(hash)
	}
	if fi, err := os.Stat(layout.AvatarPath(root, hash)); err == nil && !fi.IsDir() {
		acc.AvatarPath = layout.AvatarPath(root, hash)
	}
	return acc
}
