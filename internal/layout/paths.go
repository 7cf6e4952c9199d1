package layout

import (
	"fmt"
	"path/filepath"
)

// ShardCount is the number of message database shards per account.
const ShardCount = 4

// LoginInfoPath returns the account metadata file at the backup root.
func LoginInfoPath(root string) string {
	return filepath.Join(root, "LoginInfo2.dat")
}

// AccountDir returns the per-account directory named by its hash.
func AccountDir(root, accountHash string) string {
	return filepath.Join(root, accountHash)
}

// DBDir returns the database directory of an account.
func DBDir(root, accountHash string) string {
	return filepath.Join(AccountDir(root, accountHash), "DB")
}

// ContactDBPath returns the WCDB_Contact.sqlite path for an account.
func ContactDBPath(root, accountHash string) string {
	return filepath.Join(DBDir(root, accountHash), "WCDB_Contact.sqlite")
}

// MessageDBPath returns the path of message shard n (1-based).
func MessageDBPath(root, accountHash string, n int) string {
	return filepath.Join(DBDir(root, accountHash), fmt.Sprintf("message_%d.sqlite", n))
}

// MessageDBPaths returns every shard path in scan order.
func MessageDBPaths(root, accountHash string) []string {
	paths := make([]string, 0, ShardCount)
	for i := 1; i <= ShardCount; i++ {
		paths = append(paths, MessageDBPath(root, accountHash, i))
	}
	return paths
}

// AvatarPath returns the last cached head image of an account.
func AvatarPath(root, accountHash string) string {
	return filepath.Join(AccountDir(root, accountHash), "Avatar", "lastHeadImage")
}
