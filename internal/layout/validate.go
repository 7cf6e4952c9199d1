package layout

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	hashRegexp  = regexp.MustCompile(`^[a-fA-F0-9]{32}$`)
	tableRegexp = regexp.MustCompile(`^(Chat|ChatExt2)_[A-Za-z0-9]+$`)
)

// IsAccountHash reports whether name looks like an account directory.
func IsAccountHash(name string) bool {
	return hashRegexp.MatchString(name)
}

// ValidateAccountHash checks that hash is a 32-char hex MD5 digest.
func ValidateAccountHash(hash string) error {
	if !IsAccountHash(hash) {
		return fmt.Errorf("invalid account hash %q: must match ^[a-f0-9]{32}$", hash)
	}
	return nil
}

// ValidateTableName checks that name is a chat table name. Table names are
// interpolated into SQL, so anything else is rejected.
func ValidateTableName(name string) error {
	if !tableRegexp.MatchString(name) {
		return fmt.Errorf("invalid table name %q: must be Chat_<hash> or ChatExt2_<hash>", name)
	}
	return nil
}

// ContactHash returns the segment after the first underscore of a chat
// table name, or "" when there is none.
func ContactHash(table string) string {
	_, after, ok := strings.Cut(table, "_")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(after, '_'); i >= 0 {
		after = after[:i]
	}
	return after
}
