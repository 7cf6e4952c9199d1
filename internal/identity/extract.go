// Package identity recovers account identities from a backup root: the
// external IDs and nicknames packed in LoginInfo2.dat and the per-account
// directories next to it.
package identity

import (
	"os"
	"regexp"
	"strings"

	"github.com/matheus3301/wxbak/internal/layout"
	"github.com/matheus3301/wxbak/internal/remark"
)

const (
	lookahead     = 100
	minCandidate  = 2
	maxCandidate  = 30
	placeholderID = "user-"
)

var (
	externalIDRegexp = regexp.MustCompile(`wxid_[a-z0-9]{10,20}`)
	upperRegexp      = regexp.MustCompile(`^[A-Z_]+$`)
	phoneRegexp      = regexp.MustCompile(`^\+?\d+$`)
	symbolsRegexp    = regexp.MustCompile(`^[^a-zA-Z0-9\x{4e00}-\x{9fa5}]+$`)
)

// Account is one logged-in identity found in a backup.
type Account struct {
	Hash        string `json:"md5"`
	ExternalID  string `json:"wechatId"`
	DisplayName string `json:"nickname"`
	AvatarPath  string `json:"avatarPath,omitempty"`
}

// Placeholder returns the identity used for an account directory that
// LoginInfo2.dat does not describe.
func Placeholder(hash string) Account {
	name := placeholderID + hash
	if len(hash) > 8 {
		name = placeholderID + hash[:8]
	}
	return Account{Hash: hash, ExternalID: name, DisplayName: name}
}

// ReadLoginInfo extracts identities from <root>/LoginInfo2.dat. A missing or
// unreadable file yields an empty map.
func ReadLoginInfo(root string) map[string]Account {
	data, err := os.ReadFile(layout.LoginInfoPath(root))
	if err != nil {
		return map[string]Account{}
	}
	return Extract(data)
}

// Extract scans a LoginInfo2.dat blob and returns identities keyed by hash.
// The blob is read byte-per-character; only the first occurrence of each
// external ID is inspected.
func Extract(data []byte) map[string]Account {
	accounts := make(map[string]Account)

	for _, loc := range externalIDRegexp.FindAllIndex(data, -1) {
		id := string(data[loc[0]:loc[1]])
		hash := remark.Hash(id)
		if _, seen := accounts[hash]; seen {
			continue
		}

		end := min(loc[1]+lookahead, len(data))
		name := PickNickname(Candidates(binaryString(data[loc[1]:end])))
		if name == "" {
			name = id
		}
		accounts[hash] = Account{Hash: hash, ExternalID: id, DisplayName: name}
	}
	return accounts
}

// Candidates splits s into maximal runs of printable ASCII or CJK-range
// characters and returns the runs of 2 to 30 characters.
func Candidates(s string) []string {
	var (
		out []string
		run []rune
	)
	flush := func() {
		if len(run) >= minCandidate && len(run) <= maxCandidate {
			out = append(out, string(run))
		}
		run = run[:0]
	}
	for _, r := range s {
		if (r >= 0x20 && r <= 0x7e) || r >= 0x4e00 {
			run = append(run, r)
			continue
		}
		flush()
	}
	// An unterminated trailing run is dropped.
	return out
}

// PickNickname returns the first trimmed candidate that is not all
// upper-case, not a phone number and not made only of symbols.
func PickNickname(candidates []string) string {
	for _, c := range candidates {
		t := strings.TrimSpace(c)
		if t == "" || upperRegexp.MatchString(t) || phoneRegexp.MatchString(t) || symbolsRegexp.MatchString(t) {
			continue
		}
		return t
	}
	return ""
}

// binaryString maps every byte to the rune of the same value.
func binaryString(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(rune(c))
	}
	return b.String()
}
