package remark

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// GroupSuffix marks the external ID of a group chat.
const GroupSuffix = "@chatroom"

const internalIDPrefix = "wxid_"

// Hash returns the lowercase hex MD5 of an external ID. Backup directory
// and table names are keyed by it, so it cannot be swapped for another hash.
func Hash(externalID string) string {
	sum := md5.Sum([]byte(externalID))
	return hex.EncodeToString(sum[:])
}

// IsGroup reports whether an external ID names a group chat.
func IsGroup(externalID string) bool {
	return strings.Contains(externalID, GroupSuffix)
}

// Contact is one row of the Friend table.
type Contact struct {
	ExternalID string
	RawRemark  string
}

// Directory indexes contacts by the hash of their external ID.
type Directory map[string]Contact

// NewDirectory builds a directory; later duplicates win.
func NewDirectory(contacts []Contact) Directory {
	d := make(Directory, len(contacts))
	for _, c := range contacts {
		d[Hash(c.ExternalID)] = c
	}
	return d
}

// ByHash returns the contact whose external ID hashes to hash.
func (d Directory) ByHash(hash string) (Contact, bool) {
	c, ok := d[strings.ToLower(hash)]
	return c, ok
}

// Name resolves the display name for externalID: the decoded remark when
// the contact is known and it is usable, else a friendly label.
func (d Directory) Name(externalID string, isGroup bool) string {
	c, ok := d[Hash(externalID)]
	if !ok {
		return FriendlyName(externalID, "", isGroup)
	}
	return Resolve(externalID, c, isGroup)
}

// Resolve decodes the remark of c and falls back to a friendly label.
func Resolve(externalID string, c Contact, isGroup bool) string {
	return FriendlyName(externalID, Decode(c.RawRemark), isGroup)
}

// FriendlyName returns nickname when it is set and does not look like a raw
// internal ID, otherwise a synthesized "<群聊|联系人>-<fragment>" label.
func FriendlyName(externalID, nickname string, isGroup bool) string {
	if nickname != "" && !strings.HasPrefix(nickname, internalIDPrefix) && nickname != externalID {
		return nickname
	}

	prefix := "联系人"
	if isGroup {
		prefix = "群聊"
	}

	id := []rune(externalID)
	if strings.HasPrefix(externalID, internalIDPrefix) {
		id = id[len(internalIDPrefix):]
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return prefix + "-" + string(id)
}
