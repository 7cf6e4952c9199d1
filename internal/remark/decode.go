// Package remark decodes the contact remark blobs stored in WCDB_Contact.sqlite
// and resolves display names for contacts and group members.
package remark

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/matheus3301/wxbak/internal/message"
)

// Field tags of the remark TLV stream.
const (
	TagNickname byte = 0x0a
	TagWechatID byte = 0x12
	TagRemark   byte = 0x1a
)

// Fields holds the values recovered from a remark blob.
type Fields struct {
	Nickname string
	WechatID string
	Remark   string
}

// DisplayName returns the first non-blank value in remark, nickname,
// wechat-ID order, trimmed. Empty when all are blank.
func (f Fields) DisplayName() string {
	for _, v := range []string{f.Remark, f.Nickname, f.WechatID} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// Decode returns the display name packed in a quote()'d remark blob such as
// X'0a03426f62'. Malformed input yields whatever was read before the fault.
func Decode(blob string) string {
	return Parse(blob).DisplayName()
}

// Parse walks the TLV records of a quote()'d remark blob. Each record is a
// one-byte tag and a one-byte length followed by length bytes of UTF-8, all
// hex encoded. A zero, unparsable or overrunning length ends the stream.
func Parse(blob string) Fields {
	s := unquote(blob)

	var f Fields
	for i := 0; i < len(s)-4; {
		tag, err := strconv.ParseUint(s[i:i+2], 16, 8)
		if err != nil {
			break
		}
		n, err := strconv.ParseUint(s[i+2:i+4], 16, 8)
		if err != nil {
			break
		}
		size := int(n) * 2
		if size <= 0 || i+4+size > len(s) {
			break
		}

		value := hexToUTF8(s[i+4 : i+4+size])
		switch byte(tag) {
		case TagNickname:
			f.Nickname = value
		case TagWechatID:
			f.WechatID = value
		case TagRemark:
			f.Remark = value
		}
		i += 4 + size
	}
	return f
}

func unquote(blob string) string {
	s := strings.TrimSpace(blob)
	if len(s) >= 2 && (s[0] == 'x' || s[0] == 'X') && s[1] == '\'' {
		s = s[2:]
	}
	return strings.TrimSuffix(s, "'")
}

func hexToUTF8(h string) string {
	b, err := hex.DecodeString(h)
	if err != nil {
		return ""
	}
	return message.DecodeUTF8(b)
}
