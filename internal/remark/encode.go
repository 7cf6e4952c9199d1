package remark

import (
	"encoding/hex"
	"strings"
)

// Encode packs f into the TLV layout read by Parse. Values longer than 255
// bytes are cut. Empty values are omitted.
func Encode(f Fields) []byte {
	var out []byte
	for _, kv := range []struct {
		tag   byte
		value string
	}{
		{TagNickname, f.Nickname},
		{TagWechatID, f.WechatID},
		{TagRemark, f.Remark},
	} {
		v := kv.value
		if v == "" {
			continue
		}
		if len(v) > 0xff {
			v = v[:0xff]
		}
		out = append(out, kv.tag, byte(len(v)))
		out = append(out, v...)
	}
	return out
}

// Quote renders b the way SQLite's lower(quote()) renders a blob.
func Quote(b []byte) string {
	return "x'" + strings.ToLower(hex.EncodeToString(b)) + "'"
}
