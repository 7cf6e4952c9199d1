package message

import "testing"

type fakeNames map[string]string

func (f fakeNames) Name(id string, isGroup bool) string {
	if n, ok := f[id]; ok {
		return n
	}
	return "联系人-" + id
}

func TestContent(t *testing.T) {
	tests := []struct {
		name    string
		typ     int
		payload string
		want    string
	}{
		{"text", TypeText, "hello", "hello"},
		{"empty text", TypeText, "", "[文本消息]"},
		{"corrupt text", TypeText, "\x01\x02\x03\x04abc", "[文本消息]"},
		{"image", TypeImage, "<img/>", "[图片]"},
		{"voice rounds up", TypeVoice, `<voicemsg voicelength="15000" />`, `[语音 15"]`},
		{"voice partial second", TypeVoice, `<voicemsg voicelength="1200" />`, `[语音 2"]`},
		{"voice without length", TypeVoice, `<voicemsg />`, "[语音]"},
		{"video", TypeVideo, `<videomsg playlength="12" />`, `[视频 12"]`},
		{"video without length", TypeVideo, "", "[视频]"},
		{"sticker from user", TypeSticker, `<msg><emoji fromusername="x"></emoji><fromusername>wxid_a</fromusername></msg>`, "[表情]"},
		{"sticker bracket text", TypeSticker, `<emoji/>[Smile]`, "[表情: Smile]"},
		{"sticker plain", TypeSticker, "<emoji/>", "[表情]"},
		{"location", TypeLocation, `<location label="x"><label>Central Park</label></location>`, "[位置] Central Park"},
		{"location cdata", TypeLocation, `<label><![CDATA[ 西湖 ]]></label>`, "[位置] 西湖"},
		{"location empty", TypeLocation, `<label></label>`, "[位置]"},
		{"weapp", TypeShare, `<appmsg><title>Game</title><weappinfo/></appmsg>`, "[小程序] Game"},
		{"file with ext", TypeShare, `<appmsg type="6"><title>Report</title><appattach fileext="pdf"/></appmsg>`, "[文件] Report.pdf"},
		{"file marker", TypeShare, `<appmsg><title>Notes</title><appmsg_file_type/></appmsg>`, "[文件] Notes"},
		{"file by xml type", TypeShare, `<msg><appmsg><title>Slides</title><type>6</type></appmsg></msg>`, "[文件] Slides"},
		{"link", TypeShare, `<appmsg><title>News</title><type>5</type></appmsg>`, "[分享] News"},
		{"link cdata title", TypeShare, `<appmsg><title><![CDATA[Hi <b>]]></title></appmsg>`, "[分享] Hi <b>"},
		{"share without title", TypeShare, `<appmsg/>`, "[分享]"},
		{"system", TypeSystem, "Alice joined", "Alice joined"},
		{"system empty", TypeSystem, "", "[系统消息]"},
		{"recall", TypeRecall, "Bob recalled", "[撤回] Bob recalled"},
		{"recall empty", TypeRecall, "", "[撤回了一条消息]"},
		{"unknown clean", 9999, "plain", "plain"},
		{"unknown empty", 9999, "", "[消息类型: 9999]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Content(tt.typ, tt.payload); got != tt.want {
				t.Errorf("Content(%d, %q) = %q, want %q", tt.typ, tt.payload, got, tt.want)
			}
		})
	}
}

func TestFormatGroupSender(t *testing.T) {
	names := fakeNames{"wxid_alice": "Alice"}
	m := Raw{Type: TypeText, Payload: "wxid_alice:\nhi:\nthere"}

	got := Format(m, true, names)
	if got.Sender != "Alice" || got.Text != "hi:\nthere" {
		t.Errorf("Format(group) = %+v", got)
	}

	got = Format(m, false, names)
	if got.Sender != "" || got.Text != m.Payload {
		t.Errorf("Format(direct) = %+v", got)
	}

	got = Format(Raw{Type: TypeImage, Payload: "wxid_alice:\n<img/>"}, true, names)
	if got.Sender != "" || got.Text != "[图片]" {
		t.Errorf("Format(group image) = %+v", got)
	}

	got = Format(Raw{Type: TypeText, Payload: " wxid_bob :\nyo"}, true, nil)
	if got.Sender != "wxid_bob" || got.Text != "yo" {
		t.Errorf("Format(nil names) = %+v", got)
	}
}

func TestSplitSender(t *testing.T) {
	id, body, ok := SplitSender("a:\nb")
	if !ok || id != "a" || body != "b" {
		t.Errorf("SplitSender = %q %q %v", id, body, ok)
	}
	if _, body, ok := SplitSender("no separator"); ok || body != "no separator" {
		t.Errorf("SplitSender(no sep) = %q %v", body, ok)
	}
}

func TestPreview(t *testing.T) {
	long := "一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十多余"
	got := Preview(Raw{Type: TypeText, Payload: long}, false, nil)
	if want := long[:len("一")*40] + "..."; got != want {
		t.Errorf("Preview(long) = %q, want %q", got, want)
	}

	got = Preview(Raw{Type: TypeText, Payload: "wxid_alice:\nhello"}, true, fakeNames{"wxid_alice": "Alice"})
	if got != "Alice: hello" {
		t.Errorf("Preview(group) = %q", got)
	}

	if got := Preview(Raw{Type: TypeVoice}, false, nil); got != "[语音]" {
		t.Errorf("Preview(voice) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abc", 3); got != "abc" {
		t.Errorf("Truncate exact = %q", got)
	}
	if got := Truncate("abcd", 3); got != "abc..." {
		t.Errorf("Truncate over = %q", got)
	}
}

func TestDirectionOf(t *testing.T) {
	if DirectionOf(0) != Sent || DirectionOf(1) != Received {
		t.Error("Des 0 is sent, anything else received")
	}
}

func TestClassify(t *testing.T) {
	if Classify(TypeShare) != KindShare || Classify(12345) != KindOther {
		t.Error("Classify mismatch")
	}
	if KindVoice.String() != "voice" || Kind(99).String() != "other" {
		t.Error("Kind.String mismatch")
	}
	if len(Kinds()) != 10 {
		t.Errorf("Kinds len = %d", len(Kinds()))
	}
}
