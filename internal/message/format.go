package message

import (
	"fmt"
	"strconv"
	"strings"
)

const senderSeparator = ":\n"

// Direction tells whether the account owner sent or received a message.
type Direction string

const (
	Sent     Direction = "sent"
	Received Direction = "received"
)

// DirectionOf maps the Des column to a Direction; 0 means sent.
func DirectionOf(des int) Direction {
	if des == 0 {
		return Sent
	}
	return Received
}

// Raw is one row of a Chat_<hash> table.
type Raw struct {
	LocalID    int64
	ServerID   int64
	CreateTime int64
	Payload    string
	Type       int
	Direction  Direction
	Status     int
}

// Formatted is the rendered form of a message.
type Formatted struct {
	Text   string
	Sender string
}

// NameResolver resolves display names for external IDs.
type NameResolver interface {
	Name(externalID string, isGroup bool) string
}

// SplitSender splits a group text payload of the form "<sender>:\n<body>".
func SplitSender(payload string) (senderID, body string, ok bool) {
	head, tail, found := strings.Cut(payload, senderSeparator)
	if !found {
		return "", payload, false
	}
	return strings.TrimSpace(head), tail, true
}

// Format renders m. In group chats the sender prefix of text messages is
// stripped and resolved through names, which may be nil.
func Format(m Raw, isGroup bool, names NameResolver) Formatted {
	payload := m.Payload
	var sender string
	if isGroup && m.Type == TypeText {
		if id, body, ok := SplitSender(payload); ok {
			payload = body
			sender = resolveSender(names, id)
		}
	}
	return Formatted{Text: Content(m.Type, payload), Sender: sender}
}

func resolveSender(names NameResolver, id string) string {
	if names == nil {
		return id
	}
	return names.Name(id, false)
}

// Content renders payload according to the rules of its wire type.
func Content(typ int, payload string) string {
	switch Classify(typ) {
	case KindText:
		if clean(payload) {
			return payload
		}
		return "[文本消息]"

	case KindImage:
		return "[图片]"

	case KindVoice:
		if ms, ok := atoi(submatch(voiceLengthRegexp, payload)); ok {
			return fmt.Sprintf(`[语音 %d"]`, (ms+999)/1000)
		}
		return "[语音]"

	case KindVideo:
		if s, ok := atoi(submatch(playLengthRegexp, payload)); ok {
			return fmt.Sprintf(`[视频 %d"]`, s)
		}
		return "[视频]"

	case KindSticker:
		if from, ok := ExtractTag(payload, "fromusername"); ok && clean(from) {
			return "[表情]"
		}
		if text := submatch(bracketRegexp, payload); clean(text) {
			return "[表情: " + text + "]"
		}
		return "[表情]"

	case KindLocation:
		if label, ok := ExtractTag(payload, "label"); ok && clean(label) {
			return "[位置] " + label
		}
		return "[位置]"

	case KindShare:
		return shareContent(payload)

	case KindSystem:
		if clean(payload) {
			return payload
		}
		return "[系统消息]"

	case KindRecall:
		if clean(payload) {
			return "[撤回] " + payload
		}
		return "[撤回了一条消息]"

	default:
		if clean(payload) {
			return payload
		}
		return fmt.Sprintf("[消息类型: %d]", typ)
	}
}

func shareContent(payload string) string {
	title, ok := ExtractTag(payload, "title")
	if !ok || !clean(title) {
		return "[分享]"
	}
	switch {
	case strings.Contains(payload, "weapp"):
		return "[小程序] " + title
	case isFileAppMsg(payload):
		if ext := submatch(fileExtRegexp, payload); ext != "" {
			return "[文件] " + title + "." + ext
		}
		return "[文件] " + title
	default:
		return "[分享] " + title
	}
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
