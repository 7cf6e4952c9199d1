// Package export renders a conversation as a standalone JSON document or
// HTML transcript.
package export

import (
	"net/url"
	"slices"
	"time"

	"github.com/matheus3301/wxbak/internal/conversation"
	"github.com/matheus3301/wxbak/internal/message"
)

// DefaultLimit is the number of messages fetched for an export.
const DefaultLimit = 10000

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// ChatInfo heads an exported document.
type ChatInfo struct {
	WechatID     string `json:"wechatId"`
	Nickname     string `json:"nickname"`
	IsGroup      bool   `json:"isGroup"`
	MessageCount int    `json:"messageCount"`
}

// Message is one exported message. RawContent is only kept for text.
type Message struct {
	ID         int64             `json:"id"`
	ServerID   int64             `json:"serverId"`
	Time       string            `json:"time"`
	Content    string            `json:"content"`
	RawContent *string           `json:"rawContent,omitempty"`
	Type       int               `json:"type"`
	Direction  message.Direction `json:"direction"`
	Sender     string            `json:"sender,omitempty"`
}

// Document is the JSON export of a conversation.
type Document struct {
	ChatInfo ChatInfo  `json:"chatInfo"`
	Messages []Message `json:"messages"`
}

// JSON builds the export document of conv from entries, keeping their order.
func JSON(conv conversation.Summary, entries []conversation.Entry) Document {
	doc := Document{
		ChatInfo: ChatInfo{
			WechatID:     conv.Contact.ExternalID,
			Nickname:     conv.Contact.Nickname,
			IsGroup:      conv.Contact.IsGroup,
			MessageCount: conv.MessageCount,
		},
		Messages: make([]Message, 0, len(entries)),
	}
	for _, e := range entries {
		m := Message{
			ID:        e.LocalID,
			ServerID:  e.ServerID,
			Time:      time.Unix(e.CreateTime, 0).UTC().Format(isoMillis),
			Content:   e.Content,
			Type:      e.Type,
			Direction: e.Direction,
			Sender:    e.Sender,
		}
		if e.Type == message.TypeText {
			raw := e.Raw
			m.RawContent = &raw
		}
		doc.Messages = append(doc.Messages, m)
	}
	return doc
}

// Filename returns the download name of a JSON export of conv.
func Filename(conv conversation.Summary) string {
	name := conv.Contact.Nickname
	if name == "" {
		name = conv.TableName
	}
	return name + "_chat.json"
}

// ContentDisposition returns an attachment header value carrying filename
// in RFC 5987 encoding.
func ContentDisposition(filename string) string {
	return "attachment; filename*=UTF-8''" + url.PathEscape(filename)
}

// Chronological returns a copy of a newest-first page in reading order.
func Chronological(entries []conversation.Entry) []conversation.Entry {
	out := slices.Clone(entries)
	slices.Reverse(out)
	return out
}
