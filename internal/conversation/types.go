package conversation

import (
	"github.com/matheus3301/wxbak/internal/message"
	"github.com/matheus3301/wxbak/internal/store"
)

// UnknownContact is the external ID given to tables whose contact is not
// in the Friend table.
const UnknownContact = "未知"

// Contact identifies the other party of a conversation.
type Contact struct {
	Hash       string `json:"md5"`
	ExternalID string `json:"wechatId"`
	Nickname   string `json:"nickname"`
	IsGroup    bool   `json:"isGroup"`
}

// Summary is one entry of the conversation list.
type Summary struct {
	TableName          string  `json:"tableName"`
	MessageCount       int     `json:"messageCount"`
	Contact            Contact `json:"contact"`
	LastMessageAt      int64   `json:"lastMessageTime"`
	LastMessagePreview string  `json:"lastMessagePreview"`
}

// Query selects a page of messages from one conversation. Start and End
// are YYYY-MM-DD days in the indexer's location; End is inclusive. Window
// overrides the indexer's policy when neither is set.
type Query struct {
	Root        string
	AccountHash string
	Table       string
	Start       string
	End         string
	Limit       int
	Offset      int
	Window      WindowPolicy
}

// Entry is one message of a page, carrying both the stored payload and its
// rendered form.
type Entry struct {
	LocalID    int64             `json:"localId"`
	ServerID   int64             `json:"serverId"`
	CreateTime int64             `json:"createTime"`
	Type       int               `json:"type"`
	Kind       string            `json:"kind"`
	Direction  message.Direction `json:"direction"`
	Status     int               `json:"status"`
	Sender     string            `json:"sender,omitempty"`
	Content    string            `json:"content"`
	Raw        string            `json:"rawContent"`
}

// Page is the result of a message query. Window is the CreateTime range
// that was applied; open bounds are zero.
type Page struct {
	Contact  Contact      `json:"contact"`
	Window   store.Window `json:"window"`
	Messages []Entry      `json:"messages"`
}

// DayCount is the number of messages on one calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stats summarizes the activity of a conversation.
type Stats struct {
	Total    int            `json:"total"`
	Sent     int            `json:"sent"`
	Received int            `json:"received"`
	First    int64          `json:"firstMessageTime"`
	Last     int64          `json:"lastMessageTime"`
	ByKind   map[string]int `json:"byKind"`
	ByDay    []DayCount     `json:"byDay"`
	Hourly   [24]int        `json:"hourly"`
}
