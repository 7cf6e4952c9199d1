package store

import "github.com/matheus3301/wxbak/internal/message"

// Window bounds a message query by CreateTime, in unix seconds. A zero
// bound is open.
type Window struct {
	From int64 `json:"from,omitempty"`
	To   int64 `json:"to,omitempty"`
}

// Stamp is the time, wire type and direction of one message row.
type Stamp struct {
	CreateTime int64
	Type       int
	Direction  message.Direction
}
