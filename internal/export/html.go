package export

import (
	"html/template"
	"io"
	"time"

	"github.com/matheus3301/wxbak/internal/conversation"
	"github.com/matheus3301/wxbak/internal/message"
)

var transcript = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>聊天记录 - {{.Contact.Nickname}}</title>
  <style>
    body { font-family: -apple-system, "Segoe UI", Roboto, Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
    .message { margin: 10px 0; padding: 10px; clear: both; }
    .message.sent { text-align: right; }
    .message.received { text-align: left; }
    .bubble { display: inline-block; max-width: 70%; padding: 10px 15px; border-radius: 10px; white-space: pre-wrap; word-wrap: break-word; text-align: left; }
    .message.sent .bubble { background: #95ec69; }
    .message.received .bubble { background: #fff; border: 1px solid #ddd; }
    .time { font-size: 12px; color: #999; margin-bottom: 5px; }
    .sender { font-size: 12px; color: #666; font-weight: bold; margin-bottom: 3px; }
  </style>
</head>
<body>
  <h1>与 {{.Contact.Nickname}} 的聊天记录</h1>
  <p>微信号: {{.Contact.ExternalID}}</p>
  <p>消息数量: {{.MessageCount}}</p>
  <hr>
{{- range .Messages}}
  <div class="message {{.Direction}}">
    <div class="time">{{.Time}}</div>
    {{- if .Sender}}
    <div class="sender">{{.Sender}}</div>
    {{- end}}
    <div class="bubble">{{.Content}}</div>
  </div>
{{- end}}
</body>
</html>
`))

type htmlMessage struct {
	Time      string
	Sender    string
	Content   string
	Direction message.Direction
}

type htmlView struct {
	Contact      conversation.Contact
	MessageCount int
	Messages     []htmlMessage
}

// HTML writes a transcript of conv to w, timestamps rendered in loc. All
// content is escaped.
func HTML(w io.Writer, conv conversation.Summary, entries []conversation.Entry, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	view := htmlView{Contact: conv.Contact, MessageCount: conv.MessageCount}
	for _, e := range entries {
		view.Messages = append(view.Messages, htmlMessage{
			Time:      time.Unix(e.CreateTime, 0).In(loc).Format("2006-01-02 15:04:05"),
			Sender:    e.Sender,
			Content:   e.Content,
			Direction: e.Direction,
		})
	}
	return transcript.Execute(w, view)
}
