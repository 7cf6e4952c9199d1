package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/matheus3301/wxbak/internal/message"
)

const messageColumns = `MesLocalID, MesSvrID, CreateTime, Message, Type, Des, Status`

// LatestMessage returns the newest row of table, or nil when it is empty.
func (db *DB) LatestMessage(ctx context.Context, table string) (*message.Raw, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM `+quoteIdent(table)+` ORDER BY CreateTime DESC LIMIT 1`)
	if err != nil {
		return nil, fmt.Errorf("latest message %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, rows.Err()
	}
	m, err := scanMessage(rows)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Messages returns rows of table inside w, newest first.
func (db *DB) Messages(ctx context.Context, table string, w Window, limit, offset int) ([]message.Raw, error) {
	var (
		conds []string
		args  []any
	)
	if w.From != 0 {
		conds = append(conds, "CreateTime >= ?")
		args = append(args, w.From)
	}
	if w.To != 0 {
		conds = append(conds, "CreateTime <= ?")
		args = append(args, w.To)
	}

	query := `SELECT ` + messageColumns + ` FROM ` + quoteIdent(table)
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY CreateTime DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("messages %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []message.Raw
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Timeline calls fn with the time, type and direction of every row of
// table, newest first.
func (db *DB) Timeline(ctx context.Context, table string, fn func(Stamp) error) error {
	rows, err := db.QueryContext(ctx,
		`SELECT CreateTime, Type, Des FROM `+quoteIdent(table)+` ORDER BY CreateTime DESC`)
	if err != nil {
		return fmt.Errorf("timeline %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var ts, typ, des sql.NullInt64
		if err := rows.Scan(&ts, &typ, &des); err != nil {
			return fmt.Errorf("scan timeline: %w", err)
		}
		s := Stamp{CreateTime: ts.Int64, Type: int(typ.Int64), Direction: message.DirectionOf(int(des.Int64))}
		if err := fn(s); err != nil {
			return err
		}
	}
	return rows.Err()
}

func scanMessage(rows *sql.Rows) (message.Raw, error) {
	var (
		localID, serverID, createTime, typ, des, status sql.NullInt64
		payload                                        any
	)
	if err := rows.Scan(&localID, &serverID, &createTime, &payload, &typ, &des, &status); err != nil {
		return message.Raw{}, fmt.Errorf("scan message: %w", err)
	}
	return message.Raw{
		LocalID:    localID.Int64,
		ServerID:   serverID.Int64,
		CreateTime: createTime.Int64,
		Payload:    payloadText(payload),
		Type:       int(typ.Int64),
		Direction:  message.DirectionOf(int(des.Int64)),
		Status:     int(status.Int64),
	}, nil
}

// payloadText renders the Message column, which may be stored as TEXT or
// BLOB. Each invalid UTF-8 byte becomes U+FFFD so the corruption check can
// see it.
func payloadText(v any) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return message.DecodeUTF8([]byte(p))
	case []byte:
		return message.DecodeUTF8(p)
	case int64:
		return strconv.FormatInt(p, 10)
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	default:
		return fmt.Sprint(p)
	}
}
