package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ChatTables lists the Chat_* and ChatExt2_* tables of a message shard.
func (db *DB) ChatTables(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table'
		AND (name LIKE 'Chat/_%' ESCAPE '/' OR name LIKE 'ChatExt2/_%' ESCAPE '/')
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list chat tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// HasTable reports whether the shard holds the named table.
func (db *DB) HasTable(ctx context.Context, table string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup table %s: %w", table, err)
	}
	return n > 0, nil
}

// CountRows returns the number of messages in table.
func (db *DB) CountRows(ctx context.Context, table string) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+quoteIdent(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// MaxCreateTime returns the newest CreateTime in table; ok is false when
// the table is empty.
func (db *DB) MaxCreateTime(ctx context.Context, table string) (ts int64, ok bool, err error) {
	var newest sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(CreateTime) FROM `+quoteIdent(table)).Scan(&newest); err != nil {
		return 0, false, fmt.Errorf("max create time %s: %w", table, err)
	}
	return newest.Int64, newest.Valid && newest.Int64 != 0, nil
}
