package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/matheus3301/wxbak/internal/remark"
)

// Friends returns every row of the Friend table with its remark blob
// rendered by quote() and lower-cased, e.g. x'0a03426f62'.
func (db *DB) Friends(ctx context.Context) ([]remark.Contact, error) {
	rows, err := db.QueryContext(ctx, `SELECT userName, lower(quote(dbContactRemark)) FROM Friend`)
	if err != nil {
		return nil, fmt.Errorf("query friends: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contacts []remark.Contact
	for rows.Next() {
		var userName, quoted sql.NullString
		if err := rows.Scan(&userName, &quoted); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		if !userName.Valid {
			continue
		}
		contacts = append(contacts, remark.Contact{ExternalID: userName.String, RawRemark: quoted.String})
	}
	return contacts, rows.Err()
}
