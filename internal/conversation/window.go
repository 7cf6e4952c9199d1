package conversation

import (
	"context"
	"time"

	"github.com/matheus3301/wxbak/internal/store"
)

const dateLayout = "2006-01-02"

// parseRange converts YYYY-MM-DD bounds into a CreateTime window. The end
// day is included through 23:59:59.
func (ix *Indexer) parseRange(start, end string) (store.Window, error) {
	var w store.Window
	var from, to time.Time
	if start != "" {
		t, err := time.ParseInLocation(dateLayout, start, ix.location)
		if err != nil {
			return w, inputErr("startDate", "%q is not YYYY-MM-DD", start)
		}
		from = t
		w.From = t.Unix()
	}
	if end != "" {
		t, err := time.ParseInLocation(dateLayout, end, ix.location)
		if err != nil {
			return w, inputErr("endDate", "%q is not YYYY-MM-DD", end)
		}
		to = t.AddDate(0, 0, 1).Add(-time.Second)
		w.To = to.Unix()
	}
	if start != "" && end != "" && to.Before(from) {
		return w, inputErr("endDate", "%s is before %s", end, start)
	}
	return w, nil
}

// defaultWindow applies the window policy to table; override wins over the
// indexer's own policy when set.
func (ix *Indexer) defaultWindow(ctx context.Context, db *store.DB, table string, override WindowPolicy) (store.Window, error) {
	policy := ix.window
	if override != "" {
		policy = override
	}
	if policy == AllMessages {
		return store.Window{}, nil
	}
	newest, ok, err := db.MaxCreateTime(ctx, table)
	if err != nil || !ok {
		return store.Window{}, err
	}
	return store.Window{From: startOfDay(time.Unix(newest, 0).In(ix.location)).Unix()}, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
