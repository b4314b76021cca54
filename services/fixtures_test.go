package services

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/ws"
)

var _ ws.EventPublisher = (*recordingHub)(nil)

// recordingHub captures published events.
type recordingHub struct {
	mu     sync.Mutex
	all    []ws.Event
	byUser map[int64][]ws.Event
}

func newRecordingHub() *recordingHub {
	return &recordingHub{byUser: make(map[int64][]ws.Event)}
}

func (h *recordingHub) BroadcastToAll(e ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.all = append(h.all, e)
}

func (h *recordingHub) BroadcastToUser(userID int64, e ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byUser[userID] = append(h.byUser[userID], e)
}

func (h *recordingHub) OnlineUserIDs() []int64 { return nil }

func (h *recordingHub) ops() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.all))
	for i, e := range h.all {
		out[i] = e.Op
	}
	return out
}

func insertUser(t *testing.T, db *sql.DB, name, email, role string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, 'x', ?)`, name, email, role)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertProducer(t *testing.T, db *sql.DB, businessName string) int64 {
	t.Helper()
	userID := insertUser(t, db, businessName, slugEmail(businessName), "producer")
	res, err := db.Exec(`INSERT INTO producers (user_id, business_name) VALUES (?, ?)`, userID, businessName)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertCategory(t *testing.T, db *sql.DB, name, slug string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO product_categories (name, slug) VALUES (?, ?)`, name, slug)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertItem(t *testing.T, db *sql.DB, producerID int64, name, status string) int64 {
	t.Helper()
	res, err := db.Exec(`
		INSERT INTO adoptable_items (producer_id, name, slug, description, type, location, status)
		VALUES (?, ?, ?, 'desc', 'olive_tree', 'Chania', ?)`,
		producerID, name, slugEmail(name), status)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertAdoption(t *testing.T, db *sql.DB, userID, itemID int64, status string, start, end time.Time, price float64) int64 {
	t.Helper()
	res, err := db.Exec(`
		INSERT INTO adoptions (user_id, adoptable_item_id, status, start_date, end_date, price_paid)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, itemID, status, database.FormatTime(start), database.FormatTime(end), price)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertOrder(t *testing.T, db *sql.DB, userID int64, status string, total float64, at time.Time) int64 {
	t.Helper()
	res, err := db.Exec(`
		INSERT INTO orders (user_id, status, total_amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		userID, status, total, database.FormatTime(at), database.FormatTime(at))
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertOrderItem(t *testing.T, db *sql.DB, orderID, productID, producerID int64, quantity int, price float64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO order_items (order_id, product_id, producer_id, quantity, price, subtotal)
		VALUES (?, ?, ?, ?, ?, ?)`,
		orderID, productID, producerID, quantity, price, price*float64(quantity))
	require.NoError(t, err)
}

func slugEmail(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		}
	}
	return string(out) + "@example.test"
}

func ptr[T any](v T) *T { return &v }
