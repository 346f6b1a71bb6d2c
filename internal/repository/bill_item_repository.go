package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/splittab/table-bill-splitting/internal/model"
)

// BillItemRepo provides data access to the bill_items table, including
// the lock fields that implement per-session item claims.
type BillItemRepo struct {
	db *sql.DB
}

// NewBillItemRepo returns a new BillItemRepo bound to the provided
// database.
func NewBillItemRepo(db *sql.DB) *BillItemRepo { return &BillItemRepo{db: db} }

// ListByBillTx returns a bill's items ordered by insertion (primary
// key). Lock fields come back nil when the item is unlocked.
func (r *BillItemRepo) ListByBillTx(ctx context.Context, tx *sql.Tx, billID uint64) ([]model.BillItem, error) {
	const q = `SELECT id, bill_id, name, price, quantity, paid_amount, locked_by_session, locked_at
	           FROM bill_items WHERE bill_id = ? ORDER BY id`
	rows, err := tx.QueryContext(ctx, q, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.BillItem
	for rows.Next() {
		var (
			it       model.BillItem
			session  sql.NullString
			lockedAt sql.NullTime
		)
		if err := rows.Scan(&it.ID, &it.BillID, &it.Name, &it.Price, &it.Quantity, &it.PaidAmount, &session, &lockedAt); err != nil {
			return nil, err
		}
		if session.Valid && lockedAt.Valid {
			s := session.String
			t := lockedAt.Time
			it.LockedBySession = &s
			it.LockedAt = &t
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// AcquireLockTx takes or refreshes a session's claim on one item with
// a single conditional UPDATE. The WHERE clause carries the whole
// compare-and-set: the row must belong to the bill and be either
// unlocked or already held by the same session. Two sessions racing
// for the same unlocked item therefore serialize on the row and only
// one of them matches. The connection must run with clientFoundRows
// (see database.Open) so a refreshed re-lock that leaves the row
// byte-identical still counts as matched.
func (r *BillItemRepo) AcquireLockTx(ctx context.Context, tx *sql.Tx, billID, itemID uint64, sessionID string, now time.Time) (bool, error) {
	const q = `UPDATE bill_items
	           SET locked_by_session = ?, locked_at = ?
	           WHERE id = ? AND bill_id = ?
	           AND (locked_by_session IS NULL OR locked_by_session = ?)`
	res, err := tx.ExecContext(ctx, q, sessionID, now, itemID, billID, sessionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReleaseLockTx clears the lock fields only when the item is held by
// the given session. Anything else matches no row and is a no-op.
func (r *BillItemRepo) ReleaseLockTx(ctx context.Context, tx *sql.Tx, itemID uint64, sessionID string) error {
	const q = `UPDATE bill_items
	           SET locked_by_session = NULL, locked_at = NULL
	           WHERE id = ? AND locked_by_session = ?`
	_, err := tx.ExecContext(ctx, q, itemID, sessionID)
	return err
}

// ClearLockTx clears the lock fields regardless of holder. Used for
// lazy expiry and for settlement, where payment always wins over a
// lock. Clearing already-null fields matches the row and writes the
// same nulls, so concurrent clears are harmless.
func (r *BillItemRepo) ClearLockTx(ctx context.Context, tx *sql.Tx, itemID uint64) error {
	const q = `UPDATE bill_items
	           SET locked_by_session = NULL, locked_at = NULL
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, itemID)
	return err
}

// AddPaidTx credits delta to the item's cumulative paid_amount in a
// single in-place increment.
func (r *BillItemRepo) AddPaidTx(ctx context.Context, tx *sql.Tx, itemID uint64, delta int64) error {
	const q = `UPDATE bill_items SET paid_amount = paid_amount + ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, delta, itemID)
	return err
}

// CreateBulkTx inserts multiple bill items in one statement. Only
// bill_id, name, price and quantity are set; paid_amount and the lock
// fields start at their column defaults. Passing an empty slice has no
// effect and returns nil.
func (r *BillItemRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, items []model.BillItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO bill_items (bill_id, name, price, quantity) VALUES `
	args := make([]interface{}, 0, len(items)*4)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, it.BillID, it.Name, it.Price, it.Quantity)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
