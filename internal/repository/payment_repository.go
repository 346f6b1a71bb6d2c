package repository

import (
	"context"
	"database/sql"

	"github.com/splittab/table-bill-splitting/internal/model"
)

// PaymentRepo provides data access to the payments and payment_items
// tables. Rows are insert-only; a payment exists only once its
// settlement transaction committed.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the provided
// database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx inserts a payment row and populates its generated ID. The
// caller must commit or roll back the transaction.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `INSERT INTO payments (bill_id, session_id, amount, tip_amount, email, status)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, p.BillID, p.SessionID, p.Amount, p.TipAmount, p.Email, p.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// CreateItemTx inserts one payment-to-item coverage row and populates
// its generated ID.
func (r *PaymentRepo) CreateItemTx(ctx context.Context, tx *sql.Tx, pi *model.PaymentItem) error {
	const q = `INSERT INTO payment_items (payment_id, bill_item_id, amount) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, pi.PaymentID, pi.BillItemID, pi.Amount)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	pi.ID = uint64(id)
	return nil
}
