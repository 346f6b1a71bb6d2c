// Package repository contains the MySQL data access layer. Repos are
// thin structs over *sql.DB whose ...Tx methods run against a caller
// supplied transaction, so multi-table operations can share one unit
// of work. The LedgerStore in ledger.go ties them together behind the
// billing.Store interface.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/splittab/table-bill-splitting/internal/billing"
	"github.com/splittab/table-bill-splitting/internal/model"
)

// BillRepo provides data access to the bills table. Bills are created
// by the seeder and read-only afterwards.
type BillRepo struct {
	db *sql.DB
}

// NewBillRepo returns a new BillRepo bound to the provided database.
func NewBillRepo(db *sql.DB) *BillRepo { return &BillRepo{db: db} }

// GetActiveTx loads the bill with the given ID when its status is
// "active". Closed or missing bills report billing.ErrBillNotFound so
// callers need not distinguish the two cases.
func (r *BillRepo) GetActiveTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Bill, error) {
	const q = `SELECT id, restaurant_name, table_number, total_amount, status
	           FROM bills WHERE id = ? AND status = 'active'`
	var b model.Bill
	err := tx.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.RestaurantName, &b.TableNumber, &b.TotalAmount, &b.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bill{}, billing.ErrBillNotFound
	}
	if err != nil {
		return model.Bill{}, err
	}
	return b, nil
}

// Count returns the number of bill rows. The seeder uses it to decide
// whether demo data has already been loaded.
func (r *BillRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bills`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CreateTx inserts a new bill using the provided transaction and
// populates its generated ID. The caller must commit or roll back.
func (r *BillRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Bill) error {
	const q = `INSERT INTO bills (restaurant_name, table_number, total_amount, status) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.RestaurantName, b.TableNumber, b.TotalAmount, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}
