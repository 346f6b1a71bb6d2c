package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/splittab/table-bill-splitting/internal/billing"
	"github.com/splittab/table-bill-splitting/internal/model"
)

// LedgerStore is the MySQL implementation of billing.Store. It bundles
// the per-table repos and hands out transactions scoped to a single
// request.
type LedgerStore struct {
	db       *sql.DB
	Bills    *BillRepo
	Items    *BillItemRepo
	Payments *PaymentRepo
}

// NewLedgerStore constructs a LedgerStore and its repos over one DB
// handle.
func NewLedgerStore(db *sql.DB) *LedgerStore {
	if db == nil {
		panic("nil db passed to NewLedgerStore")
	}
	return &LedgerStore{
		db:       db,
		Bills:    NewBillRepo(db),
		Items:    NewBillItemRepo(db),
		Payments: NewPaymentRepo(db),
	}
}

// DB exposes the underlying sql.DB. It allows callers such as the
// seeder to begin transactions spanning multiple repositories.
func (s *LedgerStore) DB() *sql.DB { return s.db }

// Begin opens a database transaction and wraps it in the billing.Tx
// contract.
func (s *LedgerStore) Begin(ctx context.Context) (billing.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &ledgerTx{tx: tx, store: s}, nil
}

// ledgerTx adapts one *sql.Tx to the billing.Tx interface by
// delegating to the repos' ...Tx methods.
type ledgerTx struct {
	tx    *sql.Tx
	store *LedgerStore
}

func (t *ledgerTx) ActiveBill(ctx context.Context, billID uint64) (model.Bill, error) {
	return t.store.Bills.GetActiveTx(ctx, t.tx, billID)
}

func (t *ledgerTx) ItemsByBill(ctx context.Context, billID uint64) ([]model.BillItem, error) {
	return t.store.Items.ListByBillTx(ctx, t.tx, billID)
}

func (t *ledgerTx) AcquireItemLock(ctx context.Context, billID, itemID uint64, sessionID string, now time.Time) (bool, error) {
	return t.store.Items.AcquireLockTx(ctx, t.tx, billID, itemID, sessionID, now)
}

func (t *ledgerTx) ReleaseItemLock(ctx context.Context, itemID uint64, sessionID string) error {
	return t.store.Items.ReleaseLockTx(ctx, t.tx, itemID, sessionID)
}

func (t *ledgerTx) ClearItemLock(ctx context.Context, itemID uint64) error {
	return t.store.Items.ClearLockTx(ctx, t.tx, itemID)
}

func (t *ledgerTx) InsertPayment(ctx context.Context, p *model.Payment) error {
	return t.store.Payments.CreateTx(ctx, t.tx, p)
}

func (t *ledgerTx) InsertPaymentItem(ctx context.Context, pi *model.PaymentItem) error {
	return t.store.Payments.CreateItemTx(ctx, t.tx, pi)
}

func (t *ledgerTx) IncrementPaidAmount(ctx context.Context, itemID uint64, delta int64) error {
	return t.store.Items.AddPaidTx(ctx, t.tx, itemID, delta)
}

func (t *ledgerTx) Commit() error { return t.tx.Commit() }

// Rollback after a successful Commit returns sql.ErrTxDone, which
// callers sitting in a defer are expected to ignore.
func (t *ledgerTx) Rollback() error { return t.tx.Rollback() }
