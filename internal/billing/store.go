package billing

import (
	"context"
	"time"

	"github.com/splittab/table-bill-splitting/internal/model"
)

// Store is the narrow ledger interface the billing core runs against.
// The production implementation lives in internal/repository on top of
// MySQL; tests substitute an in-memory stub. Every externally visible
// operation acquires exactly one Tx and either commits all of its
// writes or none of them.
type Store interface {
	// Begin opens a transaction scoped to one request. Callers must
	// release it on every exit path via Commit or Rollback.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one store transaction. Writes performed through it become
// visible to other connections only after Commit; Rollback after
// Commit is a no-op so it can sit in a defer.
type Tx interface {
	// ActiveBill loads the bill when it exists with status "active",
	// otherwise returns ErrBillNotFound.
	ActiveBill(ctx context.Context, billID uint64) (model.Bill, error)

	// ItemsByBill returns the bill's items in insertion order.
	ItemsByBill(ctx context.Context, billID uint64) ([]model.BillItem, error)

	// AcquireItemLock sets the item's lock fields to (sessionID, now)
	// only if the item belongs to billID and is currently unlocked or
	// already locked by the same session. The condition and the write
	// are a single compare-and-set update, never a read-then-write
	// pair. It reports whether the lock was taken or refreshed.
	AcquireItemLock(ctx context.Context, billID, itemID uint64, sessionID string, now time.Time) (bool, error)

	// ReleaseItemLock clears the lock fields only when the item is
	// locked by sessionID. Items locked by others or already unlocked
	// are left untouched.
	ReleaseItemLock(ctx context.Context, itemID uint64, sessionID string) error

	// ClearItemLock clears the lock fields regardless of the holder.
	// Clearing an already-unlocked item is a no-op, so concurrent
	// lazy-expiry sweeps may race without harm.
	ClearItemLock(ctx context.Context, itemID uint64) error

	// InsertPayment stores a new payment row and populates its ID.
	InsertPayment(ctx context.Context, p *model.Payment) error

	// InsertPaymentItem stores one payment-to-item coverage row and
	// populates its ID.
	InsertPaymentItem(ctx context.Context, pi *model.PaymentItem) error

	// IncrementPaidAmount adds delta to the item's cumulative
	// paid_amount.
	IncrementPaidAmount(ctx context.Context, itemID uint64, delta int64) error

	Commit() error
	Rollback() error
}
