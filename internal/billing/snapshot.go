package billing

import (
	"context"
	"time"

	"github.com/splittab/table-bill-splitting/internal/model"
)

// ItemView is the presentation form of one bill item. IsLocked is
// relative to the requesting session: an item the requester itself
// holds reads as unlocked so it can still act on it.
type ItemView struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	Quantity        int64  `json:"quantity"`
	PaidAmount      int64  `json:"paid_amount"`
	IsLocked        bool   `json:"is_locked"`
	RemainingAmount int64  `json:"remaining_amount"`
}

// SnapshotBuilder composes a bill with the live status of its items.
// Reading a snapshot is logically pure to the caller, but stale locks
// encountered along the way are cleared in the store as a side effect,
// inside the same transaction as the read.
type SnapshotBuilder struct {
	store Store
	locks *LockManager
	now   func() time.Time // overridable in tests
}

// NewSnapshotBuilder constructs a SnapshotBuilder. The lock manager is
// consulted only for its expiry rule.
func NewSnapshotBuilder(store Store, locks *LockManager) *SnapshotBuilder {
	if store == nil || locks == nil {
		panic("nil dependency passed to NewSnapshotBuilder")
	}
	return &SnapshotBuilder{store: store, locks: locks, now: time.Now}
}

// Build returns the active bill and its items in insertion order, or
// ErrBillNotFound when no active bill matches billID. The read runs in
// two phases inside one transaction: first every expired lock is
// cleared, then item status is computed against the cleaned state.
// Two concurrent readers may both observe the same expired lock and
// both clear it; the second clear is a no-op.
func (b *SnapshotBuilder) Build(ctx context.Context, billID uint64, sessionID string) (model.Bill, []ItemView, error) {
	if billID == 0 {
		return model.Bill{}, nil, ErrBillIDRequired
	}
	tx, err := b.store.Begin(ctx)
	if err != nil {
		return model.Bill{}, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	bill, err := tx.ActiveBill(ctx, billID)
	if err != nil {
		return model.Bill{}, nil, err
	}
	items, err := tx.ItemsByBill(ctx, billID)
	if err != nil {
		return model.Bill{}, nil, err
	}
	now := b.now().UTC()
	// Phase one: lazily expire stale claims.
	for i := range items {
		it := &items[i]
		if it.LockedBySession == nil || it.LockedAt == nil {
			continue
		}
		if b.locks.IsExpired(*it.LockedAt, now) {
			if err := tx.ClearItemLock(ctx, it.ID); err != nil {
				return model.Bill{}, nil, err
			}
			it.LockedBySession = nil
			it.LockedAt = nil
		}
	}
	// Phase two: compute status relative to the requesting session.
	views := make([]ItemView, 0, len(items))
	for _, it := range items {
		locked := it.LockedBySession != nil && *it.LockedBySession != sessionID
		views = append(views, ItemView{
			ID:              it.ID,
			Name:            it.Name,
			Price:           it.Price,
			Quantity:        it.Quantity,
			PaidAmount:      it.PaidAmount,
			IsLocked:        locked,
			RemainingAmount: it.RemainingAmount(),
		})
	}
	if err := tx.Commit(); err != nil {
		return model.Bill{}, nil, err
	}
	committed = true
	return bill, views, nil
}
