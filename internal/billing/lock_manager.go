package billing

import (
	"context"
	"time"
)

// LockTTL bounds how long a session's claim on an item stays live.
// A lock older than this reads as unlocked to everyone and is cleared
// lazily by the next reader; there is no background sweeper.
const LockTTL = 5 * time.Minute

// ItemGrant reports the per-item outcome of an Acquire call. Acquire
// is a best-effort batch: items held by a different session are
// skipped, never errored on.
type ItemGrant struct {
	ItemID  uint64 `json:"item_id"`
	Granted bool   `json:"granted"`
}

// LockManager grants, releases and lazily expires per-item session
// claims. All mutations run inside a single store transaction per
// call.
type LockManager struct {
	store Store
	now   func() time.Time // overridable in tests
}

// NewLockManager constructs a LockManager bound to the given store.
func NewLockManager(store Store) *LockManager {
	if store == nil {
		panic("nil store passed to NewLockManager")
	}
	return &LockManager{store: store, now: time.Now}
}

// Acquire attempts to claim every item in itemIDs for sessionID. Each
// item is processed independently through a conditional store update:
// an unlocked item is taken, an item already held by the same session
// has its timestamp refreshed, and an item held by another session is
// skipped. The returned grants tell the caller which claims actually
// succeeded; callers that ignore them must re-read the snapshot to
// discover what they hold. Duplicate IDs are collapsed before any
// store work happens.
func (m *LockManager) Acquire(ctx context.Context, billID uint64, sessionID string, itemIDs []uint64) ([]ItemGrant, error) {
	if billID == 0 {
		return nil, ErrBillIDRequired
	}
	if sessionID == "" {
		return nil, ErrSessionIDRequired
	}
	unique := dedupeIDs(itemIDs)
	grants := make([]ItemGrant, 0, len(unique))
	if len(unique) == 0 {
		return grants, nil
	}
	tx, err := m.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	now := m.now().UTC()
	for _, id := range unique {
		granted, err := tx.AcquireItemLock(ctx, billID, id, sessionID, now)
		if err != nil {
			return nil, err
		}
		grants = append(grants, ItemGrant{ItemID: id, Granted: granted})
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return grants, nil
}

// Release clears the session's own claims on the given items. Items
// locked by someone else or not locked at all are left untouched, so
// releasing twice is harmless.
func (m *LockManager) Release(ctx context.Context, sessionID string, itemIDs []uint64) error {
	if sessionID == "" {
		return ErrSessionIDRequired
	}
	unique := dedupeIDs(itemIDs)
	if len(unique) == 0 {
		return nil
	}
	tx, err := m.store.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, id := range unique {
		if err := tx.ReleaseItemLock(ctx, id, sessionID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// IsExpired reports whether a lock taken at lockedAt has outlived
// LockTTL as of now. The boundary is exclusive: a lock exactly
// LockTTL old still counts as held.
func (m *LockManager) IsExpired(lockedAt, now time.Time) bool {
	return now.Sub(lockedAt) > LockTTL
}

// dedupeIDs drops zero and duplicate item IDs while preserving the
// caller's order.
func dedupeIDs(ids []uint64) []uint64 {
	unique := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	return unique
}
