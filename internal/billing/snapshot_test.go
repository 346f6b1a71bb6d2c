package billing

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newSnapshotFixture(at time.Time) (*stubStore, *LockManager, *SnapshotBuilder) {
	store := newStubStore()
	locks := NewLockManager(store)
	locks.now = fixedClock(at)
	snapshots := NewSnapshotBuilder(store, locks)
	snapshots.now = fixedClock(at)
	return store, locks, snapshots
}

func TestBuildReturnsBillAndItemsInOrder(t *testing.T) {
	_, _, snapshots := newSnapshotFixture(testTime)

	bill, items, err := snapshots.Build(context.Background(), 1, "s1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if bill.ID != 1 || bill.RestaurantName != "Bella Vista" {
		t.Fatalf("unexpected bill: %+v", bill)
	}
	if len(items) != 2 || items[0].ID != 11 || items[1].ID != 12 {
		t.Fatalf("expected items [11 12] in insertion order, got %+v", items)
	}
	if items[1].RemainingAmount != 650*2 {
		t.Fatalf("expected remaining 1300 for item 12, got %d", items[1].RemainingAmount)
	}
}

func TestBuildNotFound(t *testing.T) {
	_, _, snapshots := newSnapshotFixture(testTime)

	// Closed bill.
	if _, _, err := snapshots.Build(context.Background(), 2, "s1"); !errors.Is(err, ErrBillNotFound) {
		t.Fatalf("expected ErrBillNotFound for closed bill, got %v", err)
	}
	// Missing bill.
	if _, _, err := snapshots.Build(context.Background(), 99, "s1"); !errors.Is(err, ErrBillNotFound) {
		t.Fatalf("expected ErrBillNotFound for missing bill, got %v", err)
	}
	if _, _, err := snapshots.Build(context.Background(), 0, "s1"); !errors.Is(err, ErrBillIDRequired) {
		t.Fatalf("expected ErrBillIDRequired, got %v", err)
	}
}

func TestBuildLockVisibilityIsRelativeToSession(t *testing.T) {
	_, locks, snapshots := newSnapshotFixture(testTime)
	ctx := context.Background()

	if _, err := locks.Acquire(ctx, 1, "s1", []uint64{11}); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	_, asOther, err := snapshots.Build(ctx, 1, "s2")
	if err != nil {
		t.Fatalf("build for s2: %v", err)
	}
	if !asOther[0].IsLocked {
		t.Fatal("s2 must see item 11 as locked")
	}
	_, asHolder, err := snapshots.Build(ctx, 1, "s1")
	if err != nil {
		t.Fatalf("build for s1: %v", err)
	}
	if asHolder[0].IsLocked {
		t.Fatal("the holder must see its own claim as unlocked")
	}
}

func TestBuildClearsExpiredLocks(t *testing.T) {
	store, locks, snapshots := newSnapshotFixture(testTime)
	ctx := context.Background()

	if _, err := locks.Acquire(ctx, 1, "s1", []uint64{11}); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	// 301 seconds later the claim is stale for any reader.
	snapshots.now = fixedClock(testTime.Add(301 * time.Second))
	_, items, err := snapshots.Build(ctx, 1, "s2")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if items[0].IsLocked {
		t.Fatal("expired lock must read as unlocked")
	}
	if it := store.item(11); it.LockedBySession != nil || it.LockedAt != nil {
		t.Fatal("expired lock must be cleared in the store")
	}
}

func TestBuildKeepsLiveLocksJustUnderTTL(t *testing.T) {
	store, locks, snapshots := newSnapshotFixture(testTime)
	ctx := context.Background()

	if _, err := locks.Acquire(ctx, 1, "s1", []uint64{11}); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	snapshots.now = fixedClock(testTime.Add(299 * time.Second))
	_, items, err := snapshots.Build(ctx, 1, "s2")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !items[0].IsLocked {
		t.Fatal("a 299s old lock must still read as held")
	}
	if holder := store.item(11).LockedBySession; holder == nil || *holder != "s1" {
		t.Fatalf("live lock must stay in the store, got %v", holder)
	}
}

func TestBuildExpiryClearIsIdempotent(t *testing.T) {
	store, locks, snapshots := newSnapshotFixture(testTime)
	ctx := context.Background()

	if _, err := locks.Acquire(ctx, 1, "s1", []uint64{11}); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	snapshots.now = fixedClock(testTime.Add(10 * time.Minute))
	// Two readers observing the same expired lock both run the clear.
	for i := 0; i < 2; i++ {
		if _, _, err := snapshots.Build(ctx, 1, "s2"); err != nil {
			t.Fatalf("build %d: %v", i, err)
		}
	}
	if it := store.item(11); it.LockedBySession != nil {
		t.Fatal("lock must stay cleared after repeated expiry sweeps")
	}
}

func TestBuildRollsBackOnStoreError(t *testing.T) {
	store, _, snapshots := newSnapshotFixture(testTime)
	store.failOn = "ItemsByBill"

	if _, _, err := snapshots.Build(context.Background(), 1, "s1"); !errors.Is(err, errInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if store.rolledBack != 1 {
		t.Fatalf("expected rollback on error path, rolledBack=%d", store.rolledBack)
	}
}
