package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/splittab/table-bill-splitting/internal/model"
)

// errInjected is returned by the stub store when a test arms failOn.
var errInjected = errors.New("injected store failure")

// stubState is the durable state behind a stubStore. Items live in a
// slice so insertion order is preserved the way the real table's
// primary key ordering preserves it.
type stubState struct {
	bills        map[uint64]model.Bill
	items        []model.BillItem
	payments     []model.Payment
	paymentItems []model.PaymentItem
	nextPayment  uint64
	nextCoverage uint64
}

func (s *stubState) clone() *stubState {
	out := &stubState{
		bills:        make(map[uint64]model.Bill, len(s.bills)),
		items:        make([]model.BillItem, len(s.items)),
		payments:     append([]model.Payment(nil), s.payments...),
		paymentItems: append([]model.PaymentItem(nil), s.paymentItems...),
		nextPayment:  s.nextPayment,
		nextCoverage: s.nextCoverage,
	}
	for id, b := range s.bills {
		out.bills[id] = b
	}
	for i, it := range s.items {
		copied := it
		if it.LockedBySession != nil {
			v := *it.LockedBySession
			copied.LockedBySession = &v
		}
		if it.LockedAt != nil {
			v := *it.LockedAt
			copied.LockedAt = &v
		}
		out.items[i] = copied
	}
	return out
}

func (s *stubState) find(itemID uint64) *model.BillItem {
	for i := range s.items {
		if s.items[i].ID == itemID {
			return &s.items[i]
		}
	}
	return nil
}

// stubStore implements Store in memory with the same transactional
// shape as the MySQL store: every Tx works on a copy of the state and
// only Commit publishes it, so a rollback leaves no trace.
type stubStore struct {
	state      *stubState
	begun      int
	committed  int
	rolledBack int
	failOn     string // name of the Tx method that should fail
}

// newStubStore seeds the fixture used across the core tests: an
// active bill 1 with two items, and a closed bill 2.
func newStubStore() *stubStore {
	return &stubStore{
		state: &stubState{
			bills: map[uint64]model.Bill{
				1: {ID: 1, RestaurantName: "Bella Vista", TableNumber: "12", TotalAmount: 2300, Status: model.BillStatusActive},
				2: {ID: 2, RestaurantName: "Bella Vista", TableNumber: "3", TotalAmount: 500, Status: "closed"},
			},
			items: []model.BillItem{
				{ID: 11, BillID: 1, Name: "Ribeye", Price: 1000, Quantity: 1},
				{ID: 12, BillID: 1, Name: "Caesar", Price: 650, Quantity: 2},
			},
		},
	}
}

func (s *stubStore) Begin(ctx context.Context) (Tx, error) {
	if s.failOn == "Begin" {
		return nil, errInjected
	}
	s.begun++
	return &stubTx{store: s, state: s.state.clone()}, nil
}

// item returns the committed state of one item, panicking on unknown
// IDs so tests fail loudly.
func (s *stubStore) item(itemID uint64) model.BillItem {
	it := s.state.find(itemID)
	if it == nil {
		panic(fmt.Sprintf("unknown item %d", itemID))
	}
	return *it
}

type stubTx struct {
	store *stubStore
	state *stubState
	done  bool
}

func (t *stubTx) fail(method string) bool { return t.store.failOn == method }

func (t *stubTx) ActiveBill(ctx context.Context, billID uint64) (model.Bill, error) {
	if t.fail("ActiveBill") {
		return model.Bill{}, errInjected
	}
	b, ok := t.state.bills[billID]
	if !ok || b.Status != model.BillStatusActive {
		return model.Bill{}, ErrBillNotFound
	}
	return b, nil
}

func (t *stubTx) ItemsByBill(ctx context.Context, billID uint64) ([]model.BillItem, error) {
	if t.fail("ItemsByBill") {
		return nil, errInjected
	}
	var out []model.BillItem
	for _, it := range t.state.items {
		if it.BillID == billID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (t *stubTx) AcquireItemLock(ctx context.Context, billID, itemID uint64, sessionID string, now time.Time) (bool, error) {
	if t.fail("AcquireItemLock") {
		return false, errInjected
	}
	it := t.state.find(itemID)
	if it == nil || it.BillID != billID {
		return false, nil
	}
	if it.LockedBySession != nil && *it.LockedBySession != sessionID {
		return false, nil
	}
	session := sessionID
	at := now
	it.LockedBySession = &session
	it.LockedAt = &at
	return true, nil
}

func (t *stubTx) ReleaseItemLock(ctx context.Context, itemID uint64, sessionID string) error {
	if t.fail("ReleaseItemLock") {
		return errInjected
	}
	it := t.state.find(itemID)
	if it == nil || it.LockedBySession == nil || *it.LockedBySession != sessionID {
		return nil
	}
	it.LockedBySession = nil
	it.LockedAt = nil
	return nil
}

func (t *stubTx) ClearItemLock(ctx context.Context, itemID uint64) error {
	if t.fail("ClearItemLock") {
		return errInjected
	}
	if it := t.state.find(itemID); it != nil {
		it.LockedBySession = nil
		it.LockedAt = nil
	}
	return nil
}

func (t *stubTx) InsertPayment(ctx context.Context, p *model.Payment) error {
	if t.fail("InsertPayment") {
		return errInjected
	}
	t.state.nextPayment++
	p.ID = t.state.nextPayment
	t.state.payments = append(t.state.payments, *p)
	return nil
}

func (t *stubTx) InsertPaymentItem(ctx context.Context, pi *model.PaymentItem) error {
	if t.fail("InsertPaymentItem") {
		return errInjected
	}
	t.state.nextCoverage++
	pi.ID = t.state.nextCoverage
	t.state.paymentItems = append(t.state.paymentItems, *pi)
	return nil
}

func (t *stubTx) IncrementPaidAmount(ctx context.Context, itemID uint64, delta int64) error {
	if t.fail("IncrementPaidAmount") {
		return errInjected
	}
	if it := t.state.find(itemID); it != nil {
		it.PaidAmount += delta
	}
	return nil
}

func (t *stubTx) Commit() error {
	if t.fail("Commit") {
		return errInjected
	}
	t.done = true
	t.store.state = t.state
	t.store.committed++
	return nil
}

func (t *stubTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.rolledBack++
	return nil
}
