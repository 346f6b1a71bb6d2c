package billing

import (
	"context"

	"github.com/splittab/table-bill-splitting/internal/model"
)

// CoveredItem names one bill item a payment covers and the portion of
// the payment credited to it.
type CoveredItem struct {
	BillItemID uint64 `json:"bill_item_id"`
	Amount     int64  `json:"amount"`
}

// SettleRequest carries one already-parsed settlement submission.
type SettleRequest struct {
	BillID    uint64
	SessionID string
	Amount    int64
	TipAmount int64
	Email     *string
	Items     []CoveredItem
}

// SettlementEngine validates and applies a payment against one or
// more bill items as a single all-or-nothing transaction.
type SettlementEngine struct {
	store Store
}

// NewSettlementEngine constructs a SettlementEngine bound to the
// given store.
func NewSettlementEngine(store Store) *SettlementEngine {
	if store == nil {
		panic("nil store passed to NewSettlementEngine")
	}
	return &SettlementEngine{store: store}
}

// Settle records a completed payment and, for every covered item,
// inserts a coverage row, credits the item's paid_amount and clears
// its lock fields regardless of which session held them. Paying for an
// item always wins over a stale claim. The whole unit commits or none
// of it does; no partial state is ever visible.
//
// The coverage amounts are deliberately not reconciled against the
// payment amount, and paid_amount may exceed price*quantity; both
// checks are left to the caller.
func (e *SettlementEngine) Settle(ctx context.Context, req SettleRequest) (uint64, error) {
	if req.BillID == 0 {
		return 0, ErrBillIDRequired
	}
	if req.SessionID == "" {
		return 0, ErrSessionIDRequired
	}
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	payment := &model.Payment{
		BillID:    req.BillID,
		SessionID: req.SessionID,
		Amount:    req.Amount,
		TipAmount: req.TipAmount,
		Email:     req.Email,
		Status:    model.PaymentStatusCompleted,
	}
	if err := tx.InsertPayment(ctx, payment); err != nil {
		return 0, err
	}
	for _, item := range req.Items {
		pi := &model.PaymentItem{
			PaymentID:  payment.ID,
			BillItemID: item.BillItemID,
			Amount:     item.Amount,
		}
		if err := tx.InsertPaymentItem(ctx, pi); err != nil {
			return 0, err
		}
		if err := tx.IncrementPaidAmount(ctx, item.BillItemID, item.Amount); err != nil {
			return 0, err
		}
		if err := tx.ClearItemLock(ctx, item.BillItemID); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return payment.ID, nil
}
