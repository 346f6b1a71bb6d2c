package model

// Payment records one completed settlement made by a session against
// a bill.  There are no pending or failed states: a payment row exists
// only after the settlement transaction committed, with status fixed
// to "completed".  Rows are immutable after insert.
//
// Fields:
//  ID        – primary key identifier.
//  BillID    – bill the payment settles against.
//  SessionID – opaque session token of the payer.
//  Amount    – amount paid in minor currency units (excluding tip).
//  TipAmount – tip in minor currency units.
//  Email     – optional receipt address (nullable).
//  Status    – always "completed".
type Payment struct {
	ID        uint64  // payments.id
	BillID    uint64  // payments.bill_id
	SessionID string  // payments.session_id
	Amount    int64   // payments.amount
	TipAmount int64   // payments.tip_amount
	Email     *string // payments.email (nullable)
	Status    string  // payments.status
}

// PaymentStatusCompleted is the only status a payment row ever holds.
const PaymentStatusCompleted = "completed"

// PaymentItem links a payment to one bill item it covers.  The summed
// amounts of an item's payment_items rows make up its paid_amount.
//
// Fields:
//  ID         – primary key identifier.
//  PaymentID  – owning payment.
//  BillItemID – bill item covered by this portion.
//  Amount     – portion in minor currency units credited to the item.
type PaymentItem struct {
	ID         uint64 // payment_items.id
	PaymentID  uint64 // payment_items.payment_id
	BillItemID uint64 // payment_items.bill_item_id
	Amount     int64  // payment_items.amount
}
