// Package queue defines message payloads exchanged over the message broker.
package queue

// PaymentCompletedEvent is published after a settlement transaction
// commits. It carries enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.
type PaymentCompletedEvent struct {
	PaymentID uint64 `json:"payment_id"`
	BillID    uint64 `json:"bill_id"`
	SessionID string `json:"session_id"`
	Amount    int64  `json:"amount"`
	TipAmount int64  `json:"tip_amount"`
	ItemCount int    `json:"item_count"`
	PaidAt    string `json:"paid_at"`
}
