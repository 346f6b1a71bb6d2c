package model

import "time"

// BillItem is one orderable line entry on a bill.  Besides price and
// quantity it carries the cumulative paid amount and the lock fields
// that implement temporary per-session claims.  LockedBySession and
// LockedAt are either both nil or both set; a lock older than the
// claim TTL reads as unlocked and is cleared lazily on next access.
//
// Fields:
//  ID              – primary key identifier.
//  BillID          – owning bill.
//  Name            – dish name shown to diners.
//  Price           – unit price in minor currency units.
//  Quantity        – number of units ordered.
//  PaidAmount      – cumulative amount settled against this item.
//  LockedBySession – session currently claiming the item (nullable).
//  LockedAt        – when the claim was taken (nullable).
type BillItem struct {
	ID              uint64     // bill_items.id
	BillID          uint64     // bill_items.bill_id
	Name            string     // bill_items.name
	Price           int64      // bill_items.price
	Quantity        int64      // bill_items.quantity
	PaidAmount      int64      // bill_items.paid_amount
	LockedBySession *string    // bill_items.locked_by_session (nullable)
	LockedAt        *time.Time // bill_items.locked_at (nullable)
}

// RemainingAmount is the derived unpaid balance of the item.  It is
// computed, never stored.
func (i BillItem) RemainingAmount() int64 {
	return i.Price*i.Quantity - i.PaidAmount
}
