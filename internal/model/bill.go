package model

// Bill represents a restaurant table's aggregate check.  Bills are
// created by the seed/admin path and are read-only to the splitting
// core.  Only bills with status "active" are visible to diners.
//
// Fields:
//  ID             – primary key identifier.
//  RestaurantName – display name of the restaurant.
//  TableNumber    – table the bill belongs to.
//  TotalAmount    – full bill amount in minor currency units.
//  Status         – bill state ("active" or "closed").
type Bill struct {
	ID             uint64 `json:"id"`              // bills.id
	RestaurantName string `json:"restaurant_name"` // bills.restaurant_name
	TableNumber    string `json:"table_number"`    // bills.table_number
	TotalAmount    int64  `json:"total_amount"`    // bills.total_amount
	Status         string `json:"status"`          // bills.status
}

// BillStatusActive is the only status under which a bill is visible
// to callers of the splitting API.
const BillStatusActive = "active"
