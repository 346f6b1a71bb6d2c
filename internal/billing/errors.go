// Package billing implements the item-claiming and settlement core of
// the bill splitting service. This file defines sentinel error values
// shared by the lock manager, snapshot builder and settlement engine.
// Handlers translate them into HTTP responses: validation sentinels
// become 400, ErrBillNotFound becomes 404 and anything else is treated
// as a store failure worth a 500 and a client retry.
package billing

import "errors"

// ErrBillNotFound is returned when the requested bill does not exist
// or is not in the "active" status. Handlers should translate this
// into an HTTP 404 response.
var ErrBillNotFound = errors.New("bill not found")

// ErrBillIDRequired is returned when an operation is invoked without
// a bill identifier. No transaction is opened in that case.
var ErrBillIDRequired = errors.New("bill_id is required")

// ErrSessionIDRequired is returned when a state-changing operation is
// invoked without a session token. Lock contention itself is never an
// error: items held by another session are silently skipped and the
// caller discovers the outcome by re-reading the snapshot.
var ErrSessionIDRequired = errors.New("session id required")
