package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/splittab/table-bill-splitting/internal/billing"
	"github.com/labstack/echo/v4"
)

// sessionHeader carries the opaque caller-supplied session token. It
// identifies one device at the table and is never verified.
const sessionHeader = "X-Session-Id"

// BillHandler exposes the bill splitting operations over HTTP. It owns
// no business logic: requests are parsed and validated here, handed to
// the billing core, and the core's plain results and errors are
// translated back into JSON responses.
type BillHandler struct {
	Snapshots  *billing.SnapshotBuilder
	Locks      *billing.LockManager
	Settlement *billing.SettlementEngine
}

// NewBillHandler constructs a BillHandler with the provided core
// services. All dependencies must be non-nil.
func NewBillHandler(snapshots *billing.SnapshotBuilder, locks *billing.LockManager, settlement *billing.SettlementEngine) *BillHandler {
	if snapshots == nil || locks == nil || settlement == nil {
		panic("nil service passed to NewBillHandler")
	}
	return &BillHandler{Snapshots: snapshots, Locks: locks, Settlement: settlement}
}

// sessionID extracts the session token from the request header. It may
// be empty on reads; state-changing operations reject empty tokens in
// the core.
func sessionID(c echo.Context) string {
	return c.Request().Header.Get(sessionHeader)
}

// billID parses the :id path parameter.
func billID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid bill id")
	}
	return id, nil
}

// GetBill handles GET /v1/bills/:id. It returns the active bill and
// its items with each item's effective lock status relative to the
// requesting session. Reading lazily clears expired claims, so the
// response always reflects live lock state.
func (h *BillHandler) GetBill(c echo.Context) error {
	id, err := billID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bill_id is required"})
	}
	bill, items, err := h.Snapshots.Build(c.Request().Context(), id, sessionID(c))
	if err != nil {
		if errors.Is(err, billing.ErrBillNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Bill not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bill":  bill,
		"items": items,
	})
}

// LockItems handles POST /v1/bills/:id/lock. The lock is best-effort:
// items already claimed by another diner are skipped rather than
// errored on, and the per-item outcome is returned so the client can
// refresh its view.
func (h *BillHandler) LockItems(c echo.Context) error {
	id, err := billID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bill_id is required"})
	}
	var body struct {
		ItemIDs []uint64 `json:"item_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	grants, err := h.Locks.Acquire(c.Request().Context(), id, sessionID(c), body.ItemIDs)
	if err != nil {
		if errors.Is(err, billing.ErrSessionIDRequired) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Session ID required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	granted := make([]uint64, 0, len(grants))
	skipped := make([]uint64, 0)
	for _, g := range grants {
		if g.Granted {
			granted = append(granted, g.ItemID)
		} else {
			skipped = append(skipped, g.ItemID)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"granted": granted,
		"skipped": skipped,
	})
}

// UnlockItems handles POST /v1/bills/:id/unlock. Only the session's
// own claims are released; everything else is a no-op.
func (h *BillHandler) UnlockItems(c echo.Context) error {
	if _, err := billID(c); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bill_id is required"})
	}
	var body struct {
		ItemIDs []uint64 `json:"item_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Locks.Release(c.Request().Context(), sessionID(c), body.ItemIDs); err != nil {
		if errors.Is(err, billing.ErrSessionIDRequired) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Session ID required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// CreatePayment handles POST /v1/bills/:id/payments. The settlement
// commits as one unit: the payment row, its coverage rows, the
// paid_amount credits and the unconditional lock clears all land
// together or not at all. Coverage amounts are recorded as submitted;
// the core does not reconcile them against the payment amount.
func (h *BillHandler) CreatePayment(c echo.Context) error {
	id, err := billID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bill_id is required"})
	}
	var body struct {
		Amount    int64                 `json:"amount"`
		TipAmount int64                 `json:"tip_amount"`
		Email     *string               `json:"email"`
		Items     []billing.CoveredItem `json:"items"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	paymentID, err := h.Settlement.Settle(c.Request().Context(), billing.SettleRequest{
		BillID:    id,
		SessionID: sessionID(c),
		Amount:    body.Amount,
		TipAmount: body.TipAmount,
		Email:     body.Email,
		Items:     body.Items,
	})
	if err != nil {
		if errors.Is(err, billing.ErrSessionIDRequired) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Session ID required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	afterSettlement(id, sessionID(c), paymentID, body.Amount, body.TipAmount, len(body.Items))
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"payment_id": paymentID,
	})
}
