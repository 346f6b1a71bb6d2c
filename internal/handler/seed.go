package handler

import (
	"net/http"

	"github.com/splittab/table-bill-splitting/internal/model"
	"github.com/splittab/table-bill-splitting/internal/repository"
	"github.com/labstack/echo/v4"
)

// SeedHandler loads the demo bill used by the reference frontend. It
// exists so a fresh environment can be exercised without an admin
// tool; real bills would arrive through the POS integration.
type SeedHandler struct {
	Store *repository.LedgerStore
}

// NewSeedHandler constructs a SeedHandler. The store must be non-nil.
func NewSeedHandler(store *repository.LedgerStore) *SeedHandler {
	if store == nil {
		panic("nil store passed to NewSeedHandler")
	}
	return &SeedHandler{Store: store}
}

// demoItems is the fixed menu of the demo bill: name, unit price in
// minor units, quantity.
var demoItems = []model.BillItem{
	{Name: "Стейк рибай", Price: 2800, Quantity: 1},
	{Name: "Салат Цезарь", Price: 650, Quantity: 2},
	{Name: "Паста карбонара", Price: 890, Quantity: 1},
	{Name: "Том Ям", Price: 750, Quantity: 1},
	{Name: "Тирамису", Price: 480, Quantity: 2},
	{Name: "Капучино", Price: 280, Quantity: 3},
}

// Seed handles POST /v1/seed. It inserts one active demo bill with
// its line items, but only when the bills table is still empty, so
// calling it repeatedly cannot duplicate data. The bill and its items
// are created in one transaction.
func (h *SeedHandler) Seed(c echo.Context) error {
	ctx := c.Request().Context()
	count, err := h.Store.Bills.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if count > 0 {
		return c.JSON(http.StatusOK, echo.Map{"message": "Database already seeded"})
	}
	tx, err := h.Store.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	bill := &model.Bill{
		RestaurantName: "Ресторан Bella Vista",
		TableNumber:    "12",
		TotalAmount:    8440,
		Status:         model.BillStatusActive,
	}
	if err := h.Store.Bills.CreateTx(ctx, tx, bill); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create bill"})
	}
	items := make([]model.BillItem, 0, len(demoItems))
	for _, it := range demoItems {
		it.BillID = bill.ID
		items = append(items, it)
	}
	if err := h.Store.Items.CreateBulkTx(ctx, tx, items); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create bill items"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Database seeded successfully",
		"bill_id": bill.ID,
	})
}
