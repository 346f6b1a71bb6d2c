package main // Entry point package

import (
	"log" // Logging library

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/splittab/table-bill-splitting/internal/billing"    // Item claiming and settlement core
	"github.com/splittab/table-bill-splitting/internal/config"     // Internal config loader
	"github.com/splittab/table-bill-splitting/internal/database"   // MySQL connection helper
	"github.com/splittab/table-bill-splitting/internal/handler"    // HTTP handlers
	"github.com/splittab/table-bill-splitting/internal/queue"      // Payment event consumer
	"github.com/splittab/table-bill-splitting/internal/repository" // MySQL ledger store
	"github.com/splittab/table-bill-splitting/internal/router"     // Route registration
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}

	store := repository.NewLedgerStore(db)
	locks := billing.NewLockManager(store)
	snapshots := billing.NewSnapshotBuilder(store, locks)
	settlement := billing.NewSettlementEngine(store)

	bills := handler.NewBillHandler(snapshots, locks, settlement)
	seed := handler.NewSeedHandler(store)

	// Redis backs the rate limiter; nil disables it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}

	// Consume payment.completed events in the background. The consumer
	// reconnects on its own and never brings down the server.
	go func() {
		if err := queue.StartPaymentConsumer(); err != nil {
			log.Printf("payment consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e, bills, seed, rdb)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
