package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/supawitsnnrk/bluepi-backend/internal/adapter/handler"
	"github.com/supawitsnnrk/bluepi-backend/internal/adapter/middleware"
	"github.com/supawitsnnrk/bluepi-backend/internal/adapter/storage"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/config"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/service"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/worker"
)

func main() {
	// 1. Load Config
	cfg := config.LoadConfig()

	// 2. Setup Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 3. Connect to Database
	dbPool, err := storage.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("❌ Database connection failed", "error", err)
		os.Exit(1)
	}

	if err := storage.Migrate(context.Background(), dbPool); err != nil {
		slog.Error("❌ Database migration failed", "error", err)
		os.Exit(1)
	}

	// 4. Setup Repos, Services & Handlers
	txm := &storage.PgxTxManager{Db: dbPool}
	cashRepo := storage.NewCashRepository(dbPool)
	productRepo := storage.NewProductRepository(dbPool)
	orderRepo := storage.NewOrderRepository(dbPool)
	keyRepo := &storage.APIKeyRepository{Db: dbPool}
	outbox := &storage.WebhookOutbox{Db: dbPool}

	cashService := &service.CashService{Store: cashRepo}
	productService := &service.ProductService{Store: productRepo, Txm: txm}
	orderService := &service.OrderService{
		Orders:     orderRepo,
		Cash:       cashService,
		Products:   productService,
		Txm:        txm,
		Outbox:     outbox,
		WebhookURL: cfg.WebhookURL,
	}
	seedService := &service.SeedService{Products: productRepo, Txm: txm}

	orderHandler := &handler.OrderHandler{Service: orderService}
	cashHandler := &handler.CashHandler{Service: cashService}
	productHandler := &handler.ProductHandler{Service: productService}
	seedHandler := &handler.SeedHandler{Service: seedService}
	adminHandler := &handler.AdminHandler{Keys: keyRepo}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	// 6. Routes
	idempotent := middleware.Idempotency(dbPool)
	protected := middleware.Protected(dbPool)

	// Customer-facing
	app.Post("/orders", orderHandler.CreateOrder)
	app.Get("/orders", orderHandler.ListOrders)
	app.Post("/orders/deposit", idempotent, orderHandler.Deposit)
	app.Get("/orders/:id", orderHandler.GetOrder)
	app.Post("/orders/:id/select-product", orderHandler.SelectProduct)
	app.Post("/orders/:id/purchase", idempotent, orderHandler.Purchase)
	app.Post("/orders/:id/cancel", orderHandler.Cancel)

	app.Get("/cash/denominations", cashHandler.ListDenominations)
	app.Post("/cash/denominations/validate", cashHandler.ValidateDenomination)
	app.Post("/cash/calculate-change", cashHandler.CalculateChange)

	app.Get("/products", productHandler.ListActive)
	app.Get("/products/:id", productHandler.Get)

	// Machine maintenance (admin key required)
	app.Get("/cash/stock", protected, cashHandler.GetStock)
	app.Patch("/cash/stock/:denominationId", protected, cashHandler.AdjustStock)
	app.Post("/products", protected, productHandler.Create)
	app.Patch("/products/:id", protected, productHandler.Update)
	app.Delete("/products/:id", protected, productHandler.Delete)
	app.Patch("/products/:id/stock", protected, productHandler.AdjustStock)
	app.Post("/seed/products", protected, seedHandler.SeedProducts)

	// Key bootstrap is open in development only; in production mint keys
	// through an existing one.
	if cfg.Env == "development" {
		app.Post("/admin/keys", adminHandler.GenerateKey)
	} else {
		app.Post("/admin/keys", protected, adminHandler.GenerateKey)
	}

	// 7. Start Worker
	if cfg.WebhookURL != "" {
		worker.StartWebhookWorker(dbPool, cfg.WebhookSecret)
	}

	// Graceful shutdown: stop accepting requests, finish the active ones,
	// then close the pool.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("🚀 Server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
		}
	}()

	<-stop
	slog.Info("🛑 Shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	dbPool.Close()
	slog.Info("✅ Database connection closed")

	slog.Info("👋 Server exited successfully")
}
