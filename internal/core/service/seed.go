package service

import (
	"context"
	"log/slog"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/port"
)

// SeedService creates demo products for development and testing.
// Denominations and cash stock are seeded by the schema bootstrap.
type SeedService struct {
	Products port.ProductStore
	Txm      port.TxManager
}

type SeedResult struct {
	Message             string `json:"message"`
	ProductsCreated     int    `json:"productsCreated"`
	ProductStockCreated int    `json:"productStockCreated"`
}

const seedStockPerProduct = 20

var demoProducts = []domain.Product{
	{Name: "Coca Cola", Price: 20, SKU: "COKE-001"},
	{Name: "Pepsi", Price: 20, SKU: "PEPSI-001"},
	{Name: "Water", Price: 10, SKU: "WATER-001"},
	{Name: "Green Tea", Price: 25, SKU: "TEA-001"},
	{Name: "Lays Chips", Price: 15, SKU: "CHIPS-001"},
	{Name: "Snickers", Price: 30, SKU: "SNICK-001"},
	{Name: "KitKat", Price: 25, SKU: "KITKAT-001"},
}

// SeedDemoProducts inserts the demo catalog with initial stock, all in one
// transaction. Skips when any product already exists to stay idempotent.
func (s *SeedService) SeedDemoProducts(ctx context.Context) (SeedResult, error) {
	count, err := s.Products.Count(ctx)
	if err != nil {
		return SeedResult{}, err
	}
	if count > 0 {
		slog.Warn("products already exist, skipping seed", "count", count)
		return SeedResult{Message: "Demo products already exist. Skipping seed."}, nil
	}

	err = s.Txm.WithinTx(ctx, func(tx port.Tx) error {
		for _, demo := range demoProducts {
			demo.Active = true
			p, err := s.Products.Create(ctx, tx, demo)
			if err != nil {
				return err
			}
			if _, err := s.Products.Adjust(ctx, tx, p.ID, seedStockPerProduct); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	slog.Info("demo products seeded", "products", len(demoProducts))
	return SeedResult{
		Message:             "Demo products created",
		ProductsCreated:     len(demoProducts),
		ProductStockCreated: len(demoProducts),
	}, nil
}
