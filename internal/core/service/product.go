package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/port"
)

// ProductService owns the product catalog and per-product stock counts.
type ProductService struct {
	Store port.ProductStore
	Txm   port.TxManager
}

type CreateProductInput struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	SKU   string `json:"sku"`
}

type UpdateProductInput struct {
	Name   *string `json:"name,omitempty"`
	Price  *int64  `json:"price,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Create inserts a product and its stock row (at zero) in one transaction.
func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	if in.Name == "" {
		return domain.Product{}, domain.InvalidArgument("product name is required")
	}
	if in.Price <= 0 {
		return domain.Product{}, domain.InvalidArgument("product price must be greater than 0")
	}
	if in.SKU == "" {
		return domain.Product{}, domain.InvalidArgument("product sku is required")
	}

	var out domain.Product
	err := s.Txm.WithinTx(ctx, func(tx port.Tx) error {
		var err error
		out, err = s.Store.Create(ctx, tx, domain.Product{
			Name:   in.Name,
			Price:  in.Price,
			SKU:    in.SKU,
			Active: true,
		})
		return err
	})
	return out, err
}

func (s *ProductService) ListActive(ctx context.Context) ([]domain.Product, error) {
	return s.Store.ListActive(ctx)
}

// Get returns the product with its current stock.
func (s *ProductService) Get(ctx context.Context, tx port.Tx, id uuid.UUID) (domain.Product, error) {
	return s.Store.Get(ctx, tx, id)
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, in UpdateProductInput) (domain.Product, error) {
	var out domain.Product
	err := s.Txm.WithinTx(ctx, func(tx port.Tx) error {
		p, err := s.Store.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Price != nil {
			if *in.Price <= 0 {
				return domain.InvalidArgument("product price must be greater than 0")
			}
			p.Price = *in.Price
		}
		if in.Active != nil {
			p.Active = *in.Active
		}
		if err := s.Store.Save(ctx, tx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// Deactivate soft-deletes a product. The row stays referenced by order
// history, so the catalog only flips the active flag.
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.Txm.WithinTx(ctx, func(tx port.Tx) error {
		p, err := s.Store.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		p.Active = false
		return s.Store.Save(ctx, tx, p)
	})
}

// Adjust applies deltaQty to the product's stock. Pass the surrounding
// transaction when part of a larger atomic operation.
func (s *ProductService) Adjust(ctx context.Context, tx port.Tx, productID uuid.UUID, deltaQty int) (domain.ProductStock, error) {
	return s.Store.Adjust(ctx, tx, productID, deltaQty)
}
