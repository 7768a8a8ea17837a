package product

import (
	"context"

	"ecommerce-backend/internal/domain"
)

// Repository persists the catalog and owns the stock counter of every product.
type Repository interface {
	// List returns products newest first, optionally restricted to a category (case-insensitive).
	List(ctx context.Context, category string) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByCode(ctx context.Context, code string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	// Upsert inserts or updates by code.
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)

	GetStock(ctx context.Context, id string) (int, error)
	// DecrementStock subtracts qty only when enough stock remains and returns the
	// new level. On domain.ErrInsufficientStock the returned int is the current stock.
	DecrementStock(ctx context.Context, id string, qty int) (int, error)
}
