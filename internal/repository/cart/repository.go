package cart

import (
	"context"

	"ecommerce-backend/internal/domain"
)

// Repository stores carts and their ordered lines. Reads populate each line's
// product; a line whose product was deleted comes back with a nil Product.
type Repository interface {
	Create(ctx context.Context, ownerID *string) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	// AddLineItem appends a line or increments the quantity of an existing one.
	AddLineItem(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error)
	RemoveLineItem(ctx context.Context, cartID, productID string) (*domain.Cart, error)
	// ReplaceLines overwrites the cart contents with lines, in order.
	ReplaceLines(ctx context.Context, cartID string, lines []domain.CartLine) (*domain.Cart, error)
	AssignOwner(ctx context.Context, cartID, ownerID string) error
	// Delete removes the cart and its lines.
	Delete(ctx context.Context, id string) error
}

// ProductLookup resolves products when populating cart lines.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}
