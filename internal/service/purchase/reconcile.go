package purchase

import (
	"context"

	"ecommerce-backend/internal/domain"
)

type cartWriter interface {
	ReplaceLines(ctx context.Context, cartID string, lines []domain.CartLine) (*domain.Cart, error)
}

// RewriteCart replaces the cart contents with retained, in order, and returns
// the cart with its total recomputed. Repeating the call with the same lines
// leaves the cart unchanged.
func RewriteCart(ctx context.Context, carts cartWriter, cartID string, retained []domain.CartLine) (*domain.Cart, error) {
	lines := make([]domain.CartLine, 0, len(retained))
	for _, l := range retained {
		lines = append(lines, domain.CartLine{ProductID: l.ProductID, Quantity: l.Quantity, AddedAt: l.AddedAt})
	}
	return carts.ReplaceLines(ctx, cartID, lines)
}
