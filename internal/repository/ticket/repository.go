package ticket

import (
	"context"

	"ecommerce-backend/internal/domain"
)

// Repository persists tickets together with their lines.
type Repository interface {
	// Create stores t and its lines atomically. A duplicate code yields domain.ErrAlreadyExists.
	Create(ctx context.Context, t domain.Ticket) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	// ListByPurchaser returns the purchaser's tickets, newest first.
	ListByPurchaser(ctx context.Context, purchaser string) ([]domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
}
