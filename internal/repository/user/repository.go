package user

import (
	"context"

	"ecommerce-backend/internal/domain"
)

// Repository persists and fetches users. Emails are stored lower-cased.
type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// SetCart links the user to the cart created for them.
	SetCart(ctx context.Context, userID, cartID string) error
	// List returns every user, oldest first.
	List(ctx context.Context) ([]domain.User, error)
	// Update overwrites the profile fields (names, age, role) of u.ID.
	Update(ctx context.Context, u domain.User) (*domain.User, error)
	// Delete removes the user and returns the row as it was, so callers can
	// clean up the user's cart.
	Delete(ctx context.Context, id string) (*domain.User, error)
}
