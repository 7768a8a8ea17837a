package pet

import (
	"context"

	"ecommerce-backend/internal/domain"
)

// Repository stores pets and records adoptions.
type Repository interface {
	// List returns pets oldest first. A non-nil adopted restricts the result
	// to adopted or available pets.
	List(ctx context.Context, adopted *bool) ([]domain.Pet, error)
	GetByID(ctx context.Context, id string) (*domain.Pet, error)
	Create(ctx context.Context, p domain.Pet) (*domain.Pet, error)
	// Adopt marks the pet adopted by ownerID. It fails with
	// domain.ErrAlreadyAdopted when the pet already has an owner.
	Adopt(ctx context.Context, petID, ownerID string) (*domain.Pet, error)
}
