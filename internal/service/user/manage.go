package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecommerce-backend/internal/domain"
	"go.uber.org/zap"
)

// UpdateInput carries the profile fields a PUT may change. Nil fields are left as they are.
type UpdateInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Age       *int    `json:"age"`
	Role      *string `json:"role"`
}

// List returns every account.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies in to the account id. Only admins may change a role.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput, actor domain.User) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
		if u.FirstName == "" {
			return nil, fmt.Errorf("%w: first name cannot be empty", domain.ErrInvalidInput)
		}
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
		if u.LastName == "" {
			return nil, fmt.Errorf("%w: last name cannot be empty", domain.ErrInvalidInput)
		}
	}
	if in.Age != nil {
		if *in.Age < minAge {
			return nil, fmt.Errorf("%w: must be at least %d years old", domain.ErrInvalidInput, minAge)
		}
		u.Age = *in.Age
	}
	if in.Role != nil && *in.Role != u.Role {
		if !actor.IsAdmin() {
			return nil, domain.ErrForbidden
		}
		if *in.Role != domain.RoleUser && *in.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *in.Role)
		}
		u.Role = *in.Role
	}

	updated, err := s.repo.Update(ctx, *u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("updated user",
		zap.String("user_id", updated.ID),
		zap.String("actor_id", actor.ID),
		zap.String("role", updated.Role),
	)
	return updated, nil
}

// Delete removes the account id together with its cart.
func (s *Service) Delete(ctx context.Context, id string) error {
	u, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if u.CartID != "" {
		if err := s.carts.Delete(ctx, u.CartID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete cart %s: %w", u.CartID, err)
		}
	}
	s.logger.Info("deleted user", zap.String("user_id", u.ID), zap.String("cart_id", u.CartID))
	return nil
}
