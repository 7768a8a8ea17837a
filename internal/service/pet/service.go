package pet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/logging"
	petrepo "ecommerce-backend/internal/repository/pet"
	"go.uber.org/zap"
)

type userLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Service lists pets and records adoptions.
type Service struct {
	repo   petrepo.Repository
	users  userLookup
	logger *zap.Logger
}

func New(repo petrepo.Repository, users userLookup, logger *zap.Logger) *Service {
	return &Service{repo: repo, users: users, logger: logging.OrNop(logger).Named("pet_service")}
}

type CreateInput struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Age     int    `json:"age"`
}

// List returns every pet, or only adopted or available ones when adopted is set.
func (s *Service) List(ctx context.Context, adopted *bool) ([]domain.Pet, error) {
	return s.repo.List(ctx, adopted)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Pet, error) {
	p := domain.Pet{
		Name:    strings.TrimSpace(in.Name),
		Species: strings.ToLower(strings.TrimSpace(in.Species)),
		Age:     in.Age,
	}
	switch {
	case p.Name == "":
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case p.Species == "":
		return nil, fmt.Errorf("%w: species is required", domain.ErrInvalidInput)
	case p.Age < 0:
		return nil, fmt.Errorf("%w: age cannot be negative", domain.ErrInvalidInput)
	}
	return s.repo.Create(ctx, p)
}

// Adopt hands petID over to userID. Both must exist and the pet must still be available.
func (s *Service) Adopt(ctx context.Context, userID, petID string) (*domain.Pet, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		return nil, err
	}
	p, err := s.repo.Adopt(ctx, petID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("pet %s: %w", petID, domain.ErrNotFound)
		}
		return nil, err
	}
	logging.FromContext(ctx, s.logger).Info("pet adopted",
		zap.String("pet_id", p.ID),
		zap.String("user_id", userID),
	)
	return p, nil
}

// Adoptions lists adopted pets.
func (s *Service) Adoptions(ctx context.Context) ([]domain.Pet, error) {
	adopted := true
	return s.repo.List(ctx, &adopted)
}

// Adoption returns an adopted pet. Pets that are still available are reported as not found.
func (s *Service) Adoption(ctx context.Context, petID string) (*domain.Pet, error) {
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return nil, err
	}
	if !p.Adopted {
		return nil, fmt.Errorf("adoption for pet %s: %w", petID, domain.ErrNotFound)
	}
	return p, nil
}
