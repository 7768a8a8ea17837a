package cart

import (
	"context"
	"errors"
	"fmt"

	"ecommerce-backend/internal/domain"
)

type Service struct {
	repo        cartRepo
	productRepo productRepo
}

type cartRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	AddLineItem(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error)
	RemoveLineItem(ctx context.Context, cartID, productID string) (*domain.Cart, error)
	ReplaceLines(ctx context.Context, cartID string, lines []domain.CartLine) (*domain.Cart, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartRepo, productRepo productRepo) *Service {
	return &Service{repo: repo, productRepo: productRepo}
}

func (s *Service) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	return s.repo.GetByID(ctx, cartID)
}

// AddProduct adds quantity units of a product, refusing when the cart would
// hold more than the product's current stock. Stock is not reserved here.
func (s *Service) AddProduct(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}
	cart, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		return nil, err
	}
	if !product.Active {
		return nil, fmt.Errorf("%w: product %s is not available", domain.ErrInvalidInput, product.Code)
	}

	inCart := 0
	for _, l := range cart.Lines {
		if l.ProductID == productID {
			inCart = l.Quantity
			break
		}
	}
	if inCart+quantity > product.Stock {
		return nil, fmt.Errorf("%w: %d available, %d requested", domain.ErrInsufficientStock, product.Stock, inCart+quantity)
	}
	return s.repo.AddLineItem(ctx, cartID, productID, quantity)
}

func (s *Service) RemoveProduct(ctx context.Context, cartID, productID string) (*domain.Cart, error) {
	return s.repo.RemoveLineItem(ctx, cartID, productID)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, cartID string) (*domain.Cart, error) {
	return s.repo.ReplaceLines(ctx, cartID, nil)
}
