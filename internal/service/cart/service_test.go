package cart

import (
	"context"
	"errors"
	"testing"

	"ecommerce-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	cart        *domain.Cart
	getErr      error
	addErr      error
	lastAddCart string
	lastAddPID  string
	lastAddQty  int
	replaced    []domain.CartLine
	replaceCall int
}

func (s *stubRepo) GetByID(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.getErr
}

func (s *stubRepo) AddLineItem(_ context.Context, cartID, productID string, quantity int) (*domain.Cart, error) {
	s.lastAddCart = cartID
	s.lastAddPID = productID
	s.lastAddQty = quantity
	return s.cart, s.addErr
}

func (s *stubRepo) RemoveLineItem(_ context.Context, _, _ string) (*domain.Cart, error) {
	return s.cart, nil
}

func (s *stubRepo) ReplaceLines(_ context.Context, _ string, lines []domain.CartLine) (*domain.Cart, error) {
	s.replaceCall++
	s.replaced = lines
	return &domain.Cart{ID: s.cart.ID, Lines: []domain.CartLine{}}, nil
}

type stubProductRepo struct {
	product *domain.Product
	err     error
}

func (s *stubProductRepo) GetByID(_ context.Context, _ string) (*domain.Product, error) {
	return s.product, s.err
}

func TestAddProductChecksStockIncludingExistingLine(t *testing.T) {
	repo := &stubRepo{cart: &domain.Cart{ID: "c1", Lines: []domain.CartLine{{ProductID: "p1", Quantity: 2}}}}
	products := &stubProductRepo{product: &domain.Product{ID: "p1", Code: "P1", Stock: 3, Active: true}}
	svc := New(repo, products)

	_, err := svc.AddProduct(context.Background(), "c1", "p1", 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, repo.lastAddCart)

	_, err = svc.AddProduct(context.Background(), "c1", "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, "c1", repo.lastAddCart)
	assert.Equal(t, "p1", repo.lastAddPID)
	assert.Equal(t, 1, repo.lastAddQty)
}

func TestAddProductValidation(t *testing.T) {
	repo := &stubRepo{cart: &domain.Cart{ID: "c1"}}

	_, err := New(repo, &stubProductRepo{}).AddProduct(context.Background(), "c1", "p1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New(repo, &stubProductRepo{err: domain.ErrNotFound}).AddProduct(context.Background(), "c1", "p1", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	inactive := &stubProductRepo{product: &domain.Product{ID: "p1", Stock: 10}}
	_, err = New(repo, inactive).AddProduct(context.Background(), "c1", "p1", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	missingCart := &stubRepo{getErr: domain.ErrNotFound}
	_, err = New(missingCart, &stubProductRepo{}).AddProduct(context.Background(), "c1", "p1", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddProductPropagatesRepoError(t *testing.T) {
	boom := errors.New("boom")
	repo := &stubRepo{cart: &domain.Cart{ID: "c1"}, addErr: boom}
	products := &stubProductRepo{product: &domain.Product{ID: "p1", Stock: 5, Active: true}}

	_, err := New(repo, products).AddProduct(context.Background(), "c1", "p1", 1)
	assert.ErrorIs(t, err, boom)
}

func TestClearReplacesWithNoLines(t *testing.T) {
	repo := &stubRepo{cart: &domain.Cart{ID: "c1"}}
	got, err := New(repo, &stubProductRepo{}).Clear(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.replaceCall)
	assert.Nil(t, repo.replaced)
	assert.Empty(t, got.Lines)
}
