package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ecommerce-backend/internal/domain"
	"github.com/google/uuid"
)

type storedLine struct {
	productID string
	quantity  int
	addedAt   time.Time
}

type storedCart struct {
	id        string
	ownerID   *string
	lines     []storedLine
	createdAt time.Time
	updatedAt time.Time
}

type memoryRepo struct {
	mu       sync.Mutex
	carts    map[string]*storedCart
	products ProductLookup
	now      func() time.Time
}

// NewMemory returns an in-process Repository that populates lines through products.
func NewMemory(products ProductLookup) Repository {
	return &memoryRepo{
		carts:    map[string]*storedCart{},
		products: products,
		now:      time.Now,
	}
}

func (r *memoryRepo) Create(ctx context.Context, ownerID *string) (*domain.Cart, error) {
	r.mu.Lock()
	now := r.now().UTC()
	c := &storedCart{id: uuid.NewString(), createdAt: now, updatedAt: now}
	if ownerID != nil {
		owner := *ownerID
		c.ownerID = &owner
	}
	r.carts[c.id] = c
	snapshot := *c
	r.mu.Unlock()
	return r.populate(ctx, &snapshot)
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	snapshot, err := r.snapshot(id)
	if err != nil {
		return nil, err
	}
	return r.populate(ctx, snapshot)
}

func (r *memoryRepo) AddLineItem(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	return r.mutate(ctx, cartID, func(c *storedCart) error {
		for i := range c.lines {
			if c.lines[i].productID == productID {
				c.lines[i].quantity += quantity
				return nil
			}
		}
		c.lines = append(c.lines, storedLine{productID: productID, quantity: quantity, addedAt: r.now().UTC()})
		return nil
	})
}

func (r *memoryRepo) RemoveLineItem(ctx context.Context, cartID, productID string) (*domain.Cart, error) {
	return r.mutate(ctx, cartID, func(c *storedCart) error {
		for i := range c.lines {
			if c.lines[i].productID == productID {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *memoryRepo) ReplaceLines(ctx context.Context, cartID string, lines []domain.CartLine) (*domain.Cart, error) {
	return r.mutate(ctx, cartID, func(c *storedCart) error {
		next := make([]storedLine, 0, len(lines))
		seen := map[string]bool{}
		now := r.now().UTC()
		for _, l := range lines {
			if l.Quantity <= 0 {
				return fmt.Errorf("line %s: quantity must be positive, got %d", l.ProductID, l.Quantity)
			}
			if seen[l.ProductID] {
				return domain.ErrAlreadyExists
			}
			seen[l.ProductID] = true
			added := l.AddedAt
			if added.IsZero() {
				added = now
			}
			next = append(next, storedLine{productID: l.ProductID, quantity: l.Quantity, addedAt: added})
		}
		c.lines = next
		return nil
	})
}

func (r *memoryRepo) AssignOwner(_ context.Context, cartID, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[cartID]
	if !ok {
		return domain.ErrNotFound
	}
	owner := ownerID
	c.ownerID = &owner
	c.updatedAt = r.now().UTC()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.carts, id)
	return nil
}

func (r *memoryRepo) mutate(ctx context.Context, cartID string, fn func(c *storedCart) error) (*domain.Cart, error) {
	r.mu.Lock()
	c, ok := r.carts[cartID]
	if !ok {
		r.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	working := copyCart(c)
	if err := fn(working); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	working.updatedAt = r.now().UTC()
	r.carts[cartID] = working
	snapshot := copyCart(working)
	r.mu.Unlock()
	return r.populate(ctx, snapshot)
}

func (r *memoryRepo) snapshot(id string) (*storedCart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyCart(c), nil
}

// populate runs outside the cart lock so product lookups never nest inside it.
func (r *memoryRepo) populate(ctx context.Context, c *storedCart) (*domain.Cart, error) {
	out := &domain.Cart{
		ID:        c.id,
		OwnerID:   c.ownerID,
		CreatedAt: c.createdAt,
		UpdatedAt: c.updatedAt,
		Lines:     make([]domain.CartLine, 0, len(c.lines)),
	}
	for _, l := range c.lines {
		line := domain.CartLine{ProductID: l.productID, Quantity: l.quantity, AddedAt: l.addedAt}
		if r.products != nil {
			p, err := r.products.GetByID(ctx, l.productID)
			switch {
			case err == nil:
				line.Product = p
			case !errors.Is(err, domain.ErrNotFound):
				return nil, fmt.Errorf("populate line %s: %w", l.productID, err)
			}
		}
		out.Lines = append(out.Lines, line)
	}
	out.TotalCents = domain.CartTotalCents(out.Lines)
	return out, nil
}

func copyCart(c *storedCart) *storedCart {
	cp := *c
	cp.lines = append([]storedLine(nil), c.lines...)
	if c.ownerID != nil {
		owner := *c.ownerID
		cp.ownerID = &owner
	}
	return &cp
}
