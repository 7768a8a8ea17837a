package product

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"ecommerce-backend/internal/domain"
	"github.com/google/uuid"
)

type memoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]domain.Product
	byCode map[string]string
	now    func() time.Time
}

// NewMemory returns a Repository kept in process memory. Stock updates are
// serialized by the repository lock.
func NewMemory() Repository {
	return &memoryRepo{
		byID:   map[string]domain.Product{},
		byCode: map[string]string{},
		now:    time.Now,
	}
}

func (r *memoryRepo) List(_ context.Context, category string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category = strings.TrimSpace(category)
	out := []domain.Product{}
	for _, p := range r.byID {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := clone(p)
	return &c, nil
}

func (r *memoryRepo) GetByCode(_ context.Context, code string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := clone(r.byID[id])
	return &c, nil
}

func (r *memoryRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := validateStored(p); err != nil {
		return nil, err
	}
	if _, taken := r.byCode[p.Code]; taken {
		return nil, domain.ErrAlreadyExists
	}
	now := r.now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.store(p)
	c := clone(p)
	return &c, nil
}

func (r *memoryRepo) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[p.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := validateStored(p); err != nil {
		return nil, err
	}
	if owner, taken := r.byCode[p.Code]; taken && owner != p.ID {
		return nil, domain.ErrAlreadyExists
	}
	delete(r.byCode, existing.Code)
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.now().UTC()
	r.store(p)
	c := clone(p)
	return &c, nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byCode, p.Code)
	return nil
}

func (r *memoryRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	id, exists := r.byCode[p.Code]
	r.mu.Unlock()
	if !exists {
		return r.Create(ctx, p)
	}
	p.ID = id
	return r.Update(ctx, p)
}

func (r *memoryRepo) GetStock(_ context.Context, id string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return p.Stock, nil
}

func (r *memoryRepo) DecrementStock(_ context.Context, id string, qty int) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("decrement quantity must be positive, got %d", qty)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if p.Stock < qty {
		return p.Stock, domain.ErrInsufficientStock
	}
	p.Stock -= qty
	p.UpdatedAt = r.now().UTC()
	r.byID[id] = p
	return p.Stock, nil
}

func (r *memoryRepo) store(p domain.Product) {
	r.byID[p.ID] = clone(p)
	r.byCode[p.Code] = p.ID
}

// validateStored mirrors the table CHECK constraints.
func validateStored(p domain.Product) error {
	if p.PriceCents < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if p.Stock < 0 {
		return fmt.Errorf("stock must not be negative")
	}
	return nil
}

func clone(p domain.Product) domain.Product {
	p.Thumbnails = slices.Clone(p.Thumbnails)
	return p
}
