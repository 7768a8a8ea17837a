package pet

import (
	"context"
	"sort"
	"sync"
	"time"

	"ecommerce-backend/internal/domain"
	"github.com/google/uuid"
)

type memoryRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Pet
	now  func() time.Time
}

// NewMemory returns a Repository kept in process memory.
func NewMemory() Repository {
	return &memoryRepo{byID: map[string]domain.Pet{}, now: time.Now}
}

func (r *memoryRepo) List(_ context.Context, adopted *bool) ([]domain.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pets := []domain.Pet{}
	for _, p := range r.byID {
		if adopted != nil && p.Adopted != *adopted {
			continue
		}
		pets = append(pets, clone(p))
	}
	sort.Slice(pets, func(i, j int) bool {
		if !pets[i].CreatedAt.Equal(pets[j].CreatedAt) {
			return pets[i].CreatedAt.Before(pets[j].CreatedAt)
		}
		return pets[i].ID < pets[j].ID
	})
	return pets, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = clone(p)
	return &p, nil
}

func (r *memoryRepo) Create(_ context.Context, p domain.Pet) (*domain.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	p.ID = uuid.NewString()
	p.Adopted = false
	p.OwnerID = nil
	p.AdoptedAt = nil
	p.CreatedAt = now
	p.UpdatedAt = now
	r.byID[p.ID] = p
	return &p, nil
}

func (r *memoryRepo) Adopt(_ context.Context, petID, ownerID string) (*domain.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[petID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.Adopted {
		return nil, domain.ErrAlreadyAdopted
	}
	now := r.now().UTC()
	owner := ownerID
	p.Adopted = true
	p.OwnerID = &owner
	p.AdoptedAt = &now
	p.UpdatedAt = now
	r.byID[petID] = p
	p = clone(p)
	return &p, nil
}

func clone(p domain.Pet) domain.Pet {
	if p.OwnerID != nil {
		owner := *p.OwnerID
		p.OwnerID = &owner
	}
	if p.AdoptedAt != nil {
		at := *p.AdoptedAt
		p.AdoptedAt = &at
	}
	return p
}
