package ticket

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ecommerce-backend/internal/domain"
	"github.com/google/uuid"
)

type memoryRepo struct {
	mu     sync.RWMutex
	byCode map[string]domain.Ticket
	now    func() time.Time
}

func NewMemory() Repository {
	return &memoryRepo{byCode: map[string]domain.Ticket{}, now: time.Now}
}

func (r *memoryRepo) Create(_ context.Context, t domain.Ticket) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byCode[t.Code]; taken {
		return nil, domain.ErrAlreadyExists
	}
	t.ID = uuid.NewString()
	t.CreatedAt = r.now().UTC()
	t.Lines = append([]domain.TicketLine{}, t.Lines...)
	r.byCode[t.Code] = t
	out := copyTicket(t)
	return &out, nil
}

func (r *memoryRepo) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyTicket(t)
	return &out, nil
}

func (r *memoryRepo) ListByPurchaser(_ context.Context, purchaser string) ([]domain.Ticket, error) {
	return r.filter(func(t domain.Ticket) bool { return strings.EqualFold(t.Purchaser, purchaser) }), nil
}

func (r *memoryRepo) List(_ context.Context) ([]domain.Ticket, error) {
	return r.filter(func(domain.Ticket) bool { return true }), nil
}

func (r *memoryRepo) filter(keep func(domain.Ticket) bool) []domain.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Ticket{}
	for _, t := range r.byCode {
		if keep(t) {
			out = append(out, copyTicket(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PurchasedAt.Equal(out[j].PurchasedAt) {
			return out[i].PurchasedAt.After(out[j].PurchasedAt)
		}
		return out[i].Code > out[j].Code
	})
	return out
}

func copyTicket(t domain.Ticket) domain.Ticket {
	t.Lines = append([]domain.TicketLine{}, t.Lines...)
	return t
}
