package ticket

import (
	"context"
	"testing"
	"time"

	"ecommerce-backend/internal/db/dbtest"
	"ecommerce-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	testTickets(t, NewMemory())
}

func TestPostgres(t *testing.T) {
	pool := dbtest.Pool(t)
	testTickets(t, NewPostgres(pool, nil))
}

func testTickets(t *testing.T, repo Repository) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	teeID, mugID := uuid.NewString(), uuid.NewString()

	first := domain.Ticket{
		Code:        "TICKET-1-AAAAAA",
		PurchasedAt: base,
		Purchaser:   "ana@example.com",
		Status:      domain.TicketCompleted,
		Lines: []domain.TicketLine{
			{ProductID: teeID, Title: "Tee", Quantity: 2, UnitPriceCents: 2000},
			{ProductID: mugID, Title: "Mug", Quantity: 1, UnitPriceCents: 1000},
		},
		AmountCents: 5000,
	}
	created, err := repo.Create(ctx, first)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Len(t, created.Lines, 2)

	dup := first
	dup.Purchaser = "other@example.com"
	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = repo.Create(ctx, domain.Ticket{
		Code: "TICKET-2-BBBBBB", PurchasedAt: base.Add(time.Minute), Purchaser: "ANA@example.com",
		Status: domain.TicketCompleted, AmountCents: 1000,
		Lines: []domain.TicketLine{{ProductID: mugID, Title: "Mug", Quantity: 1, UnitPriceCents: 1000}},
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.Ticket{
		Code: "TICKET-3-CCCCCC", PurchasedAt: base, Purchaser: "bo@example.com",
		Status: domain.TicketPending, AmountCents: 2000,
		Lines: []domain.TicketLine{{ProductID: teeID, Title: "Tee", Quantity: 1, UnitPriceCents: 2000}},
	})
	require.NoError(t, err)

	got, err := repo.GetByCode(ctx, first.Code)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Purchaser)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "Tee", got.Lines[0].Title)
	assert.Equal(t, int64(5000), got.AmountCents)

	_, err = repo.GetByCode(ctx, "TICKET-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	mine, err := repo.ListByPurchaser(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "TICKET-2-BBBBBB", mine[0].Code)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, tk := range all {
		assert.NotEmpty(t, tk.Lines)
	}
}
