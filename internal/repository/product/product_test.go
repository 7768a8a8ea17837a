package product

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"ecommerce-backend/internal/db/dbtest"
	"ecommerce-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	t.Run("crud", func(t *testing.T) { testCRUD(t, NewMemory()) })
	t.Run("stock", func(t *testing.T) { testStock(t, NewMemory()) })
	t.Run("concurrent decrement", func(t *testing.T) { testConcurrentDecrement(t, NewMemory()) })
}

func TestPostgres(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	t.Run("crud", func(t *testing.T) {
		dbtest.Reset(t, pool)
		testCRUD(t, repo)
	})
	t.Run("stock", func(t *testing.T) {
		dbtest.Reset(t, pool)
		testStock(t, repo)
	})
	t.Run("concurrent decrement", func(t *testing.T) {
		dbtest.Reset(t, pool)
		testConcurrentDecrement(t, repo)
	})
	t.Run("malformed id", func(t *testing.T) {
		_, err := repo.GetByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func testCRUD(t *testing.T, repo Repository) {
	ctx := context.Background()

	mug, err := repo.Create(ctx, domain.Product{
		Code: "MUG-1", Title: "Mug", PriceCents: 1299, Stock: 4, Category: "Kitchen",
		Thumbnails: []string{"mug.png"}, Active: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, mug.ID)
	assert.Equal(t, []string{"mug.png"}, mug.Thumbnails)

	_, err = repo.Create(ctx, domain.Product{Code: "MUG-1", Title: "Dup", PriceCents: 1})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = repo.Create(ctx, domain.Product{Code: "TEE-1", Title: "Tee", PriceCents: 1999, Stock: 10, Category: "apparel", Active: true})
	require.NoError(t, err)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	kitchen, err := repo.List(ctx, "kitchen")
	require.NoError(t, err)
	require.Len(t, kitchen, 1)
	assert.Equal(t, "MUG-1", kitchen[0].Code)

	byCode, err := repo.GetByCode(ctx, "MUG-1")
	require.NoError(t, err)
	assert.Equal(t, mug.ID, byCode.ID)

	mug.Title = "Big Mug"
	mug.PriceCents = 1499
	updated, err := repo.Update(ctx, *mug)
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", updated.Title)
	assert.Equal(t, int64(1499), updated.PriceCents)

	upserted, err := repo.Upsert(ctx, domain.Product{Code: "MUG-1", Title: "Imported Mug", PriceCents: 999, Stock: 7})
	require.NoError(t, err)
	assert.Equal(t, mug.ID, upserted.ID)
	assert.Equal(t, 7, upserted.Stock)

	require.NoError(t, repo.Delete(ctx, mug.ID))
	_, err = repo.GetByID(ctx, mug.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, mug.ID), domain.ErrNotFound)
}

func testStock(t *testing.T, repo Repository) {
	ctx := context.Background()
	p, err := repo.Create(ctx, domain.Product{Code: "PEN", Title: "Pen", PriceCents: 100, Stock: 3, Active: true})
	require.NoError(t, err)

	left, err := repo.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	current, err := repo.DecrementStock(ctx, p.ID, 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, current)

	stock, err := repo.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stock)

	_, err = repo.DecrementStock(ctx, p.ID, 0)
	assert.Error(t, err)
}

func testConcurrentDecrement(t *testing.T, repo Repository) {
	ctx := context.Background()
	p, err := repo.Create(ctx, domain.Product{Code: "HOT", Title: "Hot item", PriceCents: 500, Stock: 5, Active: true})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var committed atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.DecrementStock(ctx, p.ID, 1); err == nil {
				committed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), committed.Load())
	stock, err := repo.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}
