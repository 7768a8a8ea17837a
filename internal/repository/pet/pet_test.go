package pet

import (
	"context"
	"sync"
	"testing"

	"ecommerce-backend/internal/db/dbtest"
	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/repository/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	testPets(t, NewMemory(), user.NewMemory())
}

func TestPostgres(t *testing.T) {
	pool := dbtest.Pool(t)
	testPets(t, NewPostgres(pool, nil), user.NewPostgres(pool, nil))

	_, err := NewPostgres(pool, nil).Adopt(context.Background(), "not-a-uuid", "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testPets(t *testing.T, repo Repository, users user.Repository) {
	ctx := context.Background()

	owner, err := users.Create(ctx, domain.User{Email: "owner@example.com", PasswordHash: "hash", FirstName: "O", LastName: "W", Age: 30})
	require.NoError(t, err)

	rex, err := repo.Create(ctx, domain.Pet{Name: "Rex", Species: "dog", Age: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, rex.ID)
	assert.False(t, rex.Adopted)
	assert.Nil(t, rex.OwnerID)
	tom, err := repo.Create(ctx, domain.Pet{Name: "Tom", Species: "cat", Age: 1})
	require.NoError(t, err)

	adopted, err := repo.Adopt(ctx, rex.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, adopted.Adopted)
	require.NotNil(t, adopted.OwnerID)
	assert.Equal(t, owner.ID, *adopted.OwnerID)
	assert.NotNil(t, adopted.AdoptedAt)

	_, err = repo.Adopt(ctx, rex.ID, owner.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyAdopted)
	_, err = repo.Adopt(ctx, "00000000-0000-0000-0000-000000000000", owner.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	yes, no := true, false
	onlyAdopted, err := repo.List(ctx, &yes)
	require.NoError(t, err)
	require.Len(t, onlyAdopted, 1)
	assert.Equal(t, rex.ID, onlyAdopted[0].ID)
	available, err := repo.List(ctx, &no)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, tom.ID, available[0].ID)

	got, err := repo.GetByID(ctx, rex.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rex", got.Name)
	assert.True(t, got.Adopted)
}

func TestMemoryConcurrentAdoptionHasOneWinner(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	p, err := repo.Create(ctx, domain.Pet{Name: "Luna", Species: "cat"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Adopt(ctx, p.ID, "owner"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
