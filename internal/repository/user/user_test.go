package user

import (
	"context"
	"testing"

	"ecommerce-backend/internal/db/dbtest"
	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/repository/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	testUsers(t, NewMemory(), cart.NewMemory(nil))
}

func TestPostgres(t *testing.T) {
	pool := dbtest.Pool(t)
	testUsers(t, NewPostgres(pool, nil), cart.NewPostgres(pool, nil))
}

func testUsers(t *testing.T, repo Repository, carts cart.Repository) {
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.User{
		Email: "Ana@Example.com", PasswordHash: "hash", FirstName: "Ana", LastName: "Diaz", Age: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.Equal(t, domain.RoleUser, created.Role)
	assert.Empty(t, created.CartID)

	_, err = repo.Create(ctx, domain.User{Email: "ANA@example.com", PasswordHash: "x", Age: 40})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	c, err := carts.Create(ctx, &created.ID)
	require.NoError(t, err)
	require.NoError(t, repo.SetCart(ctx, created.ID, c.ID))

	byEmail, err := repo.GetByEmail(ctx, "ana@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, c.ID, byEmail.CartID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", byID.FirstName)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.SetCart(ctx, "00000000-0000-0000-0000-000000000000", c.ID), domain.ErrNotFound)

	bob, err := repo.Create(ctx, domain.User{Email: "bob@example.com", PasswordHash: "hash", FirstName: "Bob", LastName: "Ruiz", Age: 25})
	require.NoError(t, err)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.ElementsMatch(t, []string{created.ID, bob.ID}, []string{all[0].ID, all[1].ID})

	bob.FirstName = "Roberto"
	bob.Age = 26
	bob.Role = domain.RoleAdmin
	bob.Email = "ignored@example.com"
	updated, err := repo.Update(ctx, *bob)
	require.NoError(t, err)
	assert.Equal(t, "Roberto", updated.FirstName)
	assert.Equal(t, 26, updated.Age)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	assert.Equal(t, "bob@example.com", updated.Email)

	_, err = repo.Update(ctx, domain.User{ID: "00000000-0000-0000-0000-000000000000", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, deleted.CartID)
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByEmail(ctx, "ana@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, bob.ID, all[0].ID)
}
