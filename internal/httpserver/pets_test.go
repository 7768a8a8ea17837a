package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"ecommerce-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (a *testAPI) createPet(t *testing.T, adminToken, name string) domain.Pet {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/pets", adminToken, map[string]any{"name": name, "species": "dog", "age": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p domain.Pet
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &p))
	return p
}

func TestCreatePetRequiresAdmin(t *testing.T) {
	api := newTestAPI(t)
	_, userToken := api.signIn(t, "user@example.com", domain.RoleUser)
	_, adminToken := api.signIn(t, "admin@example.com", domain.RoleAdmin)

	body := map[string]any{"name": "Rex", "species": "dog", "age": 2}
	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodPost, "/api/pets", "", body).Code)
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodPost, "/api/pets", userToken, body).Code)

	rec := api.do(t, http.MethodPost, "/api/pets", adminToken, map[string]any{"name": "Rex", "species": "dog", "age": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	p := api.createPet(t, adminToken, "Rex")
	assert.False(t, p.Adopted)

	rec = api.do(t, http.MethodGet, "/api/pets", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), p.ID)
}

func TestAdoptPet(t *testing.T) {
	api := newTestAPI(t)
	owner, ownerToken := api.signIn(t, "owner@example.com", domain.RoleUser)
	other, otherToken := api.signIn(t, "other@example.com", domain.RoleUser)
	_, adminToken := api.signIn(t, "admin@example.com", domain.RoleAdmin)
	rex := api.createPet(t, adminToken, "Rex")
	tom := api.createPet(t, adminToken, "Tom")

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/adoptions/"+rex.ID, "", nil).Code)

	adoptPath := "/api/users/" + owner.ID + "/adoptions/" + rex.ID
	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodPost, adoptPath, "", nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodPost, adoptPath, otherToken, nil).Code)

	rec := api.do(t, http.MethodPost, adoptPath, ownerToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var adopted domain.Pet
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &adopted))
	assert.True(t, adopted.Adopted)
	require.NotNil(t, adopted.OwnerID)
	assert.Equal(t, owner.ID, *adopted.OwnerID)

	rec = api.do(t, http.MethodPost, "/api/users/"+other.ID+"/adoptions/"+rex.ID, adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.ErrAlreadyAdopted.Error(), decode(t, rec).Message)

	rec = api.do(t, http.MethodPost, "/api/users/"+owner.ID+"/adoptions/missing", ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/adoptions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), rex.ID)
	assert.NotContains(t, rec.Body.String(), tom.ID)

	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/adoptions/"+rex.ID, "", nil).Code)

	rec = api.do(t, http.MethodGet, "/api/pets?adopted=false", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), tom.ID)
	assert.NotContains(t, rec.Body.String(), rex.ID)

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/pets?adopted=maybe", "", nil).Code)
}

func TestAdminAdoptsForMissingUser(t *testing.T) {
	api := newTestAPI(t)
	_, adminToken := api.signIn(t, "admin@example.com", domain.RoleAdmin)
	rex := api.createPet(t, adminToken, "Rex")

	rec := api.do(t, http.MethodPost, "/api/users/ghost/adoptions/"+rex.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
