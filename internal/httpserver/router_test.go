package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/metrics"
	cartrepo "ecommerce-backend/internal/repository/cart"
	petrepo "ecommerce-backend/internal/repository/pet"
	productrepo "ecommerce-backend/internal/repository/product"
	ticketrepo "ecommerce-backend/internal/repository/ticket"
	tokenrepo "ecommerce-backend/internal/repository/token"
	userrepo "ecommerce-backend/internal/repository/user"
	cartsvc "ecommerce-backend/internal/service/cart"
	petsvc "ecommerce-backend/internal/service/pet"
	productsvc "ecommerce-backend/internal/service/product"
	"ecommerce-backend/internal/service/purchase"
	usersvc "ecommerce-backend/internal/service/user"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	router   *gin.Engine
	users    *usersvc.Service
	products productrepo.Repository
	carts    cartrepo.Repository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := productrepo.NewMemory()
	carts := cartrepo.NewMemory(products)
	tickets := ticketrepo.NewMemory()
	userStore := userrepo.NewMemory()
	users := usersvc.New(userStore, carts, tokenrepo.NewMemory(), time.Hour, nil)

	router, err := buildRouter(nil, nil, Deps{
		Users:    users,
		Products: productsvc.New(products),
		Carts:    cartsvc.New(carts, products),
		Purchases: purchase.New(purchase.Deps{
			Carts:   carts,
			Ledger:  purchase.NewLedger(products),
			Tickets: tickets,
		}),
		Pets:    petsvc.New(petrepo.NewMemory(), userStore, nil),
		Metrics: metrics.New(),
	})
	require.NoError(t, err)
	return &testAPI{router: router, users: users, products: products, carts: carts}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// signIn registers an account with the given role and returns it with a fresh token.
func (a *testAPI) signIn(t *testing.T, email, role string) (*domain.User, string) {
	t.Helper()
	ctx := context.Background()
	_, err := a.users.RegisterWithRole(ctx, usersvc.RegisterInput{
		Email: email, Password: "Secret123", FirstName: "Test", LastName: "User", Age: 30,
	}, role)
	require.NoError(t, err)
	u, token, err := a.users.Login(ctx, email, "Secret123")
	require.NoError(t, err)
	return u, token
}

func (a *testAPI) seedProduct(t *testing.T, code string, price int64, stock int) *domain.Product {
	t.Helper()
	p, err := a.products.Create(context.Background(), domain.Product{
		Code: code, Title: "Product " + code, PriceCents: price, Stock: stock, Category: "misc", Active: true,
	})
	require.NoError(t, err)
	return p
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHealthAndReady(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "memory")
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func TestReadyUnavailableWhenPingFails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/readyz", readyHandler(failingPinger{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodGet, "/healthz", "", nil)

	rec := api.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shop_http_requests_total")
}

func TestBuildRouterRequiresServices(t *testing.T) {
	_, err := buildRouter(nil, nil, Deps{})
	assert.Error(t, err)
}

func TestRegisterLoginCurrent(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/sessions/register", "", map[string]any{
		"email": "New@Example.com", "password": "Secret123", "firstName": "Ada", "lastName": "L", "age": 36,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "Secret123")
	assert.Contains(t, rec.Body.String(), `"cartId"`)

	rec = api.do(t, http.MethodPost, "/api/sessions/register", "", map[string]any{
		"email": "new@example.com", "password": "Secret123", "firstName": "Ada", "lastName": "L", "age": 36,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/sessions/login", "", map[string]any{"email": "new@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/sessions/login", "", map[string]any{"email": "new@example.com", "password": "Secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expiresIn"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, 3600, login.ExpiresIn)

	rec = api.do(t, http.MethodGet, "/api/sessions/current", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "new@example.com")

	rec = api.do(t, http.MethodPost, "/api/sessions/logout", login.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(t, http.MethodGet, "/api/sessions/current", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/api/sessions/register", "", map[string]any{
		"email": "kid@example.com", "password": "Secret123", "firstName": "K", "lastName": "D", "age": 15,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", decode(t, rec).Status)
}

func TestCurrentRequiresToken(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/api/sessions/current", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/sessions/current", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductWritesRequireAdmin(t *testing.T) {
	api := newTestAPI(t)
	_, userToken := api.signIn(t, "user@example.com", domain.RoleUser)
	_, adminToken := api.signIn(t, "admin@example.com", domain.RoleAdmin)

	body := map[string]any{"code": "MUG-1", "title": "Mug", "priceCents": 1250, "stock": 3, "category": "kitchen"}
	rec := api.do(t, http.MethodPost, "/api/products", userToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/products", adminToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created domain.Product
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &created))
	assert.True(t, created.Active)

	rec = api.do(t, http.MethodPost, "/api/products", adminToken, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate code")

	rec = api.do(t, http.MethodPut, "/api/products/"+created.ID, adminToken, map[string]any{"stock": 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"stock":10`)

	rec = api.do(t, http.MethodGet, "/api/products?category=kitchen", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "MUG-1")
	rec = api.do(t, http.MethodGet, "/api/products?category=garden", "", nil)
	assert.NotContains(t, rec.Body.String(), "MUG-1")

	rec = api.do(t, http.MethodDelete, "/api/products/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(t, http.MethodGet, "/api/products/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartAccessIsOwnerOrAdmin(t *testing.T) {
	api := newTestAPI(t)
	owner, ownerToken := api.signIn(t, "owner@example.com", domain.RoleUser)
	_, otherToken := api.signIn(t, "other@example.com", domain.RoleUser)
	_, adminToken := api.signIn(t, "admin@example.com", domain.RoleAdmin)

	path := "/api/carts/" + owner.CartID
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, path, ownerToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodGet, path, otherToken, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, path, adminToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, path, "", nil).Code)
}

func TestCartAddRemoveClear(t *testing.T) {
	api := newTestAPI(t)
	owner, token := api.signIn(t, "owner@example.com", domain.RoleUser)
	p := api.seedProduct(t, "A", 500, 3)
	base := "/api/carts/" + owner.CartID

	rec := api.do(t, http.MethodPost, base+"/products/"+p.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"quantity":1`)

	rec = api.do(t, http.MethodPost, base+"/products/"+p.ID, token, map[string]any{"quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"quantity":3`)
	assert.Contains(t, rec.Body.String(), `"totalCents":1500`)

	rec = api.do(t, http.MethodPost, base+"/products/"+p.ID, token, map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "exceeds stock")

	rec = api.do(t, http.MethodPost, base+"/products/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodDelete, base+"/products/"+p.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalCents":0`)

	api.do(t, http.MethodPost, base+"/products/"+p.ID, token, nil)
	rec = api.do(t, http.MethodDelete, base, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"products":[]`)
}

func TestPurchasePartialSuccess(t *testing.T) {
	api := newTestAPI(t)
	owner, token := api.signIn(t, "buyer@example.com", domain.RoleUser)
	a := api.seedProduct(t, "A", 1000, 5)
	b := api.seedProduct(t, "B", 700, 5)
	ctx := context.Background()

	_, err := api.carts.AddLineItem(ctx, owner.CartID, a.ID, 3)
	require.NoError(t, err)
	_, err = api.carts.AddLineItem(ctx, owner.CartID, b.ID, 2)
	require.NoError(t, err)
	// Stock drops after the product was added to the cart.
	_, err = api.products.DecrementStock(ctx, b.ID, 4)
	require.NoError(t, err)

	rec := api.do(t, http.MethodPost, "/api/carts/"+owner.CartID+"/purchase", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.Equal(t, "partial_success", env.Status)

	var data struct {
		Ticket struct {
			Code         string `json:"code"`
			Status       string `json:"status"`
			AmountCents  int64  `json:"amountCents"`
			ProductCount int    `json:"productCount"`
			ItemCount    int    `json:"itemCount"`
			Lines        []struct {
				SubtotalCents int64 `json:"subtotalCents"`
			} `json:"lines"`
		} `json:"ticket"`
		FailedProducts []struct {
			ProductID      string `json:"productId"`
			AvailableStock *int   `json:"availableStock"`
			Reason         string `json:"reason"`
		} `json:"failedProducts"`
		TotalAmountCents int64 `json:"totalAmountCents"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "pending", data.Ticket.Status)
	assert.Equal(t, int64(3000), data.Ticket.AmountCents)
	assert.Equal(t, int64(3000), data.TotalAmountCents)
	assert.Equal(t, 1, data.Ticket.ProductCount)
	assert.Equal(t, 3, data.Ticket.ItemCount)
	require.Len(t, data.Ticket.Lines, 1)
	assert.Equal(t, int64(3000), data.Ticket.Lines[0].SubtotalCents)
	require.Len(t, data.FailedProducts, 1)
	assert.Equal(t, b.ID, data.FailedProducts[0].ProductID)
	require.NotNil(t, data.FailedProducts[0].AvailableStock)
	assert.Equal(t, 1, *data.FailedProducts[0].AvailableStock)

	rec = api.do(t, http.MethodGet, "/api/tickets/"+data.Ticket.Code, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/me/tickets", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), data.Ticket.Code)

	_, otherToken := api.signIn(t, "other@example.com", domain.RoleUser)
	rec = api.do(t, http.MethodGet, "/api/tickets/"+data.Ticket.Code, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(t, http.MethodGet, "/api/tickets", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, adminToken := api.signIn(t, "admin@example.com", domain.RoleAdmin)
	rec = api.do(t, http.MethodGet, "/api/tickets", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), data.Ticket.Code)
}

func TestPurchaseCompleted(t *testing.T) {
	api := newTestAPI(t)
	owner, token := api.signIn(t, "buyer@example.com", domain.RoleUser)
	a := api.seedProduct(t, "A", 250, 2)
	_, err := api.carts.AddLineItem(context.Background(), owner.CartID, a.ID, 2)
	require.NoError(t, err)

	rec := api.do(t, http.MethodPost, "/api/carts/"+owner.CartID+"/purchase", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "success", decode(t, rec).Status)

	cart, err := api.carts.GetByID(context.Background(), owner.CartID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestPurchaseNothingCommitted(t *testing.T) {
	api := newTestAPI(t)
	owner, token := api.signIn(t, "buyer@example.com", domain.RoleUser)
	a := api.seedProduct(t, "A", 250, 2)
	ctx := context.Background()
	_, err := api.carts.AddLineItem(ctx, owner.CartID, a.ID, 2)
	require.NoError(t, err)
	_, err = api.products.DecrementStock(ctx, a.ID, 2)
	require.NoError(t, err)

	rec := api.do(t, http.MethodPost, "/api/carts/"+owner.CartID+"/purchase", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, string(env.Data), `"ticket":null`)
}

func TestPurchaseEmptyCart(t *testing.T) {
	api := newTestAPI(t)
	owner, token := api.signIn(t, "buyer@example.com", domain.RoleUser)

	rec := api.do(t, http.MethodPost, "/api/carts/"+owner.CartID+"/purchase", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cart is empty", decode(t, rec).Message)
}

func TestPurchaseMissingCartAsAdmin(t *testing.T) {
	api := newTestAPI(t)
	_, adminToken := api.signIn(t, "admin@example.com", domain.RoleAdmin)

	rec := api.do(t, http.MethodPost, "/api/carts/00000000-0000-0000-0000-000000000000/purchase", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "cart not found", decode(t, rec).Message)
}
