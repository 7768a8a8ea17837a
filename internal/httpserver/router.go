package httpserver

import (
	"context"
	"errors"
	"time"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/logging"
	"ecommerce-backend/internal/metrics"
	petsvc "ecommerce-backend/internal/service/pet"
	productsvc "ecommerce-backend/internal/service/product"
	usersvc "ecommerce-backend/internal/service/user"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserService interface {
	Register(ctx context.Context, in usersvc.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	AccessTTLSeconds() int
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, in usersvc.UpdateInput, actor domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type ProductService interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in productsvc.CreateInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.UpdateInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CartService interface {
	Get(ctx context.Context, cartID string) (*domain.Cart, error)
	AddProduct(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error)
	RemoveProduct(ctx context.Context, cartID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, cartID string) (*domain.Cart, error)
}

type PurchaseService interface {
	ProcessPurchase(ctx context.Context, cartID, purchaser string) (*domain.PurchaseResult, error)
	TicketByCode(ctx context.Context, code string, requester domain.User) (*domain.Ticket, error)
	TicketsByPurchaser(ctx context.Context, purchaser string) ([]domain.Ticket, error)
	AllTickets(ctx context.Context) ([]domain.Ticket, error)
}

type PetService interface {
	List(ctx context.Context, adopted *bool) ([]domain.Pet, error)
	Create(ctx context.Context, in petsvc.CreateInput) (*domain.Pet, error)
	Adopt(ctx context.Context, userID, petID string) (*domain.Pet, error)
	Adoptions(ctx context.Context) ([]domain.Pet, error)
	Adoption(ctx context.Context, petID string) (*domain.Pet, error)
}

// Deps groups the services the router dispatches to.
type Deps struct {
	Users       UserService
	Products    ProductService
	Carts       CartService
	Purchases   PurchaseService
	Pets        PetService
	Metrics     *metrics.Metrics
	CORSOrigins []string
}

func (d Deps) validate() error {
	switch {
	case d.Users == nil:
		return errors.New("httpserver: user service is required")
	case d.Products == nil:
		return errors.New("httpserver: product service is required")
	case d.Carts == nil:
		return errors.New("httpserver: cart service is required")
	case d.Purchases == nil:
		return errors.New("httpserver: purchase service is required")
	case d.Pets == nil:
		return errors.New("httpserver: pet service is required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, ready Pinger, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	logger = logging.OrNop(logger)
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(recoveryMiddleware(logger), requestLogger(logger, deps.Metrics), corsMiddleware(deps.CORSOrigins))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(ready))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	auth := authRequired(deps.Users)
	api := router.Group("/api")

	sessions := &sessionHandler{users: deps.Users}
	api.POST("/sessions/register", sessions.register)
	api.POST("/sessions/login", sessions.login)
	api.GET("/sessions/current", auth, sessions.current)
	api.POST("/sessions/logout", auth, sessions.logout)

	users := &userHandler{users: deps.Users}
	api.GET("/users", auth, adminOnly(), users.list)
	api.GET("/users/:uid", auth, selfOrAdmin(), users.get)
	api.PUT("/users/:uid", auth, selfOrAdmin(), users.update)
	api.DELETE("/users/:uid", auth, adminOnly(), users.remove)

	products := &productHandler{products: deps.Products}
	api.GET("/products", products.list)
	api.GET("/products/:pid", products.get)
	api.POST("/products", auth, adminOnly(), products.create)
	api.PUT("/products/:pid", auth, adminOnly(), products.update)
	api.DELETE("/products/:pid", auth, adminOnly(), products.remove)

	carts := &cartHandler{carts: deps.Carts}
	purchases := &purchaseHandler{purchases: deps.Purchases}
	cart := api.Group("/carts/:cid", auth, cartAccess())
	cart.GET("", carts.get)
	cart.DELETE("", carts.clear)
	cart.POST("/products/:pid", carts.addProduct)
	cart.DELETE("/products/:pid", carts.removeProduct)
	cart.POST("/purchase", purchases.purchase)

	tickets := &ticketHandler{purchases: deps.Purchases}
	api.GET("/me/tickets", auth, tickets.mine)
	api.GET("/tickets/:code", auth, tickets.get)
	api.GET("/tickets", auth, adminOnly(), tickets.list)

	pets := &petHandler{pets: deps.Pets}
	api.GET("/pets", pets.list)
	api.POST("/pets", auth, adminOnly(), pets.create)
	api.GET("/adoptions", pets.adoptions)
	api.GET("/adoptions/:pid", pets.adoption)
	api.POST("/users/:uid/adoptions/:pid", auth, selfOrAdmin(), pets.adopt)

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
