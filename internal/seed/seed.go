package seed

import (
	"context"
	"errors"
	"fmt"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/logging"
	usersvc "ecommerce-backend/internal/service/user"
	"go.uber.org/zap"
)

type userRegistrar interface {
	RegisterWithRole(ctx context.Context, in usersvc.RegisterInput, role string) (*domain.User, error)
}

type productUpserter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type accountSeed struct {
	usersvc.RegisterInput
	Role string
}

// Demo credentials. They exist only where seeding is enabled.
const (
	AdminEmail   = "admin@shop.local"
	UserEmail    = "user@shop.local"
	DemoPassword = "Demo12345"
)

var accounts = []accountSeed{
	{RegisterInput: usersvc.RegisterInput{Email: AdminEmail, Password: DemoPassword, FirstName: "Shop", LastName: "Admin", Age: 35}, Role: domain.RoleAdmin},
	{RegisterInput: usersvc.RegisterInput{Email: UserEmail, Password: DemoPassword, FirstName: "Demo", LastName: "User", Age: 28}, Role: domain.RoleUser},
}

var catalog = []domain.Product{
	{Code: "DEMO-TSHIRT", Title: "Demo T-Shirt", Description: "Soft cotton tee", PriceCents: 1999, Stock: 25, Category: "apparel"},
	{Code: "DEMO-HOODIE", Title: "Demo Hoodie", Description: "Fleece hoodie with front pocket", PriceCents: 4599, Stock: 10, Category: "apparel"},
	{Code: "DEMO-MUG", Title: "Demo Mug", Description: "Ceramic mug with logo", PriceCents: 1299, Stock: 40, Category: "kitchen"},
	{Code: "DEMO-BOTTLE", Title: "Steel Bottle", Description: "Insulated 750ml bottle", PriceCents: 2450, Stock: 15, Category: "kitchen"},
	{Code: "DEMO-POSTER", Title: "Limited Poster", Description: "Signed print, few left", PriceCents: 3000, Stock: 2, Category: "decor"},
	{Code: "DEMO-LAMP", Title: "Desk Lamp", Description: "Warm LED desk lamp", PriceCents: 3899, Stock: 0, Category: "decor"},
}

// Apply creates the demo accounts and upserts the starter catalog. Running it
// again leaves existing accounts untouched and refreshes the catalog.
func Apply(ctx context.Context, users userRegistrar, products productUpserter, logger *zap.Logger) error {
	logger = logging.OrNop(logger).Named("seed")

	for _, a := range accounts {
		u, err := users.RegisterWithRole(ctx, a.RegisterInput, a.Role)
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			logger.Debug("seed account exists", zap.String("email", a.Email))
		case err != nil:
			return fmt.Errorf("seed account %s: %w", a.Email, err)
		default:
			logger.Info("seed account created", zap.String("email", u.Email), zap.String("role", u.Role))
		}
	}

	for _, p := range catalog {
		p.Active = true
		if _, err := products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Code, err)
		}
	}
	logger.Info("seed catalog applied", zap.Int("products", len(catalog)))
	return nil
}
