package main

import (
	"context"
	"fmt"
	"os"

	"ecommerce-backend/internal/config"
	"ecommerce-backend/internal/db"
	"ecommerce-backend/internal/logging"
	"ecommerce-backend/internal/migrate"
	cartrepo "ecommerce-backend/internal/repository/cart"
	productrepo "ecommerce-backend/internal/repository/product"
	tokenrepo "ecommerce-backend/internal/repository/token"
	userrepo "ecommerce-backend/internal/repository/user"
	"ecommerce-backend/internal/seed"
	usersvc "ecommerce-backend/internal/service/user"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New("shop-seed", cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	products := productrepo.NewPostgres(pool, logger)
	users := usersvc.New(
		userrepo.NewPostgres(pool, logger),
		cartrepo.NewPostgres(pool, logger),
		tokenrepo.NewPostgres(pool),
		cfg.TokenTTL,
		logger,
	)
	if err := seed.Apply(ctx, users, products, logger); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied", zap.String("admin", seed.AdminEmail), zap.String("user", seed.UserEmail))
}
