package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ecommerce-backend/internal/config"
	"ecommerce-backend/internal/db"
	"ecommerce-backend/internal/httpserver"
	"ecommerce-backend/internal/logging"
	"ecommerce-backend/internal/metrics"
	"ecommerce-backend/internal/migrate"
	"ecommerce-backend/internal/notify"
	cartrepo "ecommerce-backend/internal/repository/cart"
	petrepo "ecommerce-backend/internal/repository/pet"
	productrepo "ecommerce-backend/internal/repository/product"
	ticketrepo "ecommerce-backend/internal/repository/ticket"
	tokenrepo "ecommerce-backend/internal/repository/token"
	userrepo "ecommerce-backend/internal/repository/user"
	"ecommerce-backend/internal/seed"
	cartsvc "ecommerce-backend/internal/service/cart"
	petsvc "ecommerce-backend/internal/service/pet"
	productsvc "ecommerce-backend/internal/service/product"
	"ecommerce-backend/internal/service/purchase"
	usersvc "ecommerce-backend/internal/service/user"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New("shop-api", cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped with error", zap.Error(err))
	}
	logger.Info("server stopped")
}

type stores struct {
	products productrepo.Repository
	carts    cartrepo.Repository
	tickets  ticketrepo.Repository
	users    userrepo.Repository
	tokens   tokenrepo.Repository
	pets     petrepo.Repository
	ready    httpserver.Pinger
	close    func()
}

func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on restart")
		products := productrepo.NewMemory()
		return &stores{
			products: products,
			carts:    cartrepo.NewMemory(products),
			tickets:  ticketrepo.NewMemory(),
			users:    userrepo.NewMemory(),
			tokens:   tokenrepo.NewMemory(),
			pets:     petrepo.NewMemory(),
			close:    func() {},
		}, nil
	}

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return &stores{
		products: productrepo.NewPostgres(pool, logger),
		carts:    cartrepo.NewPostgres(pool, logger),
		tickets:  ticketrepo.NewPostgres(pool, logger),
		users:    userrepo.NewPostgres(pool, logger),
		tokens:   tokenrepo.NewPostgres(pool),
		pets:     petrepo.NewPostgres(pool, logger),
		ready:    pool,
		close:    pool.Close,
	}, nil
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	m := metrics.New()
	dispatcher := notify.NewDispatcher(
		notify.NewMailer(cfg.Mail, logger),
		cfg.Notify.QueueSize,
		logger,
		notify.WithMetrics(m),
		notify.WithSendTimeout(cfg.Notify.SendTimeout),
	)

	userService := usersvc.New(st.users, st.carts, st.tokens, cfg.TokenTTL, logger)
	if cfg.SeedDemo {
		if err := seed.Apply(ctx, userService, st.products, logger); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, st.ready, httpserver.Deps{
		Users:    userService,
		Products: productsvc.New(st.products),
		Carts:    cartsvc.New(st.carts, st.products),
		Purchases: purchase.New(purchase.Deps{
			Carts:    st.carts,
			Ledger:   purchase.NewLedger(st.products),
			Tickets:  st.tickets,
			Notifier: dispatcher,
			Metrics:  m,
			Logger:   logger,
		}),
		Pets:        petsvc.New(st.pets, st.users, logger),
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	// The dispatcher stops only after in-flight requests have finished.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return dispatcher.Run(dispatchCtx)
	})
	g.Go(func() error {
		<-gctx.Done()
		defer stopDispatch()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
