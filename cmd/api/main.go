package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"supplierapi/auth"
	"supplierapi/config"
	"supplierapi/db"
	"supplierapi/httpapi"
	"supplierapi/supplier"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("bootstrap config: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("bootstrap logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("bootstrap database pool", zap.Error(err))
	}
	defer pool.Close()

	tokens, err := auth.NewTokenService(auth.TokenSettings{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.TokenIssuer,
		Audience: cfg.TokenAudience,
		Lifetime: cfg.TokenTTL,
	})
	if err != nil {
		logger.Fatal("bootstrap token service", zap.Error(err))
	}

	authService := auth.NewService(auth.NewRepository(pool), tokens, logger, cfg.LockoutThreshold, cfg.LockoutDuration)
	supplierService := supplier.NewService(supplier.NewRepository(pool), logger)

	authorizer := auth.NewAuthorizer()
	authorizer.Register(auth.PolicyDeleteSupplier, auth.RequireClaim(auth.PolicyDeleteSupplier))

	router := httpapi.NewRouter(
		logger,
		tokens,
		authorizer,
		httpapi.NewAuthHandler(authService, logger),
		httpapi.NewSupplierHandler(supplierService, logger),
		pool,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
