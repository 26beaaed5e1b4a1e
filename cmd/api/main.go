package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shopcart/internal/cartcache"
	"shopcart/internal/config"
	"shopcart/internal/db"
	"shopcart/internal/httpserver"
	"shopcart/internal/kv"
	"shopcart/internal/logging"
	"shopcart/internal/ratelimit"
	cartlinerepo "shopcart/internal/repository/cartline"
	productrepo "shopcart/internal/repository/product"
	cartsvc "shopcart/internal/service/cart"
)

func main() {
	cfg := config.FromEnv()
	logging.Setup(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger := logging.NewLogger("api")

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.PoolConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer dbpool.Close()

	var store kv.Store
	var counters ratelimit.CounterStore
	if cfg.RedisAddr != "" {
		client, err := kv.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to redis")
		}
		defer client.Close()
		store = kv.NewRedis(client)
		counters = ratelimit.NewRedisCounters(client)
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, using in-process cache and counters")
		store = kv.NewMemory()
		counters = ratelimit.NewMemoryCounters()
	}

	lineRepo := cartlinerepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool)

	cache := cartcache.New(store, lineRepo, cartcache.Config{
		AggregateTTL: cfg.AggregateTTL,
		LineTTL:      cfg.LineTTL,
	}, logging.NewLogger("cartcache"))

	limiter := ratelimit.New(counters, ratelimit.Limits{
		Add:     cfg.RateLimitAdd,
		Update:  cfg.RateLimitUpdate,
		Remove:  cfg.RateLimitRemove,
		General: cfg.RateLimitGeneral,
		Window:  cfg.RateLimitWindow,
	}, logging.NewLogger("ratelimit"))

	cartService := cartsvc.New(
		lineRepo,
		productRepo,
		cache,
		logging.NewLogger("cart"),
		cartsvc.NewAuditLogger(logging.NewLogger("audit")),
	)

	srv, err := httpserver.New(cfg.HTTPAddr, logging.NewLogger("http"), dbpool, httpserver.Deps{
		CartSvc:  cartService,
		Cache:    cache,
		Lines:    lineRepo,
		Products: productRepo,
		Limiter:  limiter,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		logger.Info().Msg("server stopped")
	}
}
