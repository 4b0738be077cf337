package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/araute/storefront-admin/internal/auth"
	"github.com/araute/storefront-admin/internal/config"
	"github.com/araute/storefront-admin/internal/gateway"
	"github.com/araute/storefront-admin/internal/httpx"
	"github.com/araute/storefront-admin/internal/inventory"
	"github.com/araute/storefront-admin/internal/logging"
	"github.com/araute/storefront-admin/internal/orders"
	"github.com/araute/storefront-admin/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.Env, cfg.LogLevel)
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Background loads and saves without a forwarded session run under this
	// credential; mint one from the shared secret when none is configured.
	staffToken := cfg.StaffToken
	if staffToken == "" {
		tok, err := auth.ServiceToken([]byte(cfg.StaffSecret), "service:admin")
		if err != nil {
			log.Fatal("mint service staff token", zap.Error(err))
		}
		staffToken = tok
	}

	client := gateway.NewClient(cfg.GatewayURL, cfg.GatewayAPIKey, staffToken)
	feeds := &gateway.FeedSource{Redis: rdb, Client: client, PageSize: cfg.PageSize, Log: log}

	// Order reconciliation: initial fetch plus the live feed.
	ordersView := orders.NewView(&orders.Remote{Client: client, Feeds: feeds, PageSize: cfg.PageSize}, log)
	if err := ordersView.Start(ctx); err != nil {
		log.Error("order view start", zap.Error(err))
	}
	defer ordersView.Stop()

	// Inventory adjustment for the configured store.
	invView := inventory.NewView(&inventory.Remote{Client: client}, cfg.StoreID, cfg.PageSize, log)
	if err := invView.Load(ctx); err != nil {
		log.Error("inventory load", zap.Error(err))
	}
	defer invView.Close()

	verifier := &auth.Verifier{Secret: []byte(cfg.StaffSecret)}

	router := httpx.NewRouter(httpx.RequestLogger(log), verifier.Middleware)
	(&httpx.OrdersHandler{View: ordersView, Log: log}).Register(router)
	(&httpx.InventoryHandler{View: invView, Log: log}).Register(router)
	(&httpx.ShellHandler{Client: client, PageSize: cfg.PageSize, Log: log}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("admin listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(shutdownCtx)
}
