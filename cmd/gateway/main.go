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
	"github.com/araute/storefront-admin/internal/devgateway"
	"github.com/araute/storefront-admin/internal/httpx"
	"github.com/araute/storefront-admin/internal/kafkax"
	"github.com/araute/storefront-admin/internal/logging"
	"github.com/araute/storefront-admin/internal/postgres"
	"github.com/araute/storefront-admin/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.Env, cfg.LogLevel)
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer db.Close()

	store := &devgateway.Store{DB: db}
	if err := store.Migrate(ctx); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	producer := kafkax.NewProducer(cfg.KafkaBrokers, devgateway.TopicRecordChanged, 256, log)
	producer.Start(ctx)

	// Every committed mutation fans out through Kafka, then the relay
	// republishes full entity snapshots on Redis for live subscribers.
	relay := &devgateway.Relay{Store: store, Redis: rdb, Log: log}
	consumer := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ServiceName, devgateway.TopicRecordChanged, log)
	go func() {
		if err := consumer.Start(ctx, relay.HandleChange); err != nil {
			log.Error("relay consumer stopped", zap.Error(err))
		}
	}()

	srv := &devgateway.Server{
		Store:  store,
		Events: &devgateway.KafkaChanges{Producer: producer, Service: cfg.ServiceName},
		Staff:  &auth.Verifier{Secret: []byte(cfg.StaffSecret)},
		APIKey: cfg.GatewayAPIKey,
		Log:    log,
	}

	router := httpx.NewRouter(httpx.RequestLogger(log))
	srv.Register(router)

	httpSrv := &http.Server{Addr: cfg.GatewayAddr, Handler: router}

	go func() {
		log.Info("gateway listening", zap.String("addr", cfg.GatewayAddr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = httpSrv.Shutdown(shutdownCtx)

	producer.Close()
	producer.WaitClosed()
	cancel()
}
