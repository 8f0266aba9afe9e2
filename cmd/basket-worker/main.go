package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-basket/internal/accounts"
	"github.com/ariefcatur/go-basket/internal/basket"
	"github.com/ariefcatur/go-basket/internal/config"
	kafkax "github.com/ariefcatur/go-basket/internal/kafka"
	"github.com/ariefcatur/go-basket/internal/logging"
	"github.com/ariefcatur/go-basket/internal/postgres"
	"github.com/ariefcatur/go-basket/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	service := cfg.ServiceName + "-worker"
	log, err := logging.New(cfg.LogLevel, service)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &accounts.Service{
		Baskets:     &basket.Repo{DB: db},
		Redis:       rdb,
		ServiceName: cfg.WorkerGroup,
		Log:         log,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WorkerGroup, accounts.TopicUserDeleted, cfg.WorkerCount, log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("consumer started", zap.String("group", cfg.WorkerGroup),
			zap.String("topic", accounts.TopicUserDeleted), zap.Int("workers", cfg.WorkerCount))
		if err := cons.Start(ctx, svc.HandleUserDeleted); err != nil {
			log.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Info("shutting down consumer")
	case <-ctx.Done():
	}
	cancel()
	<-done
}
