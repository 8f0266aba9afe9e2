package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-basket/internal/basket"
	"github.com/ariefcatur/go-basket/internal/catalog"
	"github.com/ariefcatur/go-basket/internal/config"
	"github.com/ariefcatur/go-basket/internal/httpx"
	kafkax "github.com/ariefcatur/go-basket/internal/kafka"
	"github.com/ariefcatur/go-basket/internal/logging"
	"github.com/ariefcatur/go-basket/internal/metrics"
	"github.com/ariefcatur/go-basket/internal/postgres"
	"github.com/ariefcatur/go-basket/internal/redisx"
	"github.com/ariefcatur/go-basket/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	products := catalog.NewRepo(db)
	facade := &basket.Facade{
		Catalog:   products,
		Users:     &basket.Repo{DB: db},
		BasketKey: cfg.SessionBasketKey,
		Metrics:   metrics.NewBasketMetrics(reg, cfg.ServiceName),
		Log:       log,
		Service:   cfg.ServiceName,
	}

	// Kafka producers, only when brokers are configured
	var producers []*kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		added := kafkax.NewProducer(cfg.KafkaBrokers, basket.TopicBasketItemAdded, 1024, log)
		removed := kafkax.NewProducer(cfg.KafkaBrokers, basket.TopicBasketItemRemoved, 1024, log)
		added.Start()
		removed.Start()
		facade.Added, facade.Removed = added, removed
		producers = append(producers, added, removed)
	}

	router := httpx.NewRouter(httpx.RouterConfig{
		Log:      log,
		Metrics:  metrics.NewServerMetrics(reg, cfg.ServiceName),
		Gatherer: reg,
		Timeout:  cfg.RequestTimeout,
	})
	(&httpx.ProductsHandler{Catalog: products, Log: log}).Register(router)
	identity := &httpx.IdentityMiddleware{
		Sessions:   session.NewStore(rdb, cfg.SessionTTL),
		Cookie:     cfg.SessionCookie,
		UserHeader: cfg.UserHeader,
		TTL:        cfg.SessionTTL,
		Log:        log,
	}
	router.Group(func(r chi.Router) {
		r.Use(identity.Handler)
		(&httpx.BasketHandler{Basket: facade}).Register(r)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	// no more requests, so nothing publishes after this
	for _, p := range producers {
		p.Close()
	}
	for _, p := range producers {
		p.WaitClosed()
	}
}
