package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pickleparadise/pickle-store/internal/app"
	"github.com/pickleparadise/pickle-store/internal/clock"
	"github.com/pickleparadise/pickle-store/internal/config"
	"github.com/pickleparadise/pickle-store/internal/events"
	"github.com/pickleparadise/pickle-store/internal/httpx"
	kafkax "github.com/pickleparadise/pickle-store/internal/kafka"
	"github.com/pickleparadise/pickle-store/internal/redisx"
	"github.com/pickleparadise/pickle-store/internal/storage/postgres"
	"github.com/pickleparadise/pickle-store/migrations"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pub := &httpx.EventPublisher{
		OrderCreated:   kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCreated, 1024),
		OrderCancelled: kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCancelled, 1024),
		StatusChanged:  kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderStatusChanged, 1024),
		StockDebited:   kafkax.NewProducer(cfg.KafkaBrokers, events.TopicStockDebited, 1024),
		Service:        cfg.ServiceName,
	}
	producers := []*kafkax.Producer{pub.OrderCreated, pub.OrderCancelled, pub.StatusChanged, pub.StockDebited}
	for _, p := range producers {
		p.Start(ctx)
	}

	// Services
	clk := clock.NewSystem()
	orderSvc := app.NewOrderService(postgres.NewOrderRepository(db), clk, cfg.TaxRate)
	inventorySvc := app.NewInventoryService(postgres.NewInventoryRepository(db), clk, cfg.LowStockThreshold)
	catalogSvc := app.NewCatalogService(postgres.NewCatalogRepository(db), clk)
	paymentSvc := app.NewPaymentService(postgres.NewPaymentRepository(db), clk)

	// Router & handlers
	router := httpx.NewRouter()
	(&httpx.OrdersHandler{Svc: orderSvc, Events: pub, Redis: rdb}).Register(router)
	(&httpx.InventoryHandler{Svc: inventorySvc}).Register(router)
	(&httpx.CatalogHandler{Svc: catalogSvc}).Register(router)
	(&httpx.PaymentsHandler{Svc: paymentSvc, Events: pub}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	for _, p := range producers {
		p.Close() // close inbox -> flush & close writer
	}
	cancel()
	for _, p := range producers {
		p.WaitClosed()
	}
}
