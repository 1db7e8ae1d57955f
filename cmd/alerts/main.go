package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pickleparadise/pickle-store/internal/alerts"
	"github.com/pickleparadise/pickle-store/internal/config"
	"github.com/pickleparadise/pickle-store/internal/events"
	kafkax "github.com/pickleparadise/pickle-store/internal/kafka"
	"github.com/pickleparadise/pickle-store/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &alerts.Service{
		Dedup:       &alerts.RedisDeduper{Client: rdb},
		Notify:      alerts.LogNotifier{},
		ServiceName: cfg.ServiceName + "-alerts",
	}

	group := getenv("ALERTS_GROUP", "alerts-svc")
	workers := mustAtoi(os.Getenv("ALERTS_WORKERS"), 4)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicStockDebited, workers)

	go func() {
		log.Printf("alerts consumer started: group=%s topic=%s workers=%d", group, events.TopicStockDebited, workers)
		if err := cons.Start(ctx, svc.HandleStockDebited); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
