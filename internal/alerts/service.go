package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/pickleparadise/pickle-store/internal/events"
	kafkax "github.com/pickleparadise/pickle-store/internal/kafka"
	"github.com/pickleparadise/pickle-store/internal/redisx"
)

// Deduper suppresses repeated alerts/events. Backed by Redis in
// production, by a map in tests.
type Deduper interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// Notifier receives one alert per low inventory row.
type Notifier interface {
	LowStock(ctx context.Context, inventoryItemID, variantID string, remaining, threshold int)
}

// Service consumes stock-debit events and raises a low-stock alert for
// every debited row that landed at or below its threshold.
type Service struct {
	Dedup       Deduper
	Notify      Notifier
	ServiceName string
}

// HandleStockDebited is wired as the consumer handler.
func (s *Service) HandleStockDebited(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventStockDebited {
		return nil // ignore
	}

	// event-level dedup
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if seen, err := s.Dedup.Seen(ctx, dkey); err == nil && seen {
		return nil
	}
	_ = s.Dedup.Mark(ctx, dkey)

	p, err := kafkax.UnwrapPayload[events.StockDebitedPayload](env.Payload)
	if err != nil {
		return err
	}

	for _, d := range p.Debits {
		if d.Remaining > d.Threshold {
			continue
		}
		// one open alert per inventory row at a time
		akey := fmt.Sprintf(redisx.KeyLowStockAlert, d.InventoryItemID)
		if seen, err := s.Dedup.Seen(ctx, akey); err == nil && seen {
			continue
		}
		if err := s.Dedup.Mark(ctx, akey); err != nil {
			return err
		}
		s.Notify.LowStock(ctx, d.InventoryItemID, d.VariantID, d.Remaining, d.Threshold)
	}
	return nil
}

// RedisDeduper implements Deduper on a shared Redis, with per-key TTLs
// keyed off the key's prefix.
type RedisDeduper struct {
	Client *redis.Client
}

func (r *RedisDeduper) Seen(ctx context.Context, key string) (bool, error) {
	return redisx.Exists(ctx, r.Client, key)
}

func (r *RedisDeduper) Mark(ctx context.Context, key string) error {
	ttl := redisx.TTLDedup
	if len(key) > 6 && key[:6] == "alert:" {
		ttl = redisx.TTLLowStockAlert
	}
	return r.Client.Set(ctx, key, "1", ttl).Err()
}

// LogNotifier writes alerts to the process log.
type LogNotifier struct{}

func (LogNotifier) LowStock(_ context.Context, inventoryItemID, variantID string, remaining, threshold int) {
	log.Printf("LOW STOCK: inventory_item=%s variant=%s remaining=%d threshold=%d",
		inventoryItemID, variantID, remaining, threshold)
}
