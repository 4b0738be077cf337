package devgateway

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/araute/storefront-admin/internal/redisx"
)

// Relay turns change events into feed snapshots: for every event it reloads
// the affected entity's full record set and publishes it to the entity's
// pub/sub channel. Snapshots are idempotent, so redelivered events are
// harmless.
type Relay struct {
	Store *Store
	Redis *redis.Client
	Log   *zap.Logger
}

type snapshotMessage struct {
	Items  []json.RawMessage `json:"items"`
	Synced bool              `json:"synced"`
}

// HandleChange is wired as the kafka consumer handler.
func (r *Relay) HandleChange(ctx context.Context, m kafka.Message) error {
	var ev ChangeEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		// Poison message; commit it and move on.
		r.Log.Warn("undecodable change event", zap.Error(err))
		return nil
	}

	items, err := r.Store.ListAll(ctx, ev.Entity)
	if err != nil {
		return err
	}
	if items == nil {
		items = []json.RawMessage{}
	}

	payload, err := json.Marshal(snapshotMessage{Items: items, Synced: true})
	if err != nil {
		return err
	}
	if err := r.Redis.Publish(ctx, redisx.FeedChannel(ev.Entity), payload).Err(); err != nil {
		return err
	}
	r.Log.Debug("snapshot published",
		zap.String("entity", ev.Entity), zap.Int("records", len(items)))
	return nil
}
