package gateway

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/araute/storefront-admin/internal/redisx"
)

// FeedSource builds live feeds. The first snapshot comes from a plain list
// call and is marked unsynced; subsequent snapshots arrive over the entity's
// pub/sub channel already marked by the gateway.
type FeedSource struct {
	Redis    *redis.Client
	Client   *Client
	PageSize int
	Log      *zap.Logger
}

type snapshotMessage struct {
	Items  []json.RawMessage `json:"items"`
	Synced bool              `json:"synced"`
}

type redisFeed[T any] struct {
	ch        chan Snapshot[T]
	pubsub    *redis.PubSub
	closeOnce sync.Once
}

func (f *redisFeed[T]) Snapshots() <-chan Snapshot[T] { return f.ch }

func (f *redisFeed[T]) Close() error {
	var err error
	f.closeOnce.Do(func() { err = f.pubsub.Close() })
	return err
}

// Watch subscribes to one entity type's change feed. The returned feed keeps
// delivering until Close is called; the snapshot channel closes afterwards.
func Watch[T any](ctx context.Context, s *FeedSource, entity string) (Feed[T], error) {
	pubsub := s.Redis.Subscribe(ctx, redisx.FeedChannel(entity))
	// Force the subscription onto the wire before the initial list so no
	// change slips between the two.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	feed := &redisFeed[T]{
		ch:     make(chan Snapshot[T], 8),
		pubsub: pubsub,
	}

	go func() {
		defer close(feed.ch)

		initial, err := ListAll[T](ctx, s.Client, entity, nil, s.PageSize)
		if err != nil {
			s.Log.Error("feed initial list", zap.String("entity", entity), zap.Error(err))
		} else {
			feed.ch <- Snapshot[T]{Items: initial, Synced: false}
		}

		for msg := range pubsub.Channel() {
			snap, err := decodeSnapshot[T]([]byte(msg.Payload))
			if err != nil {
				s.Log.Error("feed snapshot decode", zap.String("entity", entity), zap.Error(err))
				continue
			}
			feed.ch <- snap
		}
	}()

	return feed, nil
}

func decodeSnapshot[T any](payload []byte) (Snapshot[T], error) {
	var msg snapshotMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Snapshot[T]{}, err
	}
	snap := Snapshot[T]{Items: make([]T, 0, len(msg.Items)), Synced: msg.Synced}
	for _, raw := range msg.Items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return Snapshot[T]{}, err
		}
		snap.Items = append(snap.Items, v)
	}
	return snap, nil
}
