// Package bus is the realtime notification channel. Events travel as JSON
// envelopes over Redis Pub/Sub; delivery is best-effort fan-out to whoever
// is subscribed at publish time. Durable state never lives here.
package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Envelope wraps every event put on a topic.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Publisher is the server-side half of the bus.
type Publisher interface {
	Publish(ctx context.Context, topic, event string, payload any) error
}

// Bus implements Publisher over Redis and hands out Subscribers for the
// client-side half.
type Bus struct {
	rdb *redis.Client
	log *zap.SugaredLogger
}

func New(rdb *redis.Client, log *zap.SugaredLogger) *Bus {
	return &Bus{rdb: rdb, log: log}
}

// Publish marshals the payload into an envelope and fans it out to all
// current subscribers of the topic. A zero-subscriber publish is not an
// error; the event is simply dropped.
func (b *Bus) Publish(ctx context.Context, topic, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	env, err := json.Marshal(Envelope{Event: event, Payload: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if err := b.rdb.Publish(ctx, topic, env).Err(); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event, topic, err)
	}
	return nil
}
