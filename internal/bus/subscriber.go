package bus

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Handler receives the payload of one event occurrence.
type Handler func(payload json.RawMessage)

// AllHandler receives every event on every subscribed topic, with the
// topic it arrived on. Used by the websocket gateway to forward envelopes.
type AllHandler func(topic string, env Envelope)

// Binding is the handle returned by Bind/BindAll; pass it back to Unbind.
type Binding struct {
	event   string
	handler Handler
	all     AllHandler
}

// Stream is the client-side contract: subscribe/unsubscribe manage topics,
// bind/unbind manage event handlers. Bindings apply across every topic the
// stream is subscribed to.
type Stream interface {
	Subscribe(topic string) error
	Unsubscribe(topic string) error
	Bind(event string, h Handler) *Binding
	BindAll(h AllHandler) *Binding
	Unbind(b *Binding)
	Close() error
}

// Subscriber is the Redis-backed Stream. All handlers run on a single
// dispatch goroutine, so handler code never needs its own locking.
type Subscriber struct {
	ctx    context.Context
	pubsub *redis.PubSub
	log    *zap.SugaredLogger

	mu       sync.Mutex
	bindings map[string][]*Binding
	catchAll []*Binding
}

// NewSubscriber opens a pub/sub connection with no topics attached yet.
func (b *Bus) NewSubscriber(ctx context.Context) *Subscriber {
	s := &Subscriber{
		ctx:      ctx,
		pubsub:   b.rdb.Subscribe(ctx),
		log:      b.log,
		bindings: make(map[string][]*Binding),
	}
	go s.dispatch()
	return s
}

// dispatch drains the pub/sub connection until Close. The Channel loop
// ends when the underlying connection is closed.
func (s *Subscriber) dispatch() {
	for msg := range s.pubsub.Channel() {
		var env Envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			s.log.Warnw("dropping undecodable bus event", "topic", msg.Channel, "error", err)
			continue
		}

		s.mu.Lock()
		handlers := make([]*Binding, len(s.bindings[env.Event]))
		copy(handlers, s.bindings[env.Event])
		catchAll := make([]*Binding, len(s.catchAll))
		copy(catchAll, s.catchAll)
		s.mu.Unlock()

		for _, binding := range handlers {
			binding.handler(env.Payload)
		}
		for _, binding := range catchAll {
			binding.all(msg.Channel, env)
		}
	}
}

// Subscribe attaches the stream to a topic.
func (s *Subscriber) Subscribe(topic string) error {
	return s.pubsub.Subscribe(s.ctx, topic)
}

// Unsubscribe detaches the stream from a topic. Events published after the
// detach are not redelivered; callers recover missed state by re-fetching
// the log.
func (s *Subscriber) Unsubscribe(topic string) error {
	return s.pubsub.Unsubscribe(s.ctx, topic)
}

// Bind registers a handler for an event name across all subscribed topics.
func (s *Subscriber) Bind(event string, h Handler) *Binding {
	binding := &Binding{event: event, handler: h}
	s.mu.Lock()
	s.bindings[event] = append(s.bindings[event], binding)
	s.mu.Unlock()
	return binding
}

// BindAll registers a catch-all handler that sees every event together
// with the topic it was published on.
func (s *Subscriber) BindAll(h AllHandler) *Binding {
	binding := &Binding{all: h}
	s.mu.Lock()
	s.catchAll = append(s.catchAll, binding)
	s.mu.Unlock()
	return binding
}

// Unbind removes a previously bound handler.
func (s *Subscriber) Unbind(b *Binding) {
	if b == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.all != nil {
		for i, candidate := range s.catchAll {
			if candidate == b {
				s.catchAll = append(s.catchAll[:i], s.catchAll[i+1:]...)
				return
			}
		}
		return
	}
	handlers := s.bindings[b.event]
	for i, candidate := range handlers {
		if candidate == b {
			s.bindings[b.event] = append(handlers[:i], handlers[i+1:]...)
			return
		}
	}
}

// Close tears down the underlying pub/sub connection and stops dispatch.
func (s *Subscriber) Close() error {
	return s.pubsub.Close()
}
