package chatclient_test

import (
	"encoding/json"

	"chatlink/backend/internal/bus"
)

// fakeStream implements bus.Stream in-process so component tests can fire
// events synchronously and inspect subscription state.
type fakeStream struct {
	subscribed map[string]bool
	bindings   map[*bus.Binding]fakeBinding
}

type fakeBinding struct {
	event   string
	handler bus.Handler
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		subscribed: make(map[string]bool),
		bindings:   make(map[*bus.Binding]fakeBinding),
	}
}

func (f *fakeStream) Subscribe(topic string) error {
	f.subscribed[topic] = true
	return nil
}

func (f *fakeStream) Unsubscribe(topic string) error {
	delete(f.subscribed, topic)
	return nil
}

func (f *fakeStream) Bind(event string, h bus.Handler) *bus.Binding {
	b := &bus.Binding{}
	f.bindings[b] = fakeBinding{event: event, handler: h}
	return b
}

func (f *fakeStream) BindAll(bus.AllHandler) *bus.Binding {
	return &bus.Binding{}
}

func (f *fakeStream) Unbind(b *bus.Binding) {
	delete(f.bindings, b)
}

func (f *fakeStream) Close() error { return nil }

// fire delivers an event to handlers bound under its name, mirroring the
// real dispatch: only subscribed topics deliver.
func (f *fakeStream) fire(topic, event string, payload any) {
	if !f.subscribed[topic] {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	for _, b := range f.bindings {
		if b.event == event {
			b.handler(raw)
		}
	}
}
