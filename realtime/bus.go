// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
)

const (
	topic       = "sitetime.events"
	metaEvent   = "event"
	busCapacity = 256
)

// Broadcaster receives events leaving the bus.
type Broadcaster interface {
	Broadcast(event string, data any)
}

// Bus decouples handlers from the hub. Handlers publish after a mutation
// commits; Forward delivers to the hub. The channel is not persistent, so
// events published with no forwarder running are discarded.
type Bus struct {
	pubsub *gochannel.GoChannel
	ready  chan struct{}
	once   sync.Once
}

// NewBus creates an in-process bus. A nil logger discards watermill logs.
func NewBus(logger *slog.Logger) *Bus {
	var adapter watermill.LoggerAdapter = watermill.NopLogger{}
	if logger != nil {
		adapter = watermill.NewSlogLogger(logger)
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: busCapacity,
			Persistent:          false,
		}, adapter),
		ready: make(chan struct{}),
	}
}

// Notify publishes an event. Failures are logged and never returned, so a
// notification problem cannot fail the request that caused it.
func (b *Bus) Notify(ctx context.Context, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode event", "event", event, "error", err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(metaEvent, event)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "event", event, "error", err)
	}
}

// Ready is closed once the first forwarder has subscribed.
func (b *Bus) Ready() <-chan struct{} {
	return b.ready
}

// Forward delivers every published event to sink until ctx is done.
func (b *Bus) Forward(ctx context.Context, sink Broadcaster) error {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	b.once.Do(func() { close(b.ready) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return ctx.Err()
			}
			sink.Broadcast(msg.Metadata.Get(metaEvent), json.RawMessage(msg.Payload))
			msg.Ack()
		}
	}
}

// Close shuts the underlying pub/sub down.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
