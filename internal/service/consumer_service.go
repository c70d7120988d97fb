package service

import (
	"context"
	"encoding/json"

	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventForwarder is a downstream sink for domain events: the NATS stream or
// the live websocket feed.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type LiveBroadcaster interface {
	BroadcastEvent(event events.Event)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	bus        EventForwarder // nil when NATS is not configured
	live       LiveBroadcaster
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	bus EventForwarder,
	live LiveBroadcaster,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		bus:        bus,
		live:       live,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var env events.Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		cs.logger.Error("EventConsumer", "Failed to unmarshal event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed, retrying will not help
		return
	}
	event := env.Event()

	if cs.live != nil {
		cs.live.BroadcastEvent(event)
	}

	// Ticks are live-view only.
	if cs.bus != nil && event.EventType() != events.RecordingTick {
		if err := cs.bus.Publish(ctx, event); err != nil {
			cs.logger.Warn("EventConsumer", "Failed to forward event to NATS", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
