package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-memory-capture/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventsTopic is the in-process topic every domain event is published on.
const EventsTopic = "memcap.events"

type IPublisherService interface {
	Publish(ctx context.Context, event events.Event) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (p *publisherService) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(events.ToEnvelope(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", event.EventType())
	msg.SetContext(ctx)

	return p.publisher.Publish(p.topicName, msg)
}

// nopPublisher discards events; used when no bus is wired.
type nopPublisher struct{}

func NewNopPublisher() IPublisherService {
	return nopPublisher{}
}

func (nopPublisher) Publish(ctx context.Context, event events.Event) error {
	return nil
}
