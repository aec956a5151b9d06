package service

import (
	"context"
	"encoding/json"
	"fmt"

	"intellicart-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
	PublishEvent(ctx context.Context, event events.Event) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := p.pubSub.Publish(p.topicName, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topicName, err)
	}
	return nil
}

// PublishEvent serializes an event envelope onto the in-process topic.
// The consumer forwards it to NATS and handles side effects.
func (p *publisherService) PublishEvent(ctx context.Context, event events.Event) error {
	envelope := map[string]interface{}{
		"type":       event.EventType(),
		"payload":    event.Payload(),
		"occurredAt": event.Timestamp(),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventType(), err)
	}
	return p.Publish(ctx, data)
}
