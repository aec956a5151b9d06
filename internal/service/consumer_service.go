package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"intellicart-assistant-be/internal/client"
	"intellicart-assistant-be/internal/pkg/logger"
	"intellicart-assistant-be/internal/pkg/mailer"
	"intellicart-assistant-be/pkg/events"
	pubnats "intellicart-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process order topic. For each placed
// order it forwards the event to NATS and emails a confirmation, both
// best effort so a flaky bus or SMTP never blocks checkout.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	natsPublisher *pubnats.Publisher
	mail          mailer.IEmailService
	users         client.IUserClient
	logger        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	natsPublisher *pubnats.Publisher,
	mail mailer.IEmailService,
	users client.IUserClient,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		natsPublisher: natsPublisher,
		mail:          mail,
		users:         users,
		logger:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
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

type eventEnvelope struct {
	Type       string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt time.Time              `json:"occurredAt"`
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.logger.Error("consumer", "failed to unmarshal event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if envelope.Type != events.OrderPlacedType {
		cs.logger.Debug("consumer", "ignoring event", map[string]interface{}{"type": envelope.Type})
		msg.Ack()
		return
	}

	cs.logger.Info("consumer", "processing placed order", map[string]interface{}{
		"orderId": envelope.Payload["orderId"],
		"userId":  envelope.Payload["userId"],
	})

	cs.forwardToBus(ctx, envelope)
	cs.sendConfirmation(ctx, envelope.Payload)

	msg.Ack()
}

func (cs *consumerService) forwardToBus(ctx context.Context, envelope eventEnvelope) {
	if cs.natsPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       envelope.Type,
		Data:       envelope.Payload,
		OccurredAt: envelope.OccurredAt,
	}
	if err := cs.natsPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("consumer", "NATS forward failed", map[string]interface{}{"error": err.Error()})
	}
}

func (cs *consumerService) sendConfirmation(ctx context.Context, payload map[string]interface{}) {
	if cs.mail == nil {
		return
	}

	userID := asInt64(payload["userId"])
	if userID == 0 {
		return
	}
	user, err := cs.users.Get(ctx, userID)
	if err != nil || user == nil || user.Email == "" {
		cs.logger.Warn("consumer", "no email for order confirmation", map[string]interface{}{"userId": userID})
		return
	}

	orderID := fmt.Sprintf("%v", payload["orderId"])
	total, _ := payload["totalAmount"].(float64)

	var lines []mailer.OrderLine
	if items, ok := payload["items"].([]interface{}); ok {
		for _, it := range items {
			entry, ok := it.(map[string]interface{})
			if !ok {
				continue
			}
			title, _ := entry["title"].(string)
			price, _ := entry["price"].(float64)
			lines = append(lines, mailer.OrderLine{Title: title, Price: price})
		}
	}

	if err := cs.mail.SendOrderConfirmation(user.Email, orderID, lines, total); err != nil {
		cs.logger.Warn("consumer", "confirmation email failed", map[string]interface{}{"error": err.Error()})
	}
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}
