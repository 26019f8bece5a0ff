package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-tutoring-be/pkg/events"
	pktNats "ai-tutoring-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// eventEnvelope is the wire form of an event on the in-process bus.
type eventEnvelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// MarshalEvent packs an event for the in-process bus.
func MarshalEvent(event events.Event) ([]byte, error) {
	return json.Marshal(eventEnvelope{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains governance events from the in-process bus,
// materializes notifications, and mirrors the events onto NATS for
// external consumers. Keeping this off the request path means a slow
// NATS or database never delays a turn.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	notifier  *NotificationService
	publisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	notifier *NotificationService,
	publisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		notifier:  notifier,
		publisher: publisher,
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

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		log.Printf("[ERROR] Failed to unmarshal event envelope: %v", err)
		msg.Ack() // malformed payloads never get better on retry
		return
	}

	event := events.BaseEvent{
		Type:       envelope.Type,
		Data:       envelope.Data,
		OccurredAt: envelope.OccurredAt,
	}

	if err := cs.notifier.HandleEvent(ctx, event); err != nil {
		log.Printf("[ERROR] Notification handling failed for %s: %v", envelope.Type, err)
		msg.Nack() // retriable, database may be back next attempt
		return
	}

	if cs.publisher != nil {
		if err := cs.publisher.Publish(ctx, event); err != nil {
			// External mirroring is best effort; the notification is
			// already persisted.
			log.Printf("[WARN] NATS mirror failed for %s: %v", envelope.Type, err)
		}
	}

	msg.Ack()
}
