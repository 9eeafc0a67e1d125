package kafka

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/barista/internal/domain"
)

// OrderPublisher публикует события заказов в заданный topic.
type OrderPublisher struct {
	producer *Producer
	topic    string
}

// NewOrderPublisher создаёт паблишер поверх producer; пустой topic заменяется на TopicOrderEvents.
func NewOrderPublisher(producer *Producer, topic string) *OrderPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OrderPublisher{producer: producer, topic: topic}
}

// PublishOrderPlaced отправляет событие order.placed с ключом по ID заказа.
func (p *OrderPublisher) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka order publisher is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.producer.PublishEvent(p.topic, order.ID(), NewOrderEvent(EventTypeOrderPlaced, order))
}

func (p *OrderPublisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// NoopPublisher используется, когда Kafka не настроена.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPlaced(context.Context, domain.Order) error { return nil }
func (NoopPublisher) Close() error                                          { return nil }

var (
	_ domain.EventPublisher = (*OrderPublisher)(nil)
	_ domain.EventPublisher = NoopPublisher{}
)
