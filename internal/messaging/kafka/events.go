package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/barista/internal/domain"
)

// EventType определяет тип события.
type EventType string

const (
	EventTypeOrderPlaced EventType = "order.placed"
)

// TopicOrderEvents — topic по умолчанию для событий заказов.
const TopicOrderEvents = "barista.order.events"

// OrderEvent — событие о принятом заказе. Цена передаётся в минимальных единицах,
// чтобы потребителю не приходилось округлять.
type OrderEvent struct {
	EventType   EventType `json:"event_type"`
	OrderID     string    `json:"order_id"`
	Base        string    `json:"base"`
	Size        string    `json:"size"`
	Milk        string    `json:"milk"`
	Syrups      []string  `json:"syrups"`
	Sugar       int       `json:"sugar"`
	Iced        bool      `json:"iced"`
	PriceMinor  int64     `json:"price_minor"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewOrderEvent создаёт событие по готовому заказу.
func NewOrderEvent(eventType EventType, order domain.Order) *OrderEvent {
	return &OrderEvent{
		EventType:   eventType,
		OrderID:     order.ID(),
		Base:        order.Base(),
		Size:        order.Size(),
		Milk:        order.Milk(),
		Syrups:      order.Syrups(),
		Sugar:       order.Sugar(),
		Iced:        order.Iced(),
		PriceMinor:  order.PriceMinor(),
		Description: order.Description(),
		CreatedAt:   order.CreatedAt(),
		Timestamp:   time.Now().UTC(),
	}
}

// Order восстанавливает доменный заказ из события.
func (e *OrderEvent) Order() domain.Order {
	return domain.RestoreOrder(domain.OrderRecord{
		ID:         e.OrderID,
		Base:       e.Base,
		Size:       e.Size,
		Milk:       e.Milk,
		Syrups:     e.Syrups,
		Sugar:      e.Sugar,
		Iced:       e.Iced,
		PriceMinor: e.PriceMinor,
		CreatedAt:  e.CreatedAt,
	})
}
