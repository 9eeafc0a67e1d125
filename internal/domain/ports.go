package domain

import "context"

// OrderRepository описывает требования к хранилищу готовых заказов.
type OrderRepository interface {
	// Create сохраняет заказ. Возвращает ErrOrderAlreadyExists, если ID уже занят.
	Create(ctx context.Context, order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// List возвращает последние заказы, новые первыми; limit <= 0 — без ограничения.
	List(ctx context.Context, limit int) ([]Order, error)
}

// EventPublisher публикует события о заказах во внешнюю шину.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order Order) error
	Close() error
}
