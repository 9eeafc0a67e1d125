// Package barista собирает заказы через domain.OrderBuilder, сохраняет их и
// публикует события о принятых заказах.
package barista

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/barista/internal/domain"
	"github.com/vladislavdragonenkov/barista/internal/metrics"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// OrderRequest — параметры напитка, пришедшие от клиента.
type OrderRequest struct {
	Base   string
	Size   string
	Milk   string
	Syrups []string
	Sugar  int
	Iced   bool
}

// Options задаёт зависимости сервиса. Repo обязателен.
type Options struct {
	Repo      domain.OrderRepository
	Publisher domain.EventPublisher
	Metrics   *metrics.OrderMetrics
	Menu      *domain.Menu
	Logger    *log.Entry
	ListLimit int
	// Now и NewID подменяются в тестах.
	Now   func() time.Time
	NewID func() string
}

// Service — прикладной слой кофейни.
type Service struct {
	repo      domain.OrderRepository
	publisher domain.EventPublisher
	metrics   *metrics.OrderMetrics
	menu      domain.Menu
	logger    *log.Entry
	listLimit int
	now       func() time.Time
	newID     func() string
}

// NewService создаёт сервис. Меню по умолчанию — domain.DefaultMenu.
func NewService(opts Options) (*Service, error) {
	if opts.Repo == nil {
		return nil, errors.New("barista: order repository is required")
	}

	menu := domain.DefaultMenu()
	if opts.Menu != nil {
		if err := opts.Menu.Validate(); err != nil {
			return nil, fmt.Errorf("barista: invalid menu: %w", err)
		}
		menu = *opts.Menu
	}

	s := &Service{
		repo:      opts.Repo,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		menu:      menu,
		logger:    opts.Logger,
		listLimit: opts.ListLimit,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "barista-service")
	}
	if s.listLimit <= 0 {
		s.listLimit = defaultListLimit
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s, nil
}

// Menu возвращает прайс-лист, по которому сервис считает цены.
func (s *Service) Menu() domain.Menu { return s.menu }

// Quote собирает заказ и возвращает его без сохранения.
func (s *Service) Quote(_ context.Context, req OrderRequest) (domain.Order, error) {
	order, err := s.build(req)
	if err != nil {
		s.reject("invalid_configuration")
		return domain.Order{}, err
	}
	if s.metrics != nil {
		s.metrics.RecordQuote()
	}
	return order, nil
}

// PlaceOrder собирает, сохраняет и публикует заказ.
//
// Ошибка публикации не откатывает сохранённый заказ: он возвращается вместе
// с ошибкой, обёрнутой в domain.ErrPublishFailed.
func (s *Service) PlaceOrder(ctx context.Context, req OrderRequest) (domain.Order, error) {
	order, err := s.build(req)
	if err != nil {
		s.reject("invalid_configuration")
		s.logger.WithError(err).Debug("order rejected")
		return domain.Order{}, err
	}

	order = order.WithID(s.newID()).WithCreatedAt(s.now())
	logger := s.logger.WithFields(log.Fields{
		"order_id": order.ID(),
		"base":     order.Base(),
		"price":    domain.FormatMinor(order.PriceMinor()),
	})

	if err := s.repo.Create(ctx, order); err != nil {
		s.reject("storage")
		logger.WithError(err).Error("failed to persist order")
		return domain.Order{}, fmt.Errorf("persist order: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced(order.Base(), order.Price(), order.Syrups())
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
			if s.metrics != nil {
				s.metrics.RecordPublishFailed()
			}
			logger.WithError(err).Warn("failed to publish order event")
			return order, fmt.Errorf("%w: %w", domain.ErrPublishFailed, err)
		}
	}

	logger.Info("order placed")
	return order, nil
}

// GetOrder возвращает сохранённый заказ.
func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if id == "" {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return s.repo.Get(ctx, id)
}

// ListOrders возвращает последние заказы. limit <= 0 — лимит по умолчанию,
// значения больше maxListLimit обрезаются.
func (s *Service) ListOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	switch {
	case limit <= 0:
		limit = s.listLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	return s.repo.List(ctx, limit)
}

func (s *Service) build(req OrderRequest) (domain.Order, error) {
	b := domain.NewOrderBuilderWithMenu(s.menu).SetBase(req.Base)
	if req.Size != "" {
		b.SetSize(req.Size)
	}
	b.SetMilk(req.Milk)
	for _, syrup := range req.Syrups {
		b.AddSyrup(syrup)
	}
	return b.SetSugar(req.Sugar).SetIced(req.Iced).Build()
}

func (s *Service) reject(reason string) {
	if s.metrics != nil {
		s.metrics.RecordOrderRejected(reason)
	}
}
