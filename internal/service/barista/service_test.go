package barista_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/barista/internal/domain"
	"github.com/vladislavdragonenkov/barista/internal/metrics"
	"github.com/vladislavdragonenkov/barista/internal/service/barista"
	"github.com/vladislavdragonenkov/barista/internal/storage/memory"
)

var fixedNow = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: false, DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

type recordingPublisher struct {
	mu     sync.Mutex
	orders []domain.Order
	err    error
	closed bool
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, order domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.orders = append(p.orders, order)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *recordingPublisher) published() []domain.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Order(nil), p.orders...)
}

type failingRepo struct{ domain.OrderRepository }

func (failingRepo) Create(context.Context, domain.Order) error { return errors.New("disk full") }

func newService(t *testing.T, repo domain.OrderRepository, pub domain.EventPublisher) *barista.Service {
	t.Helper()
	seq := 0
	svc, err := barista.NewService(barista.Options{
		Repo:      repo,
		Publisher: pub,
		Metrics:   metrics.NewOrderMetricsWithRegisterer(prometheus.NewRegistry()),
		Logger:    loggerForTests(),
		Now:       func() time.Time { return fixedNow },
		NewID: func() string {
			seq++
			return fmt.Sprintf("order-%d", seq)
		},
	})
	require.NoError(t, err)
	return svc
}

func scenarioRequest() barista.OrderRequest {
	return barista.OrderRequest{
		Base:   "latte",
		Size:   "large",
		Milk:   "oat",
		Syrups: []string{"caramel"},
		Sugar:  3,
		Iced:   true,
	}
}

func TestNewService_RequiresRepo(t *testing.T) {
	_, err := barista.NewService(barista.Options{})
	require.Error(t, err)
}

func TestNewService_RejectsInvalidMenu(t *testing.T) {
	menu := domain.DefaultMenu()
	menu.SyrupPriceMinor = 0

	_, err := barista.NewService(barista.Options{Repo: memory.NewOrderRepository(), Menu: &menu})
	require.Error(t, err)
}

func TestPlaceOrder_PersistsAndPublishes(t *testing.T) {
	repo := memory.NewOrderRepository()
	pub := &recordingPublisher{}
	svc := newService(t, repo, pub)

	order, err := svc.PlaceOrder(context.Background(), scenarioRequest())
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID())
	assert.Equal(t, fixedNow, order.CreatedAt())
	assert.Equal(t, int64(55000), order.PriceMinor())

	stored, err := repo.Get(context.Background(), order.ID())
	require.NoError(t, err)
	assert.True(t, stored.Equal(order))

	published := pub.published()
	require.Len(t, published, 1)
	assert.Equal(t, order.ID(), published[0].ID())
}

func TestPlaceOrder_InvalidRequest(t *testing.T) {
	repo := memory.NewOrderRepository()
	pub := &recordingPublisher{}
	svc := newService(t, repo, pub)

	cases := map[string]barista.OrderRequest{
		"missing base":   {},
		"unknown base":   {Base: "mocha"},
		"negative sugar": {Base: "latte", Sugar: -1},
		"empty syrup":    {Base: "latte", Syrups: []string{" "}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		})
	}

	orders, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, pub.published())
}

func TestPlaceOrder_StorageFailure(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(t, failingRepo{}, pub)

	_, err := svc.PlaceOrder(context.Background(), scenarioRequest())
	require.Error(t, err)
	assert.False(t, domain.IsInvalidConfiguration(err))
	assert.Empty(t, pub.published())
}

func TestPlaceOrder_PublishFailureKeepsOrder(t *testing.T) {
	repo := memory.NewOrderRepository()
	svc := newService(t, repo, &recordingPublisher{err: errors.New("broker down")})

	order, err := svc.PlaceOrder(context.Background(), scenarioRequest())
	require.ErrorIs(t, err, domain.ErrPublishFailed)
	assert.Equal(t, "order-1", order.ID())

	_, getErr := repo.Get(context.Background(), order.ID())
	assert.NoError(t, getErr)
}

func TestPlaceOrder_NilPublisher(t *testing.T) {
	svc := newService(t, memory.NewOrderRepository(), nil)

	_, err := svc.PlaceOrder(context.Background(), scenarioRequest())
	require.NoError(t, err)
}

func TestQuote_DoesNotPersist(t *testing.T) {
	repo := memory.NewOrderRepository()
	pub := &recordingPublisher{}
	svc := newService(t, repo, pub)

	order, err := svc.Quote(context.Background(), scenarioRequest())
	require.NoError(t, err)
	assert.Equal(t, "550.00", domain.FormatMinor(order.PriceMinor()))
	assert.Empty(t, order.ID())

	orders, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, pub.published())
}

func TestQuote_DefaultSize(t *testing.T) {
	svc := newService(t, memory.NewOrderRepository(), nil)

	order, err := svc.Quote(context.Background(), barista.OrderRequest{Base: "espresso"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSize, order.Size())
	assert.Equal(t, domain.MilkNone, order.Milk())
}

func TestGetOrder(t *testing.T) {
	svc := newService(t, memory.NewOrderRepository(), nil)

	placed, err := svc.PlaceOrder(context.Background(), scenarioRequest())
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), placed.ID())
	require.NoError(t, err)
	assert.True(t, got.Equal(placed))

	_, err = svc.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = svc.GetOrder(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestListOrders_Limit(t *testing.T) {
	svc := newService(t, memory.NewOrderRepository(), nil)
	for i := 0; i < 3; i++ {
		_, err := svc.PlaceOrder(context.Background(), barista.OrderRequest{Base: "espresso"})
		require.NoError(t, err)
	}

	all, err := svc.ListOrders(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	two, err := svc.ListOrders(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}
