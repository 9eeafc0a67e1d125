package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики приёма заказов.
type OrderMetrics struct {
	ordersPlaced   prometheus.Counter
	ordersRejected *prometheus.CounterVec
	quotes         prometheus.Counter
	publishFailed  prometheus.Counter

	orderPrice *prometheus.HistogramVec
	syrups     *prometheus.CounterVec
}

// NewOrderMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer регистрирует метрики в переданном реестре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersPlaced: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barista_orders_placed_total",
			Help: "Total number of coffee orders accepted",
		})),
		ordersRejected: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barista_orders_rejected_total",
			Help: "Total number of coffee orders rejected, by reason",
		}, []string{"reason"})),
		quotes: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barista_quotes_total",
			Help: "Total number of price quotes served",
		})),
		publishFailed: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barista_order_events_failed_total",
			Help: "Total number of order events that could not be published",
		})),
		orderPrice: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "barista_order_price",
			Help:    "Price of accepted orders in major currency units",
			Buckets: []float64{100, 200, 300, 400, 500, 600, 800, 1000},
		}, []string{"base"})),
		syrups: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barista_syrups_total",
			Help: "Syrup portions added to accepted orders",
		}, []string{"syrup"})),
	}
}

// register регистрирует коллектор; при AlreadyRegisteredError отдаёт существующий того же типа.
func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type %T", alreadyRegistered.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// RecordOrderPlaced учитывает принятый заказ: счётчик, цену и сиропы.
func (m *OrderMetrics) RecordOrderPlaced(base string, price float64, syrups []string) {
	m.ordersPlaced.Inc()
	m.orderPrice.WithLabelValues(base).Observe(price)
	for _, syrup := range syrups {
		m.syrups.WithLabelValues(syrup).Inc()
	}
}

// RecordOrderRejected увеличивает счётчик отклонённых заказов.
func (m *OrderMetrics) RecordOrderRejected(reason string) {
	m.ordersRejected.WithLabelValues(reason).Inc()
}

func (m *OrderMetrics) RecordQuote() {
	m.quotes.Inc()
}

func (m *OrderMetrics) RecordPublishFailed() {
	m.publishFailed.Inc()
}
