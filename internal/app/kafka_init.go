package app

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/barista/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/barista/internal/health"
	"github.com/vladislavdragonenkov/barista/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/barista/internal/service/barista"
)

const breakerResetTimeout = 30 * time.Second

// initPublisher собирает publisher событий. Без брокеров или при ошибке
// подключения используется kafka.NoopPublisher: заказы продолжают приниматься.
func initPublisher(cfg Config, logger *log.Entry) (domain.EventPublisher, healthcheck.Checker) {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		logger.Info("kafka brokers are not configured, order events are disabled")
		return kafka.NoopPublisher{}, nil
	}

	producer, err := kafka.NewProducer(brokers)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		checker := healthcheck.NewOptionalChecker("kafka", func(context.Context) error { return err })
		return kafka.NoopPublisher{}, checker
	}
	logger.WithField("brokers", brokers).Info("kafka producer initialized")

	breaker := barista.NewCircuitBreaker(cfg.PublishMaxAttempts, breakerResetTimeout, logger.WithField("layer", "kafka-breaker"))
	publisher := barista.NewRetryingPublisher(
		kafka.NewOrderPublisher(producer, cfg.KafkaTopic),
		barista.RetryConfig{
			MaxAttempts:   cfg.PublishMaxAttempts,
			InitialDelay:  cfg.PublishRetryDelay,
			MaxDelay:      5 * cfg.PublishRetryDelay,
			BackoffFactor: 2,
		},
		breaker,
		logger.WithField("layer", "kafka-publisher"),
	)

	checker := healthcheck.NewOptionalChecker("kafka", func(context.Context) error {
		if breaker.State() == barista.CircuitOpen {
			return barista.ErrCircuitOpen
		}
		return nil
	})
	return publisher, checker
}

// closePublisher закрывает publisher и логирует результат.
func closePublisher(publisher domain.EventPublisher, logger *log.Entry) {
	if publisher == nil {
		return
	}
	if err := publisher.Close(); err != nil {
		logger.WithError(err).Warn("failed to close event publisher")
		return
	}
	logger.Debug("event publisher closed")
}
