package barista

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/barista/internal/domain"
)

// ErrCircuitOpen возвращается, пока circuit breaker не пропускает публикации.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// RetryConfig конфигурация для retry логики.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryingPublisher повторяет публикацию с экспоненциальной задержкой и
// перестаёт обращаться к брокеру, когда открыт circuit breaker.
type RetryingPublisher struct {
	next    domain.EventPublisher
	config  RetryConfig
	breaker *CircuitBreaker
	logger  *log.Entry
}

// NewRetryingPublisher оборачивает publisher. breaker может быть nil.
func NewRetryingPublisher(next domain.EventPublisher, config RetryConfig, breaker *CircuitBreaker, logger *log.Entry) *RetryingPublisher {
	if logger == nil {
		logger = log.WithField("component", "retrying-publisher")
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.BackoffFactor < 1 {
		config.BackoffFactor = 1
	}
	return &RetryingPublisher{next: next, config: config, breaker: breaker, logger: logger}
}

// PublishOrderPlaced публикует событие, повторяя временные ошибки.
func (p *RetryingPublisher) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	var lastErr error
	delay := p.config.InitialDelay

	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		err := p.attempt(ctx, order)
		if err == nil {
			if attempt > 1 {
				p.logger.WithFields(log.Fields{
					"order_id": order.ID(),
					"attempt":  attempt,
				}).Info("order event published after retry")
			}
			return nil
		}
		lastErr = err

		if !shouldRetry(err) || attempt == p.config.MaxAttempts {
			break
		}

		p.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID(),
			"attempt":  attempt,
			"delay":    delay,
		}).Warn("order event publish failed, retrying")

		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		delay = time.Duration(float64(delay) * p.config.BackoffFactor)
		if p.config.MaxDelay > 0 && delay > p.config.MaxDelay {
			delay = p.config.MaxDelay
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", p.config.MaxAttempts, lastErr)
}

// Close закрывает обёрнутый publisher.
func (p *RetryingPublisher) Close() error {
	return p.next.Close()
}

func (p *RetryingPublisher) attempt(ctx context.Context, order domain.Order) error {
	if p.breaker == nil {
		return p.next.PublishOrderPlaced(ctx, order)
	}
	return p.breaker.Execute("PublishOrderPlaced", func() error {
		return p.next.PublishOrderPlaced(ctx, order)
	})
}

// Отмена контекста и открытый breaker повторять бессмысленно.
func shouldRetry(err error) bool {
	return !errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded) &&
		!errors.Is(err, ErrCircuitOpen)
}

// CircuitState — состояние circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker простая потокобезопасная реализация circuit breaker.
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration
	now          func() time.Time

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	state       CircuitState
	logger      *log.Entry
}

// NewCircuitBreaker создаёт breaker, открывающийся после maxFailures ошибок подряд.
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, logger *log.Entry) *CircuitBreaker {
	if logger == nil {
		logger = log.WithField("component", "circuit-breaker")
	}
	if maxFailures <= 0 {
		maxFailures = 1
	}
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		now:          time.Now,
		state:        CircuitClosed,
		logger:       logger,
	}
}

// State возвращает текущее состояние.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Execute выполняет операцию через circuit breaker.
func (cb *CircuitBreaker) Execute(operation string, fn func() error) error {
	cb.mu.Lock()
	if cb.state == CircuitOpen {
		if cb.now().Sub(cb.lastFailure) <= cb.resetTimeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.state = CircuitHalfOpen
		cb.logger.WithField("operation", operation).Info("circuit breaker half-open")
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailure = cb.now()
		if cb.state == CircuitHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = CircuitOpen
			cb.logger.WithFields(log.Fields{
				"operation": operation,
				"failures":  cb.failures,
			}).Warn("circuit breaker opened")
		}
		return err
	}

	if cb.state == CircuitHalfOpen {
		cb.logger.WithField("operation", operation).Info("circuit breaker closed")
	}
	cb.state = CircuitClosed
	cb.failures = 0
	return nil
}
