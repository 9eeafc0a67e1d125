// Command republish повторно отправляет события order_placed для заказов,
// уже лежащих в PostgreSQL. Нужен, когда заказ сохранился, а публикация
// в Kafka не прошла. По умолчанию работает в режиме dry-run.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/barista/internal/app"
	"github.com/vladislavdragonenkov/barista/internal/domain"
	"github.com/vladislavdragonenkov/barista/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/barista/internal/storage/postgres"
)

const defaultReplayLimit = 100

type config struct {
	DSN     string        `help:"PostgreSQL DSN." env:"BARISTA_POSTGRES_DSN" required:""`
	Brokers string        `help:"Comma separated Kafka brokers." env:"BARISTA_KAFKA_BROKERS"`
	Topic   string        `help:"Target topic." env:"BARISTA_KAFKA_TOPIC" default:"${topic}"`
	ID      []string      `help:"Order ids to republish; empty means the latest --limit orders." name:"id"`
	Limit   int           `help:"How many latest orders to scan." default:"${limit}"`
	Since   time.Time     `help:"Skip orders created before this RFC3339 time." format:"2006-01-02T15:04:05Z07:00"`
	Execute bool          `help:"Actually publish; without it only prints what would be sent."`
	Timeout time.Duration `help:"Overall timeout." default:"1m"`
}

// Validate вызывается kong после разбора флагов.
func (c *config) Validate() error {
	if c.Limit <= 0 {
		return errors.New("limit must be > 0")
	}
	if c.Execute && len(parseBrokers(c.Brokers)) == 0 {
		return errors.New("--brokers is required with --execute")
	}
	return nil
}

// replayResult — итог прогона.
type replayResult struct {
	Selected  int
	Published int
	Failed    int
}

// replay отбирает заказы и публикует их через publisher.
// publisher == nil означает dry-run.
func replay(ctx context.Context, cfg config, repo domain.OrderRepository, publisher domain.EventPublisher, out io.Writer) (replayResult, error) {
	logger := log.WithField("component", "republish")

	orders, err := selectOrders(ctx, cfg, repo)
	if err != nil {
		return replayResult{}, err
	}

	var result replayResult
	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Selected++

		if publisher == nil {
			fmt.Fprintf(out, "would publish %s %s\n", order.ID(), order)
			continue
		}
		if err := publisher.PublishOrderPlaced(ctx, order); err != nil {
			result.Failed++
			logger.WithError(err).WithField("order_id", order.ID()).Warn("republish failed")
			continue
		}
		result.Published++
		fmt.Fprintf(out, "published %s\n", order.ID())
	}

	if result.Failed > 0 {
		return result, fmt.Errorf("%d of %d orders were not republished", result.Failed, result.Selected)
	}
	return result, nil
}

func selectOrders(ctx context.Context, cfg config, repo domain.OrderRepository) ([]domain.Order, error) {
	if len(cfg.ID) > 0 {
		orders := make([]domain.Order, 0, len(cfg.ID))
		for _, id := range cfg.ID {
			order, err := repo.Get(ctx, strings.TrimSpace(id))
			if err != nil {
				return nil, fmt.Errorf("load order %s: %w", id, err)
			}
			orders = append(orders, order)
		}
		return orders, nil
	}

	latest, err := repo.List(ctx, cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if cfg.Since.IsZero() {
		return latest, nil
	}

	filtered := latest[:0]
	for _, order := range latest {
		if !order.CreatedAt().Before(cfg.Since) {
			filtered = append(filtered, order)
		}
	}
	return filtered, nil
}

func parseBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, part := range parts {
		if broker := strings.TrimSpace(part); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

func run(ctx context.Context, cfg config, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	store, err := postgres.Open(ctx, cfg.DSN)
	if err != nil {
		return fmt.Errorf("open postgres store: %w", err)
	}
	defer func() { _ = store.Close() }()

	var publisher domain.EventPublisher
	if cfg.Execute {
		producer, err := kafka.NewProducer(parseBrokers(cfg.Brokers))
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		publisher = kafka.NewOrderPublisher(producer, cfg.Topic)
		defer func() { _ = publisher.Close() }()
	}

	result, err := replay(ctx, cfg, postgres.NewOrderRepository(store), publisher, out)
	log.WithFields(log.Fields{
		"selected":  result.Selected,
		"published": result.Published,
		"failed":    result.Failed,
		"execute":   cfg.Execute,
	}).Info("republish finished")
	return err
}

func main() {
	if err := app.LoadDotEnv(".env"); err != nil {
		log.WithError(err).Warn("failed to load .env")
	}

	var cfg config
	kong.Parse(&cfg,
		kong.Name("republish"),
		kong.Description("Re-send order events for stored orders."),
		kong.Vars{
			"topic": kafka.TopicOrderEvents,
			"limit": fmt.Sprint(defaultReplayLimit),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.WithError(err).Fatal("republish failed")
	}
}
