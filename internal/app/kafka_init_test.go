package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/barista/internal/health"
	"github.com/vladislavdragonenkov/barista/internal/messaging/kafka"
)

func TestInitPublisher_EmptyBrokers(t *testing.T) {
	logger := log.WithField("test", "kafka")

	publisher, checker := initPublisher(Config{}, logger)

	if _, ok := publisher.(kafka.NoopPublisher); !ok {
		t.Fatalf("expected noop publisher, got %T", publisher)
	}
	if checker != nil {
		t.Error("expected no kafka checker without brokers")
	}
}

func TestInitPublisher_UnreachableBrokers(t *testing.T) {
	logger := log.WithField("test", "kafka")

	cfg := DefaultConfig()
	cfg.KafkaBrokers = "invalid-broker:9999, another:9999"
	publisher, checker := initPublisher(cfg, logger)

	// заказы продолжают приниматься без брокера
	if _, ok := publisher.(kafka.NoopPublisher); !ok {
		t.Fatalf("expected noop publisher on connection error, got %T", publisher)
	}
	if checker == nil {
		t.Fatal("expected degraded kafka checker")
	}
	if check := checker.Check(context.Background()); check.Status != healthcheck.StatusDegraded {
		t.Fatalf("expected degraded status, got %+v", check)
	}
}

func TestClosePublisher_Nil(_ *testing.T) {
	closePublisher(nil, log.WithField("test", "kafka"))
}

func TestClosePublisher_Noop(_ *testing.T) {
	closePublisher(kafka.NoopPublisher{}, log.WithField("test", "kafka"))
}
