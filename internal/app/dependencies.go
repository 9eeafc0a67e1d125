package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/barista/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/barista/internal/health"
	"github.com/vladislavdragonenkov/barista/internal/menufile"
	"github.com/vladislavdragonenkov/barista/internal/storage/memory"
	"github.com/vladislavdragonenkov/barista/internal/storage/postgres"
)

// runtimeDependencies — всё, что нужно сервису помимо транспорта.
type runtimeDependencies struct {
	repo           domain.OrderRepository
	menu           domain.Menu
	storageChecker healthcheck.Checker
	closeFn        func() error
}

// initRuntimeDependencies поднимает хранилище и загружает меню.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	menu, err := menufile.Load(cfg.MenuFile)
	if err != nil {
		return nil, err
	}
	if cfg.MenuFile != "" {
		logger.WithField("menu_file", cfg.MenuFile).Info("menu loaded")
	}

	deps := &runtimeDependencies{menu: menu}

	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		deps.repo = memory.NewOrderRepository()
		deps.storageChecker = healthcheck.NewFuncChecker("storage", func(context.Context) error { return nil })
		deps.closeFn = func() error { return nil }
		logger.Info("using in-memory order storage")
	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("postgres storage requires " + envPostgresDSN)
		}
		store, err := initPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		deps.repo = postgres.NewOrderRepository(store)
		deps.storageChecker = healthcheck.NewFuncChecker("storage", store.Ping)
		deps.closeFn = store.Close
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.StorageDriver)
	}

	return deps, nil
}

func initPostgres(ctx context.Context, cfg Config, logger *log.Entry) (*postgres.Store, error) {
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := postgres.Open(openCtx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if cfg.PostgresAutoMigrate {
		if err := store.MigrateUp(openCtx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		version, applied, err := store.MigrationStatus(openCtx)
		if err == nil {
			logger.WithFields(log.Fields{"version": version, "applied": applied}).Info("postgres schema is up to date")
		}
	}

	logger.Info("using postgres order storage")
	return store, nil
}
