package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Драйверы хранилища заказов.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Переменные окружения сервиса.
const (
	envGRPCAddr            = "BARISTA_GRPC_ADDR"
	envMetricsAddr         = "BARISTA_METRICS_ADDR"
	envStorageDriver       = "BARISTA_STORAGE_DRIVER"
	envPostgresDSN         = "BARISTA_POSTGRES_DSN"
	envPostgresAutoMigrate = "BARISTA_POSTGRES_AUTO_MIGRATE"
	envKafkaBrokers        = "BARISTA_KAFKA_BROKERS"
	envKafkaTopic          = "BARISTA_KAFKA_TOPIC"
	envMenuFile            = "BARISTA_MENU_FILE"
	envListLimit           = "BARISTA_LIST_LIMIT"
	envPublishMaxAttempts  = "BARISTA_PUBLISH_MAX_ATTEMPTS"
	envPublishRetryDelay   = "BARISTA_PUBLISH_RETRY_DELAY"
)

// Config описывает настройки запуска сервиса.
type Config struct {
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool

	// KafkaBrokers — список брокеров через запятую; пусто — события не публикуются.
	KafkaBrokers       string
	KafkaTopic         string
	PublishMaxAttempts int
	PublishRetryDelay  time.Duration

	MenuFile  string
	ListLimit int
}

// DefaultConfig возвращает базовые адреса для gRPC и HTTP-метрик.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		KafkaTopic:          "barista.order.events",
		PublishMaxAttempts:  3,
		PublishRetryDelay:   100 * time.Millisecond,
		ListLimit:           50,
	}
}

// Brokers разбирает KafkaBrokers, отбрасывая пустые элементы.
func (c Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, fmt.Errorf("%s is required for postgres storage", envPostgresDSN))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver: %q", c.StorageDriver))
	}
	if c.GRPCAddr == "" {
		errs = append(errs, errors.New("grpc address is required"))
	}
	return errors.Join(errs...)
}

// LookupFunc совместима с os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ReadConfigFromEnv накладывает переменные окружения на DefaultConfig.
// Некорректные значения не прерывают запуск: вместо них остаются значения
// по умолчанию, а описание проблемы попадает в warnings.
func ReadConfigFromEnv(lookup LookupFunc) (Config, []string) {
	cfg := DefaultConfig()
	var warnings []string

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str(envGRPCAddr, &cfg.GRPCAddr)
	str(envMetricsAddr, &cfg.MetricsAddr)
	str(envPostgresDSN, &cfg.PostgresDSN)
	str(envKafkaBrokers, &cfg.KafkaBrokers)
	str(envKafkaTopic, &cfg.KafkaTopic)
	str(envMenuFile, &cfg.MenuFile)

	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		switch driver := strings.ToLower(strings.TrimSpace(v)); driver {
		case StorageDriverMemory, StorageDriverPostgres:
			cfg.StorageDriver = driver
		default:
			warnings = append(warnings, fmt.Sprintf("%s=%q is not supported, using %q", envStorageDriver, v, cfg.StorageDriver))
		}
	}

	if v, ok := lookup(envPostgresAutoMigrate); ok && strings.TrimSpace(v) != "" {
		if b, err := parseBool(v); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envPostgresAutoMigrate, err))
		} else {
			cfg.PostgresAutoMigrate = b
		}
	}

	positiveInt := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			warnings = append(warnings, fmt.Sprintf("%s=%q must be a positive integer, using %d", key, v, *dst))
			return
		}
		*dst = n
	}
	positiveInt(envListLimit, &cfg.ListLimit)
	positiveInt(envPublishMaxAttempts, &cfg.PublishMaxAttempts)

	if v, ok := lookup(envPublishRetryDelay); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil || d < 0 {
			warnings = append(warnings, fmt.Sprintf("%s=%q must be a non-negative duration, using %s", envPublishRetryDelay, v, cfg.PublishRetryDelay))
		} else {
			cfg.PublishRetryDelay = d
		}
	}

	return cfg, warnings
}

// LoadDotEnv подгружает переменные из файла, не перетирая уже заданные.
// Отсутствие файла ошибкой не считается.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", v)
	}
}
