// Command migrate применяет и откатывает миграции схемы PostgreSQL.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/barista/internal/app"
	"github.com/vladislavdragonenkov/barista/internal/storage/postgres"
)

// migrator — часть postgres.Store, нужная командам.
type migrator interface {
	MigrateUp(ctx context.Context, steps int) error
	MigrateDown(ctx context.Context, steps int) error
	MigrationStatus(ctx context.Context) (int64, int, error)
	Close() error
}

type openFunc func(ctx context.Context, dsn string) (migrator, error)

func openPostgres(ctx context.Context, dsn string) (migrator, error) {
	return postgres.Open(ctx, dsn)
}

type env struct {
	ctx  context.Context
	out  io.Writer
	open openFunc
}

type CLI struct {
	DSN     string        `help:"PostgreSQL DSN." env:"BARISTA_POSTGRES_DSN" required:""`
	Timeout time.Duration `help:"Overall timeout." default:"30s"`

	Up     UpCmd     `cmd:"" help:"Apply pending migrations."`
	Down   DownCmd   `cmd:"" help:"Roll back applied migrations."`
	Status StatusCmd `cmd:"" help:"Show the current schema version." default:"1"`
}

type UpCmd struct {
	Steps int `help:"Number of migrations to apply (0 = all)." default:"0"`
}

func (c *UpCmd) Run(e *env, root *CLI) error {
	return withStore(e, root, func(ctx context.Context, m migrator) error {
		if err := m.MigrateUp(ctx, c.Steps); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
		return printStatus(ctx, e.out, m, "migrate up ok")
	})
}

type DownCmd struct {
	Steps int `help:"Number of migrations to roll back." default:"1"`
}

func (c *DownCmd) Run(e *env, root *CLI) error {
	return withStore(e, root, func(ctx context.Context, m migrator) error {
		if err := m.MigrateDown(ctx, c.Steps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
		return printStatus(ctx, e.out, m, "migrate down ok")
	})
}

type StatusCmd struct{}

func (StatusCmd) Run(e *env, root *CLI) error {
	return withStore(e, root, func(ctx context.Context, m migrator) error {
		return printStatus(ctx, e.out, m, "migration status")
	})
}

func withStore(e *env, root *CLI, fn func(context.Context, migrator) error) error {
	ctx, cancel := context.WithTimeout(e.ctx, root.Timeout)
	defer cancel()

	store, err := e.open(ctx, root.DSN)
	if err != nil {
		return fmt.Errorf("open postgres store: %w", err)
	}
	defer func() { _ = store.Close() }()

	return fn(ctx, store)
}

func printStatus(ctx context.Context, out io.Writer, m migrator, prefix string) error {
	version, count, err := m.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	_, err = fmt.Fprintf(out, "%s: version=%d applied=%d\n", prefix, version, count)
	return err
}

func run(args []string, e *env) error {
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("migrate"), kong.Writers(e.out, e.out))
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(e, &cli)
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if err := app.LoadDotEnv(".env"); err != nil {
		log.WithError(err).Warn("failed to load .env")
	}

	e := &env{ctx: context.Background(), out: os.Stdout, open: openPostgres}
	if err := run(os.Args[1:], e); err != nil {
		log.WithError(err).Fatal("migrate failed")
	}
}
