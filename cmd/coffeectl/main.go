// Command coffeectl — консольный клиент кофейни: считает цену локально,
// показывает меню и отправляет заказы в сервис barista.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/vladislavdragonenkov/barista/internal/version"
)

// Global — общее состояние, которое kong передаёт командам.
type Global struct {
	Ctx    context.Context
	Out    io.Writer
	Logger *log.Entry
	// Dial открывает соединение с сервисом; подменяется в тестах.
	Dial func(ctx context.Context, addr string) (grpc.ClientConnInterface, func() error, error)
}

func dialGRPC(_ context.Context, addr string) (grpc.ClientConnInterface, func() error, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Close, nil
}

func newParser(cli *CLI, out io.Writer, exit func(int)) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("coffeectl"),
		kong.Description("Coffee order client."),
		kong.UsageOnError(),
		kong.Writers(out, out),
		kong.Exit(exit),
		kong.Vars{"version": version.String()},
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	parser, err := newParser(&cli, os.Stdout, os.Exit)
	if err != nil {
		log.WithError(err).Fatal("failed to build command line parser")
	}

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	global := &Global{
		Ctx:    ctx,
		Out:    os.Stdout,
		Logger: log.WithField("component", "coffeectl"),
		Dial:   dialGRPC,
	}
	if err := kctx.Run(global, &cli); err != nil {
		global.Logger.WithError(err).Fatal("command failed")
	}
}
