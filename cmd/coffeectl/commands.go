package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/barista/internal/domain"
	"github.com/vladislavdragonenkov/barista/internal/menufile"
	"github.com/vladislavdragonenkov/barista/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/barista/internal/service/barista"
	grpcsvc "github.com/vladislavdragonenkov/barista/internal/service/grpc"
	"github.com/vladislavdragonenkov/barista/internal/storage/memory"
)

// CLI — корневые флаги и команды.
type CLI struct {
	Addr    string           `help:"Barista gRPC address." default:"localhost:50051" env:"BARISTA_ADDR"`
	Timeout time.Duration    `help:"Per-request timeout." default:"5s"`
	Verbose bool             `short:"v" help:"Enable debug logging."`
	Version kong.VersionFlag `help:"Show version and exit."`

	Quote QuoteCmd `cmd:"" help:"Build a drink locally and print its price."`
	Menu  MenuCmd  `cmd:"" help:"Print the price table."`
	Place PlaceCmd `cmd:"" help:"Place an order with the barista service."`
	Get   GetCmd   `cmd:"" help:"Fetch a placed order by id."`
	List  ListCmd  `cmd:"" help:"List recent orders."`
	Watch WatchCmd `cmd:"" help:"Stream order events from Kafka."`
}

// AfterApply настраивает логирование после разбора флагов.
func (c *CLI) AfterApply() error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	if c.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	return nil
}

// DrinkFlags — параметры напитка, общие для quote и place.
type DrinkFlags struct {
	Base  string   `arg:"" help:"Base drink (espresso, americano, latte, cappuccino)."`
	Size  string   `short:"s" help:"Cup size (small, medium, large)."`
	Milk  string   `short:"m" help:"Milk type."`
	Syrup []string `short:"y" help:"Syrup; repeat for several portions."`
	Sugar int      `help:"Teaspoons of sugar."`
	Iced  bool     `help:"Serve over ice."`
}

func (f DrinkFlags) request() barista.OrderRequest {
	return barista.OrderRequest{
		Base:   f.Base,
		Size:   f.Size,
		Milk:   f.Milk,
		Syrups: f.Syrup,
		Sugar:  f.Sugar,
		Iced:   f.Iced,
	}
}

// QuoteCmd считает цену без обращения к сервису.
type QuoteCmd struct {
	DrinkFlags `embed:""`
	MenuFile string `name:"menu" type:"existingfile" help:"YAML price table to use instead of the default menu."`
}

func (q *QuoteCmd) Run(g *Global) error {
	menu, err := menufile.Load(q.MenuFile)
	if err != nil {
		return err
	}

	svc, err := barista.NewService(barista.Options{
		Repo:   memory.NewOrderRepository(),
		Menu:   &menu,
		Logger: g.Logger,
	})
	if err != nil {
		return err
	}
	order, err := svc.Quote(g.Ctx, q.request())
	if err != nil {
		return err
	}

	printOrder(g, order)
	return nil
}

// MenuCmd печатает прайс-лист.
type MenuCmd struct {
	File string `type:"existingfile" help:"YAML price table; default menu when empty."`
	YAML bool   `name:"yaml" help:"Print the menu as YAML."`
}

func (m *MenuCmd) Run(g *Global) error {
	menu, err := menufile.Load(m.File)
	if err != nil {
		return err
	}

	if m.YAML {
		data, err := menufile.Marshal(menu)
		if err != nil {
			return err
		}
		_, err = g.Out.Write(data)
		return err
	}

	w := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tITEM\tPRICE")
	for _, name := range menu.BaseNames() {
		fmt.Fprintf(w, "base\t%s\t%s\n", name, domain.FormatMinor(menu.Bases[name]))
	}
	for _, size := range menu.Sizes {
		fmt.Fprintf(w, "size\t%s\t+%s\n", size.Name, domain.FormatMinor(size.SurchargeMinor))
	}
	for _, name := range menu.MilkNames() {
		fmt.Fprintf(w, "milk\t%s\t+%s\n", name, domain.FormatMinor(menu.Milks[name]))
	}
	fmt.Fprintf(w, "extra\tsyrup (each)\t+%s\n", domain.FormatMinor(menu.SyrupPriceMinor))
	fmt.Fprintf(w, "extra\tsugar (tsp)\t+%s\n", domain.FormatMinor(menu.SugarPriceMinor))
	fmt.Fprintf(w, "extra\ticed\t+%s\n", domain.FormatMinor(menu.IcedSurchargeMinor))
	return w.Flush()
}

// PlaceCmd отправляет заказ в сервис.
type PlaceCmd struct {
	DrinkFlags `embed:""`
}

func (p *PlaceCmd) Run(g *Global, root *CLI) error {
	return withClient(g, root, func(ctx context.Context, client *grpcsvc.Client) error {
		order, published, err := client.PlaceOrder(ctx, p.request())
		if err != nil {
			return err
		}
		printOrder(g, order)
		if !published {
			g.Logger.WithField("order_id", order.ID()).Warn("order saved but its event was not published")
		}
		return nil
	})
}

// GetCmd запрашивает заказ по идентификатору.
type GetCmd struct {
	ID string `arg:"" help:"Order id."`
}

func (c *GetCmd) Run(g *Global, root *CLI) error {
	return withClient(g, root, func(ctx context.Context, client *grpcsvc.Client) error {
		order, err := client.GetOrder(ctx, c.ID)
		if err != nil {
			return err
		}
		printOrder(g, order)
		return nil
	})
}

// ListCmd печатает последние заказы.
type ListCmd struct {
	Limit int `short:"n" help:"Maximum number of orders; server default when 0." default:"0"`
}

func (c *ListCmd) Run(g *Global, root *CLI) error {
	return withClient(g, root, func(ctx context.Context, client *grpcsvc.Client) error {
		orders, err := client.ListOrders(ctx, c.Limit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tPRICE\tDRINK")
		for _, order := range orders {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				order.ID(),
				order.CreatedAt().Format(time.RFC3339),
				domain.FormatMinor(order.PriceMinor()),
				order.Description())
		}
		return w.Flush()
	})
}

// WatchCmd подписывается на топик событий и печатает принятые заказы.
type WatchCmd struct {
	Brokers []string `help:"Kafka brokers." env:"BARISTA_KAFKA_BROKERS" required:""`
	Topic   string   `help:"Order events topic." default:"barista.order.events" env:"BARISTA_KAFKA_TOPIC"`
	Group   string   `help:"Consumer group id." default:"coffeectl"`
}

func (c *WatchCmd) Run(g *Global) error {
	brokers := make([]string, 0, len(c.Brokers))
	for _, b := range c.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return errors.New("at least one kafka broker is required")
	}

	consumer, err := kafka.NewConsumer(brokers, c.Group, []string{c.Topic}, func(_ context.Context, event *kafka.OrderEvent) error {
		printEvent(g, event)
		return nil
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := consumer.Stop(); err != nil {
			g.Logger.WithError(err).Warn("failed to stop consumer")
		}
	}()

	g.Logger.WithFields(log.Fields{"brokers": brokers, "topic": c.Topic}).Info("watching order events, press Ctrl+C to stop")
	consumer.Start(g.Ctx)
	<-g.Ctx.Done()
	return nil
}

func withClient(g *Global, root *CLI, fn func(context.Context, *grpcsvc.Client) error) error {
	ctx, cancel := context.WithTimeout(g.Ctx, root.Timeout)
	defer cancel()

	conn, closeFn, err := g.Dial(ctx, root.Addr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", root.Addr, err)
	}
	defer func() { _ = closeFn() }()

	return fn(ctx, grpcsvc.NewClient(conn))
}

func printOrder(g *Global, order domain.Order) {
	if order.ID() != "" {
		fmt.Fprintf(g.Out, "order %s\n", order.ID())
	}
	fmt.Fprintln(g.Out, order.Description())
	fmt.Fprintf(g.Out, "price: %s\n", domain.FormatMinor(order.PriceMinor()))
}

func printEvent(g *Global, event *kafka.OrderEvent) {
	order := event.Order()
	fmt.Fprintf(g.Out, "%s %s %s %s\n",
		event.Timestamp.Format(time.RFC3339),
		event.EventType,
		order.ID(),
		order.String())
}
