// Command loadtest гоняет сценарии заказов против сервиса barista
// и печатает сводку по задержкам и кодам ответов.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/barista/internal/domain"
	"github.com/vladislavdragonenkov/barista/internal/service/barista"
	grpcsvc "github.com/vladislavdragonenkov/barista/internal/service/grpc"
)

type loadMode string

const (
	modeQuote    loadMode = "quote"
	modePlace    loadMode = "place"
	modePlaceGet loadMode = "place-get"
)

// orderClient — часть grpcsvc.Client, которой пользуется нагрузка.
type orderClient interface {
	PlaceOrder(ctx context.Context, req barista.OrderRequest, opts ...grpc.CallOption) (domain.Order, bool, error)
	Quote(ctx context.Context, req barista.OrderRequest, opts ...grpc.CallOption) (domain.Order, error)
	GetOrder(ctx context.Context, id string, opts ...grpc.CallOption) (domain.Order, error)
}

type config struct {
	Addr        string        `help:"gRPC target address." default:"localhost:50051" env:"BARISTA_ADDR"`
	Total       int           `help:"Scenarios to execute; with --duration acts as an upper bound when > 0." default:"400"`
	Duration    time.Duration `help:"Time-based run duration (0 = count mode)." default:"0s"`
	Concurrency int           `help:"Concurrent workers." default:"40"`
	Connections int           `help:"gRPC client connections." default:"20"`
	Timeout     time.Duration `help:"Per-RPC timeout." default:"5s"`
	Mode        loadMode      `help:"Load mode: quote | place | place-get." default:"place" enum:"quote,place,place-get"`
	Base        []string      `help:"Bases to rotate through." default:"espresso,americano,latte,cappuccino"`
	Output      string        `help:"Optional JSON report output file."`
}

// Validate вызывается kong после разбора флагов.
func (c *config) Validate() error {
	switch {
	case c.Duration < 0:
		return errors.New("duration must be >= 0")
	case c.Duration == 0 && c.Total <= 0:
		return errors.New("total must be > 0 when duration is not set")
	case c.Concurrency <= 0:
		return errors.New("concurrency must be > 0")
	case c.Connections <= 0:
		return errors.New("connections must be > 0")
	case c.Timeout <= 0:
		return errors.New("timeout must be > 0")
	case len(c.Base) == 0:
		return errors.New("at least one base is required")
	}
	if _, err := parseMode(string(c.Mode)); err != nil {
		return err
	}
	return nil
}

func parseMode(value string) (loadMode, error) {
	switch loadMode(strings.TrimSpace(value)) {
	case modeQuote:
		return modeQuote, nil
	case modePlace:
		return modePlace, nil
	case modePlaceGet:
		return modePlaceGet, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type methodReport struct {
	Calls     int64            `json:"calls"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Codes     map[string]int64 `json:"codes"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

type report struct {
	StartedAt         time.Time               `json:"started_at"`
	DurationSeconds   float64                 `json:"duration_seconds"`
	TotalScenarios    int64                   `json:"total_scenarios"`
	FailedScenarios   int64                   `json:"failed_scenarios"`
	ErrorRate         float64                 `json:"error_rate"`
	RPS               float64                 `json:"rps"`
	RevenueMinor      int64                   `json:"revenue_minor"`
	Unpublished       int64                   `json:"unpublished"`
	ScenarioLatencyMs latencySummary          `json:"scenario_latency_ms"`
	Methods           map[string]methodReport `json:"methods"`
}

type methodStats struct {
	calls     int64
	failed    int64
	codes     map[string]int64
	latencies []float64
}

// collector копит статистику вызовов; безопасен для конкурентной записи.
type collector struct {
	mu          sync.Mutex
	methods     map[string]*methodStats
	revenue     int64
	unpublished int64
}

func newCollector() *collector {
	return &collector{methods: make(map[string]*methodStats)}
}

func (c *collector) record(method string, latency time.Duration, code codes.Code) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.methods[method]
	if !ok {
		stats = &methodStats{codes: make(map[string]int64)}
		c.methods[method] = stats
	}
	stats.calls++
	if code != codes.OK {
		stats.failed++
	}
	stats.codes[code.String()]++
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) recordPlaced(order domain.Order, published bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.revenue += order.PriceMinor()
	if !published {
		c.unpublished++
	}
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		RevenueMinor:    c.revenue,
		Unpublished:     c.unpublished,
		Methods:         make(map[string]methodReport, len(c.methods)),
	}

	for name, stats := range c.methods {
		codesCopy := make(map[string]int64, len(stats.codes))
		for code, count := range stats.codes {
			codesCopy[code] = count
		}
		mr := methodReport{
			Calls:     stats.calls,
			Success:   stats.calls - stats.failed,
			Failed:    stats.failed,
			ErrorRate: ratio(stats.failed, stats.calls),
			Codes:     codesCopy,
			LatencyMs: buildLatencySummary(stats.latencies),
		}
		if name == "scenario" {
			result.TotalScenarios = mr.Calls
			result.FailedScenarios = mr.Failed
			result.ErrorRate = mr.ErrorRate
			result.ScenarioLatencyMs = mr.LatencyMs
			continue
		}
		result.Methods[name] = mr
	}
	if duration > 0 {
		result.RPS = float64(result.TotalScenarios) / duration.Seconds()
	}
	return result
}

// requestFor строит напиток для сценария index: базы и опции чередуются,
// чтобы нагрузка задевала разные ветки прайса.
func requestFor(cfg config, index int) barista.OrderRequest {
	req := barista.OrderRequest{
		Base:  cfg.Base[index%len(cfg.Base)],
		Size:  []string{domain.SizeSmall, domain.SizeMedium, domain.SizeLarge}[index%3],
		Sugar: index % 4,
		Iced:  index%5 == 0,
	}
	if index%2 == 1 {
		req.Milk = "oat"
	}
	if index%3 == 2 {
		req.Syrups = []string{"caramel"}
	}
	return req
}

func runScenario(ctx context.Context, client orderClient, cfg config, index int, col *collector) (err error) {
	start := time.Now()
	defer func() { col.record("scenario", time.Since(start), grpcCode(err)) }()

	req := requestFor(cfg, index)
	if cfg.Mode == modeQuote {
		_, err = timed(ctx, cfg.Timeout, "Quote", col, func(ctx context.Context) (domain.Order, error) {
			return client.Quote(ctx, req)
		})
		return err
	}

	var published bool
	order, err := timed(ctx, cfg.Timeout, "PlaceOrder", col, func(ctx context.Context) (domain.Order, error) {
		o, p, callErr := client.PlaceOrder(ctx, req)
		published = p
		return o, callErr
	})
	if err != nil {
		return err
	}
	if order.ID() == "" {
		return status.Error(codes.Internal, "place response returned empty order id")
	}
	col.recordPlaced(order, published)

	if cfg.Mode == modePlaceGet {
		_, err = timed(ctx, cfg.Timeout, "GetOrder", col, func(ctx context.Context) (domain.Order, error) {
			return client.GetOrder(ctx, order.ID())
		})
	}
	return err
}

func timed(ctx context.Context, timeout time.Duration, method string, col *collector, call func(context.Context) (domain.Order, error)) (domain.Order, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	order, err := call(callCtx)
	col.record(method, time.Since(start), grpcCode(err))
	return order, err
}

func dispatchJobs(ctx context.Context, jobs chan<- int, cfg config) {
	defer close(jobs)

	var deadline <-chan time.Time
	if cfg.Duration > 0 {
		timer := time.NewTimer(cfg.Duration)
		defer timer.Stop()
		deadline = timer.C
	}

	for i := 0; ; i++ {
		if (cfg.Duration <= 0 || cfg.Total > 0) && i >= cfg.Total {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case jobs <- i:
		}
	}
}

// runLoad раздаёт сценарии воркерам и собирает отчёт.
func runLoad(ctx context.Context, cfg config, clients []orderClient) report {
	col := newCollector()
	jobs := make(chan int, cfg.Concurrency*2)
	startedAt := time.Now()

	var wg sync.WaitGroup
	for worker := 0; worker < cfg.Concurrency; worker++ {
		wg.Add(1)
		go func(client orderClient) {
			defer wg.Done()
			for id := range jobs {
				_ = runScenario(ctx, client, cfg, id, col)
			}
		}(clients[worker%len(clients)])
	}

	dispatchJobs(ctx, jobs, cfg)
	wg.Wait()
	return col.buildReport(startedAt, time.Since(startedAt))
}

func grpcCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	return status.Code(err)
}

func writeJSONReport(path string, result report) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path must be inside current directory: %s", path)
	}

	// #nosec G304 -- путь явно задан флагом --output.
	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(w io.Writer, result report, cfg config) {
	fmt.Fprintln(w, "Load test summary")
	fmt.Fprintf(w, "mode=%s total=%d failed=%d error_rate=%.4f\n",
		cfg.Mode, result.TotalScenarios, result.FailedScenarios, result.ErrorRate)
	fmt.Fprintf(w, "duration=%.2fs rps=%.2f revenue=%s unpublished=%d\n",
		result.DurationSeconds, result.RPS, domain.FormatMinor(result.RevenueMinor), result.Unpublished)
	fmt.Fprintf(w, "scenario latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.ScenarioLatencyMs.Min,
		result.ScenarioLatencyMs.Avg,
		result.ScenarioLatencyMs.P50,
		result.ScenarioLatencyMs.P95,
		result.ScenarioLatencyMs.P99,
		result.ScenarioLatencyMs.Max,
	)

	names := make([]string, 0, len(result.Methods))
	for name := range result.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		stats := result.Methods[name]
		fmt.Fprintf(w, "%s: calls=%d success=%d failed=%d error_rate=%.4f p95=%.2fms\n",
			name, stats.Calls, stats.Success, stats.Failed, stats.ErrorRate, stats.LatencyMs.P95)
	}
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

// percentile — линейная интерполяция по отсортированной выборке.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}

func main() {
	var cfg config
	kong.Parse(&cfg, kong.Name("loadtest"), kong.Description("Load generator for the barista service."))

	logger := log.WithField("component", "loadtest")

	clients := make([]orderClient, 0, cfg.Connections)
	for i := 0; i < cfg.Connections; i++ {
		conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			logger.WithError(err).Fatal("failed to create grpc client connection")
		}
		defer conn.Close()
		clients = append(clients, grpcsvc.NewClient(conn))
	}

	result := runLoad(context.Background(), cfg, clients)
	printReport(os.Stdout, result, cfg)

	if cfg.Output != "" {
		if err := writeJSONReport(cfg.Output, result); err != nil {
			logger.WithError(err).Fatal("failed to write report")
		}
	}
	if result.FailedScenarios > 0 {
		logger.WithField("failed", result.FailedScenarios).Error("load test finished with failures")
		os.Exit(1)
	}
}
