package runner

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"signal_bot/internal/config"
	"signal_bot/internal/exchange"
	"signal_bot/internal/health"
	"signal_bot/internal/journal"
	"signal_bot/internal/metrics"
	"signal_bot/internal/models"
	"signal_bot/internal/strategy"
	"signal_bot/pkg/logger"
)

func floatEquals(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Use(zap.New(core))
	t.Cleanup(func() { logger.Use(zap.NewNop()) })
	return logs
}

// fakeExchange отдаёт по одному окну свечей на вызов; после конца повторяет последнее.
type fakeExchange struct {
	mu        sync.Mutex
	windows   [][]float64
	calls     int
	candleErr []error

	balance      float64
	balanceErr   error
	balanceCalls int
	listCalls    int

	orderErr error
	orders   []placedOrder
}

type placedOrder struct {
	side     models.Side
	quoteQty float64
}

func (f *fakeExchange) Candles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i < len(f.candleErr) && f.candleErr[i] != nil {
		return nil, f.candleErr[i]
	}
	if len(f.windows) == 0 {
		return nil, nil
	}
	if i >= len(f.windows) {
		i = len(f.windows) - 1
	}
	return candles(f.windows[i]...), nil
}

func (f *fakeExchange) FreeBalance(ctx context.Context, asset string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceCalls++
	return f.balance, f.balanceErr
}

func (f *fakeExchange) PlaceMarketOrder(ctx context.Context, symbol string, side models.Side, quoteQty float64) (exchange.OrderAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.orderErr != nil {
		return exchange.OrderAck{}, f.orderErr
	}
	f.orders = append(f.orders, placedOrder{side: side, quoteQty: quoteQty})
	return exchange.OrderAck{OrderID: fmt.Sprintf("%d", 1000+len(f.orders)), Status: "FILLED"}, nil
}

func (f *fakeExchange) Balances(ctx context.Context) ([]exchange.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return []exchange.Balance{{Asset: "BRL", Free: f.balance}, {Asset: "BTC", Free: 0.01}}, nil
}

func (f *fakeExchange) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memSink struct {
	mu   sync.Mutex
	recs []models.TradeRecord
	err  error
}

func (s *memSink) Record(tr models.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.recs = append(s.recs, tr)
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *fakeNotifier) Send(msg string) {
	n.mu.Lock()
	n.msgs = append(n.msgs, msg)
	n.mu.Unlock()
}

func (n *fakeNotifier) Sendf(format string, args ...any) { n.Send(fmt.Sprintf(format, args...)) }

func (n *fakeNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

// waitMessages ждёт, пока очередь уведомлений доставит want сообщений.
func waitMessages(t *testing.T, n *fakeNotifier, want int) []string {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		msgs := n.Messages()
		if len(msgs) >= want || time.Now().After(deadline) {
			return msgs
		}
		time.Sleep(time.Millisecond)
	}
}

// hungNotifier висит на каждой отправке, пока не закрыт release.
type hungNotifier struct {
	release chan struct{}
}

func (n *hungNotifier) Send(msg string)                  { <-n.release }
func (n *hungNotifier) Sendf(format string, args ...any) { <-n.release }

func candles(closes ...float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = models.Candle{
			OpenTime:  t0.Add(time.Duration(i) * time.Minute),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			CloseTime: t0.Add(time.Duration(i+1)*time.Minute - time.Millisecond),
		}
	}
	return out
}

type harness struct {
	cfg    *config.Config
	ex     *fakeExchange
	sink   *memSink
	n      *fakeNotifier
	exec   *Executor
	state  *health.State
	runner *Runner
}

func newHarness(t *testing.T, mode models.TradeMode, ex *fakeExchange) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.PollInterval = time.Millisecond
	cfg.CycleTimeout = time.Second
	cfg.Simulated = mode == models.ModeSimulated

	engine, err := strategy.NewEngine(cfg)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	h := &harness{cfg: cfg, ex: ex, sink: &memSink{}, n: &fakeNotifier{}, state: health.NewState()}
	mtx := metrics.New(prometheus.NewRegistry())
	h.exec = &Executor{
		Symbol:        cfg.Symbol,
		QuoteAsset:    cfg.QuoteAsset,
		TradeFraction: cfg.TradeFraction,
		Mode:          mode,
		Balance:       ex,
		Orders:        ex,
		Sink:          h.sink,
		Ledger:        journal.NewLedger(),
		Notify:        h.n,
		Metrics:       mtx,
		now:           func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) },
	}
	h.runner = New(cfg, ex, engine, h.exec, h.state, mtx)
	return h
}
