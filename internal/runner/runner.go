package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"signal_bot/internal/config"
	"signal_bot/internal/health"
	"signal_bot/internal/journal"
	"signal_bot/internal/metrics"
	"signal_bot/internal/models"
	"signal_bot/internal/strategy"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"
)

// Runner: один символ, одна стратегия, опрос свечей по таймеру.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	cfg    *config.Config
	md     MarketData
	engine strategy.Engine
	exec   *Executor
	ledger *journal.Ledger
	state  *health.State
	mtx    *metrics.Recorder

	mu      sync.Mutex // pos, lastSig
	pos     models.Position
	lastSig models.Signal
}

func New(
	cfg *config.Config,
	md MarketData,
	engine strategy.Engine,
	exec *Executor,
	state *health.State,
	mtx *metrics.Recorder,
) *Runner {
	return &Runner{
		cfg:    cfg,
		md:     md,
		engine: engine,
		exec:   exec,
		ledger: exec.Ledger,
		state:  state,
		mtx:    mtx,
	}
}

func (r *Runner) Start(parent context.Context) {
	r.ctx, r.cancel = context.WithCancel(parent)
	r.done = make(chan struct{})

	mode := "REAL"
	if r.cfg.Simulated {
		mode = "SIMULATION"
	}
	logger.Info("[RUNNER] ▶️ %s | strategy=%s symbol=%s timeframe=%s every %s",
		mode, r.engine.Name(), r.cfg.Symbol, r.cfg.Timeframe, r.cfg.PollInterval)
	r.exec.Notifyf("▶️ %s запущен: %s %s (%s)", r.engine.Name(), r.cfg.Symbol, r.cfg.Timeframe, mode)

	go func() {
		defer close(r.done)
		_ = r.Run(r.ctx, 0)
	}()
}

// Stop останавливает цикл, дожидается текущей итерации и пишет итоговый P&L.
func (r *Runner) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.reportProfit("final")
	logger.Info("[RUNNER] ⏹ stopped after %d trades", r.ledger.Len())
	r.exec.Close(5 * time.Second)
}

// Run крутит циклы до отмены ctx; maxCycles > 0 ограничивает их число.
// Первый цикл сразу, дальше раз в PollInterval, без наложения.
func (r *Runner) Run(ctx context.Context, maxCycles int) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for n := 0; maxCycles <= 0 || n < maxCycles; n++ {
		if n > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := r.Cycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("[CYCLE] %v", err)
		}
	}
	return nil
}

// Cycle выполняет одну итерацию: свечи -> стратегия -> сделка.
func (r *Runner) Cycle(parent context.Context) (err error) {
	started := time.Now()
	span, ctx := tracing.StartSpan(parent, "cycle", map[string]any{
		"symbol":   r.cfg.Symbol,
		"strategy": string(r.engine.Name()),
	})
	ctx, cancel := context.WithTimeout(ctx, r.cfg.CycleTimeout)
	defer func() {
		cancel()
		if err != nil {
			span.SetTag("error", true)
		}
		span.Finish()
		r.mtx.CycleSeconds(time.Since(started).Seconds())
		r.state.CycleDone(time.Now(), err)
	}()

	limit := r.cfg.CandleLimit
	if need := r.engine.MinCandles(); limit < need {
		limit = need
	}
	candles, err := r.md.Candles(ctx, r.cfg.Symbol, r.cfg.Timeframe, limit)
	if err != nil {
		r.mtx.Error("candles")
		return fmt.Errorf("candles %s: %w", r.cfg.Symbol, err)
	}

	r.mu.Lock()
	pos := r.pos
	r.mu.Unlock()

	sig, next, err := r.engine.Evaluate(r.cfg.Symbol, candles, pos)
	if err != nil {
		if errors.Is(err, strategy.ErrNotEnoughCandles) {
			logger.Warn("[EVAL] %s: %v, cycle skipped", r.cfg.Symbol, err)
			return nil
		}
		r.mtx.Error("strategy")
		return fmt.Errorf("evaluate: %w", err)
	}

	// позиция следует решению независимо от исполнения
	r.mu.Lock()
	r.pos = next
	r.lastSig = sig
	r.mu.Unlock()

	r.state.SetReady(true)
	r.mtx.LastPrice(r.cfg.Symbol, sig.Price)
	r.mtx.Decision(string(sig.Strategy), string(sig.Side))

	if !sig.IsTrade() {
		logger.Debug("[EVAL] %s HOLD @ %.2f | %s | %s", r.cfg.Symbol, sig.Price, sig.Reason, next)
		return nil
	}

	logger.Info("[SIGNAL] %s %s @ %.2f | %s", r.cfg.Symbol, sig.Side, sig.Price, sig.Reason)
	if _, ok := r.exec.Execute(ctx, sig.Side, sig.Price); ok && sig.Side == models.SideSell {
		r.reportProfit("after SELL")
	}
	return nil
}

func (r *Runner) reportProfit(when string) {
	p := r.ledger.Profit()
	r.mtx.PnL(p)
	logger.Info("[P&L] %s: %.2f %s (%s, %d trades)", when, p, r.cfg.QuoteAsset, modeName(r.exec.Mode), r.ledger.Len())
}

// Position: снимок текущего состояния позиции.
func (r *Runner) Position() models.Position {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos
}

// Status: текст для /status.
func (r *Runner) Status(ctx context.Context) string {
	r.mu.Lock()
	pos, sig := r.pos, r.lastSig
	r.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s %s (%s)\n", r.engine.Name(), r.cfg.Symbol, modeName(r.exec.Mode))
	if sig.Side != "" {
		fmt.Fprintf(&b, "last: %s @ %.2f | %s\n", sig.Side, sig.Price, sig.Reason)
	}
	fmt.Fprintf(&b, "position: %s\n", pos)
	fmt.Fprintf(&b, "trades: %d | P&L: %.2f %s\n", r.ledger.Len(), r.ledger.Profit(), r.cfg.QuoteAsset)
	if last := r.state.LastTick(); !last.IsZero() {
		fmt.Fprintf(&b, "last cycle: %s", last.Format(time.DateTime))
	}
	return b.String()
}

func modeName(m models.TradeMode) string {
	if m == models.ModeReal {
		return "real"
	}
	return "simulated P&L"
}
