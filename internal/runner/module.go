package runner

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/config"
	"signal_bot/internal/exchange"
	"signal_bot/internal/health"
	"signal_bot/internal/journal"
	"signal_bot/internal/metrics"
	"signal_bot/internal/models"
	"signal_bot/internal/notify"
	"signal_bot/internal/strategy"
)

// NewExecutor: в симуляции с PAPER_QUOTE_BALANCE баланс статичный, ключи не нужны.
func NewExecutor(
	cfg *config.Config,
	bn *exchange.Binance,
	sink *journal.CSV,
	ledger *journal.Ledger,
	n notify.Notifier,
	mtx *metrics.Recorder,
) *Executor {
	e := &Executor{
		Symbol:        cfg.Symbol,
		QuoteAsset:    cfg.QuoteAsset,
		TradeFraction: cfg.TradeFraction,
		Mode:          models.ModeReal,
		Balance:       bn,
		Orders:        bn,
		Sink:          sink,
		Ledger:        ledger,
		Notify:        n,
		Metrics:       mtx,
	}
	if cfg.Simulated {
		e.Mode = models.ModeSimulated
		if cfg.PaperQuoteBalance > 0 {
			e.Balance = exchange.NewPaperBalance(cfg.PaperQuoteBalance)
		}
	}
	return e
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewExecutor,
			func(
				cfg *config.Config,
				bn *exchange.Binance,
				engine strategy.Engine,
				exec *Executor,
				state *health.State,
				mtx *metrics.Recorder,
			) *Runner {
				return New(cfg, bn, engine, exec, state, mtx)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, r *Runner, bn *exchange.Binance, n notify.Notifier) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					var lister BalanceLister
					if !r.cfg.Simulated {
						lister = bn
					}
					r.Snapshot(ctx, lister)

					if tg, ok := n.(*notify.Telegram); ok {
						tg.SetStatus(r.Status)
					}
					r.Start(context.Background())
					return nil
				},
				OnStop: func(ctx context.Context) error {
					r.Stop()
					return nil
				},
			})
		}),
	)
}
