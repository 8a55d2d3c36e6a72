package runner

import (
	"context"
	"strings"

	"signal_bot/internal/exchange"
	"signal_bot/pkg/logger"
)

// BalanceLister: список ненулевых остатков аккаунта.
type BalanceLister interface {
	Balances(ctx context.Context) ([]exchange.Balance, error)
}

// Snapshot логирует остатки аккаунта и стартовый баланс котируемой валюты.
// С lister это один запрос к аккаунту, без него баланс берётся у источника исполнителя.
func (r *Runner) Snapshot(ctx context.Context, lister BalanceLister) float64 {
	if lister == nil {
		initial, err := r.exec.Balance.FreeBalance(ctx, r.cfg.QuoteAsset)
		if err != nil {
			logger.Error("[BALANCE] initial %s: %v", r.cfg.QuoteAsset, err)
			return 0
		}
		logger.Info("[BALANCE] initial %s balance: %.2f", r.cfg.QuoteAsset, initial)
		return initial
	}

	balances, err := lister.Balances(ctx)
	if err != nil {
		logger.Error("[BALANCE] account: %v", err)
		return 0
	}
	var initial float64
	for _, b := range balances {
		logger.Info("[BALANCE] %s free=%.8f locked=%.8f", b.Asset, b.Free, b.Locked)
		if strings.EqualFold(b.Asset, r.cfg.QuoteAsset) {
			initial = b.Free
		}
	}
	logger.Info("[BALANCE] initial %s balance: %.2f", r.cfg.QuoteAsset, initial)
	return initial
}
