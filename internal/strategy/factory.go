package strategy

import (
	"fmt"

	"signal_bot/internal/config"
	"signal_bot/internal/models"
)

// NewEngine выбирает стратегию по конфигу.
func NewEngine(cfg *config.Config) (Engine, error) {
	switch models.StrategyType(cfg.Strategy) {
	case models.StrategyGrid:
		return NewGrid(GridConfig{
			TradeVariation:     cfg.Grid.TradeVariation,
			MaxDrawdown:        cfg.Grid.MaxDrawdown,
			MaxConsecutiveBuys: cfg.Grid.MaxConsecutiveBuys,
		}), nil

	case models.StrategyScalping:
		return NewScalping(ScalpingConfig{
			EMAFast:      cfg.Scalping.EMAFast,
			EMASlow:      cfg.Scalping.EMASlow,
			RSIPeriod:    cfg.Scalping.RSIPeriod,
			BuyRSIBelow:  cfg.Scalping.RSIBuyBelow,
			SellRSIAbove: cfg.Scalping.RSISellAbove,
		}), nil
	}
	return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
}
