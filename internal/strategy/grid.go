package strategy

import (
	"fmt"

	"signal_bot/internal/models"
)

// GridConfig: пороги grid/drawdown-бота в долях (0.02 == 2%).
type GridConfig struct {
	TradeVariation     float64 // шаг докупки и фиксации прибыли, 0.02
	MaxDrawdown        float64 // стоп-лосс от опорной цены, 0.10
	MaxConsecutiveBuys int     // 3
}

// Grid докупает на просадке, продаёт на росте и режет позицию на большом падении.
type Grid struct {
	cfg GridConfig
}

func NewGrid(cfg GridConfig) *Grid {
	if cfg.TradeVariation <= 0 {
		cfg.TradeVariation = 0.02
	}
	if cfg.MaxDrawdown <= 0 {
		cfg.MaxDrawdown = 0.10
	}
	if cfg.MaxConsecutiveBuys <= 0 {
		cfg.MaxConsecutiveBuys = 3
	}
	return &Grid{cfg: cfg}
}

func (g *Grid) Name() models.StrategyType { return models.StrategyGrid }

func (g *Grid) MinCandles() int { return 1 }

func (g *Grid) Evaluate(symbol string, candles []models.Candle, pos models.Position) (models.Signal, models.Position, error) {
	if len(candles) < g.MinCandles() {
		return models.Signal{Symbol: symbol, Side: models.SideHold, Strategy: g.Name()}, pos,
			fmt.Errorf("%w: have %d, need %d", ErrNotEnoughCandles, len(candles), g.MinCandles())
	}
	price := candles[len(candles)-1].Close
	side, next, reason := g.Step(price, pos)
	return models.Signal{
		Symbol:   symbol,
		Side:     side,
		Price:    price,
		Strategy: g.Name(),
		Reason:   reason,
	}, next, nil
}

// Step: один переход автомата по последней цене.
// Стоп-лосс проверяется раньше докупки и фиксации прибыли.
func (g *Grid) Step(price float64, pos models.Position) (models.Side, models.Position, string) {
	if !pos.Open() {
		return models.SideHold, pos.WithReference(price),
			fmt.Sprintf("price=%.8f reference set", price)
	}

	ref := *pos.LastBuyPrice
	variation := (price - ref) / ref
	info := fmt.Sprintf("price=%.8f variation=%.2f%%", price, variation*100)

	switch {
	case variation < -g.cfg.MaxDrawdown:
		return models.SideSell, pos.Reset(), info + " stop-loss"
	case variation <= -g.cfg.TradeVariation && pos.ConsecutiveBuys < g.cfg.MaxConsecutiveBuys:
		return models.SideBuy, pos.WithBuy(price), info + " averaging down"
	case variation >= g.cfg.TradeVariation:
		return models.SideSell, pos.Reset(), info + " take-profit"
	}
	return models.SideHold, pos, info
}
