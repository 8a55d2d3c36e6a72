package strategy

import (
	"fmt"

	"signal_bot/internal/models"
)

// ScalpingConfig: параметры пересечения EMA с фильтром RSI.
type ScalpingConfig struct {
	EMAFast      int     // 5
	EMASlow      int     // 13
	RSIPeriod    int     // 14
	BuyRSIBelow  float64 // 40
	SellRSIAbove float64 // 60
}

// Scalping: пересечение быстрой и медленной EMA, подтверждённое RSI.
// Состояния между циклами нет: всё пересчитывается из окна свечей.
type Scalping struct {
	cfg ScalpingConfig
}

func NewScalping(cfg ScalpingConfig) *Scalping {
	if cfg.EMAFast <= 0 {
		cfg.EMAFast = 5
	}
	if cfg.EMASlow <= 0 {
		cfg.EMASlow = 13
	}
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = 14
	}
	if cfg.BuyRSIBelow <= 0 {
		cfg.BuyRSIBelow = 40
	}
	if cfg.SellRSIAbove <= 0 {
		cfg.SellRSIAbove = 60
	}
	return &Scalping{cfg: cfg}
}

func (s *Scalping) Name() models.StrategyType { return models.StrategyScalping }

// MinCandles: RSI должен быть определён на всех трёх последних свечах.
func (s *Scalping) MinCandles() int {
	n := s.cfg.EMASlow
	if s.cfg.RSIPeriod > n {
		n = s.cfg.RSIPeriod
	}
	return n + 2
}

func (s *Scalping) Evaluate(symbol string, candles []models.Candle, pos models.Position) (models.Signal, models.Position, error) {
	series, err := Compute(candles, s.cfg.EMAFast, s.cfg.EMASlow, s.cfg.RSIPeriod, s.MinCandles())
	if err != nil {
		return models.Signal{Symbol: symbol, Side: models.SideHold, Strategy: s.Name()}, pos, err
	}
	w := series.Last3()
	cur := w[2]
	side := Crossover(w, s.cfg.BuyRSIBelow, s.cfg.SellRSIAbove)

	return models.Signal{
		Symbol:   symbol,
		Side:     side,
		Price:    cur.Close,
		Strategy: s.Name(),
		Reason: fmt.Sprintf("close=%.8f EMA%d=%.8f EMA%d=%.8f RSI=%.2f",
			cur.Close, s.cfg.EMAFast, cur.EMAFast, s.cfg.EMASlow, cur.EMASlow, cur.RSI),
	}, pos, nil
}

// Crossover решает по окну {t-2, t-1, t}.
// BUY: быстрая ниже медленной две свечи подряд и выше на текущей, RSI < buyBelow.
// SELL: зеркально, RSI > sellAbove.
func Crossover(w [3]Point, buyBelow, sellAbove float64) models.Side {
	twoBack, prev, cur := w[0], w[1], w[2]

	up := twoBack.EMAFast < twoBack.EMASlow &&
		prev.EMAFast < prev.EMASlow &&
		cur.EMAFast > cur.EMASlow
	if up && cur.RSI < buyBelow {
		return models.SideBuy
	}

	down := twoBack.EMAFast > twoBack.EMASlow &&
		prev.EMAFast > prev.EMASlow &&
		cur.EMAFast < cur.EMASlow
	if down && cur.RSI > sellAbove {
		return models.SideSell
	}
	return models.SideHold
}
