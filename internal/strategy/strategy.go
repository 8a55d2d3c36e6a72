package strategy

import (
	"errors"

	"signal_bot/internal/models"
)

// ErrNotEnoughCandles: окно свечей короче самого длинного lookback.
var ErrNotEnoughCandles = errors.New("not enough candles")

// Engine: то, что Runner дергает на каждом цикле.
// Состояние позиции передаётся внутрь и возвращается наружу, никаких глобалов.
type Engine interface {
	Name() models.StrategyType
	// MinCandles: сколько свечей нужно, чтобы оценка была не вырожденной.
	MinCandles() int
	Evaluate(symbol string, candles []models.Candle, pos models.Position) (models.Signal, models.Position, error)
}
