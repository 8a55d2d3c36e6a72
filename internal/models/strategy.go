package models

type StrategyType string

const (
	StrategyGrid     StrategyType = "grid"
	StrategyScalping StrategyType = "scalping"
)

// Side: решение стратегии на текущем цикле.
type Side string

const (
	SideHold Side = "HOLD"
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Signal: ответ стратегии.
type Signal struct {
	Symbol   string
	Side     Side
	Price    float64
	Strategy StrategyType
	Reason   string
}

func (s Signal) IsTrade() bool { return s.Side == SideBuy || s.Side == SideSell }
