package models

import "fmt"

// Position: состояние grid-бота между циклами.
// LastBuyPrice == nil ровно тогда, когда открытой позиции нет.
type Position struct {
	LastBuyPrice    *float64
	ConsecutiveBuys int
}

func (p Position) Open() bool { return p.LastBuyPrice != nil }

// Reset возвращает {none, 0}.
func (p Position) Reset() Position { return Position{} }

// WithBuy фиксирует новую цену входа.
func (p Position) WithBuy(price float64) Position {
	px := price
	return Position{LastBuyPrice: &px, ConsecutiveBuys: p.ConsecutiveBuys + 1}
}

// WithReference ставит опорную цену без покупки.
func (p Position) WithReference(price float64) Position {
	px := price
	return Position{LastBuyPrice: &px, ConsecutiveBuys: p.ConsecutiveBuys}
}

func (p Position) String() string {
	if p.LastBuyPrice == nil {
		return fmt.Sprintf("ref=none buys=%d", p.ConsecutiveBuys)
	}
	return fmt.Sprintf("ref=%.8f buys=%d", *p.LastBuyPrice, p.ConsecutiveBuys)
}
