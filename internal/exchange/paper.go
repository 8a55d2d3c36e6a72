package exchange

import "context"

// PaperBalance: статичный баланс для симуляции без ключей API.
type PaperBalance struct {
	Amount float64
}

func NewPaperBalance(amount float64) *PaperBalance { return &PaperBalance{Amount: amount} }

func (p *PaperBalance) FreeBalance(ctx context.Context, asset string) (float64, error) {
	return p.Amount, nil
}
