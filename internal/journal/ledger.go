package journal

import (
	"sync"

	"signal_bot/internal/models"
)

// Ledger: журнал сделок в памяти, только добавление.
type Ledger struct {
	mu     sync.RWMutex
	trades []models.TradeRecord
}

func NewLedger() *Ledger { return &Ledger{} }

func (l *Ledger) Append(tr models.TradeRecord) {
	l.mu.Lock()
	l.trades = append(l.trades, tr)
	l.mu.Unlock()
}

// Trades: копия журнала.
func (l *Ledger) Trades() []models.TradeRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.TradeRecord, len(l.trades))
	copy(out, l.trades)
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}

func (l *Ledger) Profit() float64 { return Profit(l.Trades()) }

// Profit сворачивает журнал: SELL после открытой BUY даёт (sell-buy)*amount/buy.
// Хвостовая BUY и SELL без BUY ничего не добавляют.
func Profit(trades []models.TradeRecord) float64 {
	var (
		profit  float64
		buyOpen bool
		buyAt   float64
	)
	for _, tr := range trades {
		switch tr.Side {
		case models.SideBuy:
			buyAt, buyOpen = tr.Price, true
		case models.SideSell:
			if buyOpen && buyAt > 0 {
				profit += (tr.Price - buyAt) * tr.Amount / buyAt
			}
			buyOpen = false
		}
	}
	return profit
}
