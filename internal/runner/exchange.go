package runner

import (
	"context"

	"signal_bot/internal/exchange"
	"signal_bot/internal/models"
)

// MarketData: источник свечей.
type MarketData interface {
	Candles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)
}

type BalanceSource interface {
	FreeBalance(ctx context.Context, asset string) (float64, error)
}

type OrderPlacer interface {
	PlaceMarketOrder(ctx context.Context, symbol string, side models.Side, quoteQty float64) (exchange.OrderAck, error)
}

// Exchange: всё, что цикл берёт у биржи. Реализуется *exchange.Binance.
type Exchange interface {
	MarketData
	BalanceSource
	OrderPlacer
}

// TradeSink: персистентный журнал сделок (CSV).
type TradeSink interface {
	Record(tr models.TradeRecord) error
}
