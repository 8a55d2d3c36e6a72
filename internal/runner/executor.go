package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"signal_bot/internal/exchange"
	"signal_bot/internal/journal"
	"signal_bot/internal/metrics"
	"signal_bot/internal/models"
	"signal_bot/internal/notify"
	"signal_bot/pkg/logger"
)

// Executor превращает сигнал в сделку: размер, ордер (или симуляция), журнал.
type Executor struct {
	Symbol        string
	QuoteAsset    string
	TradeFraction float64
	Mode          models.TradeMode

	Balance BalanceSource
	Orders  OrderPlacer
	Sink    TradeSink
	Ledger  *journal.Ledger
	Notify  notify.Notifier
	Metrics *metrics.Recorder

	now func() time.Time

	// уведомления уходят из отдельной горутины, цикл их не ждёт
	noticeOnce sync.Once
	noticeMu   sync.Mutex
	notices    chan string
	closed     bool
	drained    chan struct{}
}

const noticeBuffer = 64

func (e *Executor) startNotices() {
	e.notices = make(chan string, noticeBuffer)
	e.drained = make(chan struct{})
	go func() {
		defer close(e.drained)
		for msg := range e.notices {
			e.Notify.Send(msg)
		}
	}()
}

// Notifyf ставит сообщение в очередь; при переполнении сообщение теряется с предупреждением.
func (e *Executor) Notifyf(format string, args ...any) {
	if e.Notify == nil {
		return
	}
	e.noticeOnce.Do(e.startNotices)
	msg := fmt.Sprintf(format, args...)

	e.noticeMu.Lock()
	defer e.noticeMu.Unlock()
	if e.closed {
		return
	}
	select {
	case e.notices <- msg:
	default:
		logger.Warn("[NOTIFY] queue full, dropped: %s", msg)
	}
}

// Close закрывает очередь уведомлений и ждёт отправки остатка не дольше wait.
func (e *Executor) Close(wait time.Duration) {
	e.noticeOnce.Do(e.startNotices)
	e.noticeMu.Lock()
	if e.closed {
		e.noticeMu.Unlock()
		return
	}
	e.closed = true
	close(e.notices)
	e.noticeMu.Unlock()

	select {
	case <-e.drained:
	case <-time.After(wait):
		logger.Warn("[NOTIFY] pending notifications not delivered in %s", wait)
	}
}

func (e *Executor) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

// OrderAmount = свободный баланс котируемой валюты * доля. Ошибка баланса = 0.
func (e *Executor) OrderAmount(ctx context.Context) float64 {
	free, err := e.Balance.FreeBalance(ctx, e.QuoteAsset)
	if err != nil {
		logger.Error("[BALANCE] %s: %v", e.QuoteAsset, err)
		e.Metrics.Error("balance")
		return 0
	}
	return free * e.TradeFraction
}

// Execute исполняет BUY/SELL. false: сделки не было (нет баланса или отказ биржи).
func (e *Executor) Execute(ctx context.Context, side models.Side, price float64) (models.TradeRecord, bool) {
	amount := e.OrderAmount(ctx)
	if amount <= 0 {
		logger.Warn("[ORDER] %s %s skipped: insufficient %s balance", e.Symbol, side, e.QuoteAsset)
		return models.TradeRecord{}, false
	}

	rec := models.TradeRecord{
		Time:   e.clock(),
		Side:   side,
		Price:  price,
		Amount: amount,
		Mode:   e.Mode,
	}

	if e.Mode == models.ModeReal {
		ack, err := e.Orders.PlaceMarketOrder(ctx, e.Symbol, side, amount)
		if err != nil {
			if apiErr, ok := exchange.IsAPIError(err); ok && apiErr.Unauthorized() {
				logger.Critical("[ORDER] %s %s: api key rejected: code=%d msg=%s", e.Symbol, side, apiErr.Code, apiErr.Message)
			} else if ok {
				logger.Error("[ORDER] %s %s rejected: code=%d msg=%s", e.Symbol, side, apiErr.Code, apiErr.Message)
			} else {
				logger.Error("[ORDER] %s %s failed: %v", e.Symbol, side, err)
			}
			e.Metrics.Error("order")
			return models.TradeRecord{}, false
		}
		rec.OrderID = ack.OrderID
		logger.Info("[REAL] %s %s executed @ %.2f for %.2f %s (orderId=%s status=%s)",
			e.Symbol, side, price, amount, e.QuoteAsset, ack.OrderID, ack.Status)
	} else {
		rec.OrderID = uuid.NewString()
		logger.Info("[SIMULATION] %s %s executed @ %.2f for %.2f %s", e.Symbol, side, price, amount, e.QuoteAsset)
	}

	e.Ledger.Append(rec)
	if e.Sink != nil {
		if err := e.Sink.Record(rec); err != nil {
			logger.Error("[JOURNAL] write trade: %v", err)
			e.Metrics.Error("journal")
		}
	}
	e.Metrics.Order(string(e.Mode), string(side))
	e.Notifyf("%s %s %s @ %.2f | %.2f %s", modeTag(e.Mode), side, e.Symbol, price, amount, e.QuoteAsset)

	return rec, true
}

func modeTag(m models.TradeMode) string {
	if m == models.ModeReal {
		return "✅ REAL"
	}
	return "🧪 SIM"
}
