package runner

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"

	"signal_bot/internal/exchange"
	"signal_bot/internal/models"
)

func TestOrderAmount(t *testing.T) {
	observeLogs(t)
	h := newHarness(t, models.ModeSimulated, &fakeExchange{balance: 1000})

	if got := h.exec.OrderAmount(context.Background()); !floatEquals(got, 50) {
		t.Fatalf("amount = %v, want 50", got)
	}
}

func TestOrderAmountBalanceError(t *testing.T) {
	logs := observeLogs(t)
	h := newHarness(t, models.ModeSimulated, &fakeExchange{balanceErr: errors.New("timeout")})

	if got := h.exec.OrderAmount(context.Background()); got != 0 {
		t.Fatalf("amount = %v, want 0", got)
	}
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Fatalf("balance error must be logged at error level: %v", logs.All())
	}
}

func TestExecuteZeroBalanceIsNoop(t *testing.T) {
	logs := observeLogs(t)
	ex := &fakeExchange{balance: 0}
	h := newHarness(t, models.ModeReal, ex)

	if _, ok := h.exec.Execute(context.Background(), models.SideBuy, 100); ok {
		t.Fatalf("expected no trade")
	}
	if len(ex.orders) != 0 || len(h.sink.recs) != 0 || h.exec.Ledger.Len() != 0 || len(h.n.Messages()) != 0 {
		t.Fatalf("zero balance must not place or record anything")
	}
	if logs.FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
		t.Fatalf("expected one warning, got %v", logs.All())
	}
}

func TestExecuteSimulated(t *testing.T) {
	observeLogs(t)
	ex := &fakeExchange{balance: 1000}
	h := newHarness(t, models.ModeSimulated, ex)

	rec, ok := h.exec.Execute(context.Background(), models.SideBuy, 350000)
	if !ok {
		t.Fatalf("expected trade")
	}
	if len(ex.orders) != 0 {
		t.Fatalf("simulation must not hit the exchange")
	}
	if rec.Side != models.SideBuy || rec.Price != 350000 || !floatEquals(rec.Amount, 50) || rec.Mode != models.ModeSimulated {
		t.Fatalf("record = %+v", rec)
	}
	if _, err := uuid.Parse(rec.OrderID); err != nil {
		t.Fatalf("simulated order id %q: %v", rec.OrderID, err)
	}
	msgs := waitMessages(t, h.n, 1)
	if len(h.sink.recs) != 1 || h.exec.Ledger.Len() != 1 || len(msgs) != 1 {
		t.Fatalf("sink=%d ledger=%d notify=%d", len(h.sink.recs), h.exec.Ledger.Len(), len(msgs))
	}
	if !strings.Contains(msgs[0], "BUY BTCBRL @ 350000.00") {
		t.Fatalf("notification = %q", msgs[0])
	}
}

func TestExecuteRealSuccess(t *testing.T) {
	observeLogs(t)
	ex := &fakeExchange{balance: 200}
	h := newHarness(t, models.ModeReal, ex)

	rec, ok := h.exec.Execute(context.Background(), models.SideSell, 100)
	if !ok {
		t.Fatalf("expected trade")
	}
	if len(ex.orders) != 1 || ex.orders[0].side != models.SideSell || !floatEquals(ex.orders[0].quoteQty, 10) {
		t.Fatalf("orders = %+v", ex.orders)
	}
	if rec.OrderID != "1001" || rec.Mode != models.ModeReal {
		t.Fatalf("record = %+v", rec)
	}
}

func TestExecuteRealRejected(t *testing.T) {
	logs := observeLogs(t)
	ex := &fakeExchange{
		balance:  1000,
		orderErr: &exchange.APIError{Status: http.StatusBadRequest, Code: -2010, Message: "insufficient balance"},
	}
	h := newHarness(t, models.ModeReal, ex)

	if _, ok := h.exec.Execute(context.Background(), models.SideBuy, 100); ok {
		t.Fatalf("rejected order must not produce a trade")
	}
	if len(h.sink.recs) != 0 || h.exec.Ledger.Len() != 0 {
		t.Fatalf("rejected order must not be recorded")
	}
	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	if len(errs) != 1 || errs[0].Message != "[ORDER] BTCBRL BUY rejected: code=-2010 msg=insufficient balance" {
		t.Fatalf("error logs = %v", errs)
	}
}

func TestExecuteSinkFailureKeepsLedger(t *testing.T) {
	logs := observeLogs(t)
	h := newHarness(t, models.ModeSimulated, &fakeExchange{balance: 1000})
	h.sink.err = errors.New("disk full")

	if _, ok := h.exec.Execute(context.Background(), models.SideBuy, 100); !ok {
		t.Fatalf("expected trade")
	}
	if h.exec.Ledger.Len() != 1 {
		t.Fatalf("ledger must keep the trade")
	}
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Fatalf("sink failure must be logged")
	}
}

func TestExecuteRealUnauthorizedIsCritical(t *testing.T) {
	logs := observeLogs(t)
	ex := &fakeExchange{
		balance:  1000,
		orderErr: &exchange.APIError{Status: http.StatusUnauthorized, Code: -2015, Message: "Invalid API-key"},
	}
	h := newHarness(t, models.ModeReal, ex)

	if _, ok := h.exec.Execute(context.Background(), models.SideSell, 100); ok {
		t.Fatalf("expected no trade")
	}
	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	if len(errs) != 1 || errs[0].ContextMap()["critical"] != true {
		t.Fatalf("expected one critical entry, got %v", errs)
	}
}
