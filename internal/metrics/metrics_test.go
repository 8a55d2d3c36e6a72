package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.Decision("grid", "BUY")
	r.Decision("grid", "BUY")
	r.Decision("grid", "HOLD")
	r.Order("simulated", "BUY")
	r.Error("candles")
	r.LastPrice("BTCBRL", 350000)
	r.PnL(12.5)
	r.CycleSeconds(0.2)

	if got := testutil.ToFloat64(r.decisions.WithLabelValues("grid", "BUY")); got != 2 {
		t.Fatalf("decisions BUY = %v", got)
	}
	if got := testutil.ToFloat64(r.orders.WithLabelValues("simulated", "BUY")); got != 1 {
		t.Fatalf("orders = %v", got)
	}
	if got := testutil.ToFloat64(r.errors.WithLabelValues("candles")); got != 1 {
		t.Fatalf("errors = %v", got)
	}
	if got := testutil.ToFloat64(r.lastPrice.WithLabelValues("BTCBRL")); got != 350000 {
		t.Fatalf("last price = %v", got)
	}
	if got := testutil.ToFloat64(r.pnl); got != 12.5 {
		t.Fatalf("pnl = %v", got)
	}
	if n := testutil.CollectAndCount(r.cycle); n != 1 {
		t.Fatalf("cycle histogram series = %d", n)
	}
	if n, err := testutil.GatherAndCount(reg, "bot_decisions_total"); err != nil || n != 2 {
		t.Fatalf("decision series = %d, err = %v", n, err)
	}
}

func TestSeparateRegistries(t *testing.T) {
	// повторная регистрация в разных реестрах не паникует
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
