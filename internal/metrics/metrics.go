package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder: счётчики бота для /metrics.
type Recorder struct {
	decisions *prometheus.CounterVec
	orders    *prometheus.CounterVec
	errors    *prometheus.CounterVec
	lastPrice *prometheus.GaugeVec
	pnl       prometheus.Gauge
	cycle     prometheus.Histogram
}

// New регистрирует метрики в reg; nil, default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_decisions_total",
			Help: "Decisions taken",
		}, []string{"strategy", "signal"}),
		orders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Orders recorded",
		}, []string{"mode", "side"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_errors_total",
			Help: "Errors by stage",
		}, []string{"stage"}),
		lastPrice: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bot_last_price",
			Help: "Last close seen for a symbol",
		}, []string{"symbol"}),
		pnl: f.NewGauge(prometheus.GaugeOpts{
			Name: "bot_realized_pnl",
			Help: "Realized P&L in quote currency",
		}),
		cycle: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bot_cycle_duration_seconds",
			Help:    "Duration of one polling cycle",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Recorder) Decision(strategy, signal string) {
	r.decisions.WithLabelValues(strategy, signal).Inc()
}

func (r *Recorder) Order(mode, side string) {
	r.orders.WithLabelValues(mode, side).Inc()
}

// Error: stage: candles | balance | order | journal | strategy.
func (r *Recorder) Error(stage string) {
	r.errors.WithLabelValues(stage).Inc()
}

func (r *Recorder) LastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) PnL(v float64) { r.pnl.Set(v) }

func (r *Recorder) CycleSeconds(s float64) { r.cycle.Observe(s) }
