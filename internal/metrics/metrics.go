package metrics

import (
	"strconv"
	"strings"
	"time"

	"Farjax/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the estimator.
type Metrics struct {
	RefreshTotal     *prometheus.CounterVec // labels: result=ok|error|skipped
	RefreshDuration  prometheus.Histogram
	Candles          prometheus.Gauge
	SyntheticCandles prometheus.Gauge
	LastRefresh      prometheus.Gauge

	// Hit-rates of the newest closed candle, 0..1.
	HitRate *prometheus.GaugeVec // labels: strategy, scope=daily|weekly, band=wide|narrow

	StreamClients prometheus.Gauge
}

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "farjax_refresh_total",
			Help: "Pipeline refreshes by result",
		}, []string{"result"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "farjax_refresh_duration_seconds",
			Help:    "Time to fetch, synthesize, estimate and aggregate one series",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Candles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "farjax_candles",
			Help: "Candles in the latest snapshot",
		}),
		SyntheticCandles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "farjax_synthetic_candles",
			Help: "Placeholder candles in the latest snapshot",
		}),
		LastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "farjax_last_refresh_timestamp_seconds",
			Help: "Unix time of the latest successful refresh",
		}),
		HitRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "farjax_hit_rate_ratio",
			Help: "Share of estimates within tolerance up to the newest closed candle",
		}, []string{"strategy", "scope", "band"}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "farjax_stream_clients",
			Help: "Connected WebSocket stream clients",
		}),
	}

	reg.MustRegister(
		m.RefreshTotal,
		m.RefreshDuration,
		m.Candles,
		m.SyntheticCandles,
		m.LastRefresh,
		m.HitRate,
		m.StreamClients,
	)
	return m
}

// ObserveRefresh counts one refresh attempt.
func (m *Metrics) ObserveRefresh(result string, d time.Duration) {
	m.RefreshTotal.WithLabelValues(result).Inc()
	if result != "skipped" {
		m.RefreshDuration.Observe(d.Seconds())
	}
}

// ObserveSnapshot exports the size and latest hit-rates of a published snapshot.
func (m *Metrics) ObserveSnapshot(snap *model.Snapshot) {
	m.Candles.Set(float64(len(snap.Candles)))
	m.SyntheticCandles.Set(float64(snap.SyntheticCount()))
	m.LastRefresh.Set(float64(snap.GeneratedAt.Unix()))

	// series absent from this snapshot must not keep an older value
	m.HitRate.Reset()
	last := snap.LastClosed()
	if last == nil {
		return
	}
	for _, s := range model.AllStrategies {
		a := last.Aggregate(s)
		if a == nil {
			continue
		}
		set := func(scope, band, pct string, ok bool) {
			if v, parsed := parsePercent(pct); ok && parsed {
				m.HitRate.WithLabelValues(string(s), scope, band).Set(v)
			}
		}
		set("daily", "wide", a.DailyHitRate.String, a.DailyHitRate.Valid)
		set("daily", "narrow", a.DailyHitRateNarrow.String, a.DailyHitRateNarrow.Valid)
		set("weekly", "wide", a.WeeklyHitRate.String, a.WeeklyHitRate.Valid)
		set("weekly", "narrow", a.WeeklyHitRateNarrow.String, a.WeeklyHitRateNarrow.Valid)
	}
}

// parsePercent turns "66.7%" into 0.667.
func parsePercent(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, false
	}
	return v / 100, true
}
