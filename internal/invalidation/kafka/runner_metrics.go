package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metricSet struct {
	msgs     *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	proc     *prometheus.HistogramVec
	lagGauge prometheus.Gauge
}

func newMetricSet(r prometheus.Registerer) *metricSet {
	m := &metricSet{
		msgs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_inval_msgs_total",
				Help: "Count of change-event messages by result.",
			},
			[]string{"result"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_inval_views_dropped_total",
				Help: "Cached views removed per dataset during invalidation.",
			},
			[]string{"dataset"},
		),
		proc: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "viewer_inval_processing_seconds",
				Help:    "End-to-end processing time for one message.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"op"},
		),
		lagGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "viewer_inval_lag_seconds",
				Help: "Approximate lag: now - message.timestamp.",
			},
		),
	}
	if r != nil {
		r.MustRegister(m.msgs, m.dropped, m.proc, m.lagGauge)
	}
	return m
}
