package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	FibersTotal    *prometheus.CounterVec
	FibersInFlight *prometheus.GaugeVec
	ResumesTotal   prometheus.Counter
	TimersActive   prometheus.Gauge
	UncaughtTotal  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		FibersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fibers_total",
			Help: "total number of fibers spawned",
		}, []string{"kind"}),
		FibersInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fibers_in_flight",
			Help: "number of in flight fibers",
		}, []string{"kind"}),
		ResumesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fiber_resumes_total",
			Help: "total number of fiber resumptions",
		}),
		TimersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loop_timers_active",
			Help: "number of pending loop timers",
		}),
		UncaughtTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uncaught_errors_total",
			Help: "total number of uncaught detached fiber errors",
		}),
	}

	metrics.Enable(reg)
	return metrics
}

func (m *Metrics) Enable(reg prometheus.Registerer) {
	reg.MustRegister(m.FibersTotal)
	reg.MustRegister(m.FibersInFlight)
	reg.MustRegister(m.ResumesTotal)
	reg.MustRegister(m.TimersActive)
	reg.MustRegister(m.UncaughtTotal)
}

func (m *Metrics) Disable(reg prometheus.Registerer) {
	reg.Unregister(m.FibersTotal)
	reg.Unregister(m.FibersInFlight)
	reg.Unregister(m.ResumesTotal)
	reg.Unregister(m.TimersActive)
	reg.Unregister(m.UncaughtTotal)
}
