// Package metrics exposes Prometheus instrumentation for passkey ceremonies.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Namespace = "passkey"

	LabelCeremony = "ceremony"
	LabelOutcome  = "outcome"

	OutcomeSuccess = "success"
)

// Ceremony names.
const (
	CeremonyRegisterPrepare = "register_prepare"
	CeremonyRegisterFinish  = "register_finish"
	CeremonyLoginPrepare    = "login_prepare"
	CeremonyLoginFinish     = "login_finish"
	CeremonyInviteGenerate  = "invite_generate"
	CeremonyUserDelete      = "user_delete"
)

// Metrics owns a private registry so tests and multiple routers do not clash
// on the global default registerer.
type Metrics struct {
	Registry *prometheus.Registry

	CeremoniesTotal  *prometheus.CounterVec
	CeremonyDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		CeremoniesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "ceremonies_total",
				Help:      "Total number of WebAuthn ceremony steps by ceremony and outcome",
			},
			[]string{LabelCeremony, LabelOutcome},
		),
		CeremonyDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "ceremony_duration_seconds",
				Help:      "Duration of WebAuthn ceremony steps in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{LabelCeremony},
		),
	}
}

// ObserveCeremony records one ceremony step. outcome is OutcomeSuccess or an
// error kind such as "challenge" or "store".
func (m *Metrics) ObserveCeremony(ceremony, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.CeremoniesTotal.WithLabelValues(ceremony, outcome).Inc()
	m.CeremonyDuration.WithLabelValues(ceremony).Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
