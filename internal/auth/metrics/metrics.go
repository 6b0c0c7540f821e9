package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for logins and credential provisioning.
type Metrics struct {
	LoginsSucceeded       prometheus.Counter
	LoginsFailed          *prometheus.CounterVec
	LoginDuration         prometheus.Histogram
	CredentialsIssued     prometheus.Counter
	CredentialEmailFailed *prometheus.CounterVec
	MailCircuitOpen       prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoginsSucceeded: f.NewCounter(prometheus.CounterOpts{
			Name: "registry_logins_total",
			Help: "Successful logins",
		}),
		LoginsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_login_failures_total",
			Help: "Rejected logins by reason",
		}, []string{"reason"}),
		LoginDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "registry_login_duration_seconds",
			Help:    "Login latency, dominated by bcrypt",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}),
		CredentialsIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "registry_credentials_issued_total",
			Help: "Client logins provisioned for new profiles",
		}),
		CredentialEmailFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_credential_email_failures_total",
			Help: "Account mails that were not delivered, by reason",
		}, []string{"reason"}),
		MailCircuitOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "registry_mail_circuit_open",
			Help: "1 while the mail circuit breaker is open",
		}),
	}
}

func (m *Metrics) IncrementLogin() { m.LoginsSucceeded.Inc() }

func (m *Metrics) IncrementLoginFailure(reason string) { m.LoginsFailed.WithLabelValues(reason).Inc() }

func (m *Metrics) ObserveLogin(start time.Time) { m.LoginDuration.Observe(time.Since(start).Seconds()) }

func (m *Metrics) IncrementIssued() { m.CredentialsIssued.Inc() }

func (m *Metrics) IncrementEmailFailure(reason string) {
	m.CredentialEmailFailed.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetCircuitOpen(open bool) {
	if open {
		m.MailCircuitOpen.Set(1)
		return
	}
	m.MailCircuitOpen.Set(0)
}
