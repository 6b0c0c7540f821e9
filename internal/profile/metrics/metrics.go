package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics provides observability for the profile module.
type Metrics struct {
	ProfilesCreated  prometheus.Counter
	ProfilesDeleted  prometheus.Counter
	HoldingsReviewed *prometheus.CounterVec
	HookFailures     *prometheus.CounterVec
	ProfilesExported prometheus.Counter
	CreateDuration   prometheus.Histogram
	UpdateDuration   prometheus.Histogram
	ListDuration     prometheus.Histogram
	ExportDuration   prometheus.Histogram
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ProfilesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "registry_profiles_created_total",
			Help: "Total number of client profiles created",
		}),
		ProfilesDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "registry_profiles_deleted_total",
			Help: "Total number of client profiles deleted",
		}),
		HoldingsReviewed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_holdings_reviewed_total",
			Help: "Review saves by resulting status",
		}, []string{"status"}),
		HookFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_profile_hook_failures_total",
			Help: "Post-create and post-delete hook failures (logged and swallowed)",
		}, []string{"stage"}),
		ProfilesExported: f.NewCounter(prometheus.CounterOpts{
			Name: "registry_profiles_exported_total",
			Help: "Profiles written to tabular exports",
		}),
		CreateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "registry_profile_create_duration_seconds",
			Help:    "Duration of profile creation including hooks",
			Buckets: durationBuckets,
		}),
		UpdateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "registry_profile_update_duration_seconds",
			Help:    "Duration of profile replacement and review saves",
			Buckets: durationBuckets,
		}),
		ListDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "registry_profile_list_duration_seconds",
			Help:    "Duration of filtered profile listings",
			Buckets: durationBuckets,
		}),
		ExportDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "registry_profile_export_duration_seconds",
			Help:    "Duration of export projections",
			Buckets: durationBuckets,
		}),
	}
}

func (m *Metrics) IncrementCreated() { m.ProfilesCreated.Inc() }
func (m *Metrics) IncrementDeleted() { m.ProfilesDeleted.Inc() }

func (m *Metrics) IncrementReviewed(status string) {
	m.HoldingsReviewed.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementHookFailure(stage string) {
	m.HookFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) AddExported(n int) {
	m.ProfilesExported.Add(float64(n))
}

// ObserveCreate records the duration of a Create call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreate(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveUpdate(start time.Time) {
	m.UpdateDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveList(start time.Time) {
	m.ListDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveExport(start time.Time) {
	m.ExportDuration.Observe(time.Since(start).Seconds())
}
