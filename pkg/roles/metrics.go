package roles

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the engine's Prometheus metrics. All record helpers are
// nil-safe so instrumentation stays optional.
type Metrics struct {
	// Evaluations counts role evaluations by role name and outcome.
	Evaluations *prometheus.CounterVec

	// MembershipFetches counts external membership lookups by role kind
	// and status.
	MembershipFetches *prometheus.CounterVec

	// CacheHits / CacheMisses count dynamic-role cache lookups by kind.
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// NewMetrics creates the engine metrics and registers them with reg when it
// is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rolegate_evaluations_total",
				Help: "Total number of role evaluations",
			},
			[]string{"role", "outcome"},
		),
		MembershipFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rolegate_membership_fetches_total",
				Help: "Total number of external membership lookups",
			},
			[]string{"kind", "status"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rolegate_membership_cache_hits_total",
				Help: "Total number of membership cache hits",
			},
			[]string{"kind"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rolegate_membership_cache_misses_total",
				Help: "Total number of membership cache misses",
			},
			[]string{"kind"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Evaluations, m.MembershipFetches, m.CacheHits, m.CacheMisses)
	}

	return m
}

func (m *Metrics) recordEvaluation(role string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.Evaluations.WithLabelValues(role, outcome).Inc()
}

func (m *Metrics) recordFetch(kind, status string) {
	if m == nil {
		return
	}
	m.MembershipFetches.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) recordCacheHit(kind string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(kind).Inc()
}

func (m *Metrics) recordCacheMiss(kind string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(kind).Inc()
}
