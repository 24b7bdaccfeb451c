package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dsm"

// Metrics exposes Prometheus collectors for the cache, the remote clients and
// the data-source selector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	cacheLookups       *prometheus.CounterVec
	cacheWriteFailures *prometheus.CounterVec
	remoteRequests     *prometheus.CounterVec
	transitions        *prometheus.CounterVec
	fetchDuration      *prometheus.HistogramVec
}

// New constructs the collectors and registers them with reg. Collectors that
// are already registered (for example by an earlier call in the same process)
// are reused instead of failing.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by namespace and result.",
		}, []string{"namespace", "result"}),
		cacheWriteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "write_failures_total",
			Help:      "Cache writes that failed and were swallowed.",
		}, []string{"namespace"}),
		remoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      "Remote API calls by source and outcome.",
		}, []string{"source", "outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "datasource",
			Name:      "transitions_total",
			Help:      "Data-source state transitions by domain and resulting source.",
		}, []string{"domain", "source"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "datasource",
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of a domain fetch, successful or not.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"domain"}),
	}

	var err error
	m.cacheLookups, err = register(reg, m.cacheLookups)
	if err != nil {
		return nil, err
	}
	m.cacheWriteFailures, err = register(reg, m.cacheWriteFailures)
	if err != nil {
		return nil, err
	}
	m.remoteRequests, err = register(reg, m.remoteRequests)
	if err != nil {
		return nil, err
	}
	m.transitions, err = register(reg, m.transitions)
	if err != nil {
		return nil, err
	}
	m.fetchDuration, err = register(reg, m.fetchDuration)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// CacheLookup records a cache read; result is hit, miss, expired or corrupt.
func (m *Metrics) CacheLookup(ns, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(ns, result).Inc()
}

// CacheWriteFailure records a swallowed cache write error.
func (m *Metrics) CacheWriteFailure(ns string) {
	if m == nil {
		return
	}
	m.cacheWriteFailures.WithLabelValues(ns).Inc()
}

// RemoteRequest records a remote call outcome: cached, ok, rate_limited or error.
func (m *Metrics) RemoteRequest(source, outcome string) {
	if m == nil {
		return
	}
	m.remoteRequests.WithLabelValues(source, outcome).Inc()
}

// Transition records a data-source state change.
func (m *Metrics) Transition(domain, source string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(domain, source).Inc()
}

// ObserveFetch records how long a domain fetch took.
func (m *Metrics) ObserveFetch(domain string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(domain).Observe(d.Seconds())
}
