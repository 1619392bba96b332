package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nordreg/domainscout/internal/core"
)

// Collector owns the run's prometheus instruments. It registers on a
// private registry so repeated construction (tests, reruns) never
// collides with the default registry.
type Collector struct {
	registry *prometheus.Registry

	probesTotal   *prometheus.CounterVec
	probeErrors   *prometheus.CounterVec
	probeDuration prometheus.Histogram

	businessesProcessed   prometheus.Counter
	businessesWithDomains prometheus.Counter
	businessErrors        prometheus.Counter
	domainsConfirmed      prometheus.Counter

	registryPages prometheus.Counter
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,

		probesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "domainscout_probes_total",
			Help: "Candidate probes by outcome",
		}, []string{"outcome"}),
		probeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "domainscout_probe_errors_total",
			Help: "Probe failures by error kind",
		}, []string{"kind"}),
		probeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "domainscout_probe_duration_seconds",
			Help:    "Latency of reachable probes",
			Buckets: prometheus.DefBuckets,
		}),

		businessesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "domainscout_businesses_processed_total",
			Help: "Businesses run through discovery",
		}),
		businessesWithDomains: factory.NewCounter(prometheus.CounterOpts{
			Name: "domainscout_businesses_with_domains_total",
			Help: "Businesses with at least one confirmed domain",
		}),
		businessErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "domainscout_business_errors_total",
			Help: "Businesses recorded with an error annotation",
		}),
		domainsConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Name: "domainscout_domains_confirmed_total",
			Help: "Confirmed domains across all businesses",
		}),

		registryPages: factory.NewCounter(prometheus.CounterOpts{
			Name: "domainscout_registry_pages_total",
			Help: "Registry result pages fetched",
		}),
	}
}

// Registry exposes the private registry for the optional HTTP endpoint.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) RecordVerdict(v core.VerificationVerdict) {
	switch {
	case v.Reachable:
		c.probesTotal.WithLabelValues("reachable").Inc()
		c.probeDuration.Observe(v.Latency.Seconds())
	case v.Resolvable:
		c.probesTotal.WithLabelValues("unreachable").Inc()
	default:
		c.probesTotal.WithLabelValues("unresolvable").Inc()
	}
	if v.ErrorKind != "" {
		c.probeErrors.WithLabelValues(string(v.ErrorKind)).Inc()
	}
}

func (c *Collector) RecordBusiness(result core.DomainResult) {
	c.businessesProcessed.Inc()
	if len(result.Domains) > 0 {
		c.businessesWithDomains.Inc()
	}
	if result.Err != "" {
		c.businessErrors.Inc()
	}
	c.domainsConfirmed.Add(float64(len(result.Domains)))
}

func (c *Collector) RecordRegistryPage() {
	c.registryPages.Inc()
}
