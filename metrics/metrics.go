// Package metrics provides the ambient observability surface for this
// repo's components: Prometheus counters/gauges for operation counts and
// an HDR histogram for latency distributions, grounded on the
// prometheus.NewCounterVec/NewGaugeVec/NewHistogramVec idiom used
// throughout the example pack (e.g. the metrics registered in
// rpcpool-yellowstone-faithful's metrics.go) and on HdrHistogram-go for
// latency percentiles, which a simple Prometheus histogram cannot report
// without pre-chosen buckets. This is a library surface, not a server —
// nothing here starts an HTTP listener; embedding applications wire
// Registry.Collectors() into their own /metrics endpoint.
package metrics

import (
	"sync"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles every metric this core emits. One Registry is created
// per process; every component that wants to record a metric takes a
// *Registry (or nil, which every recording method below tolerates so
// metrics stay fully optional).
type Registry struct {
	DictGets       *prometheus.CounterVec
	DictScans      prometheus.Counter
	InverterSpills prometheus.Counter
	PostingMerges  *prometheus.CounterVec
	OpenReaders    prometheus.Gauge

	latencyMu sync.RWMutex
	latency   map[string]*hdrhistogram.Histogram
}

// NewRegistry constructs a Registry with every metric this package
// defines, ready to be registered with a prometheus.Registerer.
func NewRegistry() *Registry {
	return &Registry{
		DictGets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mpscore_dict_gets_total",
			Help: "Dictionary Get calls by result (hit, miss, error).",
		}, []string{"result"}),
		DictScans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mpscore_dict_scans_total",
			Help: "Dictionary Scan calls.",
		}),
		InverterSpills: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mpscore_inverter_spills_total",
			Help: "Inverter spill-to-disk events.",
		}),
		PostingMerges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mpscore_posting_merges_total",
			Help: "Posting list merge operator invocations by operator name.",
		}, []string{"operator"}),
		OpenReaders: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mpscore_open_readers",
			Help: "Number of currently open dict.Reader handles.",
		}),
		latency: make(map[string]*hdrhistogram.Histogram),
	}
}

// Collectors returns every metric as a prometheus.Collector, for an
// embedding application to register with its own prometheus.Registerer.
func (r *Registry) Collectors() []prometheus.Collector {
	if r == nil {
		return nil
	}
	return []prometheus.Collector{r.DictGets, r.DictScans, r.InverterSpills, r.PostingMerges, r.OpenReaders}
}

// ObserveLatency records d against the named operation's HDR histogram
// (1 microsecond to 1 minute, 3 significant figures — enough resolution
// for p50/p99/p999 reporting without the memory cost of full value
// retention).
func (r *Registry) ObserveLatency(operation string, d time.Duration) {
	if r == nil {
		return
	}
	r.latencyMu.Lock()
	defer r.latencyMu.Unlock()
	h, ok := r.latency[operation]
	if !ok {
		h = hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3)
		r.latency[operation] = h
	}
	_ = h.RecordValue(d.Microseconds())
}

// LatencyQuantile returns the latency at the given quantile (0-100) for
// operation, in microseconds, or 0 if no observations have been recorded.
func (r *Registry) LatencyQuantile(operation string, quantile float64) int64 {
	if r == nil {
		return 0
	}
	r.latencyMu.RLock()
	defer r.latencyMu.RUnlock()
	h, ok := r.latency[operation]
	if !ok {
		return 0
	}
	return h.ValueAtQuantile(quantile)
}
