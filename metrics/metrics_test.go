package metrics_test

import (
	"testing"
	"time"

	"github.com/fschiettecatte/mpscore/metrics"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryCollectors(t *testing.T) {
	r := metrics.NewRegistry()
	require.Len(t, r.Collectors(), 5)
}

func TestObserveLatencyAndQuantile(t *testing.T) {
	r := metrics.NewRegistry()
	for i := 0; i < 100; i++ {
		r.ObserveLatency("dict.Get", time.Duration(i+1)*time.Microsecond)
	}
	p50 := r.LatencyQuantile("dict.Get", 50)
	require.Greater(t, p50, int64(0))
}

func TestNilRegistryIsSafe(t *testing.T) {
	var r *metrics.Registry
	require.NotPanics(t, func() {
		r.ObserveLatency("x", time.Millisecond)
		_ = r.LatencyQuantile("x", 50)
		_ = r.Collectors()
	})
}
