package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(PerftNodes.WithLabelValues("perft"))
	PerftNodes.WithLabelValues("perft").Add(20)
	assert.Equal(t, before+20, testutil.ToFloat64(PerftNodes.WithLabelValues("perft")))

	hits := testutil.ToFloat64(CacheLookups.WithLabelValues("hit"))
	CacheLookups.WithLabelValues("hit").Inc()
	assert.Equal(t, hits+1, testutil.ToFloat64(CacheLookups.WithLabelValues("hit")))
}

func TestDurationHistogramRegistered(t *testing.T) {
	PerftDuration.Observe(0.5)
	assert.Equal(t, 1, testutil.CollectAndCount(PerftDuration))
}
