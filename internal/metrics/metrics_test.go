package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAreLabelled(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveImageScored("APPROVED")
	m.ObserveImageScored("APPROVED")
	m.ObserveImageScored("REJECTED")
	m.IncrementScoringFailure()
	m.ObserveVerification("verified", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ImagesScored.WithLabelValues("APPROVED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImagesScored.WithLabelValues("REJECTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoringFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SellerVerifications.WithLabelValues("verified")))
}

func TestNewOnSeparateRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
