package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers image scoring, reconciliation ticks and seller
// verification outcomes.
type Metrics struct {
	ImagesScored        *prometheus.CounterVec
	ScoringFailures     prometheus.Counter
	ImagesQuarantined   prometheus.Counter
	ProductsReconciled  *prometheus.CounterVec
	TickDuration        prometheus.Histogram
	TicksSkipped        prometheus.Counter
	SellerVerifications *prometheus.CounterVec
	VerifyDuration      prometheus.Histogram
}

// New registers every collector on reg. Pass prometheus.DefaultRegisterer
// in binaries and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ImagesScored: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trustgate_images_scored_total",
			Help: "Images scored by the reconciliation job, by resulting status",
		}, []string{"status"}),
		ScoringFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "trustgate_image_scoring_failures_total",
			Help: "Image scoring attempts that failed and were left pending",
		}),
		ImagesQuarantined: f.NewCounter(prometheus.CounterOpts{
			Name: "trustgate_images_quarantined_total",
			Help: "Images removed from the pending sweep after repeated failures",
		}),
		ProductsReconciled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trustgate_products_reconciled_total",
			Help: "Product status recomputations, by resulting status",
		}, []string{"status"}),
		TickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustgate_reconcile_tick_duration_seconds",
			Help:    "Duration of one reconciliation tick",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		TicksSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "trustgate_reconcile_ticks_skipped_total",
			Help: "Ticks skipped because another run held the lease",
		}),
		SellerVerifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trustgate_seller_verifications_total",
			Help: "Seller verification attempts, by outcome",
		}, []string{"outcome"}),
		VerifyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustgate_seller_verification_duration_seconds",
			Help:    "Duration of seller ID card verification including OCR and QR decoding",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		}),
	}
}

func (m *Metrics) ObserveImageScored(status string) {
	m.ImagesScored.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementScoringFailure() {
	m.ScoringFailures.Inc()
}

func (m *Metrics) IncrementQuarantined() {
	m.ImagesQuarantined.Inc()
}

func (m *Metrics) ObserveProductReconciled(status string) {
	m.ProductsReconciled.WithLabelValues(status).Inc()
}

// ObserveTick records a tick that started at start.
func (m *Metrics) ObserveTick(start time.Time) {
	m.TickDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementTickSkipped() {
	m.TicksSkipped.Inc()
}

// ObserveVerification records one verification attempt and its outcome
// ("verified", "basic", "failed", "timeout", "error").
func (m *Metrics) ObserveVerification(outcome string, start time.Time) {
	m.SellerVerifications.WithLabelValues(outcome).Inc()
	m.VerifyDuration.Observe(time.Since(start).Seconds())
}
