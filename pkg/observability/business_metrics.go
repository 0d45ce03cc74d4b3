package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	// Settlement batch metrics
	settlementsComputedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_settlements_total",
		Help: "Total number of settlements produced by the batch, by final write status",
	}, []string{
		"job_name",
		"status", // written, write_failed
	})

	sellersSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_sellers_skipped_total",
		Help: "Sellers skipped during a batch run, by skip reason",
	}, []string{
		"job_name",
		"reason", // ALREADY_EXISTS, PROCESSING_ERROR, WRITE_ERROR, UNKNOWN
	})

	payoutAmountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_payout_amount_total",
		Help: "Sum of computed payout amounts (major currency units)",
	}, []string{
		"job_name",
	})

	chunkWriteDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_chunk_write_duration_seconds",
		Help:    "Time to persist one settlement chunk",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{
		"job_name",
	})

	jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_job_runs_total",
		Help: "Settlement job runs, by terminal status",
	}, []string{
		"job_name",
		"status", // COMPLETED, PARTIALLY_FAILED, FAILED, SKIPPED_DUPLICATE
	})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_job_duration_seconds",
		Help:    "End-to-end settlement job duration",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	}, []string{
		"job_name",
	})
)

// RecordSettlementWritten counts settlements committed by a chunk write
func RecordSettlementWritten(jobName string, count int, payoutSum decimal.Decimal) {
	settlementsComputedTotal.WithLabelValues(jobName, "written").Add(float64(count))
	f, _ := payoutSum.Float64()
	payoutAmountTotal.WithLabelValues(jobName).Add(f)
}

// RecordSettlementWriteFailed counts settlements lost to a chunk write failure
func RecordSettlementWriteFailed(jobName string, count int) {
	settlementsComputedTotal.WithLabelValues(jobName, "write_failed").Add(float64(count))
}

// RecordSellerSkipped counts one skipped seller by reason
func RecordSellerSkipped(jobName, reason string) {
	sellersSkippedTotal.WithLabelValues(jobName, reason).Inc()
}

// RecordChunkWriteDuration observes one chunk persist duration
func RecordChunkWriteDuration(jobName string, d time.Duration) {
	chunkWriteDuration.WithLabelValues(jobName).Observe(d.Seconds())
}

// RecordJobRun counts one finished run and observes its duration
func RecordJobRun(jobName, status string, d time.Duration) {
	jobRunsTotal.WithLabelValues(jobName, status).Inc()
	jobDuration.WithLabelValues(jobName).Observe(d.Seconds())
}
