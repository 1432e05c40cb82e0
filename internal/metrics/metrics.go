package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed diagnoses and prediction calls.
	OutcomeSuccess = "success"
	// OutcomeError labels failed diagnoses (prediction service or decoding issues).
	OutcomeError = "error"
	// OutcomeCached labels prediction calls served from the cache.
	OutcomeCached = "cached"
)

var (
	diagnosesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aims",
			Name:      "diagnoses_total",
			Help:      "Total number of diagnoses handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	diagnosisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "aims",
			Name:      "diagnosis_seconds",
			Help:      "End-to-end diagnosis latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
		},
	)

	severityTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aims",
			Name:      "severity_total",
			Help:      "Completed diagnoses by severity tier.",
		},
		[]string{"severity"},
	)

	predictionCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aims",
			Subsystem: "predictor",
			Name:      "calls_total",
			Help:      "Calls to the prediction service, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	predictionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "aims",
			Subsystem: "predictor",
			Name:      "call_seconds",
			Help:      "Prediction service round-trip latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register attaches the dashboard collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		diagnosesTotal,
		diagnosisDurationSeconds,
		severityTotal,
		predictionCallsTotal,
		predictionDurationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveDiagnosis records a diagnosis duration and outcome label.
func ObserveDiagnosis(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	diagnosesTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	diagnosisDurationSeconds.Observe(duration.Seconds())
}

// ObserveSeverity counts a completed diagnosis under its severity tier.
func ObserveSeverity(severity string) {
	severityTotal.WithLabelValues(severity).Inc()
}

// ObservePredictionCall records a prediction service call. Cached hits skip the latency histogram.
func ObservePredictionCall(duration time.Duration, outcome string) {
	switch outcome {
	case OutcomeCached, OutcomeError:
	default:
		outcome = OutcomeSuccess
	}
	predictionCallsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeCached {
		return
	}
	if duration < 0 {
		duration = 0
	}
	predictionDurationSeconds.Observe(duration.Seconds())
}
