package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects service metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	modelCalls        *prometheus.CounterVec
	messagesSent      prometheus.Counter
	resolutions       *prometheus.CounterVec
	quoteFetchFailure *prometheus.CounterVec
	cacheErrors       *prometheus.CounterVec
}

// New registers the service metrics with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		modelCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_model_calls_total",
				Help: "Language model calls by result",
			},
			[]string{"result"},
		),
		messagesSent: f.NewCounter(
			prometheus.CounterOpts{
				Name: "signal_messages_sent_total",
				Help: "Chat replies accepted by the delivery channel",
			},
		),
		resolutions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_gate_resolutions_total",
				Help: "Signal requests by the tier that served them",
			},
			[]string{"source"},
		),
		quoteFetchFailure: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_quote_fetch_failures_total",
				Help: "Quote fetch failures per symbol",
			},
			[]string{"symbol"},
		),
		cacheErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_cache_errors_total",
				Help: "Analysis cache failures by operation",
			},
			[]string{"op"},
		),
	}
}

func (r *Recorder) RecordModelCall(result string) {
	if r == nil {
		return
	}
	r.modelCalls.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordMessageSent() {
	if r == nil {
		return
	}
	r.messagesSent.Inc()
}

func (r *Recorder) RecordResolution(source string) {
	if r == nil {
		return
	}
	r.resolutions.WithLabelValues(source).Inc()
}

func (r *Recorder) RecordQuoteFetchFailure(symbol string) {
	if r == nil {
		return
	}
	r.quoteFetchFailure.WithLabelValues(symbol).Inc()
}

func (r *Recorder) RecordCacheError(op string) {
	if r == nil {
		return
	}
	r.cacheErrors.WithLabelValues(op).Inc()
}
