package registry

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registryState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "assessml",
			Subsystem: "registry",
			Name:      "state",
			Help:      "1 for the current registry lifecycle state, 0 otherwise",
		},
		[]string{"state"},
	)

	modelLoadSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "assessml",
			Subsystem: "registry",
			Name:      "load_seconds",
			Help:      "Time spent loading each capability",
		},
		[]string{"capability", "outcome"},
	)

	invocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assessml",
			Subsystem: "model",
			Name:      "invocations_total",
			Help:      "Total model invocations by capability and outcome",
		},
		[]string{"capability", "outcome"},
	)

	invocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "assessml",
			Subsystem: "model",
			Name:      "invocation_duration_seconds",
			Help:      "Duration of successful model invocations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"capability"},
	)
)

func init() {
	prometheus.MustRegister(registryState, modelLoadSeconds, invocationsTotal, invocationDuration)
}

func setStateGauge(s State) {
	for _, st := range []State{StateUninitialized, StateLoading, StateReady, StateDegraded} {
		v := 0.0
		if st == s {
			v = 1
		}
		registryState.WithLabelValues(string(st)).Set(v)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

func observeInvocation(c Capability, err error, d time.Duration) {
	o := outcome(err)
	invocationsTotal.WithLabelValues(string(c), o).Inc()
	if o == "ok" {
		invocationDuration.WithLabelValues(string(c)).Observe(d.Seconds())
	}
}

func observeLoad(c Capability, err error, d time.Duration) {
	modelLoadSeconds.WithLabelValues(string(c), outcome(err)).Set(d.Seconds())
}
