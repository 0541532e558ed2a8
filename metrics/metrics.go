// Package metrics provides a prometheus-instrumented effect handler. It can
// be installed alongside a recorder to count the effects flowing through the
// execution stack without touching them.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/effkit/effkit"
)

var (
	// EffectsTotal tracks the number of effects postprocessed, by kind.
	EffectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "effkit_effects_total",
			Help: "Total number of effects dispatched through the handler stack",
		},
		[]string{"kind"},
	)

	// ObservedTotal tracks sample effects that carried a caller-supplied value.
	ObservedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "effkit_observed_total",
			Help: "Total number of sample effects with observed values",
		},
	)

	// InvocationsTotal tracks scoped invocations seen by the handler, by outcome.
	InvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "effkit_invocations_total",
			Help: "Total number of scoped invocations",
		},
		[]string{"outcome"},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(EffectsTotal)
	prometheus.MustRegister(ObservedTotal)
	prometheus.MustRegister(InvocationsTotal)
}

// Handler counts effects as they settle. It never resolves or mutates
// messages, so it composes with any other handler on the stack.
type Handler struct {
	effkit.NopHandler
}

// NewHandler creates a metrics handler.
func NewHandler() *Handler {
	return &Handler{}
}

// OnExit records the invocation outcome.
func (h *Handler) OnExit(_ context.Context, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	InvocationsTotal.WithLabelValues(outcome).Inc()
}

// Postprocess counts the settled message by kind.
func (h *Handler) Postprocess(_ context.Context, msg *effkit.Message) error {
	EffectsTotal.WithLabelValues(msg.Kind.String()).Inc()
	if msg.IsObserved {
		ObservedTotal.Inc()
	}
	return nil
}
