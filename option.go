package effkit

import "github.com/effkit/effkit/trace"

// EffectOption mutates an effect message before it is dispatched.
type EffectOption func(*Message)

// Observed fixes the value of the site to v instead of letting the resolver
// or a handler produce one.
func Observed(v any) EffectOption {
	return func(m *Message) {
		m.Value = v
		m.IsObserved = true
	}
}

// AsSubsample marks the site as minibatch bookkeeping: it is recorded with
// the reserved subsample type and excluded from dependency inference.
func AsSubsample() EffectOption {
	return func(m *Message) {
		m.Subsample = true
	}
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithGraphType sets the graph type of the traces the recorder produces.
// Defaults to flat.
func WithGraphType(graphType trace.GraphType) RecorderOption {
	return func(r *Recorder) {
		r.graphType = graphType
	}
}

// WithSubsamplePredicate overrides the predicate used to exclude subsample
// pseudo-sites from dense-edge inference.
func WithSubsamplePredicate(p trace.Predicate) RecorderOption {
	return func(r *Recorder) {
		r.isSubsample = p
	}
}
