package effkit

import (
	"context"
	"fmt"
	"slices"

	"github.com/effkit/effkit/trace"
)

// Recorder is a Handler that records every settled effect as a node in its
// live trace. It never resolves values itself: the process hooks only guard
// the write-once site invariant and defer resolution downstream.
type Recorder struct {
	graphType   trace.GraphType
	isSubsample trace.Predicate
	tr          *trace.Trace
}

// NewRecorder creates a recorder with a fresh live trace.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{graphType: trace.GraphFlat}
	for _, opt := range opts {
		opt(r)
	}
	r.Reset()
	return r
}

// GraphType reports the graph type of the traces the recorder produces.
func (r *Recorder) GraphType() trace.GraphType {
	return r.graphType
}

// Reset discards the live trace and starts a fresh one. Copies returned
// earlier are unaffected.
func (r *Recorder) Reset() {
	r.tr = trace.New(r.graphType)
}

// Trace returns a shallow copy of the live trace. The copy does not reflect
// later invocations.
func (r *Recorder) Trace() *trace.Trace {
	return r.tr.Copy()
}

// RecordInput seeds the live trace with the synthetic input node holding the
// invocation arguments.
func (r *Recorder) RecordInput(args []any) error {
	return r.tr.Add(&trace.Node{Name: trace.InputName, Type: trace.NodeInput, Args: args})
}

// RecordReturn appends the synthetic return node holding the computation
// result.
func (r *Recorder) RecordReturn(value any) error {
	return r.tr.Add(&trace.Node{Name: trace.ReturnName, Type: trace.NodeReturn, Value: value})
}

func (r *Recorder) OnEnter(context.Context) {}

// OnExit finalizes the live trace: in dense mode the dependency edges are
// inferred from the recorded conditional-independence frames. A failed
// invocation leaves the trace indeterminate and skips inference; the next
// Reset is the only recovery path.
func (r *Recorder) OnExit(_ context.Context, err error) {
	if err != nil {
		return
	}
	if r.graphType == trace.GraphDense {
		trace.IdentifyDenseEdges(r.tr, r.isSubsample)
	}
}

// Process guards the site invariant. Exhaustive over effect kinds: a sample
// may not reuse a name recorded as param or sample, a param may not reuse a
// name recorded as sample.
func (r *Recorder) Process(_ context.Context, msg *Message) error {
	node, ok := r.tr.Node(msg.Name)
	if !ok {
		return nil
	}
	switch msg.Kind {
	case KindSample:
		switch node.Type {
		case trace.NodeParam:
			return fmt.Errorf("site %q is already recorded as a param: %w", msg.Name, ErrDuplicateSite)
		case trace.NodeSample, trace.NodeSubsample:
			return fmt.Errorf("multiple sample sites named %q: %w", msg.Name, ErrDuplicateSite)
		}
	case KindParam:
		if node.Type == trace.NodeSample {
			return fmt.Errorf("site %q is already recorded as a sample: %w", msg.Name, ErrDuplicateSite)
		}
	}
	return nil
}

// Postprocess writes the settled message into the live trace. The trace
// rejects duplicate names, double-checking the invariant guarded in Process.
func (r *Recorder) Postprocess(_ context.Context, msg *Message) error {
	return r.tr.Add(&trace.Node{
		Name:           msg.Name,
		Type:           nodeType(msg),
		Value:          msg.Value,
		IsObserved:     msg.IsObserved,
		CondIndepStack: slices.Clone(msg.CondIndepStack),
	})
}

// nodeType maps a settled message onto its recorded node type.
func nodeType(msg *Message) trace.NodeType {
	if msg.Subsample {
		return trace.NodeSubsample
	}
	if msg.Kind == KindParam {
		return trace.NodeParam
	}
	return trace.NodeSample
}
