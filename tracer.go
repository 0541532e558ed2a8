package effkit

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/effkit/effkit/trace"
)

// Tracer pairs a Recorder with a computation. Every invocation produces a
// fresh trace bracketed by synthetic input and return nodes.
type Tracer struct {
	scope *Scope
	rec   *Recorder
}

// NewTracer creates a tracer around the computation. Options configure the
// underlying recorder.
func NewTracer(fn Computation, opts ...RecorderOption) *Tracer {
	rec := NewRecorder(opts...)
	return &Tracer{scope: NewScope(rec, fn), rec: rec}
}

// Recorder returns the bound recorder.
func (t *Tracer) Recorder() *Recorder {
	return t.rec
}

// Invoke resets the recorder, records the input node, runs the computation
// under the tracing scope, records the return node, and returns the result.
// The previous live trace is discarded; copies taken from it are unaffected.
func (t *Tracer) Invoke(ctx context.Context, args ...any) (any, error) {
	t.rec.Reset()
	if err := t.rec.RecordInput(args); err != nil {
		return nil, err
	}
	result, err := t.scope.Invoke(ctx, args...)
	if err != nil {
		return nil, err
	}
	if err := t.rec.RecordReturn(result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetTrace invokes the computation and returns the resulting trace instead of
// the computation result.
func (t *Tracer) GetTrace(ctx context.Context, args ...any) (*trace.Trace, error) {
	if _, err := t.Invoke(ctx, args...); err != nil {
		return nil, err
	}
	return t.rec.Trace(), nil
}

// CollectTraces runs n independent invocations of the computation
// concurrently and returns one trace per run. Each run gets its own tracer
// and its own execution stack, so it must not be called from inside another
// scope's computation.
func CollectTraces(ctx context.Context, n int, fn Computation, opts ...RecorderOption) ([]*trace.Trace, error) {
	traces := make([]*trace.Trace, n)
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range traces {
		eg.Go(func() error {
			runCtx := NewStackContext(egCtx, NewStack())
			tr, err := NewTracer(fn, opts...).GetTrace(runCtx)
			if err != nil {
				return err
			}
			traces[i] = tr
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return traces, nil
}
