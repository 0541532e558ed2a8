package effkit

import (
	"context"

	"github.com/effkit/effkit/trace"
)

// ctxStackKey is the context key for the execution stack.
type ctxStackKey struct{}

// NewStackContext returns a new context carrying the given execution stack.
func NewStackContext(ctx context.Context, stack *Stack) context.Context {
	return context.WithValue(ctx, ctxStackKey{}, stack)
}

// FromStackContext retrieves the execution stack from the context, if present.
func FromStackContext(ctx context.Context) (*Stack, bool) {
	stack, ok := ctx.Value(ctxStackKey{}).(*Stack)
	return stack, ok
}

// EnsureStackContext retrieves the execution stack from the context, or
// creates a fresh one and attaches it when absent.
func EnsureStackContext(ctx context.Context) (*Stack, context.Context) {
	stack, ok := FromStackContext(ctx)
	if !ok {
		stack = NewStack()
		ctx = NewStackContext(ctx, stack)
	}
	return stack, ctx
}

// ctxFramesKey is the context key for the conditional-independence frames.
type ctxFramesKey struct{}

// WithFrame returns a context with one more conditional-independence frame
// pushed: effects performed under it record the frame on their stack,
// outermost first. Counter distinguishes replicates of the same context.
func WithFrame(ctx context.Context, name string, counter int) context.Context {
	frames := FramesFromContext(ctx)
	next := make([]trace.Frame, len(frames), len(frames)+1)
	copy(next, frames)
	next = append(next, trace.Frame{Name: name, Counter: counter})
	return context.WithValue(ctx, ctxFramesKey{}, next)
}

// FramesFromContext returns the conditional-independence frames active in the
// context, outermost first. The returned slice must not be mutated.
func FramesFromContext(ctx context.Context) []trace.Frame {
	frames, _ := ctx.Value(ctxFramesKey{}).([]trace.Frame)
	return frames
}
