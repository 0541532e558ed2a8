package effkit

import (
	"context"

	"github.com/effkit/effkit/internal/ctxlog"
)

// Computation is an arbitrary traced computation. Effects performed inside it
// must use the ctx it receives, which carries the execution stack.
type Computation func(ctx context.Context, args ...any) (any, error)

// Scope binds one handler to one computation and makes the pair invocable.
// Invoke installs the handler on the context's execution stack, runs the
// computation, and uninstalls the handler on every exit path.
type Scope struct {
	handler Handler
	fn      Computation
}

// NewScope creates a scope binding the handler to the computation.
func NewScope(handler Handler, fn Computation) *Scope {
	return &Scope{handler: handler, fn: fn}
}

// Handler returns the bound handler.
func (s *Scope) Handler() Handler {
	return s.handler
}

// Invoke runs the bound computation with the handler installed. Failures from
// the computation propagate unchanged after the handler is removed from the
// stack; a mismatched uninstall surfaces as ErrStackCorruption.
func (s *Scope) Invoke(ctx context.Context, args ...any) (result any, err error) {
	stack, ctx := EnsureStackContext(ctx)
	log := ctxlog.FromContext(ctx)
	stack.Install(s.handler)
	s.handler.OnEnter(ctx)
	log.DebugContext(ctx, "handler installed", "depth", stack.Len())
	defer func() {
		s.handler.OnExit(ctx, err)
		if uerr := stack.Uninstall(s.handler); uerr != nil && err == nil {
			err = uerr
		}
		log.DebugContext(ctx, "handler uninstalled", "depth", stack.Len())
	}()
	return s.fn(ctx, args...)
}
