// Package effkit provides an effect-handler execution stack: named sample
// and param effects performed inside a computation are routed through a
// stack of handlers that can resolve, observe, or record them. The bundled
// Recorder writes every settled effect into a trace graph, from which dense
// dependency edges can be reconstructed.
package effkit

import "context"

// Handler intercepts effects dispatched through an execution stack.
//
// Process runs innermost-to-outermost while a message is being resolved;
// Postprocess runs in the reverse order once the value is settled, giving the
// outermost handler the final look. OnEnter and OnExit bracket the scoped
// invocation the handler is installed for, and Reset discards any per-invocation
// state.
type Handler interface {
	OnEnter(ctx context.Context)
	OnExit(ctx context.Context, err error)
	Process(ctx context.Context, msg *Message) error
	Postprocess(ctx context.Context, msg *Message) error
	Reset()
}

// NopHandler is an embeddable Handler whose hooks all do nothing.
type NopHandler struct{}

func (NopHandler) OnEnter(context.Context)                     {}
func (NopHandler) OnExit(context.Context, error)               {}
func (NopHandler) Process(context.Context, *Message) error     { return nil }
func (NopHandler) Postprocess(context.Context, *Message) error { return nil }
func (NopHandler) Reset()                                      {}
