package effkit

import (
	"context"
	"fmt"
)

// Stack is the ordered set of handlers active in one thread of control,
// innermost last. Nesting models the lexical scoping of handlers, not
// parallel execution: a stack must only ever be mutated by the single
// invocation chain that owns it.
type Stack struct {
	handlers []Handler
}

// NewStack creates an empty execution stack.
func NewStack() *Stack {
	return &Stack{}
}

// Len returns the number of installed handlers.
func (s *Stack) Len() int {
	return len(s.handlers)
}

// Install pushes a handler. Every Install must be paired with exactly one
// later Uninstall of the same handler.
func (s *Stack) Install(h Handler) {
	s.handlers = append(s.handlers, h)
}

// Uninstall pops the stack top. It fails with ErrStackCorruption when the
// top is not the handler being removed, which indicates unbalanced nesting.
func (s *Stack) Uninstall(h Handler) error {
	if len(s.handlers) == 0 {
		return fmt.Errorf("uninstall on empty stack: %w", ErrStackCorruption)
	}
	if s.handlers[len(s.handlers)-1] != h {
		return fmt.Errorf("uninstall of a handler that is not the stack top: %w", ErrStackCorruption)
	}
	s.handlers = s.handlers[:len(s.handlers)-1]
	return nil
}

// Apply dispatches one effect message through the stack. The process walk
// runs innermost to outermost and stops at the first handler that marks the
// message done; the message is then settled (by that handler, an observation,
// or its own resolver) and every installed handler postprocesses it in the
// reverse order.
func (s *Stack) Apply(ctx context.Context, msg *Message) error {
	for i := len(s.handlers) - 1; i >= 0; i-- {
		if err := s.handlers[i].Process(ctx, msg); err != nil {
			return err
		}
		if msg.Done {
			break
		}
	}
	if !msg.Done {
		if err := msg.resolve(ctx); err != nil {
			return err
		}
	}
	for _, h := range s.handlers {
		if err := h.Postprocess(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}
