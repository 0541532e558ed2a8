package effkit

import (
	"context"

	"github.com/effkit/effkit/trace"
)

// Kind discriminates the closed set of effect kinds.
type Kind int

const (
	// KindSample is a random draw performed at a named site.
	KindSample Kind = iota
	// KindParam is a learnable-parameter lookup at a named site.
	KindParam
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSample:
		return "sample"
	case KindParam:
		return "param"
	default:
		return "unknown"
	}
}

// Resolver produces the value of an effect when no handler resolves it first.
type Resolver func(context.Context) (any, error)

// Message is the mutable record threaded through the handler stack for one
// effect occurrence. A handler may settle Value and set Done to stop the
// process walk; every installed handler still sees the settled message during
// the postprocess walk.
type Message struct {
	Name           string
	Kind           Kind
	Value          any
	IsObserved     bool
	Done           bool
	Subsample      bool
	CondIndepStack []trace.Frame

	resolver Resolver
}

// resolve settles the message value via its resolver unless a handler or an
// observation already did.
func (m *Message) resolve(ctx context.Context) error {
	if m.Value == nil && !m.IsObserved && m.resolver != nil {
		value, err := m.resolver(ctx)
		if err != nil {
			return err
		}
		m.Value = value
	}
	m.Done = true
	return nil
}
