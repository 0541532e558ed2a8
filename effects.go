package effkit

import (
	"context"
	"errors"
	"fmt"

	"github.com/effkit/effkit/store"
)

// Sample performs a sample effect at the named site. The message is routed
// through the execution stack carried by the context; when no handler
// resolves it, the resolver produces the value. Outside any scope the
// resolver runs directly.
func Sample(ctx context.Context, name string, resolve Resolver, opts ...EffectOption) (any, error) {
	msg := &Message{
		Name:           name,
		Kind:           KindSample,
		CondIndepStack: FramesFromContext(ctx),
		resolver:       resolve,
	}
	return apply(ctx, msg, opts...)
}

// Param performs a param effect at the named site. When no handler resolves
// it, the value is looked up in the parameter store carried by the context
// and created with init on a miss. Without a store the init value is used
// directly; failing that the effect fails with ErrNoParamStore.
func Param(ctx context.Context, name string, init Resolver, opts ...EffectOption) (any, error) {
	msg := &Message{
		Name:           name,
		Kind:           KindParam,
		CondIndepStack: FramesFromContext(ctx),
		resolver:       paramResolver(name, init),
	}
	return apply(ctx, msg, opts...)
}

// apply finalizes the message options and dispatches it. With an empty stack
// the effect resolves directly, bypassing the handler protocol.
func apply(ctx context.Context, msg *Message, opts ...EffectOption) (any, error) {
	for _, opt := range opts {
		opt(msg)
	}
	stack, ok := FromStackContext(ctx)
	if !ok || stack.Len() == 0 {
		if err := msg.resolve(ctx); err != nil {
			return nil, err
		}
		return msg.Value, nil
	}
	if err := stack.Apply(ctx, msg); err != nil {
		return nil, err
	}
	return msg.Value, nil
}

// paramResolver implements the default param behavior: get-or-create against
// the context parameter store.
func paramResolver(name string, init Resolver) Resolver {
	return func(ctx context.Context) (any, error) {
		st, ok := store.FromContext(ctx)
		if !ok {
			if init == nil {
				return nil, fmt.Errorf("param %q: %w", name, ErrNoParamStore)
			}
			return init(ctx)
		}
		value, err := st.Get(ctx, name)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("param %q: %w", name, err)
		}
		if init == nil {
			return nil, fmt.Errorf("param %q: %w", name, err)
		}
		value, err = init(ctx)
		if err != nil {
			return nil, err
		}
		if err := st.Set(ctx, name, value); err != nil {
			return nil, fmt.Errorf("param %q: %w", name, err)
		}
		return value, nil
	}
}
