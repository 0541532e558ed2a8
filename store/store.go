// Package store provides the parameter store consulted by param effects:
// a name→value registry with in-memory and SQLite-backed implementations.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is recorded under the name.
var ErrNotFound = errors.New("param not found")

// Store is a name→value parameter registry.
type Store interface {
	Get(ctx context.Context, name string) (any, error)
	Set(ctx context.Context, name string, value any) error
	Names(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// ctxStoreKey is an unexported type for keys defined in this package.
type ctxStoreKey struct{}

// NewContext returns a new context carrying the given store.
func NewContext(ctx context.Context, s Store) context.Context {
	return context.WithValue(ctx, ctxStoreKey{}, s)
}

// FromContext retrieves the store from the context, if present.
func FromContext(ctx context.Context) (Store, bool) {
	s, ok := ctx.Value(ctxStoreKey{}).(Store)
	return s, ok
}
