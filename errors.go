package effkit

import (
	"errors"

	"github.com/effkit/effkit/trace"
)

var (
	// ErrDuplicateSite is returned when an effect reuses a site name already
	// recorded with an incompatible kind, or repeats a sample. It is the same
	// sentinel the trace enforces at node insertion.
	ErrDuplicateSite = trace.ErrDuplicateNode
	// ErrStackCorruption is returned when an uninstall does not match the
	// stack top. It indicates a nesting bug and is never recovered.
	ErrStackCorruption = errors.New("execution stack corrupted")
	// ErrNoParamStore is returned when a param effect cannot be resolved by
	// any handler and no parameter store is available in the context.
	ErrNoParamStore = errors.New("no parameter store available")
)
