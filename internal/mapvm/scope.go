package mapvm

import (
	"context"
	"errors"
)

// ErrNoProvider is wrapped by the UsageError raised when Use finds no MapVM.
var ErrNoProvider = errors.New("no MapVM in scope; the component must be mounted under mapvm.Provide")

// ErrNilMapVM is wrapped by the UsageError raised when Provide is given nil.
var ErrNilMapVM = errors.New("mapvm.Provide needs a non-nil MapVM")

// UsageError reports a misplaced component or a bad provider. It is raised as a
// panic: it points at a wiring bug, not a runtime condition to recover from.
type UsageError struct {
	Op  string
	Err error
}

func (e *UsageError) Error() string { return "mapvm: " + e.Op + ": " + e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

type ctxKey struct{}

// Provide binds vm to the returned context and every context derived from it.
// Providing again further down shadows vm for that branch only.
func Provide(parent context.Context, vm *MapVM) context.Context {
	if vm == nil {
		panic(&UsageError{Op: "Provide", Err: ErrNilMapVM})
	}
	if parent == nil {
		parent = context.Background()
	}
	return context.WithValue(parent, ctxKey{}, vm)
}

// FromContext returns the nearest MapVM bound to ctx.
func FromContext(ctx context.Context) (*MapVM, bool) {
	if ctx == nil {
		return nil, false
	}
	vm, ok := ctx.Value(ctxKey{}).(*MapVM)
	return vm, ok && vm != nil
}

// Use returns the nearest MapVM bound to ctx and panics with a *UsageError when
// there is none. It never returns nil.
func Use(ctx context.Context) *MapVM {
	vm, ok := FromContext(ctx)
	if !ok {
		panic(&UsageError{Op: "Use", Err: ErrNoProvider})
	}
	return vm
}
