package environment

import (
	"context"
	"errors"
)

// ErrNoEnvironment is returned by Status on a handle without an environment.
var ErrNoEnvironment = errors.New("no environment configured")

// Handle is the controller's view of a single named environment.
type Handle interface {
	// Name returns the environment name, empty for None().
	Name() string
	// Configured reports whether an environment is attached.
	Configured() bool

	Bootstrap(ctx context.Context) error
	Connect(ctx context.Context) error
	Status(ctx context.Context) (*Status, error)
	Reset(ctx context.Context, opts ResetOptions) error
}

// New returns a handle delegating to backend for the named environment.
func New(name string, backend Backend) Handle {
	return &handle{name: name, backend: backend}
}

type handle struct {
	name    string
	backend Backend
}

func (h *handle) Name() string { return h.name }
func (h *handle) Configured() bool { return true }

func (h *handle) Bootstrap(ctx context.Context) error {
	return h.backend.Bootstrap(ctx)
}

func (h *handle) Connect(ctx context.Context) error {
	return h.backend.Connect(ctx)
}

func (h *handle) Status(ctx context.Context) (*Status, error) {
	return h.backend.Status(ctx)
}

func (h *handle) Reset(ctx context.Context, opts ResetOptions) error {
	return h.backend.Reset(ctx, opts)
}

// None returns the handle used when no environment is configured.
func None() Handle {
	return noneHandle{}
}

type noneHandle struct{}

func (noneHandle) Name() string { return "" }
func (noneHandle) Configured() bool { return false }
func (noneHandle) Bootstrap(context.Context) error { return nil }
func (noneHandle) Connect(context.Context) error { return nil }
func (noneHandle) Reset(context.Context, ResetOptions) error { return nil }
func (noneHandle) Status(context.Context) (*Status, error) { return nil, ErrNoEnvironment }
