package environment

import (
	"context"
	"errors"
	"time"
)

// ErrConnectionClosed is matched by backend errors caused by the control
// plane connection dropping. The connection can be re-established with
// Connect.
var ErrConnectionClosed = errors.New("environment connection closed")

// Backend is a session with an environment's control plane.
type Backend interface {
	// Bootstrap creates the environment.
	Bootstrap(ctx context.Context) error

	// Connect opens, or reopens, the control plane connection.
	Connect(ctx context.Context) error

	// Status returns the current environment status.
	Status(ctx context.Context) (*Status, error)

	// Reset removes every service and, depending on opts, every machine.
	Reset(ctx context.Context, opts ResetOptions) error
}

// ResetOptions controls how far Reset tears an environment down.
type ResetOptions struct {
	// TerminateMachines also destroys every machine except the bootstrap node.
	TerminateMachines bool
	// TerminateDelay is waited between removing services and terminating
	// machines, giving providers time to release resources.
	TerminateDelay time.Duration
	// ForceTerminate destroys machines without waiting for units to go away.
	ForceTerminate bool
}

// Status is the subset of environment status the controller relies on.
type Status struct {
	Services map[string]ServiceStatus
	Machines map[string]MachineStatus
}

// ServiceStatus describes one deployed service.
type ServiceStatus struct {
	Charm string
	Units map[string]UnitStatus
}

// UnitStatus describes one unit of a service.
type UnitStatus struct {
	AgentState string
	Machine    string
}

// MachineStatus describes one machine.
type MachineStatus struct {
	AgentState string
	Containers map[string]MachineStatus
}

// ServiceNames returns the names of the remaining services.
func (s *Status) ServiceNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Services))
	for name := range s.Services {
		names = append(names, name)
	}
	return names
}

// Empty reports whether no services remain.
func (s *Status) Empty() bool {
	return s == nil || len(s.Services) == 0
}
