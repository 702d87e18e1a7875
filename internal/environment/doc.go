// Package environment is the handle through which the lifecycle controller
// talks to one named environment's control plane.
//
// The control plane itself is reached through a [Backend]. A [Handle] binds a
// backend to an environment name; [None] returns a handle for runs without an
// environment, on which every operation is a no-op, so callers never branch on
// whether an environment was configured.
package environment
