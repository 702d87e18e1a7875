// Package juju drives the orchestration tool through its command line.
//
// [Invoker] builds argument vectors in the tool's expected order, runs them
// through a [Runner] and turns failures into typed errors: a
// [ConnectivityError] when the environment is transiently unreachable and a
// [CommandError] for every other non-zero exit. [Actions] layers the
// queue/fetch protocol for unit actions on top of the invoker.
//
// The argument order matters to the tool: for
//
//	inv.FullArgs("action fetch", []string{"5a92ec93-...", "--wait", "1m"})
//
// the vector is
//
//	juju --show-log action fetch -e <env> 5a92ec93-... --wait 1m
//
// with the environment flag between the command words and the trailing
// arguments.
package juju
