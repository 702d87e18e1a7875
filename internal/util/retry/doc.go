// Package retry provides the two retry shapes used when talking to a remote
// environment.
//
// [Backoff] retries an operation a bounded number of times with growing
// delays; it is used when dialing controller API endpoints. [UntilDeadline]
// repeats an attempt at a fixed interval until it reports success or a
// wall-clock budget runs out; both loops of an environment reset are built on
// it. Errors wrapped with [Fatal] stop either primitive at once.
package retry
