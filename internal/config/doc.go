// Package config holds the inputs that shape a test run against an
// environment.
//
// [Config] is read from the suite's test configuration file and describes
// whether an environment may be bootstrapped and which package sources and
// packages the host needs. [RunOptions] carries the per-invocation switches
// taken from the command line. [Timeouts] holds the retry budgets used while
// resetting an environment and waiting on actions; each can be overridden
// through an environment variable.
//
// All three are read-only once handed to the lifecycle controller.
package config
