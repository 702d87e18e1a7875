package juju

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/bundletester/internal/metrics"
)

const (
	// DefaultBinary is the orchestration tool's executable.
	DefaultBinary = "juju"

	// EnvironmentFlag selects the environment a command applies to.
	EnvironmentFlag = "-e"

	timeoutBinary = "timeout"
)

// Options configures an Invoker.
type Options struct {
	// Binary defaults to DefaultBinary.
	Binary string
	// Environment is added to commands with EnvironmentFlag. Empty disables it.
	Environment string
	// Debug selects --debug instead of --show-log.
	Debug bool
	// DryRun skips every process and returns empty output.
	DryRun bool
	// Timeout wraps every command in timeout(1) unless overridden per call.
	Timeout string
	Logger  logr.Logger
	Metrics *metrics.Metrics
}

// Invoker runs orchestration tool commands.
type Invoker struct {
	runner      Runner
	binary      string
	environment string
	debug       bool
	dryRun      bool
	timeout     string
	log         logr.Logger
	metrics     *metrics.Metrics
}

// NewInvoker creates an Invoker that executes through runner.
func NewInvoker(runner Runner, opts Options) *Invoker {
	if runner == nil {
		runner = ExecRunner{}
	}
	binary := opts.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	return &Invoker{
		runner:      runner,
		binary:      binary,
		environment: opts.Environment,
		debug:       opts.Debug,
		dryRun:      opts.DryRun,
		timeout:     opts.Timeout,
		log:         opts.Logger,
		metrics:     opts.Metrics,
	}
}

// Environment returns the environment name commands are scoped to.
func (i *Invoker) Environment() string {
	return i.environment
}

// DryRun reports whether the invoker skips process execution.
func (i *Invoker) DryRun() bool {
	return i.dryRun
}

type callOptions struct {
	timeout       string
	timeoutSet    bool
	noEnvironment bool
}

// CallOption adjusts a single invocation.
type CallOption func(*callOptions)

// WithTimeout wraps the command in timeout(1) with the given duration
// (e.g. "10m"). An empty value disables the wrapper for this call.
func WithTimeout(timeout string) CallOption {
	return func(o *callOptions) {
		o.timeout = timeout
		o.timeoutSet = true
	}
}

// WithoutEnvironment omits the environment flag for commands that do not
// accept it.
func WithoutEnvironment() CallOption {
	return func(o *callOptions) {
		o.noEnvironment = true
	}
}

func (i *Invoker) resolve(opts []CallOption) callOptions {
	co := callOptions{timeout: i.timeout}
	for _, opt := range opts {
		opt(&co)
	}
	return co
}

// FullArgs builds the argument vector for command. The command may be several
// words ("action fetch"); they are split and placed before the environment
// flag, which in turn precedes args.
func (i *Invoker) FullArgs(command string, args []string, opts ...CallOption) []string {
	co := i.resolve(opts)
	return i.fullArgs(command, args, co)
}

func (i *Invoker) fullArgs(command string, args []string, co callOptions) []string {
	argv := make([]string, 0, len(args)+8)
	if co.timeout != "" {
		argv = append(argv, timeoutBinary, co.timeout)
	}

	logging := "--show-log"
	if i.debug {
		logging = "--debug"
	}
	argv = append(argv, i.binary, logging)
	argv = append(argv, strings.Fields(command)...)

	if i.environment != "" && !co.noEnvironment {
		argv = append(argv, EnvironmentFlag, i.environment)
	}
	return append(argv, args...)
}

// Output runs command and returns its stdout.
//
// A non-zero exit returns a *ConnectivityError when stderr carries one of the
// tool's "environment unreachable" markers and a *CommandError otherwise.
// Under dry-run nothing is executed and the output is empty.
func (i *Invoker) Output(ctx context.Context, command string, args []string, opts ...CallOption) (string, error) {
	argv := i.fullArgs(command, args, i.resolve(opts))

	if i.dryRun {
		i.log.V(1).Info("Dry run, skipping command", "argv", argv)
		i.metrics.ObserveCommand(command, metrics.ResultDryRun, 0)
		return "", nil
	}

	i.log.V(2).Info("Running command", "argv", argv)
	start := time.Now()
	result, err := i.runner.Run(ctx, Command{Name: argv[0], Args: argv[1:]})
	duration := time.Since(start)
	if err != nil {
		i.metrics.ObserveCommand(command, metrics.ResultError, duration)
		return "", fmt.Errorf("failed to run %s: %w", strings.Join(argv, " "), err)
	}

	if result.ExitCode != 0 {
		failure := classify(&CommandError{
			Argv:     argv,
			ExitCode: result.ExitCode,
			Output:   string(result.Stdout),
			Stderr:   string(result.Stderr),
		})
		outcome := metrics.ResultFailed
		if IsConnectivity(failure) {
			outcome = metrics.ResultConnectivity
		}
		i.metrics.ObserveCommand(command, outcome, duration)
		return "", failure
	}

	i.metrics.ObserveCommand(command, metrics.ResultSuccess, duration)
	return string(result.Stdout), nil
}
