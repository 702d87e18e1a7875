// Package handlers implements the bundletester commands.
//
// Every handler builds a session from Options: the test configuration, a
// logger, a metrics registry, the process runner, the juju invoker and the
// environment handle. Constructors are package variables so tests can swap
// in fakes.
package handlers

import (
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/imamik/bundletester/internal/config"
	"github.com/imamik/bundletester/internal/environment"
	"github.com/imamik/bundletester/internal/juju"
	"github.com/imamik/bundletester/internal/lifecycle"
	"github.com/imamik/bundletester/internal/logging"
	"github.com/imamik/bundletester/internal/metrics"
	"github.com/imamik/bundletester/internal/platform/jujuapi"
	"github.com/imamik/bundletester/internal/util/clock"
)

// Options are the global command-line switches.
type Options struct {
	ConfigPath  string
	Environment string
	Deployment  string
	Bundle      string
	MetricsFile string
	Debug       bool
	Verbose     bool
	DryRun      bool
	NoDestroy   bool

	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
	// Err receives log output. Defaults to os.Stderr.
	Err io.Writer
}

// Factory function variables - can be replaced in tests.
var (
	// loadConfig reads the test configuration file.
	loadConfig = config.LoadFile

	// loadTimeouts reads timeout overrides from the environment.
	loadTimeouts = config.LoadTimeouts

	// newRunner creates the process runner used for every external command.
	newRunner = func() juju.Runner { return juju.ExecRunner{} }

	// newBackend creates the environment control plane client.
	newBackend = func(name string, inv *juju.Invoker, log logr.Logger) environment.Backend {
		return jujuapi.NewBackend(jujuapi.Options{
			Environment: name,
			Invoker:     inv,
			Logger:      log,
		})
	}

	// newClock returns the clock used by retry loops.
	newClock = clock.Real
)

// session holds everything one command invocation needs.
type session struct {
	opts     Options
	cfg      *config.Config
	run      config.RunOptions
	timeouts *config.Timeouts
	log      logr.Logger
	metrics  *metrics.Metrics
	runner   juju.Runner
	invoker  *juju.Invoker
	env      environment.Handle
	out      io.Writer
}

func newSession(opts Options) (*session, error) {
	errOut := opts.Err
	if errOut == nil {
		errOut = os.Stderr
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	envName := opts.Environment
	if envName == "" {
		envName = os.Getenv("JUJU_ENV")
	}

	s := &session{
		opts: opts,
		cfg:  cfg,
		run: config.RunOptions{
			DryRun:      opts.DryRun,
			Verbose:     opts.Verbose,
			Debug:       opts.Debug,
			Environment: envName,
			Deployment:  opts.Deployment,
			NoDestroy:   opts.NoDestroy,
			Bundle:      opts.Bundle,
		},
		timeouts: loadTimeouts(),
		log:      logging.New(logging.Options{Verbose: opts.Verbose, Debug: opts.Debug, Writer: errOut}),
		metrics:  metrics.New(),
		runner:   newRunner(),
		out:      out,
	}

	s.invoker = juju.NewInvoker(s.runner, juju.Options{
		Environment: s.run.Environment,
		Debug:       s.run.Debug,
		DryRun:      s.run.DryRun,
		Timeout:     s.timeouts.CommandTimeout,
		Logger:      s.log,
		Metrics:     s.metrics,
	})

	s.env = environment.None()
	if envName != "" {
		s.env = environment.New(envName, newBackend(envName, s.invoker, s.log))
	}
	return s, nil
}

func (s *session) controller() (*lifecycle.Controller, error) {
	return lifecycle.New(lifecycle.Options{
		Config:      s.cfg,
		Run:         s.run,
		Timeouts:    s.timeouts,
		Environment: s.env,
		Runner:      s.runner,
		Clock:       newClock(),
		Logger:      s.log,
		Metrics:     s.metrics,
	})
}

func (s *session) actions() *juju.Actions {
	return juju.NewActions(s.invoker, juju.ActionOptions{
		Wait:    s.timeouts.ActionWait,
		Logger:  s.log,
		Metrics: s.metrics,
	})
}

// finish exports metrics when a metrics file was requested. A failed export
// is logged, never returned, so it cannot mask the command's own result.
func (s *session) finish() {
	if err := s.metrics.WriteTextfile(s.opts.MetricsFile); err != nil {
		s.log.Error(err, "Failed to export metrics")
	}
}
