package jujuapi

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"

	"github.com/imamik/bundletester/internal/environment"
	"github.com/imamik/bundletester/internal/juju"
	"github.com/imamik/bundletester/internal/util/clock"
	"github.com/imamik/bundletester/internal/util/retry"
)

const (
	bootstrapMachine = "0"

	defaultUnitRemovalTimeout = 360 * time.Second
	defaultPollInterval       = 4 * time.Second
	defaultDialRetries        = 3
)

// Options configures a Backend.
type Options struct {
	// Environment is the environment name, used to locate its .jenv file.
	Environment string
	// Home overrides JujuHome().
	Home string
	// Endpoint overrides the addresses recorded in the .jenv file.
	Endpoint string
	// Dialer overrides the WebSocket dialer built from the .jenv CA.
	Dialer *websocket.Dialer
	// Invoker runs the juju CLI for bootstrap.
	Invoker *juju.Invoker

	// UnitRemovalTimeout bounds the wait for destroyed units to disappear.
	UnitRemovalTimeout time.Duration
	// PollInterval is the wait between status polls.
	PollInterval time.Duration
	// DialRetries is the number of reconnect attempts after the first.
	// Negative disables retrying.
	DialRetries int

	Clock  clock.Clock
	Logger logr.Logger
}

// Backend is an environment.Backend speaking to the juju API.
type Backend struct {
	opts Options
	log  logr.Logger
	clk  clock.Clock

	mu     sync.Mutex
	client *Client
}

var _ environment.Backend = (*Backend)(nil)

// NewBackend creates a Backend. No connection is made until Connect.
func NewBackend(opts Options) *Backend {
	if opts.Home == "" {
		opts.Home = JujuHome()
	}
	if opts.UnitRemovalTimeout <= 0 {
		opts.UnitRemovalTimeout = defaultUnitRemovalTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.DialRetries == 0 {
		opts.DialRetries = defaultDialRetries
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Backend{opts: opts, clk: clk, log: log.WithValues("environment", opts.Environment)}
}

// Bootstrap runs "juju bootstrap" for the environment.
func (b *Backend) Bootstrap(ctx context.Context) error {
	if b.opts.Invoker == nil {
		return errors.New("bootstrap requires a juju invoker")
	}
	b.log.Info("Bootstrapping environment")
	if _, err := b.opts.Invoker.Output(ctx, "bootstrap", nil); err != nil {
		return fmt.Errorf("failed to bootstrap: %w", err)
	}
	return nil
}

// Connect dials the API and logs in, replacing any previous connection.
func (b *Backend) Connect(ctx context.Context) error {
	creds, err := LoadCredentials(b.opts.Home, b.opts.Environment)
	if err != nil {
		return err
	}

	endpoints := creds.Endpoints()
	dialer := b.opts.Dialer
	if b.opts.Endpoint != "" {
		endpoints = []string{b.opts.Endpoint}
	}
	if dialer == nil {
		tlsConfig, err := creds.TLSConfig()
		if err != nil {
			return fmt.Errorf("environment %q: %w", b.opts.Environment, err)
		}
		dialer = &websocket.Dialer{
			TLSClientConfig:  tlsConfig,
			HandshakeTimeout: 30 * time.Second,
		}
	}

	var client *Client
	dial := retry.Backoff{
		Retries: b.opts.DialRetries,
		Clock:   b.clk,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			b.log.Info("Environment API not reachable, retrying", "attempt", attempt, "wait", wait.String(), "error", err.Error())
		},
	}
	err = dial.Do(ctx, func(ctx context.Context, _ int) error {
		var dialErr error
		for _, endpoint := range endpoints {
			client, dialErr = Dial(ctx, dialer, endpoint)
			if dialErr == nil {
				break
			}
			b.log.V(1).Info("API endpoint unreachable", "endpoint", endpoint, "error", dialErr.Error())
		}
		if dialErr != nil {
			return dialErr
		}
		if err := client.Login(ctx, creds.User, creds.Password); err != nil {
			_ = client.Close()
			var rpcErr *RPCError
			if errors.As(err, &rpcErr) {
				return retry.Fatal(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect to environment %q: %w", b.opts.Environment, err)
	}

	b.mu.Lock()
	old := b.client
	b.client = client
	b.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	b.log.V(1).Info("Connected to environment API")
	return nil
}

// Close drops the API connection.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client == nil {
		return nil
	}
	err := b.client.Close()
	b.client = nil
	return err
}

func (b *Backend) conn() (*Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client == nil {
		return nil, fmt.Errorf("environment %q not connected: %w", b.opts.Environment, environment.ErrConnectionClosed)
	}
	return b.client, nil
}

// Status returns the full environment status.
func (b *Backend) Status(ctx context.Context) (*environment.Status, error) {
	client, err := b.conn()
	if err != nil {
		return nil, err
	}
	return client.FullStatus(ctx)
}

// Reset destroys every service and, with opts.TerminateMachines, every machine
// except the bootstrap node.
func (b *Backend) Reset(ctx context.Context, opts environment.ResetOptions) error {
	client, err := b.conn()
	if err != nil {
		return err
	}

	status, err := client.FullStatus(ctx)
	if err != nil {
		return err
	}

	destroyed := false
	for _, name := range sortedKeys(status.Services) {
		b.log.V(1).Info("Destroying service", "service", name)
		if err := client.DestroyService(ctx, name); err != nil {
			return fmt.Errorf("failed to destroy service %s: %w", name, err)
		}
		destroyed = true
	}

	if destroyed {
		if err := b.resolveErrors(ctx, client); err != nil {
			return err
		}
		if !(opts.TerminateMachines && opts.ForceTerminate) {
			if err := b.waitForUnitsRemoved(ctx, client); err != nil {
				return err
			}
		}
	}

	if !opts.TerminateMachines {
		return nil
	}
	if destroyed && opts.TerminateDelay > 0 {
		b.log.V(1).Info("Waiting before terminating machines", "delay", opts.TerminateDelay.String())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.clk.After(opts.TerminateDelay):
		}
	}
	return b.terminateMachines(ctx, client, status, opts.ForceTerminate)
}

// resolveErrors marks every errored unit resolved so its destruction can
// proceed.
func (b *Backend) resolveErrors(ctx context.Context, client *Client) error {
	status, err := client.FullStatus(ctx)
	if err != nil {
		return err
	}
	for _, svc := range sortedKeys(status.Services) {
		units := status.Services[svc].Units
		for _, unit := range sortedKeys(units) {
			if !strings.HasPrefix(units[unit].AgentState, "error") {
				continue
			}
			b.log.V(1).Info("Resolving unit error", "unit", unit)
			if err := client.Resolved(ctx, unit); err != nil {
				return fmt.Errorf("failed to resolve unit %s: %w", unit, err)
			}
		}
	}
	return nil
}

func (b *Backend) waitForUnitsRemoved(ctx context.Context, client *Client) error {
	return retry.UntilDeadline(ctx, retry.Poll{
		Operation: "unit removal",
		Timeout:   b.opts.UnitRemovalTimeout,
		Interval:  b.opts.PollInterval,
		Clock:     b.clk,
	}, func(ctx context.Context, _ int) (retry.Outcome, error) {
		status, err := client.FullStatus(ctx)
		if err != nil {
			return retry.Done, err
		}
		remaining := 0
		for _, svc := range status.Services {
			remaining += len(svc.Units)
		}
		if remaining == 0 {
			return retry.Done, nil
		}
		return retry.Retry, fmt.Errorf("%d units remaining", remaining)
	})
}

// terminateMachines destroys every non-bootstrap machine, containers before
// their hosts.
func (b *Backend) terminateMachines(ctx context.Context, client *Client, status *environment.Status, force bool) error {
	var containers, machines []string
	for _, id := range sortedKeys(status.Machines) {
		containers = append(containers, sortedKeys(status.Machines[id].Containers)...)
		if id != bootstrapMachine {
			machines = append(machines, id)
		}
	}

	for _, id := range append(containers, machines...) {
		b.log.V(1).Info("Terminating machine", "machine", id, "force", force)
		if err := client.DestroyMachines(ctx, force, id); err != nil {
			return fmt.Errorf("failed to terminate machine %s: %w", id, err)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
