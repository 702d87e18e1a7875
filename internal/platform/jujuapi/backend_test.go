package jujuapi

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/imamik/bundletester/internal/environment"
	"github.com/imamik/bundletester/internal/juju"
	testutil "github.com/imamik/bundletester/internal/testing"
	"github.com/imamik/bundletester/internal/util/clock"
)

func newTestBackend(t *testing.T, api *fakeAPI) (*Backend, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Unix(0, 0))
	b := NewBackend(Options{
		Environment: "local",
		Home:        writeJenv(t, "local", testJenv),
		Endpoint:    api.start(t),
		Clock:       clk,
		Logger:      testr.New(t),
	})
	t.Cleanup(func() { _ = b.Close() })
	return b, clk
}

func machineNames(calls []apiCall) []string {
	var names []string
	for _, c := range calls {
		for _, n := range c.Params["MachineNames"].([]any) {
			names = append(names, n.(string))
		}
	}
	return names
}

func TestBackend_ConnectAndStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := newFakeAPI()
	api.services["wordpress"] = fakeService{Charm: "cs:wordpress"}
	b, _ := newTestBackend(t, api)

	require.NoError(t, b.Connect(ctx))
	status, err := b.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"wordpress"}, status.ServiceNames())
}

func TestBackend_StatusRequiresConnection(t *testing.T) {
	t.Parallel()

	b, _ := newTestBackend(t, newFakeAPI())
	_, err := b.Status(context.Background())
	assert.ErrorIs(t, err, environment.ErrConnectionClosed)

	err = b.Reset(context.Background(), environment.ResetOptions{})
	assert.ErrorIs(t, err, environment.ErrConnectionClosed)
}

func TestBackend_ConnectRejectedLoginIsNotRetried(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.password = "other"
	b, clk := newTestBackend(t, api)

	err := b.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid entity name or password")
	assert.Len(t, api.methods("Admin.Login"), 1)
	assert.Empty(t, clk.Waits())
}

func TestBackend_ConnectMissingCredentials(t *testing.T) {
	t.Parallel()

	b := NewBackend(Options{Environment: "local", Home: t.TempDir()})
	err := b.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read credentials")
}

func TestBackend_ReconnectAfterDrop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := newFakeAPI()
	dropped := false
	api.override["Client.FullStatus"] = func(map[string]any) (any, error) {
		if !dropped {
			dropped = true
			return nil, errDrop
		}
		return map[string]any{"Services": map[string]any{}, "Machines": map[string]any{}}, nil
	}
	b, _ := newTestBackend(t, api)
	require.NoError(t, b.Connect(ctx))

	_, err := b.Status(ctx)
	require.ErrorIs(t, err, environment.ErrConnectionClosed)

	require.NoError(t, b.Connect(ctx))
	status, err := b.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Empty())
}

func TestBackend_ResetForceTerminate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := newFakeAPI()
	api.linger = 1
	api.services["wordpress"] = fakeService{Charm: "cs:wordpress", Units: map[string]fakeUnit{
		"wordpress/0": {AgentState: "error", Machine: "1"},
	}}
	api.services["mysql"] = fakeService{Charm: "cs:mysql", Units: map[string]fakeUnit{
		"mysql/0": {AgentState: "started", Machine: "2/lxc/0"},
	}}
	api.machines["0"] = fakeMachine{AgentState: "started", Containers: map[string]fakeMachine{
		"0/lxc/0": {AgentState: "started"},
	}}
	api.machines["1"] = fakeMachine{AgentState: "started"}
	api.machines["2"] = fakeMachine{AgentState: "started", Containers: map[string]fakeMachine{
		"2/lxc/0": {AgentState: "started"},
	}}

	b, clk := newTestBackend(t, api)
	require.NoError(t, b.Connect(ctx))

	err := b.Reset(ctx, environment.ResetOptions{
		TerminateMachines: true,
		TerminateDelay:    60 * time.Second,
		ForceTerminate:    true,
	})
	require.NoError(t, err)

	destroyed := api.methods("Client.ServiceDestroy")
	require.Len(t, destroyed, 2)
	assert.Equal(t, "mysql", destroyed[0].Params["ServiceName"])
	assert.Equal(t, "wordpress", destroyed[1].Params["ServiceName"])

	resolved := api.methods("Client.Resolved")
	require.Len(t, resolved, 1)
	assert.Equal(t, "wordpress/0", resolved[0].Params["UnitName"])

	machines := api.methods("Client.DestroyMachines")
	assert.Equal(t, []string{"0/lxc/0", "2/lxc/0", "1", "2"}, machineNames(machines))
	for _, c := range machines {
		assert.Equal(t, true, c.Params["Force"])
	}

	// Forced termination skips the unit wait; only the terminate delay is spent.
	assert.Equal(t, []time.Duration{60 * time.Second}, clk.Waits())
}

func TestBackend_ResetWaitsForUnitRemoval(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := newFakeAPI()
	api.linger = 2
	api.services["mysql"] = fakeService{Charm: "cs:mysql", Units: map[string]fakeUnit{
		"mysql/0": {AgentState: "started", Machine: "1"},
	}}
	api.machines["1"] = fakeMachine{AgentState: "started"}

	b, clk := newTestBackend(t, api)
	require.NoError(t, b.Connect(ctx))

	require.NoError(t, b.Reset(ctx, environment.ResetOptions{}))

	assert.Equal(t, []time.Duration{defaultPollInterval}, clk.Waits())
	assert.Empty(t, api.methods("Client.DestroyMachines"))
	assert.Empty(t, api.methods("Client.Resolved"))
}

func TestBackend_ResetUnitRemovalTimesOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := newFakeAPI()
	api.linger = 1000
	api.services["mysql"] = fakeService{Charm: "cs:mysql", Units: map[string]fakeUnit{
		"mysql/0": {AgentState: "started", Machine: "1"},
	}}

	b, _ := newTestBackend(t, api)
	b.opts.UnitRemovalTimeout = 10 * time.Second
	require.NoError(t, b.Connect(ctx))

	err := b.Reset(ctx, environment.ResetOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit removal")
	assert.Contains(t, err.Error(), "1 units remaining")
}

func TestBackend_ResetEmptyEnvironmentSkipsDelay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := newFakeAPI()
	api.machines["1"] = fakeMachine{AgentState: "started"}

	b, clk := newTestBackend(t, api)
	require.NoError(t, b.Connect(ctx))

	require.NoError(t, b.Reset(ctx, environment.ResetOptions{
		TerminateMachines: true,
		TerminateDelay:    60 * time.Second,
	}))

	assert.Empty(t, clk.Waits())
	machines := api.methods("Client.DestroyMachines")
	assert.Equal(t, []string{"1"}, machineNames(machines))
	assert.Equal(t, false, machines[0].Params["Force"])
}

func TestBackend_Bootstrap(t *testing.T) {
	t.Parallel()

	runner := testutil.NewMockRunner().WithOutput("juju", "")
	inv := juju.NewInvoker(runner, juju.Options{Environment: "local"})
	b := NewBackend(Options{Environment: "local", Invoker: inv})

	require.NoError(t, b.Bootstrap(context.Background()))
	runner.AssertCalled(t, "Run", mock.Anything, testutil.CommandWith("juju", "--show-log", "bootstrap", "-e", "local"))
}

func TestBackend_BootstrapFailure(t *testing.T) {
	t.Parallel()

	runner := testutil.NewMockRunner().WithExit("juju", 1, "ERROR environment is already bootstrapped")
	inv := juju.NewInvoker(runner, juju.Options{Environment: "local"})
	b := NewBackend(Options{Environment: "local", Invoker: inv})

	err := b.Bootstrap(context.Background())
	var cmdErr *juju.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 1, cmdErr.ExitCode)
}
