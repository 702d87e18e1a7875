package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/imamik/bundletester/internal/config"
	"github.com/imamik/bundletester/internal/environment"
	"github.com/imamik/bundletester/internal/juju"
	testutil "github.com/imamik/bundletester/internal/testing"
)

func TestDryRun_RunsNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	f.opts.Run.DryRun = true
	c := f.controller()

	bootstrapped, err := c.Bootstrap(ctx)
	require.NoError(t, err)
	assert.False(t, bootstrapped)

	res, err := c.Deploy(ctx, writeBundle(t))
	require.NoError(t, err)
	assert.Equal(t, 0, res.ReturnCode)

	require.NoError(t, c.Reset(ctx))
	require.NoError(t, c.Destroy(ctx))

	assert.Empty(t, f.runner.Calls)
	assert.Empty(t, f.backend.Calls)
}

func TestNoEnvironment_IsNoop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	f.opts.Environment = nil
	f.opts.Run.Environment = ""
	c := f.controller()

	bootstrapped, err := c.Bootstrap(ctx)
	require.NoError(t, err)
	assert.False(t, bootstrapped)
	require.NoError(t, c.Reset(ctx))
	require.NoError(t, c.Destroy(ctx))

	assert.Empty(t, f.runner.Calls)
}

func TestBootstrap_AlreadyRunning(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.runner.WithOutput("juju", "environment: local\n")
	f.backend.On("Connect", mock.Anything).Return(nil).Once()

	bootstrapped, err := f.controller().Bootstrap(context.Background())
	require.NoError(t, err)
	assert.False(t, bootstrapped)

	cmds := f.runner.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"juju", "status", "-e", "local"}, cmds[0].Argv())
	f.backend.AssertExpectations(t)
	f.backend.AssertNotCalled(t, "Bootstrap", mock.Anything)
}

func TestBootstrap_NotRunning(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.runner.WithExit("juju", 1, "ERROR environment is not bootstrapped")
	f.backend.On("Bootstrap", mock.Anything).Return(nil).Once()
	f.backend.On("Connect", mock.Anything).Return(nil).Once()

	bootstrapped, err := f.controller().Bootstrap(context.Background())
	require.NoError(t, err)
	assert.True(t, bootstrapped)
	f.backend.AssertExpectations(t)
}

func TestBootstrap_NotRunningAndDisabled(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.opts.Config = testutil.NewConfigBuilder().WithBootstrap(false).Build()
	f.runner.WithExit("juju", 1, "")

	bootstrapped, err := f.controller().Bootstrap(context.Background())
	require.NoError(t, err)
	assert.False(t, bootstrapped)
	assert.Empty(t, f.backend.Calls)
}

func TestBootstrap_Failure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.runner.WithExit("juju", 1, "")
	f.backend.On("Bootstrap", mock.Anything).Return(errors.New("no tools available")).Once()

	_, err := f.controller().Bootstrap(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to bootstrap environment local: no tools available")
	f.backend.AssertNotCalled(t, "Connect", mock.Anything)
}

func TestBootstrap_ProbeError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.runner.On("Run", mock.Anything, testutil.CommandNamed("juju")).
		Return(juju.RunResult{ExitCode: 127}, errors.New(`exec: "juju": executable file not found in $PATH`))

	_, err := f.controller().Bootstrap(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to probe environment local")
	assert.Empty(t, f.backend.Calls)
}

func TestProbe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result juju.RunResult
		err    error
		want   ProbeState
	}{
		{name: "running", want: Running},
		{name: "not running", result: juju.RunResult{ExitCode: 1}, want: NotRunning},
		{name: "any exit code", result: juju.RunResult{ExitCode: 255}, want: NotRunning},
		{name: "cannot start", result: juju.RunResult{ExitCode: -1}, err: errors.New("boom"), want: ProbeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.runner.On("Run", mock.Anything, mock.Anything).Return(tt.result, tt.err)

			got := f.controller().Probe(context.Background())
			assert.Equal(t, tt.want, got.State)
			assert.Equal(t, tt.err, got.Err)
		})
	}
}

func TestProbeState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "not running", NotRunning.String())
	assert.Equal(t, "error", ProbeError.String())
}

func TestDestroy(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.runner.WithOutput("juju", "")

	require.NoError(t, f.controller().Destroy(context.Background()))

	cmds := f.runner.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"juju", "destroy-environment", "-y", "local", "--force"}, cmds[0].Argv())
}

func TestDestroy_NoDestroy(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.opts.Run.NoDestroy = true

	require.NoError(t, f.controller().Destroy(context.Background()))
	assert.Empty(t, f.runner.Calls)
}

func TestDestroy_Failure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.runner.WithExit("juju", 1, "ERROR environment \"local\" not found")

	err := f.controller().Destroy(context.Background())
	var cmdErr *juju.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 1, cmdErr.ExitCode)
	assert.Contains(t, err.Error(), "failed to destroy environment local")
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	c, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, environment.None(), c.env)
	assert.Equal(t, juju.DefaultBinary, c.juju)
	assert.Equal(t, DefaultDeployer, c.deployer)
	assert.True(t, c.cfg.Bootstrap)
	assert.NotNil(t, c.timeouts)
}

func TestNew_RejectsEnvironmentWithoutHandle(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		handle environment.Handle
		want   string
	}{
		{"no handle", nil, `run targets environment "local" but the environment handle is for ""`},
		{"other environment", environment.New("staging", testutil.NewMockBackend()), `run targets environment "local" but the environment handle is for "staging"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := New(Options{Run: config.RunOptions{Environment: "local"}, Environment: tt.handle})

			assert.Nil(t, c)
			require.ErrorIs(t, err, ErrConfiguration)
			assert.EqualError(t, err, tt.want)
		})
	}
}
