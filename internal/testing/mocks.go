package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/bundletester/internal/environment"
	"github.com/imamik/bundletester/internal/juju"
)

// MockRunner is a mock implementation of juju.Runner.
type MockRunner struct {
	mock.Mock
}

var _ juju.Runner = (*MockRunner)(nil)

// NewMockRunner creates an empty MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{}
}

// Run records the command and returns the configured result.
func (m *MockRunner) Run(ctx context.Context, cmd juju.Command) (juju.RunResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(juju.RunResult), args.Error(1)
}

// Stream records the command, feeds every configured output line to onLine
// and returns the configured result.
func (m *MockRunner) Stream(ctx context.Context, cmd juju.Command, onLine func(string)) (juju.RunResult, error) {
	args := m.Called(ctx, cmd, onLine)
	res := args.Get(0).(juju.RunResult)
	if onLine != nil {
		for _, line := range splitLines(string(res.Stdout)) {
			onLine(line)
		}
	}
	return res, args.Error(1)
}

// WithOutput makes every Run of the named program succeed with stdout.
func (m *MockRunner) WithOutput(name, stdout string) *MockRunner {
	m.On("Run", mock.Anything, CommandNamed(name)).
		Return(juju.RunResult{Stdout: []byte(stdout)}, nil)
	return m
}

// WithExit makes every Run of the named program exit with code and stderr.
func (m *MockRunner) WithExit(name string, code int, stderr string) *MockRunner {
	m.On("Run", mock.Anything, CommandNamed(name)).
		Return(juju.RunResult{Stderr: []byte(stderr), ExitCode: code}, nil)
	return m
}

// Commands returns the commands passed to Run and Stream, in call order.
func (m *MockRunner) Commands() []juju.Command {
	var cmds []juju.Command
	for _, call := range m.Calls {
		if cmd, ok := call.Arguments.Get(1).(juju.Command); ok {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// CommandNamed matches a juju.Command by program name.
func CommandNamed(name string) any {
	return mock.MatchedBy(func(c juju.Command) bool { return c.Name == name })
}

// CommandWith matches a juju.Command whose argument vector contains every
// word in words, in order but not necessarily adjacent.
func CommandWith(words ...string) any {
	return mock.MatchedBy(func(c juju.Command) bool {
		i := 0
		for _, arg := range c.Argv() {
			if i < len(words) && arg == words[i] {
				i++
			}
		}
		return i == len(words)
	})
}

// MockBackend is a mock implementation of environment.Backend.
type MockBackend struct {
	mock.Mock
}

var _ environment.Backend = (*MockBackend)(nil)

// NewMockBackend creates an empty MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Bootstrap records the call.
func (m *MockBackend) Bootstrap(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Connect records the call.
func (m *MockBackend) Connect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Status returns the configured status.
func (m *MockBackend) Status(ctx context.Context) (*environment.Status, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*environment.Status), args.Error(1)
}

// Reset records the call and its options.
func (m *MockBackend) Reset(ctx context.Context, opts environment.ResetOptions) error {
	args := m.Called(ctx, opts)
	return args.Error(0)
}

// WithEmptyStatus makes every Status call report no services.
func (m *MockBackend) WithEmptyStatus() *MockBackend {
	m.On("Status", mock.Anything).Return(NewStatus().Build(), nil)
	return m
}

// WithResetSucceeding makes every Reset call succeed.
func (m *MockBackend) WithResetSucceeding() *MockBackend {
	m.On("Reset", mock.Anything, mock.Anything).Return(nil)
	return m
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
