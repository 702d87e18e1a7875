package lifecycle

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"

	"github.com/imamik/bundletester/internal/config"
	"github.com/imamik/bundletester/internal/environment"
	"github.com/imamik/bundletester/internal/metrics"
	testutil "github.com/imamik/bundletester/internal/testing"
	"github.com/imamik/bundletester/internal/util/clock"
)

type fixture struct {
	t       *testing.T
	runner  *testutil.MockRunner
	backend *testutil.MockBackend
	clock   *clock.Fake
	metrics *metrics.Metrics
	opts    Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		runner:  testutil.NewMockRunner(),
		backend: testutil.NewMockBackend(),
		clock:   clock.NewFake(time.Date(2015, 3, 1, 12, 0, 0, 0, time.UTC)),
		metrics: metrics.New(),
	}
	f.opts = Options{
		Config:   config.Default(),
		Run:      config.RunOptions{Environment: "local"},
		Timeouts: config.DefaultTimeouts(),
		Runner:   f.runner,
		Clock:    f.clock,
		Logger:   testr.New(t),
		Metrics:  f.metrics,
	}
	f.opts.Environment = environment.New("local", f.backend)
	return f
}

func (f *fixture) controller() *Controller {
	f.t.Helper()
	c, err := New(f.opts)
	require.NoError(f.t, err)
	return c
}

func writeBundle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wordpress-stage:\n  services: {}\n"), 0o600))
	return path
}

// lineRecorder captures log messages emitted at or below verbosity 1.
type lineRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *lineRecorder) logger() logr.Logger {
	return funcr.New(func(_, args string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.lines = append(r.lines, args)
	}, funcr.Options{Verbosity: 1})
}

func (r *lineRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}
