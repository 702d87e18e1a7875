package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_EmptyPath(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFile(filepath.Join(t.TempDir(), DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultFile)
	content := `
bootstrap: false
sources:
  - ppa:juju/stable
packages:
  - amulet
  - python-requests
reset: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.Bootstrap)
	assert.Equal(t, []string{"ppa:juju/stable"}, cfg.Sources)
	assert.Equal(t, []string{"amulet", "python-requests"}, cfg.Packages)
}

func TestParse_KeepsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte("packages: [juju-deployer]\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Bootstrap)
	assert.Equal(t, []string{"juju-deployer"}, cfg.Packages)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "malformed", content: "bootstrap: [", wantErr: "failed to unmarshal yaml"},
		{name: "wrong type", content: "packages: 3", wantErr: "failed to unmarshal yaml"},
		{name: "invalid entry", content: "sources: ['']", wantErr: "configuration validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.content))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadFile_Unreadable(t *testing.T) {
	t.Parallel()
	// A directory cannot be read as a file.
	_, err := LoadFile(t.TempDir())
	assert.ErrorContains(t, err, "failed to read config file")
}
