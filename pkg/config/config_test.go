package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Path  string `yaml:"path"`
	Width int    `yaml:"width"`
}

func (s *sample) Validate() error {
	if s.Width < 1 {
		return errors.New("width must be positive")
	}
	return nil
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("ZAMETKA_TEST_DIR", "/srv/notes")
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("path: ${ZAMETKA_TEST_DIR}/data\n"), 0o644))

	cfg := sample{Width: 5}
	require.NoError(t, Load(file, &cfg))
	assert.Equal(t, "/srv/notes/data", cfg.Path)
	assert.Equal(t, 5, cfg.Width, "absent keys keep defaults")
}

func TestLoad_Validates(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("width: 0\n"), 0o644))

	cfg := sample{Width: 5}
	err := Load(file, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "width must be positive")
}

func TestLoadIfExists_Missing(t *testing.T) {
	cfg := sample{Path: "default", Width: 5}
	found, err := LoadIfExists(filepath.Join(t.TempDir(), "nope.yaml"), &cfg)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "default", cfg.Path)
}

func TestLoadIfExists_Malformed(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("path: [unterminated\n"), 0o644))

	cfg := sample{Width: 5}
	found, err := LoadIfExists(file, &cfg)
	assert.True(t, found)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := sample{Path: "notes.d", Width: 7}
	require.NoError(t, Save(file, &in))

	var out sample
	require.NoError(t, Load(file, &out))
	assert.Equal(t, in, out)
}
