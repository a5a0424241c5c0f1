package config

import (
	"os"
	"path/filepath"
	"testing"

	"estr-go/pkg/buffers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, []byte(`\0`), cfg.Escape())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estr.yaml")
	content := []byte(`
capacity_hint: 128
nul_escape: "#"
allocator: pool
memory_limit: 1048576
compression: zstd
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(128), cfg.CapacityHint)
	assert.Equal(t, "#", cfg.NulEscape)
	assert.Equal(t, int64(1048576), cfg.MemoryLimit)
	assert.Equal(t, "zstd", cfg.Compression)
	assert.Equal(t, 4096, cfg.ChunkSize, "unset keys keep their default")

	_, ok := cfg.NewAllocator().(*buffers.PoolAllocator)
	assert.True(t, ok, "allocator: pool should build a PoolAllocator")

	p, err := cfg.NewPipeline()
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("ESTR_NUL_ESCAPE", "")
	t.Setenv("ESTR_CAPACITY_HINT", "9")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), cfg.CapacityHint)
	assert.Nil(t, cfg.Escape())

	_, ok := cfg.NewAllocator().(*buffers.HeapAllocator)
	assert.True(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"allocator", func(c *Config) { c.Allocator = "arena" }},
		{"memory limit", func(c *Config) { c.MemoryLimit = -1 }},
		{"chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"compression", func(c *Config) { c.Compression = "lz4" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
