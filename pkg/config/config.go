// Package config loads the host settings estr-go runs with.
package config

import (
	"errors"
	"fmt"
	"strings"

	"estr-go/pkg/buffers"
	"estr-go/pkg/transform"

	"github.com/spf13/viper"
)

type Config struct {
	CapacityHint  uint64 `mapstructure:"capacity_hint"`
	NulEscape     string `mapstructure:"nul_escape"`
	Allocator     string `mapstructure:"allocator"` // heap or pool
	MemoryLimit   int64  `mapstructure:"memory_limit"`
	Compression   string `mapstructure:"compression"`
	ChunkSize     int    `mapstructure:"chunk_size"`
	LogLevel      string `mapstructure:"log_level"`
	LogDB         string `mapstructure:"log_db"`
	APIListenAddr string `mapstructure:"api_listen_address"`
}

const (
	AllocatorHeap = "heap"
	AllocatorPool = "pool"
)

func DefaultConfig() *Config {
	return &Config{
		CapacityHint:  64,
		NulEscape:     `\0`,
		Allocator:     AllocatorHeap,
		MemoryLimit:   0, // unlimited
		Compression:   transform.None,
		ChunkSize:     4096,
		LogLevel:      "info",
		APIListenAddr: ":7780",
	}
}

// newViper returns a viper instance primed with defaults, env binding and
// the config search path.
func newViper(path string) *viper.Viper {
	def := DefaultConfig()
	v := viper.New()
	v.SetDefault("capacity_hint", def.CapacityHint)
	v.SetDefault("nul_escape", def.NulEscape)
	v.SetDefault("allocator", def.Allocator)
	v.SetDefault("memory_limit", def.MemoryLimit)
	v.SetDefault("compression", def.Compression)
	v.SetDefault("chunk_size", def.ChunkSize)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_db", def.LogDB)
	v.SetDefault("api_listen_address", def.APIListenAddr)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("estr")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/estr-go/")
		v.AddConfigPath("$HOME/.estr-go")
	}
	v.SetEnvPrefix("ESTR")
	v.AllowEmptyEnv(true)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads defaults, then the config file, then ESTR_* environment
// variables. An explicit path must exist; the default search path may not.
func Load(path string) (*Config, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot type-check.
func (c *Config) Validate() error {
	switch c.Allocator {
	case AllocatorHeap, AllocatorPool:
	default:
		return fmt.Errorf("config: unknown allocator %q", c.Allocator)
	}
	if c.MemoryLimit < 0 {
		return fmt.Errorf("config: memory_limit must not be negative")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("config: chunk_size must be positive")
	}
	if _, err := transform.ByName(c.Compression); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// NewAllocator builds the allocator the config selects.
func (c *Config) NewAllocator() buffers.Allocator {
	if c.Allocator == AllocatorPool {
		return buffers.NewPoolAllocator(c.MemoryLimit)
	}
	return buffers.NewHeapAllocator(c.MemoryLimit)
}

// NewPipeline builds the output pipeline for the configured compression.
func (c *Config) NewPipeline() (*transform.Pipeline, error) {
	return transform.NewPipelineByName(c.Compression)
}

// Escape returns the escape sequence as bytes, nil when it is empty.
func (c *Config) Escape() []byte {
	if c.NulEscape == "" {
		return nil
	}
	return []byte(c.NulEscape)
}
