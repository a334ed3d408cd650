package columnar

import (
	"bytes"
	"flag"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pavanmanishd/columnar/internal/offheap"
)

const (
	// DefaultMinBlockLen is the smallest number of elements a new backing block holds.
	DefaultMinBlockLen = 4
	// DefaultGrowthFactor is the multiplier applied to the previous block capacity.
	DefaultGrowthFactor = 2
)

// Config controls block growth and memory limits for a Stack and every
// region composed into it.
type Config struct {
	MinBlockLen      int   `yaml:"min_block_len"`
	GrowthFactor     int   `yaml:"growth_factor"`
	MaxBlockLen      int   `yaml:"max_block_len"`
	MemoryLimitBytes int64 `yaml:"memory_limit_bytes"`
	OffHeapText      bool  `yaml:"off_heap_text"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		MinBlockLen:  DefaultMinBlockLen,
		GrowthFactor: DefaultGrowthFactor,
	}
}

// RegisterFlags registers the config flags without a prefix.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix("", f)
}

// RegisterFlagsWithPrefix registers the config flags, each name prefixed with prefix.
func (cfg *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	f.IntVar(&cfg.MinBlockLen, prefix+"min-block-len", DefaultMinBlockLen, "Minimum number of elements in a newly allocated backing block.")
	f.IntVar(&cfg.GrowthFactor, prefix+"growth-factor", DefaultGrowthFactor, "Each new backing block is at least this many times larger than the previous one.")
	f.IntVar(&cfg.MaxBlockLen, prefix+"max-block-len", 0, "Upper bound on the number of elements in a backing block, unless a single request needs more. 0 means unlimited. With off-heap text it must be a multiple of the page size.")
	f.Int64Var(&cfg.MemoryLimitBytes, prefix+"memory-limit-bytes", 0, "Maximum bytes of backing blocks held at once. 0 means unlimited.")
	f.BoolVar(&cfg.OffHeapText, prefix+"off-heap-text", false, "Allocate text byte blocks outside the Go heap using anonymous mappings.")
}

// Validate reports the first invalid field.
func (cfg Config) Validate() error {
	if cfg.MinBlockLen < 1 {
		return errors.Wrapf(ErrInvalidConfig, "min-block-len must be at least 1, got %d", cfg.MinBlockLen)
	}
	if cfg.GrowthFactor < 2 {
		return errors.Wrapf(ErrInvalidConfig, "growth-factor must be at least 2, got %d", cfg.GrowthFactor)
	}
	if cfg.MaxBlockLen < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max-block-len must not be negative, got %d", cfg.MaxBlockLen)
	}
	if cfg.MaxBlockLen > 0 && cfg.MaxBlockLen < cfg.MinBlockLen {
		return errors.Wrapf(ErrInvalidConfig, "max-block-len %d is below min-block-len %d", cfg.MaxBlockLen, cfg.MinBlockLen)
	}
	if cfg.OffHeapText && !offHeapAligned(cfg.MaxBlockLen) {
		return errors.Wrapf(ErrInvalidConfig, "max-block-len %d is not a multiple of the page size %d required by off-heap-text", cfg.MaxBlockLen, offheap.PageSize())
	}
	if cfg.MemoryLimitBytes < 0 {
		return errors.Wrapf(ErrInvalidConfig, "memory-limit-bytes must not be negative, got %d", cfg.MemoryLimitBytes)
	}
	return nil
}

// LoadConfig decodes YAML on top of DefaultConfig and validates the result.
// Unknown keys are rejected.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decode columnar config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// growth returns the effective growth parameters, substituting defaults
// for values that would break geometric growth.
func (cfg Config) growth() (minLen, factor, maxLen int) {
	minLen, factor, maxLen = cfg.MinBlockLen, cfg.GrowthFactor, cfg.MaxBlockLen
	if minLen < 1 {
		minLen = DefaultMinBlockLen
	}
	if factor < 2 {
		factor = DefaultGrowthFactor
	}
	if maxLen < 0 {
		maxLen = 0
	}
	return minLen, factor, maxLen
}

// offHeapAligned reports whether page-aligned byte blocks can respect maxLen.
func offHeapAligned(maxLen int) bool {
	return maxLen <= 0 || maxLen%offheap.PageSize() == 0
}
