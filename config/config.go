// Package config provides the JSON machine configuration for the emulator.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/vr4300/cache"
	"github.com/sarchlab/vr4300/emu"
	"github.com/sarchlab/vr4300/mem"
)

// Boot modes.
const (
	BootReset = "reset"
	BootHLE   = "hle"
)

// Unaligned access policies.
const (
	UnalignedFault = "fault"
	UnalignedAllow = "allow"
)

// Fault policies.
const (
	FaultHalt   = "halt"
	FaultVector = "vector"
)

// DataCacheConfig describes the optional data cache in front of RDRAM.
type DataCacheConfig struct {
	// Enabled places the cache in front of the first RDRAM window.
	Enabled bool `json:"enabled"`

	// Size is the total capacity in bytes. Default: 8KB.
	Size int `json:"size"`

	// Associativity is the number of ways per set. Default: 1.
	Associativity int `json:"associativity"`

	// BlockSize is the line size in bytes. Default: 16.
	BlockSize int `json:"block_size"`
}

// Config holds the machine configuration.
type Config struct {
	// Boot selects how the machine starts: "reset" runs from the reset
	// vector, "hle" starts in the state the boot code leaves behind.
	// Default: "reset".
	Boot string `json:"boot"`

	// UnalignedPolicy is "fault" or "allow". Default: "fault".
	UnalignedPolicy string `json:"unaligned_policy"`

	// FaultPolicy is "halt" or "vector". Default: "halt".
	FaultPolicy string `json:"fault_policy"`

	// MaxInstructions stops execution after this many instructions.
	// Default: 0 (no limit).
	MaxInstructions uint64 `json:"max_instructions"`

	// SRAMSize is the cartridge SRAM size in bytes. Default: 128KB.
	SRAMSize int `json:"sram_size"`

	// LogLevel is a logrus level name. Default: "info".
	LogLevel string `json:"log_level"`

	// DataCache configures the optional data cache.
	DataCache DataCacheConfig `json:"data_cache"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	dc := cache.DefaultDataCacheConfig()
	return &Config{
		Boot:            BootReset,
		UnalignedPolicy: UnalignedFault,
		FaultPolicy:     FaultHalt,
		MaxInstructions: 0,
		SRAMSize:        mem.DefaultSRAMSize,
		LogLevel:        "info",
		DataCache: DataCacheConfig{
			Enabled:       false,
			Size:          dc.Size,
			Associativity: dc.Associativity,
			BlockSize:     dc.BlockSize,
		},
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that every field holds a supported value.
func (c *Config) Validate() error {
	if c.Boot != BootReset && c.Boot != BootHLE {
		return fmt.Errorf("boot must be %q or %q, got %q", BootReset, BootHLE, c.Boot)
	}
	if c.UnalignedPolicy != UnalignedFault && c.UnalignedPolicy != UnalignedAllow {
		return fmt.Errorf("unaligned_policy must be %q or %q, got %q",
			UnalignedFault, UnalignedAllow, c.UnalignedPolicy)
	}
	if c.FaultPolicy != FaultHalt && c.FaultPolicy != FaultVector {
		return fmt.Errorf("fault_policy must be %q or %q, got %q",
			FaultHalt, FaultVector, c.FaultPolicy)
	}
	if c.SRAMSize < 0 {
		return fmt.Errorf("sram_size must be >= 0")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if c.DataCache.Enabled {
		if err := c.validateDataCache(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateDataCache() error {
	dc := c.DataCache
	if dc.Size <= 0 || dc.Associativity <= 0 || dc.BlockSize <= 0 {
		return fmt.Errorf("data_cache size, associativity and block_size must be > 0")
	}
	if dc.BlockSize&(dc.BlockSize-1) != 0 {
		return fmt.Errorf("data_cache block_size must be a power of two")
	}
	if dc.Size%(dc.Associativity*dc.BlockSize) != 0 {
		return fmt.Errorf("data_cache size must be a multiple of associativity * block_size")
	}
	return nil
}

// Level returns the configured log level, or info when it does not parse.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// EmulatorOptions translates the configuration into emulator options.
func (c *Config) EmulatorOptions() []emu.EmulatorOption {
	unaligned := emu.UnalignedFault
	if c.UnalignedPolicy == UnalignedAllow {
		unaligned = emu.UnalignedAllow
	}
	faults := emu.FaultHalt
	if c.FaultPolicy == FaultVector {
		faults = emu.FaultVector
	}

	opts := []emu.EmulatorOption{
		emu.WithHLEBoot(c.Boot == BootHLE),
		emu.WithUnalignedPolicy(unaligned),
		emu.WithFaultPolicy(faults),
		emu.WithMaxInstructions(c.MaxInstructions),
		emu.WithSRAMSize(c.SRAMSize),
	}
	if c.DataCache.Enabled {
		opts = append(opts, emu.WithDataCache(cache.Config{
			Size:          c.DataCache.Size,
			Associativity: c.DataCache.Associativity,
			BlockSize:     c.DataCache.BlockSize,
		}))
	}
	return opts
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
