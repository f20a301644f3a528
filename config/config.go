// Package config holds the machine configuration, read from TOML.
//
//	[memory]
//	size = 65536
//
//	[trace]
//	enabled = false
//	color = "auto"
//
//	[dump]
//	memory = false
//	bytes = 64
//	width = 16
//
//	[log]
//	verbose = false
package config

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/rvm/memory"
)

const (
	COLOR_AUTO   = "auto"   // Colour when tracing to a terminal.
	COLOR_ALWAYS = "always" // Always colour the trace.
	COLOR_NEVER  = "never"  // Never colour the trace.
)

// MemoryConfig configures the memory of the machine.
type MemoryConfig struct {
	Size int `toml:"size"` // Capacity in bytes.
}

// TraceConfig configures the per-instruction trace.
type TraceConfig struct {
	Enabled bool   `toml:"enabled"`
	Color   string `toml:"color"`
}

// DumpConfig configures the memory dump after halt.
type DumpConfig struct {
	Memory bool `toml:"memory"` // Dump memory after halt.
	Bytes  int  `toml:"bytes"`  // Number of bytes to dump.
	Width  int  `toml:"width"`  // Bytes per line.
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	Verbose bool `toml:"verbose"` // Log loader, assembler and CPU activity.
}

// Config is the complete machine configuration.
type Config struct {
	Memory MemoryConfig `toml:"memory"`
	Trace  TraceConfig  `toml:"trace"`
	Dump   DumpConfig   `toml:"dump"`
	Log    LogConfig    `toml:"log"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Memory: MemoryConfig{Size: memory.DEFAULT_SIZE},
		Trace:  TraceConfig{Color: COLOR_AUTO},
		Dump:   DumpConfig{Bytes: 64, Width: 16},
	}
}

// Decode reads a configuration over the defaults.
func Decode(input io.Reader) (cfg Config, err error) {
	cfg = Default()

	md, err := toml.NewDecoder(input).Decode(&cfg)
	if err != nil {
		return
	}

	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		var keys ErrUnknownKey
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		err = keys
		return
	}

	err = cfg.Validate()

	return
}

// Load reads a configuration file over the defaults.
func Load(path string) (cfg Config, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	return Decode(inf)
}

// Validate checks the configuration for consistency.
func (cfg *Config) Validate() (err error) {
	switch {
	case cfg.Memory.Size < 1 || cfg.Memory.Size > memory.MAX_SIZE:
		err = ErrMemorySize
	case cfg.Dump.Bytes < 0:
		err = ErrDumpBytes
	case cfg.Dump.Width < 1:
		err = ErrDumpWidth
	}
	if err != nil {
		return
	}

	switch cfg.Trace.Color {
	case COLOR_AUTO, COLOR_ALWAYS, COLOR_NEVER:
	default:
		err = ErrColor
	}

	return
}

// UseColor returns true if the trace should be coloured,
// given whether the trace output is a terminal.
func (cfg *Config) UseColor(terminal bool) bool {
	switch cfg.Trace.Color {
	case COLOR_ALWAYS:
		return true
	case COLOR_NEVER:
		return false
	}
	return terminal
}
