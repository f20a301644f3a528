package main

import (
	"errors"
	"flag"
	"io"

	"github.com/ezrec/rvm/config"
	"github.com/ezrec/rvm/translate"
)

var f = translate.From

var (
	ErrUsage = errors.New(f("usage: rvm [options] <program>"))
)

// Options are the command line options.
type Options struct {
	Program    string // Program image, or assembly source with Compile.
	Config     string // TOML configuration file.
	Debug      bool   // Trace every instruction.
	DumpMemory bool   // Dump memory after halt.
	Memory     int    // Memory size override.
	Color      string // Trace colour override.
	Compile    bool   // Program is assembly source.
	Save       string // Save the image here instead of executing.
	List       bool   // Disassemble instead of executing.
	Tape       string // Tape output for the out instruction.
	Verbose    bool   // Verbose logging.
}

// parseArgs parses the command line. Options may appear before or
// after the program path.
func parseArgs(name string, args []string, output io.Writer) (opts Options, err error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(output)

	flags.StringVar(&opts.Config, "config", "", "TOML machine configuration")
	flags.BoolVar(&opts.Debug, "debug", false, "Trace every instruction")
	flags.BoolVar(&opts.Debug, "v", false, "Trace every instruction (shorthand)")
	flags.BoolVar(&opts.DumpMemory, "dump-memory", false, "Dump memory after halt")
	flags.IntVar(&opts.Memory, "memory", 0, "Memory size in bytes")
	flags.StringVar(&opts.Color, "color", "", "Trace colour: auto, always or never")
	flags.BoolVar(&opts.Compile, "c", false, "Program is assembly source")
	flags.StringVar(&opts.Save, "s", "", "Save the program image to file, do not execute")
	flags.BoolVar(&opts.List, "l", false, "Disassemble the program image, do not execute")
	flags.StringVar(&opts.Tape, "o", "", "Tape output for the out instruction ('-' for stdout)")
	flags.BoolVar(&opts.Verbose, "verbose", false, "Verbose mode")

	var positional []string
	for {
		err = flags.Parse(args)
		if err != nil {
			err = errors.Join(ErrUsage, err)
			return
		}
		args = flags.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}

	if len(positional) != 1 {
		err = ErrUsage
		return
	}

	opts.Program = positional[0]

	return
}

// Apply overrides configuration values with command line options.
func (opts *Options) Apply(cfg *config.Config) (err error) {
	if opts.Debug {
		cfg.Trace.Enabled = true
	}
	if opts.DumpMemory {
		cfg.Dump.Memory = true
	}
	if opts.Memory != 0 {
		cfg.Memory.Size = opts.Memory
	}
	if len(opts.Color) != 0 {
		cfg.Trace.Color = opts.Color
	}
	if opts.Verbose {
		cfg.Log.Verbose = true
	}

	err = cfg.Validate()

	return
}
