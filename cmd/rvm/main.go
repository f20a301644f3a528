// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/ezrec/rvm/config"
	"github.com/ezrec/rvm/cpu"
	"github.com/ezrec/rvm/emulator"
)

func main() {
	opts, err := parseArgs(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	cfg := config.Default()
	if len(opts.Config) != 0 {
		cfg, err = config.Load(opts.Config)
		if err != nil {
			log.Fatalf("%v: %v", opts.Config, err)
		}
	}

	err = opts.Apply(&cfg)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	emu := emulator.NewEmulator(cfg.Memory.Size)
	emu.Verbose = cfg.Log.Verbose

	if opts.Compile {
		inf, err := os.Open(opts.Program)
		if err != nil {
			log.Fatalf("%v: %v", opts.Program, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", opts.Program, err)
		}
	} else {
		dir, name := filepath.Split(opts.Program)
		if len(dir) == 0 {
			dir = "."
		}
		err = emu.LoadImage(os.DirFS(dir), name)
		if err != nil {
			log.Fatalf("%v: %v", opts.Program, err)
		}
	}

	if len(opts.Save) != 0 {
		err = os.WriteFile(opts.Save, emu.Image, 0o644)
		if err != nil {
			log.Fatalf("%v: %v", opts.Save, err)
		}
		return
	}

	if opts.List {
		for addr, inst := range cpu.Disassemble(emu.Image) {
			fmt.Printf("%04x: %v\n", addr, inst)
		}
		return
	}

	if cfg.Trace.Enabled {
		emu.Monitor = &emulator.TraceWriter{
			Output: os.Stderr,
			Color:  cfg.UseColor(term.IsTerminal(int(os.Stderr.Fd()))),
		}
	}

	switch opts.Tape {
	case "":
		// No tape.
	case "-":
		emu.Tape.Output = os.Stdout
	default:
		ouf, err := os.Create(opts.Tape)
		if err != nil {
			log.Fatalf("%v: %v", opts.Tape, err)
		}
		defer ouf.Close()
		emu.Tape.Output = ouf
	}

	err = emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", opts.Program, err)
	}

	fmt.Fprintln(os.Stderr, "Starting CPU...")

	// An undefined opcode halts the CPU; dump state as usual.
	err = unreported(emu.Run())
	if err != nil {
		log.Printf("%v: %v", opts.Program, err)
	}

	fmt.Fprintln(os.Stderr, "\nCPU Halted.")
	err = emu.Cpu.DumpState(os.Stderr)
	if err != nil {
		log.Printf("%v: %v", opts.Program, err)
	}

	if cfg.Dump.Memory {
		fmt.Fprintf(os.Stderr, "\nMemory Dump (First %d bytes):\n", cfg.Dump.Bytes)
		err = emu.DumpMemory(os.Stderr, cfg.Dump.Bytes, cfg.Dump.Width)
		if err != nil {
			log.Printf("%v: %v", opts.Program, err)
		}
	}
}

// unreported filters out run errors the CPU has already logged.
func unreported(err error) error {
	if errors.Is(err, cpu.ErrOpcodeInvalid) {
		return nil
	}
	return err
}
