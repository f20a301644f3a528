// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/rvm/cpu"
	"github.com/ezrec/rvm/internal"
	"github.com/ezrec/rvm/memory"
)

// Emulator state. CPU + Memory + program image.
type Emulator struct {
	Verbose  bool           // If set, enables verbose logging.
	*cpu.Cpu                // Reference to the CPU simulation.
	Memory   *memory.Memory // Memory lent to the CPU.
	Program  *cpu.Program   // Assembled program listing, if any.
	Image    []byte         // Image loaded into memory on reset.

	Tape    Tape       // Mirror of the out instruction.
	Monitor cpu.Tracer // If set, observes every instruction.
}

// NewEmulator creates a new emulator with size bytes of memory.
// A size of zero or less selects memory.DEFAULT_SIZE.
func NewEmulator(size int) (emu *Emulator) {
	mem := memory.NewMemory(size)

	emu = &Emulator{
		Cpu:     cpu.NewCpu(mem),
		Memory:  mem,
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(map[string]string{
		"MEMORY_SIZE": fmt.Sprintf("%v", emu.Memory.Size()),
	}),
		emu.Cpu.Defines(),
	)
}

// Assemble assembles a program from source text, and makes it the image.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	image := prog.Binary()
	if len(image) > emu.Memory.Size() {
		err = errors.Join(memory.ErrImageTooLarge, memory.ErrSize{Size: len(image), Capacity: emu.Memory.Size()})
		return
	}

	emu.Program = prog
	emu.Image = image

	return
}

// LoadImage reads a binary image from a file system, and makes it the image.
func (emu *Emulator) LoadImage(filesys fs.FS, name string) (err error) {
	image, err := fs.ReadFile(filesys, name)
	if err != nil {
		return
	}

	if len(image) > emu.Memory.Size() {
		err = errors.Join(memory.ErrImageTooLarge, memory.ErrSize{Size: len(image), Capacity: emu.Memory.Size()})
		return
	}

	if emu.Verbose {
		log.Printf("emulator: %v: %v bytes", name, len(image))
	}

	emu.Program = &cpu.Program{}
	emu.Image = image

	return
}

// Reset clears memory, loads the image, and resets the CPU.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Memory.Clear()
	err = emu.Memory.Load(emu.Image)
	if err != nil {
		return
	}

	emu.Cpu.Reset()
	emu.Tape.Rewind()

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// LineNo returns the source line number for the next instruction.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Cpu.Pc())
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Trace receives the trace of every CPU tick.
func (emu *Emulator) Trace(trace *cpu.Trace) {
	if emu.Tape.Output != nil && trace.Stored && trace.Instruction.Op == cpu.OP_OUT {
		err := emu.Tape.Send(trace.Value)
		if err != nil && emu.Verbose {
			log.Printf("emulator: tape: %v", err)
		}
	}

	if emu.Monitor != nil {
		emu.Monitor.Trace(trace)
	}
}

// Tick performs a single tick of the emulator.
// done is set once the CPU has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	if emu.Tape.Output != nil || emu.Monitor != nil {
		emu.Cpu.Tracer = emu
	} else {
		emu.Cpu.Tracer = nil
	}

	pc := emu.Cpu.Pc()
	lineno := emu.LineNo()

	err = emu.Cpu.Tick()
	switch {
	case errors.Is(err, cpu.ErrHalted):
		err = nil
		done = true
	case err != nil:
		done = true
		err = &ErrRuntime{Addr: pc, LineNo: lineno, Err: err}
	}

	return
}

// Run ticks the emulator until the CPU halts.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}
