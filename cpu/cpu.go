package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
)

// Memory is the byte store the CPU fetches from and stores to.
type Memory interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

var _cpu_defines = map[string]string{
	"REG_COUNT": fmt.Sprintf("%v", REG_COUNT),
	"FLAG_ZERO": fmt.Sprintf("0x%x", FLAG_ZERO),
}

// Cpu is the simulation context of the register machine.
type Cpu struct {
	Verbose bool   // Set to enable verbose logging.
	Memory  Memory // Memory lent to the CPU by its owner.
	Tracer  Tracer // If set, receives a Trace for every tick.

	Register [REG_COUNT]uint16 // Register bank, including pc and fl.
	Halted   bool              // Set by halt, or by an undefined opcode.

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a new CPU bound to mem.
func NewCpu(mem Memory) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: mem,
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 6s: %04X\n", Reg(n).String(), val)
	}
	strval := "false"
	if cpu.Halted {
		strval = "true"
	}
	text += fmt.Sprintf("% 6s: %v\n", "halted", strval)

	return
}

// Reset the CPU state.
// - Clears all registers, including pc and fl.
// - Clears the halted latch.
// - Zeros statistics counters.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Halted = false
	cpu.Ticks = 0
}

// Pc returns the program counter.
func (cpu *Cpu) Pc() uint16 {
	return cpu.Register[REG_PC]
}

// Zero returns the state of the zero flag.
func (cpu *Cpu) Zero() bool {
	return (cpu.Register[REG_FL] & FLAG_ZERO) != 0
}

// Taken returns true if the branch op would transfer control.
func (cpu *Cpu) Taken(op Op) bool {
	switch op {
	case OP_JMP:
		return true
	case OP_JZ:
		return cpu.Zero()
	case OP_JNZ:
		return !cpu.Zero()
	}
	return false
}

// fetchByte reads the byte at pc, and advances pc.
func (cpu *Cpu) fetchByte() (value byte) {
	pc := cpu.Register[REG_PC]
	cpu.Register[REG_PC] = pc + 1
	return cpu.Memory.Read(pc)
}

// setZero updates the zero flag from an operation result.
func (cpu *Cpu) setZero(result uint16) {
	if result == 0 {
		cpu.Register[REG_FL] |= FLAG_ZERO
	} else {
		cpu.Register[REG_FL] &^= FLAG_ZERO
	}
}

// Fetch fetches and decodes the instruction at pc, advancing pc past it.
func (cpu *Cpu) Fetch() (inst Instruction, err error) {
	return Decode(cpu.fetchByte)
}

// Step performs a single instruction, and returns true if execution may continue.
func (cpu *Cpu) Step() bool {
	return cpu.Tick() == nil
}

// Tick executes a single CPU instruction cycle.
// Returns ErrHalted once the CPU is halted, and an ErrOpcode
// when an undefined opcode halts the CPU.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	pc := cpu.Register[REG_PC]

	var trace *Trace
	if cpu.Tracer != nil {
		trace = &Trace{Pc: pc, Before: cpu.Register}
		defer func() {
			trace.After = cpu.Register
			trace.Err = err
			cpu.Tracer.Trace(trace)
		}()
	}

	inst, err := cpu.Fetch()
	if trace != nil {
		trace.Instruction = inst
	}
	if err != nil {
		cpu.Halted = true
		log.Print(f("cpu: %04x: %v", pc, err))
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: %04x: %v", pc, inst)
	}

	if trace != nil {
		trace.Taken = cpu.Taken(inst.Op)
		if inst.Op.Stores() && inst.A.Valid() {
			trace.Stored = true
			trace.Addr = inst.Value
			trace.Value = byte(cpu.Register[inst.A])
		}
	}

	cpu.Ticks += 1

	err = cpu.Execute(inst)

	return
}

// Execute executes a single decoded instruction.
// Register operands outside of the register file make the instruction a no-op.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	reg := &cpu.Register
	a, b := inst.A, inst.B

	switch inst.Op {
	case OP_NOP:
		// pass
	case OP_HALT:
		cpu.Halted = true
		err = ErrHalted
	case OP_MOVI:
		if a.Valid() {
			reg[a] = inst.Value
		}
	case OP_MOV:
		if a.Valid() && b.Valid() {
			reg[a] = reg[b]
		}
	case OP_ADD:
		if a.Valid() && b.Valid() {
			reg[a] += reg[b]
			cpu.setZero(reg[a])
		}
	case OP_SUB:
		if a.Valid() && b.Valid() {
			reg[a] -= reg[b]
			cpu.setZero(reg[a])
		}
	case OP_CMP:
		if a.Valid() && b.Valid() {
			cpu.setZero(reg[a] - reg[b])
		}
	case OP_JMP, OP_JZ, OP_JNZ:
		if cpu.Taken(inst.Op) {
			reg[REG_PC] = inst.Value
		}
	case OP_OUT, OP_STORE:
		// Ports and memory share one address space.
		if a.Valid() {
			cpu.Memory.Write(inst.Value, byte(reg[a]))
		}
	case OP_LOAD:
		if a.Valid() {
			reg[a] = uint16(cpu.Memory.Read(inst.Value))
		}
	default:
		cpu.Halted = true
		err = ErrOpcode(inst.Op)
	}

	return
}
