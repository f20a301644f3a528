package cpu

import (
	"iter"
)

// Tracer observes every instruction executed by a Cpu.
type Tracer interface {
	Trace(trace *Trace)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(trace *Trace)

func (fn TracerFunc) Trace(trace *Trace) {
	fn(trace)
}

// Trace is the record of a single tick.
type Trace struct {
	Pc          uint16            // pc before the fetch.
	Instruction Instruction       // Decoded instruction.
	Before      [REG_COUNT]uint16 // Registers before the fetch.
	After       [REG_COUNT]uint16 // Registers after execution.
	Taken       bool              // Branch was taken.
	Stored      bool              // Memory was written.
	Addr        uint16            // Address written, if Stored.
	Value       byte              // Value written, if Stored.
	Err         error             // ErrHalted, or the decode error.
}

// Changed iterates over the registers modified by the tick, excluding pc.
func (trace *Trace) Changed() iter.Seq2[Reg, uint16] {
	return func(yield func(reg Reg, value uint16) bool) {
		for n := range REG_COUNT {
			reg := Reg(n)
			if reg == REG_PC || trace.Before[n] == trace.After[n] {
				continue
			}
			if !yield(reg, trace.After[n]) {
				return
			}
		}
	}
}
