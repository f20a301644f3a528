package emulator

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ezrec/rvm/cpu"
)

// ANSI colour codes
const (
	ansiReset   = "\033[0m"
	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiBlue    = "\033[34m"
	ansiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
	ansiBold    = "\033[1m"
)

// TraceWriter formats each executed instruction as a line of text.
// The format is for display only.
type TraceWriter struct {
	Output io.Writer // Destination of the trace lines.
	Color  bool      // If set, colours the output with ANSI escapes.
}

var _ cpu.Tracer = (*TraceWriter)(nil)

// Trace writes the trace of a single tick.
func (tw *TraceWriter) Trace(trace *cpu.Trace) {
	fmt.Fprintln(tw.Output, tw.Format(trace))
}

// opColor returns the colour of an instruction class.
func opColor(op cpu.Op) string {
	switch op {
	case cpu.OP_NOP:
		return ""
	case cpu.OP_HALT:
		return ansiRed
	case cpu.OP_MOVI, cpu.OP_MOV:
		return ansiBold
	case cpu.OP_ADD, cpu.OP_SUB:
		return ansiMagenta
	case cpu.OP_CMP, cpu.OP_JMP, cpu.OP_JZ, cpu.OP_JNZ:
		return ansiYellow
	case cpu.OP_OUT:
		return ansiCyan
	case cpu.OP_LOAD, cpu.OP_STORE:
		return ansiBlue
	}
	return ansiRed
}

func (tw *TraceWriter) paint(color string, text string) string {
	if !tw.Color || len(color) == 0 {
		return text
	}
	return color + text + ansiReset
}

// Format returns the text of a single trace line.
func (tw *TraceWriter) Format(trace *cpu.Trace) string {
	inst := trace.Instruction
	color := opColor(inst.Op)

	fields := []string{
		tw.paint(ansiGreen, fmt.Sprintf("PC: %04x", trace.Pc)),
		tw.paint(color, fmt.Sprintf("%-22v", inst)),
	}

	var effect []string
	switch {
	case trace.Err != nil && !errors.Is(trace.Err, cpu.ErrHalted):
		effect = append(effect, fmt.Sprintf("error: %v", trace.Err))
	case inst.Op == cpu.OP_HALT:
		effect = append(effect, "halted")
	case inst.Op.Branch():
		if trace.Taken {
			effect = append(effect, fmt.Sprintf("pc <- %04x (taken)", inst.Value))
		} else {
			effect = append(effect, "not taken")
		}
	}

	if trace.Stored {
		effect = append(effect, fmt.Sprintf("[%04x] <- %02x", trace.Addr, trace.Value))
	}

	for reg, value := range trace.Changed() {
		effect = append(effect, fmt.Sprintf("%v=%04x", reg, value))
	}

	if len(effect) != 0 {
		fields = append(fields, tw.paint(color, strings.Join(effect, " ")))
	}

	return strings.TrimRight(strings.Join(fields, "   "), " ")
}
