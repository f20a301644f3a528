package cpu

import (
	"fmt"
	"io"
)

// DumpState writes the register file in hexadecimal.
func (cpu *Cpu) DumpState(w io.Writer) (err error) {
	text := "Registers:\n"
	for n, val := range cpu.Register {
		text += fmt.Sprintf("R%d: %04x ", n, val)
	}
	text += "\n"

	_, err = io.WriteString(w, text)
	return
}
