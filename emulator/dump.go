package emulator

import (
	"fmt"
	"io"
	"strings"
)

// DumpMemory writes data as hexadecimal, width bytes per line,
// each line prefixed by its address.
func DumpMemory(w io.Writer, data []byte, width int) (err error) {
	if width < 1 {
		width = 16
	}

	var text strings.Builder
	for n, val := range data {
		if n%width == 0 {
			fmt.Fprintf(&text, "%04x: ", n)
		}
		fmt.Fprintf(&text, "%02x ", val)
		if (n+1)%width == 0 || n == len(data)-1 {
			text.WriteString("\n")
		}
	}

	_, err = io.WriteString(w, text.String())
	return
}

// DumpMemory writes the first count bytes of memory.
func (emu *Emulator) DumpMemory(w io.Writer, count int, width int) (err error) {
	data := emu.Memory.Snapshot()
	if count < len(data) {
		data = data[:max(count, 0)]
	}

	return DumpMemory(w, data, width)
}
