package cpu

import (
	"iter"
)

// Link is a reference to a label, patched once all labels are known.
type Link struct {
	Label  string // Label to resolve.
	Offset int    // Byte offset of the little-endian 16-bit field.
}

// Opcode represents a line of assembled code with its source location and generated bytes.
type Opcode struct {
	LineNo int
	Addr   int
	Words  []string
	Bytes  []byte
	Links  []Link
}

// Program is an assembled program.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the source of a byte in the program.
type Debug struct {
	*Opcode
	Index int
}

// Debug returns the opcode containing addr.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// Size returns the size of the program image.
func (prog *Program) Size() (size int) {
	for _, op := range prog.Opcodes {
		size = max(size, op.Addr+len(op.Bytes))
	}

	return
}

// Binary returns the program image, to be loaded at address 0.
// Gaps left by .org are zero filled.
func (prog *Program) Binary() (image []byte) {
	image = make([]byte, prog.Size())
	for addr, data := range prog.Bytes() {
		image[addr] = data
	}

	return
}

// Bytes iterates over every assembled byte, with its address.
func (prog *Program) Bytes() iter.Seq2[uint16, byte] {
	return func(yield func(addr uint16, data byte) bool) {
		for _, op := range prog.Opcodes {
			for n, data := range op.Bytes {
				if !yield(uint16(op.Addr+n), data) {
					return
				}
			}
		}
	}
}
