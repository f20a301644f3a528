package cpu

import (
	"iter"
)

// Disassemble iterates over the instructions of an image, with their address.
// Undefined opcodes are yielded as a lone Op, and decoding resumes at the next byte.
// Operands running past the end of the image read as zero.
func Disassemble(image []byte) iter.Seq2[uint16, Instruction] {
	return func(yield func(addr uint16, inst Instruction) bool) {
		pos := 0
		next := func() (data byte) {
			if pos < len(image) {
				data = image[pos]
			}
			pos++
			return
		}

		for pos < len(image) && pos <= 0xffff {
			addr := uint16(pos)
			inst, _ := Decode(next)
			if !yield(addr, inst) {
				return
			}
		}
	}
}
