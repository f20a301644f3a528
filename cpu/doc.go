// Package cpu implements the register machine and its assembler.
//
// The machine has eight 16-bit registers: six general purpose registers
// (r0-r5), the program counter (pc) and the flags register (fl). Instructions
// are a single opcode byte followed by fixed width operands, 16-bit operands
// being little-endian. The CPU fetches from, and stores to, a byte
// addressable Memory that is shared with the caller.
//
// The assembler provides a small assembly language for the instruction set,
// supporting macros, labels, equates, data directives and compile-time
// expression evaluation.
package cpu
