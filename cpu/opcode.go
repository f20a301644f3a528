package cpu

import (
	"fmt"
	"strings"
)

// Op is an opcode, the first byte of every instruction.
type Op uint8

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_NOP   = Op(0x00) // nop
	OP_HALT  = Op(0x01) // halt
	OP_MOVI  = Op(0x02) // movi
	OP_MOV   = Op(0x03) // mov
	OP_ADD   = Op(0x04) // add
	OP_SUB   = Op(0x05) // sub
	OP_CMP   = Op(0x06) // cmp
	OP_JMP   = Op(0x07) // jmp
	OP_JZ    = Op(0x08) // jz
	OP_JNZ   = Op(0x09) // jnz
	OP_OUT   = Op(0x0a) // out
	OP_LOAD  = Op(0x0b) // load
	OP_STORE = Op(0x0c) // store
)

// Reg is a register index.
type Reg uint8

//go:generate go tool stringer -linecomment -type=Reg
const (
	REG_R0 = Reg(0) // r0
	REG_R1 = Reg(1) // r1
	REG_R2 = Reg(2) // r2
	REG_R3 = Reg(3) // r3
	REG_R4 = Reg(4) // r4
	REG_R5 = Reg(5) // r5
	REG_PC = Reg(6) // pc
	REG_FL = Reg(7) // fl
)

const (
	REG_COUNT = 8 // Size of the register file.

	FLAG_ZERO = uint16(1 << 0) // Last flag-affecting result was zero.
)

// Valid returns true if the register index is inside the register file.
func (reg Reg) Valid() bool {
	return int(reg) < REG_COUNT
}

// Operand is the encoding type of an instruction operand.
type Operand int

//go:generate go tool stringer -linecomment -type=Operand
const (
	OPERAND_REG  = Operand(0) // reg
	OPERAND_IMM  = Operand(1) // imm16
	OPERAND_ADDR = Operand(2) // addr16
	OPERAND_PORT = Operand(3) // port16
)

// Size returns the encoded size of the operand in bytes.
func (operand Operand) Size() int {
	if operand == OPERAND_REG {
		return 1
	}
	return 2
}

// opLayout is the operand layout of every defined opcode.
var opLayout = [...][]Operand{
	OP_NOP:   nil,
	OP_HALT:  nil,
	OP_MOVI:  {OPERAND_REG, OPERAND_IMM},
	OP_MOV:   {OPERAND_REG, OPERAND_REG},
	OP_ADD:   {OPERAND_REG, OPERAND_REG},
	OP_SUB:   {OPERAND_REG, OPERAND_REG},
	OP_CMP:   {OPERAND_REG, OPERAND_REG},
	OP_JMP:   {OPERAND_ADDR},
	OP_JZ:    {OPERAND_ADDR},
	OP_JNZ:   {OPERAND_ADDR},
	OP_OUT:   {OPERAND_PORT, OPERAND_REG},
	OP_LOAD:  {OPERAND_REG, OPERAND_ADDR},
	OP_STORE: {OPERAND_REG, OPERAND_ADDR},
}

// Valid returns true if the opcode is defined.
func (op Op) Valid() bool {
	return int(op) < len(opLayout)
}

// Operands returns the operand layout following the opcode byte.
func (op Op) Operands() []Operand {
	if !op.Valid() {
		return nil
	}
	return opLayout[op]
}

// Size returns the encoded size of the instruction, opcode included.
func (op Op) Size() (size int) {
	size = 1
	for _, operand := range op.Operands() {
		size += operand.Size()
	}
	return
}

// Flags returns true if the instruction updates the flags register.
func (op Op) Flags() bool {
	switch op {
	case OP_ADD, OP_SUB, OP_CMP:
		return true
	}
	return false
}

// Branch returns true if the instruction may transfer control.
func (op Op) Branch() bool {
	switch op {
	case OP_JMP, OP_JZ, OP_JNZ:
		return true
	}
	return false
}

// Stores returns true if the instruction writes to memory.
func (op Op) Stores() bool {
	return op == OP_OUT || op == OP_STORE
}

// Instruction is a decoded instruction.
type Instruction struct {
	Op    Op
	A     Reg    // First register operand.
	B     Reg    // Second register operand.
	Value uint16 // Immediate, address or port operand.
}

// MakeOp creates an instruction without operands.
func MakeOp(op Op) Instruction {
	return Instruction{Op: op}
}

// MakeMovi creates a load-immediate instruction.
func MakeMovi(reg Reg, imm uint16) Instruction {
	return Instruction{Op: OP_MOVI, A: reg, Value: imm}
}

// MakeRegReg creates a register to register instruction (mov, add, sub, cmp).
func MakeRegReg(op Op, a, b Reg) Instruction {
	return Instruction{Op: op, A: a, B: b}
}

// MakeJump creates a jump instruction (jmp, jz, jnz).
func MakeJump(op Op, addr uint16) Instruction {
	return Instruction{Op: op, Value: addr}
}

// MakeOut creates a port output instruction.
func MakeOut(port uint16, reg Reg) Instruction {
	return Instruction{Op: OP_OUT, A: reg, Value: port}
}

// MakeMem creates a memory access instruction (load, store).
func MakeMem(op Op, reg Reg, addr uint16) Instruction {
	return Instruction{Op: op, A: reg, Value: addr}
}

// Decode decodes one instruction, calling next for each successive byte.
// Undefined opcodes consume only the opcode byte.
func Decode(next func() byte) (inst Instruction, err error) {
	inst.Op = Op(next())
	if !inst.Op.Valid() {
		err = ErrOpcode(inst.Op)
		return
	}

	regs := 0
	for _, operand := range inst.Op.Operands() {
		switch operand {
		case OPERAND_REG:
			reg := Reg(next())
			if regs == 0 {
				inst.A = reg
			} else {
				inst.B = reg
			}
			regs++
		default:
			lo := next()
			hi := next()
			inst.Value = (uint16(hi) << 8) | uint16(lo)
		}
	}

	return
}

// Encode returns the binary encoding of the instruction.
func (inst Instruction) Encode() (data []byte) {
	data = append(data, byte(inst.Op))

	regs := 0
	for _, operand := range inst.Op.Operands() {
		switch operand {
		case OPERAND_REG:
			reg := inst.A
			if regs != 0 {
				reg = inst.B
			}
			data = append(data, byte(reg))
			regs++
		default:
			data = append(data, byte(inst.Value), byte(inst.Value>>8))
		}
	}

	return
}

// Args returns the assembly text of each operand.
func (inst Instruction) Args() (args []string) {
	regs := 0
	for _, operand := range inst.Op.Operands() {
		switch operand {
		case OPERAND_REG:
			reg := inst.A
			if regs != 0 {
				reg = inst.B
			}
			args = append(args, reg.String())
			regs++
		default:
			args = append(args, fmt.Sprintf("0x%04x", inst.Value))
		}
	}

	return
}

// String returns the assembly language representation of this instruction.
func (inst Instruction) String() string {
	return strings.Join(append([]string{inst.Op.String()}, inst.Args()...), " ")
}
