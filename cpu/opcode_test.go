package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOp_Exhaustive(t *testing.T) {
	assert := assert.New(t)

	quiet(t)

	defined := 0
	for n := range 256 {
		op := Op(n)

		cpu, _ := newCpu(t, []byte{byte(op)})
		err := cpu.Execute(Instruction{Op: op})

		inst, derr := Decode(func() byte { return byte(op) })
		if op.Valid() {
			defined++
			mnemonic := op.String()
			assert.Equal(op, opMap[mnemonic], "%v", mnemonic)
			assert.Equal(op.Size(), len(Instruction{Op: op}.Encode()), "%v", mnemonic)
			assert.NoError(derr, "%v", mnemonic)
			assert.Equal(op, inst.Op)
			if op == OP_HALT {
				assert.ErrorIs(err, ErrHalted)
			} else {
				assert.NoError(err, "%v", mnemonic)
			}
		} else {
			assert.Equal(ErrOpcode(op), derr)
			assert.ErrorIs(derr, ErrOpcodeInvalid)
			assert.ErrorIs(err, ErrOpcodeInvalid)
			assert.True(cpu.Halted)
			assert.Nil(op.Operands())
			assert.Equal(1, op.Size())
		}
	}

	assert.Equal(13, defined)
	assert.Equal(defined, len(opMap))
}

func TestOp_Size(t *testing.T) {
	assert := assert.New(t)

	table := map[Op]int{
		OP_NOP:   1,
		OP_HALT:  1,
		OP_MOVI:  4,
		OP_MOV:   3,
		OP_ADD:   3,
		OP_SUB:   3,
		OP_CMP:   3,
		OP_JMP:   3,
		OP_JZ:    3,
		OP_JNZ:   3,
		OP_OUT:   4,
		OP_LOAD:  4,
		OP_STORE: 4,
	}

	for op, size := range table {
		assert.Equal(size, op.Size(), "%v", op)
	}
}

func TestInstruction_Encode(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		inst Instruction
		data []byte
		text string
	}{
		{MakeOp(OP_NOP), []byte{0x00}, "nop"},
		{MakeOp(OP_HALT), []byte{0x01}, "halt"},
		{MakeMovi(REG_R0, 0x1234), []byte{0x02, 0x00, 0x34, 0x12}, "movi r0 0x1234"},
		{MakeRegReg(OP_MOV, REG_R1, REG_FL), []byte{0x03, 0x01, 0x07}, "mov r1 fl"},
		{MakeRegReg(OP_ADD, REG_R2, REG_R3), []byte{0x04, 0x02, 0x03}, "add r2 r3"},
		{MakeRegReg(OP_SUB, REG_R4, REG_R5), []byte{0x05, 0x04, 0x05}, "sub r4 r5"},
		{MakeRegReg(OP_CMP, REG_PC, REG_R0), []byte{0x06, 0x06, 0x00}, "cmp pc r0"},
		{MakeJump(OP_JMP, 0xabcd), []byte{0x07, 0xcd, 0xab}, "jmp 0xabcd"},
		{MakeJump(OP_JZ, 0x000b), []byte{0x08, 0x0b, 0x00}, "jz 0x000b"},
		{MakeJump(OP_JNZ, 0x0100), []byte{0x09, 0x00, 0x01}, "jnz 0x0100"},
		{MakeOut(0x0100, REG_R2), []byte{0x0a, 0x00, 0x01, 0x02}, "out 0x0100 r2"},
		{MakeMem(OP_LOAD, REG_R3, 0x8000), []byte{0x0b, 0x03, 0x00, 0x80}, "load r3 0x8000"},
		{MakeMem(OP_STORE, REG_R4, 0x00ff), []byte{0x0c, 0x04, 0xff, 0x00}, "store r4 0x00ff"},
		{MakeMovi(Reg(9), 1), []byte{0x02, 0x09, 0x01, 0x00}, "movi Reg(9) 0x0001"},
	}

	for _, entry := range table {
		assert.Equal(entry.data, entry.inst.Encode(), entry.text)
		assert.Equal(entry.text, entry.inst.String())

		pos := 0
		inst, err := Decode(func() (data byte) {
			data = entry.data[pos]
			pos++
			return
		})
		assert.NoError(err, entry.text)
		assert.Equal(entry.inst, inst, entry.text)
		assert.Equal(len(entry.data), pos, entry.text)
	}
}

func TestInstruction_Undefined(t *testing.T) {
	assert := assert.New(t)

	inst := Instruction{Op: Op(0xff)}
	assert.Equal([]byte{0xff}, inst.Encode())
	assert.Equal("Op(255)", inst.String())
}

func TestReg(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("r0", REG_R0.String())
	assert.Equal("pc", REG_PC.String())
	assert.Equal("fl", REG_FL.String())
	assert.True(REG_FL.Valid())
	assert.False(Reg(REG_COUNT).Valid())
	assert.Equal(REG_COUNT, len(regMap))

	for name, reg := range regMap {
		assert.Equal(name, reg.String())
	}
}
