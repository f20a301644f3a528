package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rvm/memory"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Empty(prog.Opcodes)
	assert.Equal(0, prog.Size())

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("8", asm.Equate["REG_COUNT"])
	assert.Equal("0x1", asm.Equate["FLAG_ZERO"])
}

func TestAssembler_Instructions(t *testing.T) {
	assert := assert.New(t)

	source := `
movi r0 5         ; first
MOVI r1, 0x3
add r0 r1
halt
`
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(source))
	assert.NoError(err)

	expected := []Opcode{
		{LineNo: 2, Addr: 0, Words: []string{"movi", "r0", "5"}, Bytes: []byte{0x02, 0x00, 0x05, 0x00}},
		{LineNo: 3, Addr: 4, Words: []string{"MOVI", "r1", "0x3"}, Bytes: []byte{0x02, 0x01, 0x03, 0x00}},
		{LineNo: 4, Addr: 8, Words: []string{"add", "r0", "r1"}, Bytes: []byte{0x04, 0x00, 0x01}},
		{LineNo: 5, Addr: 11, Words: []string{"halt"}, Bytes: []byte{0x01}},
	}
	assert.Equal(expected, prog.Opcodes)

	assert.Equal([]byte{
		byte(OP_MOVI), 0, 0x05, 0x00,
		byte(OP_MOVI), 1, 0x03, 0x00,
		byte(OP_ADD), 0, 1,
		byte(OP_HALT),
	}, prog.Binary())
}

func TestAssembler_AllOps(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		source string
		inst   Instruction
	}{
		{"nop", MakeOp(OP_NOP)},
		{"halt", MakeOp(OP_HALT)},
		{"movi r5 0xbeef", MakeMovi(REG_R5, 0xbeef)},
		{"movi fl -1", MakeMovi(REG_FL, 0xffff)},
		{"movi r0 ~0x00ff", MakeMovi(REG_R0, 0xff00)},
		{"mov r1 pc", MakeRegReg(OP_MOV, REG_R1, REG_PC)},
		{"add r2 r3", MakeRegReg(OP_ADD, REG_R2, REG_R3)},
		{"sub r4 r5", MakeRegReg(OP_SUB, REG_R4, REG_R5)},
		{"cmp r0 fl", MakeRegReg(OP_CMP, REG_R0, REG_FL)},
		{"jmp 0x1234", MakeJump(OP_JMP, 0x1234)},
		{"jz 10", MakeJump(OP_JZ, 10)},
		{"jnz 0", MakeJump(OP_JNZ, 0)},
		{"out 0x0100 r2", MakeOut(0x0100, REG_R2)},
		{"load r3 0x8000", MakeMem(OP_LOAD, REG_R3, 0x8000)},
		{"store r4, 0x00ff", MakeMem(OP_STORE, REG_R4, 0x00ff)},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := asm.Parse(strings.NewReader(entry.source))
		if !assert.NoError(err, entry.source) {
			continue
		}
		assert.Equal(entry.inst.Encode(), prog.Binary(), entry.source)
	}
}

func TestAssembler_Labels(t *testing.T) {
	assert := assert.New(t)

	source := `
        movi r0 0
        movi r1 1
        movi r2 3
loop:   add r0 r1
        cmp r0 r2
        jnz loop
        jmp done
done:   halt
`
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(source))
	assert.NoError(err)

	assert.Equal(12, asm.Label["loop"])
	assert.Equal(24, asm.Label["done"])

	assert.Equal(encode(
		MakeMovi(REG_R0, 0),
		MakeMovi(REG_R1, 1),
		MakeMovi(REG_R2, 3),
		MakeRegReg(OP_ADD, REG_R0, REG_R1),
		MakeRegReg(OP_CMP, REG_R0, REG_R2),
		MakeJump(OP_JNZ, 12),
		MakeJump(OP_JMP, 24),
		MakeOp(OP_HALT),
	), prog.Binary())

	assert.Equal([]Link{{Label: "done", Offset: 1}}, prog.Opcodes[6].Links)

	mem := memory.NewMemory(0)
	assert.NoError(mem.Load(prog.Binary()))
	cpu := NewCpu(mem)
	run(cpu, 100)
	assert.True(cpu.Halted)
	assert.Equal(uint16(3), cpu.Register[REG_R0])
	assert.True(cpu.Zero())
}

func TestAssembler_Equate(t *testing.T) {
	assert := assert.New(t)

	source := `.equ BASE 0x10
.equ PORT $(BASE * 16)
movi r0 $(BASE + 2)
out PORT r0
movi r1 'A'
movi r2 LINENO
movi r3 $(REG_COUNT - 1)
movi r4 MEMORY_SIZE
movi r5 '\n'
`
	asm := &Assembler{}
	asm.Predefine("MEMORY_SIZE", "256")

	prog, err := asm.Parse(strings.NewReader(source))
	assert.NoError(err)

	assert.Equal(encode(
		MakeMovi(REG_R0, 0x12),
		MakeOut(0x0100, REG_R0),
		MakeMovi(REG_R1, 'A'),
		MakeMovi(REG_R2, 6),
		MakeMovi(REG_R3, 7),
		MakeMovi(REG_R4, 256),
		MakeMovi(REG_R5, '\n'),
	), prog.Binary())
}

func TestAssembler_Macro(t *testing.T) {
	assert := assert.New(t)

	source := `.macro COUNTDOWN rn start
movi rn start
movi r5 1
@loop: sub rn r5
jnz @loop
.endm
COUNTDOWN r0 3
COUNTDOWN r1 2
halt
`
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(source))
	assert.NoError(err)

	assert.Equal(8, asm.Label["COUNTDOWN_1_loop"])
	assert.Equal(22, asm.Label["COUNTDOWN_2_loop"])

	assert.Equal(encode(
		MakeMovi(REG_R0, 3),
		MakeMovi(REG_R5, 1),
		MakeRegReg(OP_SUB, REG_R0, REG_R5),
		MakeJump(OP_JNZ, 8),
		MakeMovi(REG_R1, 2),
		MakeMovi(REG_R5, 1),
		MakeRegReg(OP_SUB, REG_R1, REG_R5),
		MakeJump(OP_JNZ, 22),
		MakeOp(OP_HALT),
	), prog.Binary())

	// Expanded lines report the line of the macro body.
	assert.Equal(4, prog.Debug(8).LineNo)
	assert.Equal(4, prog.Debug(22).LineNo)
	assert.Equal(9, prog.Debug(28).LineNo)

	mem := memory.NewMemory(0)
	assert.NoError(mem.Load(prog.Binary()))
	cpu := NewCpu(mem)
	run(cpu, 100)
	assert.True(cpu.Halted)
	assert.Equal(uint16(0), cpu.Register[REG_R0])
	assert.Equal(uint16(0), cpu.Register[REG_R1])
	assert.Equal(2+3*2+2+2*2+1, cpu.Ticks)
}

func TestAssembler_Data(t *testing.T) {
	assert := assert.New(t)

	source := `
.org 4
.byte 1 2 0xff -1
.word 0x1234 here
here: .byte 'x'
`
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(source))
	assert.NoError(err)

	assert.Equal(13, prog.Size())
	assert.Equal([]byte{
		0, 0, 0, 0,
		1, 2, 0xff, 0xff,
		0x34, 0x12, 0x0c, 0x00,
		'x',
	}, prog.Binary())
}

func TestAssembler_Errors(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		name   string
		source string
		lineno int
		err    error
	}{
		{"instruction", "bogus r0", 1, ErrInstructionInvalid},
		{"register", "movi r9 1", 1, ErrRegisterInvalid},
		{"missing", "movi r0", 1, ErrOpcodeValueMissing},
		{"extra", "halt r0", 1, ErrOpcodeExtraArgs},
		{"extra_regs", "add r0 r1 r2", 1, ErrOpcodeExtraArgs},
		{"label_missing", "nop\njmp nowhere", 2, ErrLabelMissing("nowhere")},
		{"label_duplicate", "a: nop\na: nop", 2, ErrLabelDuplicate},
		{"label_invalid", "9a: nop", 1, ErrLabelInvalid},
		{"equ_duplicate", ".equ X 1\n.equ X 2", 2, ErrEquateDuplicate},
		{"equ_syntax", ".equ X", 1, ErrEquateSyntax},
		{"macro_lonely", ".macro M\nnop", 2, ErrMacroLonely},
		{"macro_endm", "nop\n.endm", 2, ErrMacroLonelyEndm},
		{"macro_nesting", ".macro M\n.macro N", 2, ErrMacroNesting},
		{"macro_duplicate", ".macro M\n.endm\n.macro M\n.endm", 3, ErrMacroDuplicate},
		{"macro_syntax", ".macro M a\n.endm\nM", 3, ErrMacroSyntax},
		{"macro_recursion", ".macro LOOP\nLOOP\n.endm\nLOOP", 4, ErrMacroRecursion},
		{"macro_mutual", ".macro A\nB\n.endm\n.macro B\nA\n.endm\nnop\nA", 8, ErrMacroRecursion},
		{"org_backwards", ".org 8\n.org 4", 2, ErrAddressRange},
		{"label_range", ".org 0xfffd\njmp end\nend:", 2, ErrAddressRange},
		{"word_label_range", ".org 0xfffe\n.word end\nend:", 2, ErrAddressRange},
		{"org_syntax", ".org", 1, ErrOrgSyntax},
		{"overflow", ".org 0xffff\nmovi r0 1", 2, ErrAddressRange},
		{"byte_range", ".byte 0x100", 1, ErrParseRange("0x100")},
		{"word_range", "movi r0 0x10000", 1, ErrParseRange("0x10000")},
		{"number", "movi r0 12z", 1, ErrParseNumber("12z")},
		{"byte_missing", ".byte", 1, ErrOpcodeValueMissing},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(entry.source))
		if !assert.Error(err, entry.name) {
			continue
		}
		assert.ErrorIs(err, entry.err, entry.name)

		var syntax *ErrSyntax
		if assert.ErrorAs(err, &syntax, entry.name) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
		}
	}
}

func TestAssembler_ErrorExpression(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader("nop\nmovi r0 $(1 +)"))
	assert.Error(err)

	var syntax *ErrSyntax
	assert.ErrorAs(err, &syntax)
	assert.Equal(2, syntax.LineNo)
}

func TestAssembler_ErrorMacro(t *testing.T) {
	assert := assert.New(t)

	source := `.macro BAD
nop
movi r5 1
movi rx 1
.endm
BAD
`
	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader(source))
	assert.ErrorIs(err, ErrRegisterInvalid)

	var macro *ErrMacro
	if assert.ErrorAs(err, &macro) {
		assert.Equal("BAD", macro.Macro)
		assert.Equal(4, macro.Line)
	}
}
