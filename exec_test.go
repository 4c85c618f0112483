package dos86

import "testing"

func newTestCPU() *CPU {
	mem := NewMemory()
	mmu := NewMMU(mem)
	return NewCPU(mmu, nil, nil)
}

func TestExecAddSetsFlags(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetAL(0x7F)
	ins := Instruction{Op: OpADD, Dst: Operand{Kind: OperKindReg8, Reg8: RegAL}, Src: Operand{Kind: OperKindImm, Imm: 1}}
	c.execute(&ins)
	if c.Regs.AL() != 0x80 {
		t.Fatalf("AL = %#02x, want 0x80", c.Regs.AL())
	}
	if !c.Regs.OF() {
		t.Fatal("expected OF set on 0x7F+1 signed overflow")
	}
	if !c.Regs.SF() {
		t.Fatal("expected SF set, result 0x80 has bit 7 set")
	}
}

func TestExecCmpDoesNotWriteDst(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetAX(0x0005)
	ins := Instruction{Op: OpCMP, Dst: Operand{Kind: OperKindReg16, Reg16: RegAX}, Src: Operand{Kind: OperKindImm, Imm: 5}}
	c.execute(&ins)
	if c.Regs.AX() != 0x0005 {
		t.Fatalf("CMP must not modify its destination, AX = %#04x", c.Regs.AX())
	}
	if !c.Regs.ZF() {
		t.Fatal("expected ZF set, 5-5=0")
	}
}

func TestExecIncPreservesCarryFlag(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetFlag(FlagCF, true)
	c.Regs.SetAX(0xFFFF)
	ins := Instruction{Op: OpINC, Dst: Operand{Kind: OperKindReg16, Reg16: RegAX}}
	c.execute(&ins)
	if c.Regs.AX() != 0x0000 {
		t.Fatalf("AX = %#04x, want 0 after INC 0xFFFF", c.Regs.AX())
	}
	if !c.Regs.CF() {
		t.Fatal("INC must not clear a pre-existing CF")
	}
	if !c.Regs.ZF() {
		t.Fatal("expected ZF set after wraparound to zero")
	}
}

func TestExecMovMemoryOperand(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetDS(0x1000)
	c.Regs.SetAL(0x42)
	dst := Operand{Kind: OperKindAbs, Imm: 0x0200}
	ins := Instruction{Op: OpMOV, Dst: dst, Src: Operand{Kind: OperKindReg8, Reg8: RegAL}}
	c.execute(&ins)
	if got := c.MMU.ReadByte(0x1000, 0x0200); got != 0x42 {
		t.Fatalf("memory at DS:0200 = %#02x, want 0x42", got)
	}
}

func TestExecXchgSwapsRegisters(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetAX(0x1111)
	c.Regs.SetBX(0x2222)
	ins := Instruction{Op: OpXCHG, Dst: Operand{Kind: OperKindReg16, Reg16: RegAX}, Src: Operand{Kind: OperKindReg16, Reg16: RegBX}}
	c.execute(&ins)
	if c.Regs.AX() != 0x2222 || c.Regs.BX() != 0x1111 {
		t.Fatalf("AX/BX = %#04x/%#04x after XCHG, want 2222/1111", c.Regs.AX(), c.Regs.BX())
	}
}

func TestExecDivByZeroSetsFatal(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetAX(0x0064)
	c.Regs.SetDX(0)
	ins := Instruction{Op: OpDIV, Dst: Operand{Kind: OperKindReg16, Reg16: RegCX}}
	c.Regs.SetCX(0)
	c.execute(&ins)
	if !c.Halted {
		t.Fatal("expected Halted after division by zero")
	}
	if c.Fatal == nil {
		t.Fatal("expected Fatal set after division by zero")
	}
}

func TestExecDivUnsigned16(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetDX(0)
	c.Regs.SetAX(100)
	c.Regs.SetCX(7)
	ins := Instruction{Op: OpDIV, Dst: Operand{Kind: OperKindReg16, Reg16: RegCX}}
	c.execute(&ins)
	if c.Regs.AX() != 14 {
		t.Fatalf("quotient AX = %d, want 14", c.Regs.AX())
	}
	if c.Regs.DX() != 2 {
		t.Fatalf("remainder DX = %d, want 2", c.Regs.DX())
	}
}

func TestExecMulSetsCarryOnOverflow(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetAL(200)
	c.Regs.SetBL(200)
	ins := Instruction{Op: OpMUL, Dst: Operand{Kind: OperKindReg8, Reg8: RegBL}}
	c.execute(&ins)
	if c.Regs.AX() != 200*200 {
		t.Fatalf("AX = %d, want %d", c.Regs.AX(), 200*200)
	}
	if !c.Regs.CF() || !c.Regs.OF() {
		t.Fatal("expected CF/OF set, result overflows AL")
	}
}

func TestExecNegSetsCarryUnlessZero(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetAL(5)
	ins := Instruction{Op: OpNEG, Dst: Operand{Kind: OperKindReg8, Reg8: RegAL}}
	c.execute(&ins)
	if c.Regs.AL() != 0xFB {
		t.Fatalf("AL = %#02x, want 0xFB (-5)", c.Regs.AL())
	}
	if !c.Regs.CF() {
		t.Fatal("expected CF set, NEG of a nonzero operand always sets CF")
	}

	c.Regs.SetAL(0)
	c.execute(&ins)
	if c.Regs.CF() {
		t.Fatal("expected CF clear, NEG of zero leaves CF clear")
	}
}

func TestExecLeaComputesAddressNotValue(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetBX(0x0010)
	c.Regs.SetSI(0x0004)
	c.MMU.WriteByte(c.Regs.DS(), 0x0014, 0xAA) // unrelated value at the target address
	ins := Instruction{
		Op:  OpLEA,
		Dst: Operand{Kind: OperKindReg16, Reg16: RegAX},
		Src: Operand{Kind: OperKindMem, Amode: AmodeBxSi},
	}
	c.execute(&ins)
	if c.Regs.AX() != 0x0014 {
		t.Fatalf("AX = %#04x after LEA, want 0x0014 (the address, not the 0xAA byte there)", c.Regs.AX())
	}
}

func TestExecCbwSignExtends(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetAL(0xFF) // -1 as int8
	c.execute(&Instruction{Op: OpCBW})
	if c.Regs.AX() != 0xFFFF {
		t.Fatalf("AX = %#04x after CBW of -1, want 0xFFFF", c.Regs.AX())
	}

	c.Regs.SetAL(0x7F) // +127
	c.execute(&Instruction{Op: OpCBW})
	if c.Regs.AX() != 0x007F {
		t.Fatalf("AX = %#04x after CBW of 127, want 0x007F", c.Regs.AX())
	}
}

func TestExecFlagBitInstructions(t *testing.T) {
	c := newTestCPU()
	c.execute(&Instruction{Op: OpSTC})
	if !c.Regs.CF() {
		t.Fatal("expected CF set after STC")
	}
	c.execute(&Instruction{Op: OpCMC})
	if c.Regs.CF() {
		t.Fatal("expected CF cleared after CMC following STC")
	}
	c.execute(&Instruction{Op: OpCLC})
	if c.Regs.CF() {
		t.Fatal("expected CF clear after CLC")
	}
}

func TestExecHltSetsHalted(t *testing.T) {
	c := newTestCPU()
	c.execute(&Instruction{Op: OpHLT})
	if !c.Halted {
		t.Fatal("expected Halted set after HLT")
	}
}

func TestExecInvalidOpcodeSetsFatal(t *testing.T) {
	c := newTestCPU()
	c.execute(&Instruction{Op: OpInvalid})
	if !c.Halted {
		t.Fatal("expected Halted set after an invalid opcode")
	}
	if c.Fatal == nil {
		t.Fatal("expected Fatal set after an invalid opcode")
	}
}
