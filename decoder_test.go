package dos86

import "testing"

func assemble(mem *Memory, seg, off uint16, bytes ...byte) {
	mmu := NewMMU(mem)
	mmu.WriteBlock(seg, off, bytes)
}

func TestDecodeMovRegImm(t *testing.T) {
	mem := NewMemory()
	assemble(mem, 0, 0x100, 0xB8, 0x34, 0x12) // MOV AX, 0x1234
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0x100)
	if ins.Op != OpMOV {
		t.Fatalf("expected OpMOV, got %v", ins.Op)
	}
	if n != 3 {
		t.Fatalf("expected length 3, got %d", n)
	}
	if ins.Dst.Kind != OperKindReg16 || ins.Dst.Reg16 != RegAX {
		t.Fatalf("expected dst AX, got %+v", ins.Dst)
	}
	if ins.Src.Imm != 0x1234 {
		t.Fatalf("expected imm 0x1234, got %#x", ins.Src.Imm)
	}
}

func TestDecodeAddModRM(t *testing.T) {
	mem := NewMemory()
	// ADD AX, [BX+SI]  -> 03 00
	assemble(mem, 0, 0x200, 0x03, 0x00)
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0x200)
	if ins.Op != OpADD || n != 2 {
		t.Fatalf("got op=%v n=%d", ins.Op, n)
	}
	if ins.Src.Kind != OperKindMem || ins.Src.Amode != AmodeBxSi {
		t.Fatalf("expected mem [BX+SI] src, got %+v", ins.Src)
	}
}

func TestDecodeSegmentOverridePrefix(t *testing.T) {
	mem := NewMemory()
	// MOV AL, ES:[BX+SI] -> 26 8A 00
	assemble(mem, 0, 0x300, 0x26, 0x8A, 0x00)
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0x300)
	if !ins.HasSegOverride || ins.SegOverride != SegES {
		t.Fatalf("expected ES override, got %+v", ins)
	}
	if n != 3 {
		t.Fatalf("expected length 3, got %d", n)
	}
}

func TestDecodeShortJump(t *testing.T) {
	mem := NewMemory()
	// JMP short +2 -> EB 02
	assemble(mem, 0, 0x400, 0xEB, 0x02)
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0x400)
	if ins.Op != OpJMP || n != 2 {
		t.Fatalf("got op=%v n=%d", ins.Op, n)
	}
	want := uint16(0x400 + 2 + 2)
	if ins.Dst.RelTarget != want {
		t.Fatalf("expected target %#x, got %#x", want, ins.Dst.RelTarget)
	}
}

func TestDecodeUnknownOpcodeDegradesToInvalid(t *testing.T) {
	mem := NewMemory()
	assemble(mem, 0, 0x500, 0x0F, 0xFF) // not a recognized 0F opcode -> OpInvalid, length covers both opcode bytes
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0x500)
	if n != 2 {
		t.Fatalf("expected length 2, got %d", n)
	}
	if ins.Op != OpInvalid {
		t.Fatalf("Op = %v, want OpInvalid", ins.Op)
	}
}

func TestDecodeInt21(t *testing.T) {
	mem := NewMemory()
	assemble(mem, 0, 0x600, 0xCD, 0x21)
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0x600)
	if ins.Op != OpINT || n != 2 || ins.Dst.Imm != 0x21 {
		t.Fatalf("got %+v n=%d", ins, n)
	}
}

func TestDecodePushaPopa(t *testing.T) {
	mem := NewMemory()
	assemble(mem, 0, 0x700, 0x60, 0x61)
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0x700)
	if ins.Op != OpPUSHA || n != 1 {
		t.Fatalf("got op=%v n=%d", ins.Op, n)
	}
	ins, n = Decode(mmu, 0, 0x701)
	if ins.Op != OpPOPA || n != 1 {
		t.Fatalf("got op=%v n=%d", ins.Op, n)
	}
}

func TestDecodeLesLoadsRegAndMem(t *testing.T) {
	mem := NewMemory()
	// LES AX, [BX+SI] -> C4 00
	assemble(mem, 0, 0x800, 0xC4, 0x00)
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0x800)
	if ins.Op != OpLES || n != 2 {
		t.Fatalf("got op=%v n=%d", ins.Op, n)
	}
	if ins.Dst.Kind != OperKindReg16 || ins.Dst.Reg16 != RegAX {
		t.Fatalf("expected dst AX, got %+v", ins.Dst)
	}
	if ins.Src.Kind != OperKindMem || ins.Src.Amode != AmodeBxSi {
		t.Fatalf("expected mem [BX+SI] src, got %+v", ins.Src)
	}
}

func TestDecodeXlatb(t *testing.T) {
	mem := NewMemory()
	assemble(mem, 0, 0x900, 0xD7)
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0x900)
	if ins.Op != OpXLATB || n != 1 {
		t.Fatalf("got op=%v n=%d", ins.Op, n)
	}
}

func TestDecodeImulImmediateThreeOperand(t *testing.T) {
	mem := NewMemory()
	// IMUL CX, AX, 0x05 -> 6B C8 05
	assemble(mem, 0, 0xA00, 0x6B, 0xC8, 0x05)
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0xA00)
	if ins.Op != OpIMUL || n != 3 {
		t.Fatalf("got op=%v n=%d", ins.Op, n)
	}
	if ins.Dst.Reg16 != RegCX || ins.Src.Reg16 != RegAX {
		t.Fatalf("expected dst CX, src AX, got %+v", ins)
	}
	if ins.Src2.Kind != OperKindImm || ins.Src2.Imm != 5 {
		t.Fatalf("expected src2 imm 5, got %+v", ins.Src2)
	}
}

// TestDecodeShldThroughRealBytes proves SHLD is reachable via Decode from
// an actual 0x0F 0xA4 byte sequence, not only via hand-built Instruction
// literals.
func TestDecodeShldThroughRealBytes(t *testing.T) {
	mem := NewMemory()
	// SHLD AX, BX, 4 -> 0F A4 D8 04
	assemble(mem, 0, 0xB00, 0x0F, 0xA4, 0xD8, 0x04)
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0xB00)
	if ins.Op != OpSHLD || n != 4 {
		t.Fatalf("got op=%v n=%d", ins.Op, n)
	}
	if ins.Dst.Reg16 != RegAX || ins.Src.Reg16 != RegBX {
		t.Fatalf("expected dst AX, src BX, got %+v", ins)
	}
	if ins.Src2.Kind != OperKindImm || ins.Src2.Imm != 4 {
		t.Fatalf("expected src2 imm 4, got %+v", ins.Src2)
	}
}

func TestDecodeShrdWithClCount(t *testing.T) {
	mem := NewMemory()
	// SHRD AX, BX, CL -> 0F AD D8
	assemble(mem, 0, 0xC00, 0x0F, 0xAD, 0xD8)
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0xC00)
	if ins.Op != OpSHRD || n != 3 {
		t.Fatalf("got op=%v n=%d", ins.Op, n)
	}
	if ins.Src2.Kind != OperKindReg8 || ins.Src2.Reg8 != RegCL {
		t.Fatalf("expected src2 CL, got %+v", ins.Src2)
	}
}

func TestDecodeSetccUsesJccConditionOrder(t *testing.T) {
	mem := NewMemory()
	// SETE AL -> 0F 94 C0
	assemble(mem, 0, 0xD00, 0x0F, 0x94, 0xC0)
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0xD00)
	if ins.Op != OpSETCC || n != 3 {
		t.Fatalf("got op=%v n=%d", ins.Op, n)
	}
	if ins.Cond != CondE {
		t.Fatalf("expected CondE, got %v", ins.Cond)
	}
	if ins.Dst.Kind != OperKindReg8 || ins.Dst.Reg8 != RegAL {
		t.Fatalf("expected dst AL, got %+v", ins.Dst)
	}
}

func TestDecodeMovzxByteToWord(t *testing.T) {
	mem := NewMemory()
	// MOVZX AX, BL -> 0F B6 C3
	assemble(mem, 0, 0xE00, 0x0F, 0xB6, 0xC3)
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0xE00)
	if ins.Op != OpMOVZX || n != 3 {
		t.Fatalf("got op=%v n=%d", ins.Op, n)
	}
	if ins.Dst.Reg16 != RegAX || ins.Src.Kind != OperKindReg8 || ins.Src.Reg8 != RegBL {
		t.Fatalf("expected dst AX, src BL, got %+v", ins)
	}
}

func TestDecodeInsbOutsb(t *testing.T) {
	mem := NewMemory()
	assemble(mem, 0, 0xF00, 0x6C, 0x6E)
	mmu := NewMMU(mem)
	ins, n := Decode(mmu, 0, 0xF00)
	if ins.Op != OpINSB || n != 1 {
		t.Fatalf("got op=%v n=%d", ins.Op, n)
	}
	ins, n = Decode(mmu, 0, 0xF01)
	if ins.Op != OpOUTSB || n != 1 {
		t.Fatalf("got op=%v n=%d", ins.Op, n)
	}
}
