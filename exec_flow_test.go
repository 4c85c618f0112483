package dos86

import "testing"

func TestEvalCondCoversSignedAndUnsignedComparisons(t *testing.T) {
	var r Registers
	r.SetFlag(FlagZF, true)
	if !evalCond(&r, CondE) {
		t.Fatal("CondE should be true when ZF set")
	}
	if evalCond(&r, CondNE) {
		t.Fatal("CondNE should be false when ZF set")
	}

	r = Registers{}
	r.SetFlag(FlagSF, true)
	r.SetFlag(FlagOF, false)
	if !evalCond(&r, CondL) {
		t.Fatal("CondL should be true when SF != OF")
	}
	if evalCond(&r, CondNL) {
		t.Fatal("CondNL should be false when SF != OF")
	}
}

func TestExecJccTakesBranchWhenConditionHolds(t *testing.T) {
	c := newTestCPU()
	c.Regs.IP = 0x0100
	c.Regs.SetFlag(FlagZF, true)
	ins := Instruction{Op: OpJCC, Cond: CondE, Dst: Operand{Kind: OperKindRel, RelTarget: 0x0200}}
	c.execute(&ins)
	if c.Regs.IP != 0x0200 {
		t.Fatalf("IP = %#04x, want 0x0200 (branch taken)", c.Regs.IP)
	}
}

func TestExecJccFallsThroughWhenConditionFails(t *testing.T) {
	c := newTestCPU()
	c.Regs.IP = 0x0100
	c.Regs.SetFlag(FlagZF, false)
	ins := Instruction{Op: OpJCC, Cond: CondE, Dst: Operand{Kind: OperKindRel, RelTarget: 0x0200}}
	c.execute(&ins)
	if c.Regs.IP != 0x0100 {
		t.Fatalf("IP = %#04x, want unchanged 0x0100 (branch not taken)", c.Regs.IP)
	}
}

func TestExecLoopDecrementsCXAndBranchesUntilZero(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetCX(2)
	ins := Instruction{Op: OpLOOP, Dst: Operand{Kind: OperKindRel, RelTarget: 0x0050}}

	c.Regs.IP = 0x0010
	c.execute(&ins)
	if c.Regs.CX() != 1 || c.Regs.IP != 0x0050 {
		t.Fatalf("after first LOOP: CX=%d IP=%#04x, want CX=1 IP=0x0050", c.Regs.CX(), c.Regs.IP)
	}

	c.Regs.IP = 0x0010
	c.execute(&ins)
	if c.Regs.CX() != 0 || c.Regs.IP != 0x0010 {
		t.Fatalf("after second LOOP: CX=%d IP=%#04x, want CX=0 IP unchanged (loop exhausted)", c.Regs.CX(), c.Regs.IP)
	}
}

func TestExecJcxzBranchesOnlyWhenCXZero(t *testing.T) {
	c := newTestCPU()
	ins := Instruction{Op: OpJCXZ, Dst: Operand{Kind: OperKindRel, RelTarget: 0x0300}}

	c.Regs.SetCX(1)
	c.Regs.IP = 0x0020
	c.execute(&ins)
	if c.Regs.IP != 0x0020 {
		t.Fatalf("IP = %#04x, want unchanged (CX != 0)", c.Regs.IP)
	}

	c.Regs.SetCX(0)
	c.execute(&ins)
	if c.Regs.IP != 0x0300 {
		t.Fatalf("IP = %#04x, want 0x0300 (CX == 0)", c.Regs.IP)
	}
}

func TestExecCallPushesReturnAddressAndJumps(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetSS(0x4000)
	c.Regs.SetSP(0x0100)
	c.Regs.IP = 0x0050
	ins := Instruction{Op: OpCALL, Dst: Operand{Kind: OperKindRel, RelTarget: 0x1000}}
	c.execute(&ins)
	if c.Regs.IP != 0x1000 {
		t.Fatalf("IP = %#04x, want 0x1000", c.Regs.IP)
	}
	if c.Regs.SP() != 0x00FE {
		t.Fatalf("SP = %#04x, want 0x00FE after one push", c.Regs.SP())
	}
	if ret := c.MMU.ReadWord(0x4000, 0x00FE); ret != 0x0050 {
		t.Fatalf("pushed return IP = %#04x, want 0x0050", ret)
	}
}

func TestExecRetPopsReturnAddressAndAdjustsSPForImm(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetSS(0x4000)
	c.Regs.SetSP(0x0100)
	c.push16(0x1234)
	ins := Instruction{Op: OpRET, Dst: Operand{Kind: OperKindImm, Imm: 4}}
	c.execute(&ins)
	if c.Regs.IP != 0x1234 {
		t.Fatalf("IP = %#04x, want 0x1234", c.Regs.IP)
	}
	if c.Regs.SP() != 0x0104 {
		t.Fatalf("SP = %#04x, want 0x0104 (popped word + imm16 operand)", c.Regs.SP())
	}
}

func TestExecCallfPushesCSAndIPThenFarJumps(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetSS(0x5000)
	c.Regs.SetSP(0x0100)
	c.Regs.SetCS(0x2000)
	c.Regs.IP = 0x0010
	ins := Instruction{
		Op:  OpCALLF,
		Dst: Operand{Kind: OperKindRel, RelTarget: 0x3000, FarSeg: 0x9000},
	}
	c.execute(&ins)
	if c.Regs.CS() != 0x9000 || c.Regs.IP != 0x3000 {
		t.Fatalf("CS:IP = %04X:%04X, want 9000:3000", c.Regs.CS(), c.Regs.IP)
	}
	if cs := c.MMU.ReadWord(0x5000, 0x00FE); cs != 0x2000 {
		t.Fatalf("pushed CS = %#04x, want 0x2000", cs)
	}
	if ip := c.MMU.ReadWord(0x5000, 0x00FC); ip != 0x0010 {
		t.Fatalf("pushed IP = %#04x, want 0x0010", ip)
	}
}

func TestIntWithoutServicesPerformsRealVectorDispatch(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetSS(0x6000)
	c.Regs.SetSP(0x0100)
	c.Regs.SetCS(0x1234)
	c.Regs.IP = 0x0010
	c.Regs.SetFlag(FlagIF, true)
	c.MMU.WriteWord(0, 0x21*4, 0x0050)   // IVT offset for INT 21h
	c.MMU.WriteWord(0, 0x21*4+2, 0x0700) // IVT segment

	c.Int(0x21)

	if c.Regs.CS() != 0x0700 || c.Regs.IP != 0x0050 {
		t.Fatalf("CS:IP = %04X:%04X, want 0700:0050", c.Regs.CS(), c.Regs.IP)
	}
	if c.Regs.IF() {
		t.Fatal("expected IF cleared by the interrupt-gate sequence")
	}
}

func TestIntWithServicesHandlerSkipsRealVectorDispatch(t *testing.T) {
	c := newTestCPU()
	c.Services = fakeServices{claim: true}
	c.Regs.SetCS(0x1234)
	c.Regs.IP = 0x0010
	c.Int(0x21)
	// a claimed vector must not touch CS:IP via the IVT path
	if c.Regs.CS() != 0x1234 || c.Regs.IP != 0x0010 {
		t.Fatalf("CS:IP = %04X:%04X, want unchanged 1234:0010 (handler claimed the vector)", c.Regs.CS(), c.Regs.IP)
	}
}

type fakeServices struct{ claim bool }

func (f fakeServices) Handle(c *CPU, vector byte) bool { return f.claim }
