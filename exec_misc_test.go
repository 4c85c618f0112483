package dos86

import "testing"

type fakePortBus struct {
	in8  map[uint16]byte
	out8 map[uint16]byte
}

func newFakePortBus() *fakePortBus {
	return &fakePortBus{in8: map[uint16]byte{}, out8: map[uint16]byte{}}
}
func (p *fakePortBus) In8(port uint16) byte        { return p.in8[port] }
func (p *fakePortBus) In16(port uint16) uint16      { return uint16(p.in8[port]) }
func (p *fakePortBus) Out8(port uint16, v byte)     { p.out8[port] = v }
func (p *fakePortBus) Out16(port uint16, v uint16)  { p.out8[port] = byte(v) }

func TestExecInReadsFromPortBus(t *testing.T) {
	mem := NewMemory()
	mmu := NewMMU(mem)
	bus := newFakePortBus()
	bus.in8[0x60] = 0x42
	c := NewCPU(mmu, bus, nil)

	c.Regs.SetDX(0x60)
	ins := Instruction{
		Op:  OpIN,
		Dst: Operand{Kind: OperKindReg8, Reg8: RegAL},
		Src: Operand{Kind: OperKindReg16, Reg16: RegDX},
	}
	c.execute(&ins)
	if c.Regs.AL() != 0x42 {
		t.Fatalf("AL = %#02x, want 0x42", c.Regs.AL())
	}
}

func TestExecOutWritesToPortBus(t *testing.T) {
	mem := NewMemory()
	mmu := NewMMU(mem)
	bus := newFakePortBus()
	c := NewCPU(mmu, bus, nil)

	c.Regs.SetDX(0x3D4)
	c.Regs.SetAL(0x0C)
	ins := Instruction{
		Op:  OpOUT,
		Dst: Operand{Kind: OperKindReg16, Reg16: RegDX},
		Src: Operand{Kind: OperKindReg8, Reg8: RegAL},
	}
	c.execute(&ins)
	if bus.out8[0x3D4] != 0x0C {
		t.Fatalf("port 0x3D4 = %#02x, want 0x0C", bus.out8[0x3D4])
	}
}

func TestExecDaaAdjustsAfterBCDAddition(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetAL(0x0F + 0x0B) // 0x1A: low nibble 0xA is above 9, so DAA adjusts it
	ins := Instruction{Op: OpDAA}
	c.execute(&ins)
	if c.Regs.AL() != 0x20 {
		t.Fatalf("AL = %#02x, want 0x20", c.Regs.AL())
	}
	if !c.Regs.AF() {
		t.Fatal("expected AF set after a low-nibble BCD adjustment")
	}
}

func TestExecAaaAdjustsAndClearsHighNibble(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetAX(0x000A) // AL=0x0A needs adjustment
	ins := Instruction{Op: OpAAA}
	c.execute(&ins)
	if c.Regs.AL() != 0x00 {
		t.Fatalf("AL = %#02x, want 0x00 (0x0A+6=0x10, low nibble masked)", c.Regs.AL())
	}
	if c.Regs.AH() != 1 {
		t.Fatalf("AH = %d, want 1 (carried into AH)", c.Regs.AH())
	}
	if !c.Regs.CF() || !c.Regs.AF() {
		t.Fatal("expected CF and AF set after AAA adjustment")
	}
}

func TestExecAasAdjustsDownward(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetAX(0x010F) // AL low nibble > 9
	ins := Instruction{Op: OpAAS}
	c.execute(&ins)
	if c.Regs.AL() != 0x09 {
		t.Fatalf("AL = %#02x, want 0x09 (0x0F-6=0x09)", c.Regs.AL())
	}
	if c.Regs.AH() != 0 {
		t.Fatalf("AH = %d, want 0 (decremented from 1)", c.Regs.AH())
	}
	if !c.Regs.CF() || !c.Regs.AF() {
		t.Fatal("expected CF and AF set after AAS adjustment")
	}
}

func TestExecDaaNoAdjustmentNeeded(t *testing.T) {
	c := newTestCPU()
	c.Regs.SetAL(0x35)
	c.Regs.SetFlag(FlagCF, false)
	c.Regs.SetFlag(FlagAF, false)
	ins := Instruction{Op: OpDAA}
	c.execute(&ins)
	if c.Regs.AL() != 0x35 {
		t.Fatalf("AL = %#02x, want unchanged 0x35", c.Regs.AL())
	}
	if c.Regs.CF() || c.Regs.AF() {
		t.Fatal("expected CF and AF clear when no BCD digit exceeds 9")
	}
}
