// decoder_modrm.go - ModR/M decoding for 16-bit addressing.
//
// Grounded on cpu_x86.go's fetchModRM/getModRMReg/RM/Mod and
// calcEffectiveAddress16: the mod/reg/rm split and the eight-entry
// 16-bit addressing-mode table are the same; what's new is that this
// decodes into the Amode/Operand IR instead of immediately computing a
// linear address, so the same decode can serve both the execution engine
// and the tracer (spec.md §4.3).

package dos86

// modrm16Table maps a ModR/M rm field (0-7) to its base addressing mode
// when mod != 3, per cpu_x86.go's calcEffectiveAddress16 switch.
var modrm16Table = [8]Amode{
	AmodeBxSi, AmodeBxDi, AmodeBpSi, AmodeBpDi,
	AmodeSi, AmodeDi, AmodeBp, AmodeBx,
}

// modRM holds one decoded ModR/M (+ optional displacement) byte group.
type modRM struct {
	mod byte
	reg byte // the /reg field - either a register operand or an opcode extension
	rm  byte

	isMem bool
	oper  Operand // the decoded memory operand; set only when isMem
}

// decodeCursor walks a byte stream starting at seg:off, tracking how many
// bytes have been consumed so Instruction.Len can be filled in afterward.
type decodeCursor struct {
	mmu *MMU
	seg uint16
	off uint16
	n   int
}

func newCursor(mmu *MMU, seg, off uint16) *decodeCursor {
	return &decodeCursor{mmu: mmu, seg: seg, off: off}
}

func (c *decodeCursor) u8() byte {
	v := c.mmu.ReadByte(c.seg, c.off+uint16(c.n))
	c.n++
	return v
}

func (c *decodeCursor) u16() uint16 {
	lo := c.u8()
	hi := c.u8()
	return uint16(lo) | uint16(hi)<<8
}

func (c *decodeCursor) u32() uint32 {
	lo := c.u16()
	hi := c.u16()
	return uint32(lo) | uint32(hi)<<16
}

// peek returns the next byte without consuming it.
func (c *decodeCursor) peek() byte {
	return c.mmu.ReadByte(c.seg, c.off+uint16(c.n))
}

// readModRM decodes a ModR/M byte and its addressing-mode operand for
// 16-bit addressing (67h-prefixed 32-bit addressing is not decoded here -
// see Open Question note in DESIGN.md on the 386 tier).
func (c *decodeCursor) readModRM() modRM {
	b := c.u8()
	m := modRM{mod: (b >> 6) & 0x03, reg: (b >> 3) & 0x07, rm: b & 0x07}

	if m.mod == 3 {
		m.isMem = false
		return m
	}

	m.isMem = true
	if m.mod == 0 && m.rm == 6 {
		// Direct address, no base register.
		disp := c.u16()
		m.oper = Operand{Kind: OperKindAbs, Imm: uint32(disp)}
		return m
	}

	amode := modrm16Table[m.rm]
	var disp uint16
	switch m.mod {
	case 1:
		disp = uint16(int16(int8(c.u8())))
	case 2:
		disp = c.u16()
	}
	m.oper = Operand{Kind: OperKindMem, Amode: amode, Disp: disp}
	return m
}

// regOperand8/16/32 turn a raw 3-bit register field into the matching
// Operand, per the ModR/M reg/rm register-index convention.
func regOperand8(idx byte) Operand  { return Operand{Kind: OperKindReg8, Reg8: Reg8(idx), Size: 1} }
func regOperand16(idx byte) Operand { return Operand{Kind: OperKindReg16, Reg16: Reg16(idx), Size: 2} }
func regOperand32(idx byte) Operand { return Operand{Kind: OperKindReg32, Reg32: Reg32(idx), Size: 4} }
func segOperand(idx byte) Operand   { return Operand{Kind: OperKindSeg, Seg: SegReg(idx & 0x07)} }
