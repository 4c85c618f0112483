// exec_extended.go - 80186/80286-tier instructions reached through the
// 0x0F two-byte map and the handful of one-byte opcodes the original
// 8086 left unused: LES/LDS, BOUND, ARPL, XLATB, SETcc, the BT family,
// BSF and MOVZX/MOVSX.
//
// Grounded on cpu_x86.go's Step() single dispatch switch, split here into
// its own file since none of these share state with the ALU/shift/string
// groups above.

package dos86

// execLoadFarPointer implements LES/LDS: the word at the memory operand
// becomes the destination register, the following word becomes the
// named segment register.
func (c *CPU) execLoadFarPointer(ins *Instruction) {
	seg, off := c.effectiveAddr(ins, ins.Src)
	lo := c.MMU.ReadWord(c.segVal(seg), off)
	hi := c.MMU.ReadWord(c.segVal(seg), off+2)
	c.writeOperand16(ins, ins.Dst, lo)
	if ins.Op == OpLES {
		c.Regs.SetES(hi)
	} else {
		c.Regs.SetDS(hi)
	}
}

// execBound implements BOUND: the index register is checked against a
// pair of signed bounds in memory; out-of-range halts the machine with a
// fatal error (spec.md §7 error kind 1), matching real hardware's #BR.
func (c *CPU) execBound(ins *Instruction) {
	seg, off := c.effectiveAddr(ins, ins.Src)
	lower := int16(c.MMU.ReadWord(c.segVal(seg), off))
	upper := int16(c.MMU.ReadWord(c.segVal(seg), off+2))
	idx := int16(c.readOperand16(ins, ins.Dst))
	if idx < lower || idx > upper {
		c.Halted = true
		c.Fatal = errInvalidOpcode
	}
}

// execArpl implements ARPL (80286 privilege-level adjustment): with no
// protected-mode descriptor model in scope, the RPL bits are still
// compared and adjusted so guest code probing for a 286 behaves the same
// on the flag side (Open Question, DESIGN.md).
func (c *CPU) execArpl(ins *Instruction) {
	dst := c.readOperand16(ins, ins.Dst)
	src := c.readOperand16(ins, ins.Src)
	if dst&0x03 < src&0x03 {
		c.writeOperand16(ins, ins.Dst, (dst&0xFFFC)|(src&0x03))
		c.Regs.SetFlag(FlagZF, true)
	} else {
		c.Regs.SetFlag(FlagZF, false)
	}
}

// execXlatb implements XLAT/XLATB: AL becomes the byte at [BX + unsigned AL]
// in the (overridable) default DS segment.
func (c *CPU) execXlatb(ins *Instruction) {
	seg := ins.EffectiveSeg(AmodeNone)
	addr := c.Regs.BX() + uint16(c.Regs.AL())
	c.Regs.SetAL(c.MMU.ReadByte(c.segVal(seg), addr))
}

// execSetcc implements SETcc: the destination byte becomes 1 or 0
// depending on the condition, without touching any flag.
func (c *CPU) execSetcc(ins *Instruction) {
	if evalCond(&c.Regs, ins.Cond) {
		c.writeOperand8(ins, ins.Dst, 1)
	} else {
		c.writeOperand8(ins, ins.Dst, 0)
	}
}

// execBitOp implements BT/BTS/BTR/BTC: CF becomes the tested bit; BTS/BTR/BTC
// additionally set/clear/toggle it in the destination.
func (c *CPU) execBitOp(ins *Instruction) {
	bit := c.readOperand16(ins, ins.Src) & 0x0F
	v := c.readOperand16(ins, ins.Dst)
	c.Regs.SetFlag(FlagCF, v&(1<<bit) != 0)
	switch ins.Op {
	case OpBTS:
		c.writeOperand16(ins, ins.Dst, v|(1<<bit))
	case OpBTR:
		c.writeOperand16(ins, ins.Dst, v&^(1<<bit))
	case OpBTC:
		c.writeOperand16(ins, ins.Dst, v^(1<<bit))
	}
}

// execBsf implements BSF: finds the index of the least-significant set
// bit, setting ZF when the source is zero (the destination is then left
// unmodified, matching real hardware).
func (c *CPU) execBsf(ins *Instruction) {
	v := c.readOperand16(ins, ins.Src)
	if v == 0 {
		c.Regs.SetFlag(FlagZF, true)
		return
	}
	c.Regs.SetFlag(FlagZF, false)
	idx := uint16(0)
	for v&1 == 0 {
		v >>= 1
		idx++
	}
	c.writeOperand16(ins, ins.Dst, idx)
}

// execMovExtend implements MOVZX/MOVSX, widening an 8- or 16-bit source
// into the 16/32-bit destination register with zero- or sign-extension.
func (c *CPU) execMovExtend(ins *Instruction, signed bool) {
	var v uint32
	if operandWidth(ins.Src) == 1 {
		b := c.readOperand8(ins, ins.Src)
		if signed {
			v = uint32(int32(int8(b)))
		} else {
			v = uint32(b)
		}
	} else {
		w := c.readOperand16(ins, ins.Src)
		if signed {
			v = uint32(int32(int16(w)))
		} else {
			v = uint32(w)
		}
	}
	if operandWidth(ins.Dst) == 4 {
		c.writeOperand32(ins, ins.Dst, v)
	} else {
		c.writeOperand16(ins, ins.Dst, uint16(v))
	}
}
