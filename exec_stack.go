// exec_stack.go - the hardware stack (SS:SP) and PUSH/POP/PUSHF/POPF.
//
// Grounded on cpu_x86.go's push16/pop16/push32/pop32: SP is decremented
// before a push and incremented after a pop, all stack memory access
// goes through SS (never overridable, matching real 8086 behavior).

package dos86

func (c *CPU) push16(v uint16) {
	sp := c.Regs.SP() - 2
	c.Regs.SetSP(sp)
	c.MMU.WriteWord(c.Regs.SS(), sp, v)
}

func (c *CPU) pop16() uint16 {
	sp := c.Regs.SP()
	v := c.MMU.ReadWord(c.Regs.SS(), sp)
	c.Regs.SetSP(sp + 2)
	return v
}

func (c *CPU) push32(v uint32) {
	sp := c.Regs.SP() - 4
	c.Regs.SetSP(sp)
	c.MMU.WriteDword(c.Regs.SS(), sp, v)
}

func (c *CPU) pop32() uint32 {
	sp := c.Regs.SP()
	v := c.MMU.ReadDword(c.Regs.SS(), sp)
	c.Regs.SetSP(sp + 4)
	return v
}

func (c *CPU) execStackOp(ins *Instruction) {
	switch ins.Op {
	case OpPUSH:
		switch operandWidth(ins.Dst) {
		case 4:
			c.push32(c.readOperand32(ins, ins.Dst))
		default:
			c.push16(c.readOperand16(ins, ins.Dst))
		}
	case OpPOP:
		switch operandWidth(ins.Dst) {
		case 4:
			c.writeOperand32(ins, ins.Dst, c.pop32())
		default:
			c.writeOperand16(ins, ins.Dst, c.pop16())
		}
	case OpPUSHF:
		c.push16(c.Regs.PackFlags())
	case OpPOPF:
		c.Regs.UnpackFlags(c.pop16())
	case OpPUSHA:
		c.execPusha()
	case OpPOPA:
		c.execPopa()
	case OpENTER:
		c.execEnter(ins)
	case OpLEAVE:
		c.execLeave()
	}
}

// execPusha implements 80186's PUSHA, pushing all eight general registers
// in AX,CX,DX,BX,original-SP,BP,SI,DI order.
func (c *CPU) execPusha() {
	sp := c.Regs.SP()
	c.push16(c.Regs.AX())
	c.push16(c.Regs.CX())
	c.push16(c.Regs.DX())
	c.push16(c.Regs.BX())
	c.push16(sp)
	c.push16(c.Regs.BP())
	c.push16(c.Regs.SI())
	c.push16(c.Regs.DI())
}

// execPopa restores the eight general registers pushed by PUSHA, discarding
// the saved SP value (SP is already correct from the pop sequence itself).
func (c *CPU) execPopa() {
	c.Regs.SetDI(c.pop16())
	c.Regs.SetSI(c.pop16())
	c.Regs.SetBP(c.pop16())
	c.pop16() // saved SP, discarded
	c.Regs.SetBX(c.pop16())
	c.Regs.SetDX(c.pop16())
	c.Regs.SetCX(c.pop16())
	c.Regs.SetAX(c.pop16())
}

// execEnter implements 80186's ENTER, building a nested stack frame:
// BP is pushed, the new frame pointer is set, nesting-level copies of
// enclosing frame pointers are made (level masked to 5 bits per the real
// instruction), and the locals block is reserved.
func (c *CPU) execEnter(ins *Instruction) {
	size := uint16(ins.Dst.Imm)
	level := byte(ins.Src.Imm) & 0x1F

	c.push16(c.Regs.BP())
	frameBP := c.Regs.SP()

	if level > 0 {
		bp := c.Regs.BP()
		for i := byte(1); i < level; i++ {
			bp -= 2
			c.push16(c.MMU.ReadWord(c.Regs.SS(), bp))
		}
		c.push16(frameBP)
	}

	c.Regs.SetBP(frameBP)
	c.Regs.SetSP(frameBP - size)
}

// execLeave implements 80186's LEAVE: collapse the current stack frame by
// restoring SP from BP and popping the saved BP.
func (c *CPU) execLeave() {
	c.Regs.SetSP(c.Regs.BP())
	c.Regs.SetBP(c.pop16())
}
