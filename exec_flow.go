// exec_flow.go - control transfer: jumps, calls, returns, loops, and
// software interrupts.
//
// Grounded on cpu_x86.go's handleInterrupt (push FLAGS/CS/IP, clear
// IF/TF, load CS:IP from vector*4) generalized with a Services hook so
// BIOS/DOS/video/keyboard/mouse/time vectors can be intercepted by
// Go-native handlers (spec.md §4.5) instead of requiring real guest ROM
// code at the vector target.

package dos86

func evalCond(r *Registers, cond Cond) bool {
	switch cond {
	case CondO:
		return r.OF()
	case CondNO:
		return !r.OF()
	case CondB:
		return r.CF()
	case CondNB:
		return !r.CF()
	case CondE:
		return r.ZF()
	case CondNE:
		return !r.ZF()
	case CondBE:
		return r.CF() || r.ZF()
	case CondNBE:
		return !r.CF() && !r.ZF()
	case CondS:
		return r.SF()
	case CondNS:
		return !r.SF()
	case CondP:
		return r.PF()
	case CondNP:
		return !r.PF()
	case CondL:
		return r.SF() != r.OF()
	case CondNL:
		return r.SF() == r.OF()
	case CondLE:
		return r.ZF() || r.SF() != r.OF()
	case CondNLE:
		return !r.ZF() && r.SF() == r.OF()
	}
	return false
}

func (c *CPU) execFlow(ins *Instruction) {
	switch ins.Op {
	case OpJMP:
		c.Regs.IP = c.branchTarget(ins, ins.Dst)
	case OpJMPF:
		c.farJump(ins, ins.Dst)
	case OpCALL:
		target := c.branchTarget(ins, ins.Dst)
		c.push16(c.Regs.IP)
		c.Regs.IP = target
	case OpCALLF:
		newIP := c.branchTarget(ins, ins.Dst)
		newCS := c.farTargetSeg(ins, ins.Dst)
		c.push16(c.Regs.CS())
		c.push16(c.Regs.IP)
		c.Regs.SetCS(newCS)
		c.Regs.IP = newIP
	case OpRET:
		ip := c.pop16()
		if ins.Dst.Kind == OperKindImm {
			c.Regs.SetSP(c.Regs.SP() + uint16(ins.Dst.Imm))
		}
		c.Regs.IP = ip
	case OpRETF:
		ip := c.pop16()
		cs := c.pop16()
		if ins.Dst.Kind == OperKindImm {
			c.Regs.SetSP(c.Regs.SP() + uint16(ins.Dst.Imm))
		}
		c.Regs.IP = ip
		c.Regs.SetCS(cs)
	case OpJCC:
		if evalCond(&c.Regs, ins.Cond) {
			c.Regs.IP = ins.Dst.RelTarget
		}
	case OpLOOP:
		cx := c.Regs.CX() - 1
		c.Regs.SetCX(cx)
		if cx != 0 {
			c.Regs.IP = ins.Dst.RelTarget
		}
	case OpLOOPE:
		cx := c.Regs.CX() - 1
		c.Regs.SetCX(cx)
		if cx != 0 && c.Regs.ZF() {
			c.Regs.IP = ins.Dst.RelTarget
		}
	case OpLOOPNE:
		cx := c.Regs.CX() - 1
		c.Regs.SetCX(cx)
		if cx != 0 && !c.Regs.ZF() {
			c.Regs.IP = ins.Dst.RelTarget
		}
	case OpJCXZ:
		if c.Regs.CX() == 0 {
			c.Regs.IP = ins.Dst.RelTarget
		}
	}
}

// branchTarget resolves a near JMP/CALL's destination: relative targets
// are already resolved to an absolute offset by the decoder, register
// and memory operands are read as their 16-bit value.
func (c *CPU) branchTarget(ins *Instruction, op Operand) uint16 {
	if op.Kind == OperKindRel {
		return op.RelTarget
	}
	return c.readOperand16(ins, op)
}

func (c *CPU) farTargetSeg(ins *Instruction, op Operand) uint16 {
	if op.Kind == OperKindRel {
		return op.FarSeg
	}
	// Indirect far JMP/CALL through memory: the word after the offset
	// holds the target segment.
	if op.Kind == OperKindMem || op.Kind == OperKindAbs {
		seg, off := c.effectiveAddr(ins, op)
		return c.MMU.ReadWord(c.segVal(seg), off+2)
	}
	return c.Regs.CS()
}

func (c *CPU) farJump(ins *Instruction, op Operand) {
	newIP := c.branchTarget(ins, op)
	newCS := c.farTargetSeg(ins, op)
	c.Regs.IP = newIP
	c.Regs.SetCS(newCS)
}

func (c *CPU) execInterruptOp(ins *Instruction) {
	switch ins.Op {
	case OpINT:
		c.Int(byte(ins.Dst.Imm))
	case OpINTO:
		if c.Regs.OF() {
			c.Int(4)
		}
	case OpIRET:
		ip := c.pop16()
		cs := c.pop16()
		flags := c.pop16()
		c.Regs.IP = ip
		c.Regs.SetCS(cs)
		c.Regs.UnpackFlags(flags)
	}
}

// Int dispatches interrupt vector n. If a Services handler is installed
// and claims the vector, no IVT jump happens - the handler already did
// whatever register/memory mutation the service call implies and
// returns as if IRET had executed. Otherwise this performs the real
// hardware interrupt-gate sequence (push FLAGS/CS/IP, clear IF and TF,
// load CS:IP from the IVT), per cpu_x86.go's handleInterrupt.
func (c *CPU) Int(vector byte) {
	if c.Services != nil && c.Services.Handle(c, vector) {
		return
	}
	c.push16(c.Regs.PackFlags())
	c.push16(c.Regs.CS())
	c.push16(c.Regs.IP)
	c.Regs.SetFlag(FlagIF, false)
	c.Regs.SetFlag(FlagTF, false)
	seg, off := c.MMU.ReadVec(vector)
	c.Regs.SetCS(seg)
	c.Regs.IP = off
}
