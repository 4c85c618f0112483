// exec_misc.go - I/O port access and decimal/ASCII adjust instructions.
//
// IN/OUT are grounded on cpu_x86_runner.go's X86BusAdapter, which routes
// port-mapped I/O to the VGA engine's HandleRead/HandleWrite; here that
// routing lives behind the PortBus interface so the machine can wire in
// its own VGA/keyboard-controller port map (vga_ports.go).
//
// DAA/DAS/AAA/AAS follow the Intel-documented flag table rather than any
// one reference implementation (Open Question #3, DESIGN.md).

package dos86

import "errors"

var errDivideByZero = errors.New("divide error")
var errInvalidOpcode = errors.New("invalid opcode")

func (c *CPU) execIO(ins *Instruction) {
	switch ins.Op {
	case OpIN:
		port := c.readOperand16(ins, ins.Src)
		if operandWidth(ins.Dst) == 1 {
			c.writeOperand8(ins, ins.Dst, c.IO.In8(port))
		} else {
			c.writeOperand16(ins, ins.Dst, c.IO.In16(port))
		}
	case OpOUT:
		port := c.readOperand16(ins, ins.Dst)
		if operandWidth(ins.Src) == 1 {
			c.IO.Out8(port, c.readOperand8(ins, ins.Src))
		} else {
			c.IO.Out16(port, c.readOperand16(ins, ins.Src))
		}
	}
}

func (c *CPU) execDecimalAdjust(ins *Instruction) {
	al := c.Regs.AL()
	switch ins.Op {
	case OpDAA:
		oldAL, oldCF := al, c.Regs.CF()
		cf := false
		if al&0x0F > 9 || c.Regs.AF() {
			al += 6
			c.Regs.SetFlag(FlagAF, true)
			cf = oldCF || al < oldAL
		} else {
			c.Regs.SetFlag(FlagAF, false)
		}
		if oldAL > 0x99 || oldCF {
			al += 0x60
			cf = true
		}
		af := c.Regs.AF()
		c.Regs.SetAL(al)
		c.Regs.setFlagsLogic8(al)
		c.Regs.SetFlag(FlagAF, af)
		c.Regs.SetFlag(FlagCF, cf)
	case OpDAS:
		oldAL, oldCF := al, c.Regs.CF()
		cf := false
		if al&0x0F > 9 || c.Regs.AF() {
			cf = oldCF || al < 6
			al -= 6
			c.Regs.SetFlag(FlagAF, true)
		} else {
			c.Regs.SetFlag(FlagAF, false)
		}
		if oldAL > 0x99 || oldCF {
			al -= 0x60
			cf = true
		}
		af := c.Regs.AF()
		c.Regs.SetAL(al)
		c.Regs.setFlagsLogic8(al)
		c.Regs.SetFlag(FlagAF, af)
		c.Regs.SetFlag(FlagCF, cf)
	case OpAAA:
		ah := c.Regs.AH()
		if al&0x0F > 9 || c.Regs.AF() {
			c.Regs.SetAL(al + 6)
			c.Regs.SetAH(ah + 1)
			c.Regs.SetFlag(FlagAF, true)
			c.Regs.SetFlag(FlagCF, true)
		} else {
			c.Regs.SetFlag(FlagAF, false)
			c.Regs.SetFlag(FlagCF, false)
		}
		c.Regs.SetAL(c.Regs.AL() & 0x0F)
	case OpAAS:
		ah := c.Regs.AH()
		if al&0x0F > 9 || c.Regs.AF() {
			c.Regs.SetAL(al - 6)
			c.Regs.SetAH(ah - 1)
			c.Regs.SetFlag(FlagAF, true)
			c.Regs.SetFlag(FlagCF, true)
		} else {
			c.Regs.SetFlag(FlagAF, false)
			c.Regs.SetFlag(FlagCF, false)
		}
		c.Regs.SetAL(c.Regs.AL() & 0x0F)
	case OpAAM:
		al := c.Regs.AL()
		ah := al / 10
		al = al % 10
		c.Regs.SetAH(ah)
		c.Regs.SetAL(al)
		c.Regs.setFlagsLogic8(al)
	case OpAAD:
		al := c.Regs.AH()*10 + c.Regs.AL()
		c.Regs.SetAH(0)
		c.Regs.SetAL(al)
		c.Regs.setFlagsLogic8(al)
	case OpSALC:
		if c.Regs.CF() {
			c.Regs.SetAL(0xFF)
		} else {
			c.Regs.SetAL(0x00)
		}
	}
}
