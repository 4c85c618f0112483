// exec_string.go - string instructions and the REP/REPE/REPNE state
// machine.
//
// Grounded on cpu_x86.go's Step() prefix loop (which records a repeat
// prefix byte then loops the following opcode handler in place) and
// original_source/src/cpu/instruction.rs's Repeat enum. DS:SI/ES:DI are
// the fixed segment:register pairs (DS overridable, ES never is), and
// the whole repeat executes to completion within one exec() call rather
// than yielding control mid-string - the spec's host-driven batching
// model (§5) counts a REP MOVSB as advancing the instruction stream by
// one Instruction regardless of CX.

package dos86

func (c *CPU) execString(ins *Instruction) {
	step16 := int16(1)
	wide := false
	switch ins.Op {
	case OpMOVSW, OpCMPSW, OpSTOSW, OpLODSW, OpSCASW, OpINSW, OpOUTSW:
		step16 = 2
		wide = true
	}
	if c.Regs.DF() {
		step16 = -step16
	}

	count := 1
	repeated := ins.Rep != RepNone
	if repeated {
		count = int(c.Regs.CX())
	}

	for i := 0; i < count || (!repeated && i < 1); i++ {
		if repeated && c.Regs.CX() == 0 {
			break
		}
		cont := c.stringIteration(ins, wide, step16)
		if repeated {
			c.Regs.SetCX(c.Regs.CX() - 1)
		}
		if !repeated {
			break
		}
		if !cont {
			break
		}
		if c.Regs.CX() == 0 {
			break
		}
	}
}

// stringIteration performs one element of a string op and reports
// whether a REPE/REPNE-qualified repeat should continue (always true for
// the unconditional string ops).
func (c *CPU) stringIteration(ins *Instruction, wide bool, step int16) bool {
	srcSeg := ins.EffectiveSeg(AmodeSi)
	switch ins.Op {
	case OpMOVSB, OpMOVSW:
		if wide {
			v := c.MMU.ReadWord(c.segVal(srcSeg), c.Regs.SI())
			c.MMU.WriteWord(c.Regs.ES(), c.Regs.DI(), v)
		} else {
			v := c.MMU.ReadByte(c.segVal(srcSeg), c.Regs.SI())
			c.MMU.WriteByte(c.Regs.ES(), c.Regs.DI(), v)
		}
		c.Regs.SetSI(uint16(int32(c.Regs.SI()) + int32(step)))
		c.Regs.SetDI(uint16(int32(c.Regs.DI()) + int32(step)))
		return true
	case OpSTOSB, OpSTOSW:
		if wide {
			c.MMU.WriteWord(c.Regs.ES(), c.Regs.DI(), c.Regs.AX())
		} else {
			c.MMU.WriteByte(c.Regs.ES(), c.Regs.DI(), c.Regs.AL())
		}
		c.Regs.SetDI(uint16(int32(c.Regs.DI()) + int32(step)))
		return true
	case OpLODSB, OpLODSW:
		if wide {
			c.Regs.SetAX(c.MMU.ReadWord(c.segVal(srcSeg), c.Regs.SI()))
		} else {
			c.Regs.SetAL(c.MMU.ReadByte(c.segVal(srcSeg), c.Regs.SI()))
		}
		c.Regs.SetSI(uint16(int32(c.Regs.SI()) + int32(step)))
		return true
	case OpCMPSB, OpCMPSW:
		var a, b uint32
		if wide {
			aw := c.MMU.ReadWord(c.segVal(srcSeg), c.Regs.SI())
			bw := c.MMU.ReadWord(c.Regs.ES(), c.Regs.DI())
			c.Regs.setFlagsArith16(int32(aw)-int32(bw), aw, bw, true)
			a, b = uint32(aw), uint32(bw)
		} else {
			ab := c.MMU.ReadByte(c.segVal(srcSeg), c.Regs.SI())
			bb := c.MMU.ReadByte(c.Regs.ES(), c.Regs.DI())
			c.Regs.setFlagsArith8(int16(ab)-int16(bb), ab, bb, true)
			a, b = uint32(ab), uint32(bb)
		}
		c.Regs.SetSI(uint16(int32(c.Regs.SI()) + int32(step)))
		c.Regs.SetDI(uint16(int32(c.Regs.DI()) + int32(step)))
		return repeatContinues(ins.Rep, a == b)
	case OpSCASB, OpSCASW:
		var a, b uint32
		if wide {
			mem := c.MMU.ReadWord(c.Regs.ES(), c.Regs.DI())
			ax := c.Regs.AX()
			c.Regs.setFlagsArith16(int32(ax)-int32(mem), ax, mem, true)
			a, b = uint32(ax), uint32(mem)
		} else {
			mem := c.MMU.ReadByte(c.Regs.ES(), c.Regs.DI())
			al := c.Regs.AL()
			c.Regs.setFlagsArith8(int16(al)-int16(mem), al, mem, true)
			a, b = uint32(al), uint32(mem)
		}
		c.Regs.SetDI(uint16(int32(c.Regs.DI()) + int32(step)))
		return repeatContinues(ins.Rep, a == b)
	case OpINSB, OpINSW:
		port := c.Regs.DX()
		if wide {
			c.MMU.WriteWord(c.Regs.ES(), c.Regs.DI(), c.IO.In16(port))
		} else {
			c.MMU.WriteByte(c.Regs.ES(), c.Regs.DI(), c.IO.In8(port))
		}
		c.Regs.SetDI(uint16(int32(c.Regs.DI()) + int32(step)))
		return true
	case OpOUTSB, OpOUTSW:
		port := c.Regs.DX()
		if wide {
			c.IO.Out16(port, c.MMU.ReadWord(c.segVal(srcSeg), c.Regs.SI()))
		} else {
			c.IO.Out8(port, c.MMU.ReadByte(c.segVal(srcSeg), c.Regs.SI()))
		}
		c.Regs.SetSI(uint16(int32(c.Regs.SI()) + int32(step)))
		return true
	}
	return false
}

// repeatContinues implements REPE (stop when not-equal) and REPNE (stop
// when equal) for CMPS/SCAS; MOVS/STOS/LODS only ever use unconditional
// REP and ignore the equal flag.
func repeatContinues(rep RepPrefix, equal bool) bool {
	switch rep {
	case RepRepe:
		return equal
	case RepRepne:
		return !equal
	}
	return true
}
