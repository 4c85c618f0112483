// decoder.go - the side-effect-free instruction decoder.
//
// Decode(mmu, seg, off) returns the Instruction IR and its encoded length
// without touching CPU state, per spec.md §4.3: the same function backs
// both the execution engine (exec.go) and the static-analysis tracer
// (tracer.go). Grounded on cpu_x86.go's initBaseOps()/initExtendedOps()
// opcode tables and Step()'s prefix-consuming loop, reshaped from
// "fetch-and-immediately-execute" into "fetch-and-describe".

package dos86

// aluOps lists the eight ALU-group mnemonics in their ModR/M
// reg-field/opcode-row order (0x00.. ADD, 0x08.. OR, ...), matching
// cpu_x86.go's Group1 dispatch table in cpu_x86_grp.go.
var aluOps = [8]Op{OpADD, OpOR, OpADC, OpSBB, OpAND, OpSUB, OpXOR, OpCMP}

// shiftOps lists the eight shift/rotate-group mnemonics in ModR/M
// reg-field order, as used by opcodes C0/C1/D0-D3.
var shiftOps = [8]Op{OpROL, OpROR, OpRCL, OpRCR, OpSHL, OpSHR, OpSHL, OpSAR}

// jccConds lists the sixteen condition codes in 0x70-0x7F / 0x0F 0x80-0x8F
// opcode order.
var jccConds = [16]Cond{
	CondO, CondNO, CondB, CondNB, CondE, CondNE, CondBE, CondNBE,
	CondS, CondNS, CondP, CondNP, CondL, CondNL, CondLE, CondNLE,
}

// Decode decodes one instruction starting at seg:off. On an unrecognized
// opcode it returns an Instruction with Op == OpInvalid whose length
// covers the bytes consumed (prefixes, opcode bytes, and any ModR/M
// already read); the decoder never panics on guest-controlled input.
func Decode(mmu *MMU, seg, off uint16) (Instruction, int) {
	c := newCursor(mmu, seg, off)
	ins := Instruction{OperandSize: 2, AddrSize: 2, Seg: seg, Off: off}

	for {
		b := c.peek()
		switch b {
		case 0x26:
			ins.HasSegOverride, ins.SegOverride = true, SegES
			c.u8()
			continue
		case 0x2E:
			ins.HasSegOverride, ins.SegOverride = true, SegCS
			c.u8()
			continue
		case 0x36:
			ins.HasSegOverride, ins.SegOverride = true, SegSS
			c.u8()
			continue
		case 0x3E:
			ins.HasSegOverride, ins.SegOverride = true, SegDS
			c.u8()
			continue
		case 0x64:
			ins.HasSegOverride, ins.SegOverride = true, SegFS
			c.u8()
			continue
		case 0x65:
			ins.HasSegOverride, ins.SegOverride = true, SegGS
			c.u8()
			continue
		case 0x66:
			ins.OperandSize = 4
			c.u8()
			continue
		case 0x67:
			ins.AddrSize = 4
			c.u8()
			continue
		case 0xF0:
			ins.Lock = true
			c.u8()
			continue
		case 0xF2:
			ins.Rep = RepRepne
			c.u8()
			continue
		case 0xF3:
			ins.Rep = RepRep
			c.u8()
			continue
		}
		break
	}

	op := c.u8()
	decodeOpcode(c, &ins, op)
	ins.Len = c.n
	return ins, ins.Len
}

func wide(ins *Instruction) int { return ins.OperandSize }

// normalizeCmpsScasRep corrects the F3 prefix's meaning for CMPS/SCAS: the
// same 0xF3 byte that means REP ahead of MOVS/STOS/LODS means REPE/REPZ
// ahead of CMPS/SCAS, since compare-string repeats stop on the first
// mismatch rather than running unconditionally.
func normalizeCmpsScasRep(ins *Instruction) {
	if ins.Rep == RepRep {
		ins.Rep = RepRepe
	}
}

// wordRegOperand builds the 16- or 32-bit register operand for idx,
// per the instruction's operand size.
func wordRegOperand(ins *Instruction, idx byte) Operand {
	if wide(ins) == 4 {
		return regOperand32(idx)
	}
	return regOperand16(idx)
}

func decodeOpcode(c *decodeCursor, ins *Instruction, op byte) {
	switch {
	case op <= 0x3D && (op&0x07) <= 5 && (op>>3) <= 7 && op != 0x0F:
		decodeAluRow(c, ins, op)
		return
	}

	switch op {
	case 0x06:
		ins.Op, ins.Dst = OpPUSH, Operand{Kind: OperKindSeg, Seg: SegES}
		return
	case 0x07:
		ins.Op, ins.Dst = OpPOP, Operand{Kind: OperKindSeg, Seg: SegES}
		return
	case 0x0E:
		ins.Op, ins.Dst = OpPUSH, Operand{Kind: OperKindSeg, Seg: SegCS}
		return
	case 0x16:
		ins.Op, ins.Dst = OpPUSH, Operand{Kind: OperKindSeg, Seg: SegSS}
		return
	case 0x17:
		ins.Op, ins.Dst = OpPOP, Operand{Kind: OperKindSeg, Seg: SegSS}
		return
	case 0x1E:
		ins.Op, ins.Dst = OpPUSH, Operand{Kind: OperKindSeg, Seg: SegDS}
		return
	case 0x1F:
		ins.Op, ins.Dst = OpPOP, Operand{Kind: OperKindSeg, Seg: SegDS}
		return
	case 0x27:
		ins.Op = OpDAA
		return
	case 0x2F:
		ins.Op = OpDAS
		return
	case 0x37:
		ins.Op = OpAAA
		return
	case 0x3F:
		ins.Op = OpAAS
		return
	}

	if op >= 0x40 && op <= 0x47 {
		ins.Op = OpINC
		ins.Dst = wordRegOperand(ins, op-0x40)
		return
	}
	if op >= 0x48 && op <= 0x4F {
		ins.Op = OpDEC
		ins.Dst = wordRegOperand(ins, op-0x48)
		return
	}
	if op >= 0x50 && op <= 0x57 {
		ins.Op = OpPUSH
		ins.Dst = wordRegOperand(ins, op-0x50)
		return
	}
	if op >= 0x58 && op <= 0x5F {
		ins.Op = OpPOP
		ins.Dst = wordRegOperand(ins, op-0x58)
		return
	}

	switch op {
	case 0x60:
		ins.Op = OpPUSHA
		return
	case 0x61:
		ins.Op = OpPOPA
		return
	case 0x62:
		m := c.readModRM()
		ins.Op = OpBOUND
		ins.Dst, ins.Src = decodeReg(ins, m.reg, 0), m.oper
		return
	case 0x63:
		m := c.readModRM()
		ins.Op = OpARPL
		ins.Dst, ins.Src = decodeRM(ins, m, 0), decodeReg(ins, m.reg, 0)
		return
	}

	switch op {
	case 0x68:
		ins.Op = OpPUSH
		imm := c.u16()
		ins.Dst = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 2}
		return
	case 0x69:
		m := c.readModRM()
		ins.Op = OpIMUL
		ins.Dst, ins.Src = decodeReg(ins, m.reg, 0), decodeRM(ins, m, 0)
		if wide(ins) == 4 {
			imm := c.u32()
			ins.Src2 = Operand{Kind: OperKindImm, Imm: imm, Size: 4}
		} else {
			imm := c.u16()
			ins.Src2 = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 2}
		}
		return
	case 0x6A:
		ins.Op = OpPUSH
		imm := uint16(int16(int8(c.u8())))
		ins.Dst = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 2}
		return
	case 0x6B:
		m := c.readModRM()
		ins.Op = OpIMUL
		ins.Dst, ins.Src = decodeReg(ins, m.reg, 0), decodeRM(ins, m, 0)
		imm := uint32(uint16(int16(int8(c.u8()))))
		sz := 2
		if wide(ins) == 4 {
			imm = uint32(int32(int8(byte(imm))))
			sz = 4
		}
		ins.Src2 = Operand{Kind: OperKindImm, Imm: imm, Size: sz}
		return
	case 0x6C:
		ins.Op = OpINSB
		return
	case 0x6D:
		ins.Op = OpINSW
		return
	case 0x6E:
		ins.Op = OpOUTSB
		return
	case 0x6F:
		ins.Op = OpOUTSW
		return
	}

	if op >= 0x70 && op <= 0x7F {
		ins.Op = OpJCC
		ins.Cond = jccConds[op-0x70]
		rel := int8(c.u8())
		ins.Dst = Operand{Kind: OperKindRel, RelTarget: uint16(int32(ins.Off) + int32(c.n) + int32(rel))}
		return
	}

	switch op {
	case 0x80, 0x81, 0x83:
		decodeGroup1(c, ins, op)
		return
	case 0x84, 0x85:
		m := c.readModRM()
		ins.Op = OpTEST
		sz := byte(1)
		if op == 0x85 {
			sz = 0
		}
		ins.Dst, ins.Src = decodeRM(ins, m, sz), decodeReg(ins, m.reg, sz)
		return
	case 0x86, 0x87:
		m := c.readModRM()
		ins.Op = OpXCHG
		sz := byte(1)
		if op == 0x87 {
			sz = 0
		}
		ins.Dst, ins.Src = decodeRM(ins, m, sz), decodeReg(ins, m.reg, sz)
		return
	case 0x88, 0x89, 0x8A, 0x8B:
		m := c.readModRM()
		ins.Op = OpMOV
		toReg := op == 0x8A || op == 0x8B
		sz := byte(1)
		if op == 0x89 || op == 0x8B {
			sz = 0
		}
		rm := decodeRM(ins, m, sz)
		reg := decodeReg(ins, m.reg, sz)
		if toReg {
			ins.Dst, ins.Src = reg, rm
		} else {
			ins.Dst, ins.Src = rm, reg
		}
		return
	case 0x8C:
		m := c.readModRM()
		ins.Op = OpMOV
		ins.Dst, ins.Src = decodeRM(ins, m, 2), segOperand(m.reg)
		return
	case 0x8D:
		m := c.readModRM()
		ins.Op = OpLEA
		ins.Dst, ins.Src = decodeReg(ins, m.reg, 0), m.oper
		return
	case 0x8E:
		m := c.readModRM()
		ins.Op = OpMOV
		ins.Dst, ins.Src = segOperand(m.reg), decodeRM(ins, m, 2)
		return
	case 0x8F:
		m := c.readModRM()
		ins.Op = OpPOP
		ins.Dst = decodeRM(ins, m, 0)
		return
	case 0x90:
		ins.Op = OpNOP
		return
	}

	if op >= 0x91 && op <= 0x97 {
		ins.Op = OpXCHG
		ins.Dst = wordRegOperand(ins, 0)
		ins.Src = wordRegOperand(ins, op-0x90)
		return
	}

	switch op {
	case 0x98:
		ins.Op = OpCBW
		return
	case 0x99:
		ins.Op = OpCWD
		return
	case 0x9B:
		ins.Op = OpWAIT
		return
	case 0x9C:
		ins.Op = OpPUSHF
		return
	case 0x9D:
		ins.Op = OpPOPF
		return
	}

	switch op {
	case 0xA0, 0xA1, 0xA2, 0xA3:
		sz := byte(1)
		if op == 0xA1 || op == 0xA3 {
			sz = 0
		}
		off := c.u16()
		mem := Operand{Kind: OperKindAbs, Imm: uint32(off)}
		acc := wordRegOperand(ins, 0)
		if sz == 1 {
			acc = regOperand8(0)
		}
		ins.Op = OpMOV
		if op == 0xA0 || op == 0xA1 {
			ins.Dst, ins.Src = acc, mem
		} else {
			ins.Dst, ins.Src = mem, acc
		}
		return
	case 0xA4:
		ins.Op = OpMOVSB
		return
	case 0xA5:
		ins.Op = OpMOVSW
		return
	case 0xA6:
		ins.Op = OpCMPSB
		normalizeCmpsScasRep(ins)
		return
	case 0xA7:
		ins.Op = OpCMPSW
		normalizeCmpsScasRep(ins)
		return
	case 0xA8:
		ins.Op = OpTEST
		imm := c.u8()
		ins.Dst, ins.Src = regOperand8(0), Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}
		return
	case 0xA9:
		ins.Op = OpTEST
		imm := c.u16()
		ins.Dst, ins.Src = wordRegOperand(ins, 0), Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 2}
		return
	case 0xAA:
		ins.Op = OpSTOSB
		return
	case 0xAB:
		ins.Op = OpSTOSW
		return
	case 0xAC:
		ins.Op = OpLODSB
		return
	case 0xAD:
		ins.Op = OpLODSW
		return
	case 0xAE:
		ins.Op = OpSCASB
		normalizeCmpsScasRep(ins)
		return
	case 0xAF:
		ins.Op = OpSCASW
		normalizeCmpsScasRep(ins)
		return
	}

	if op >= 0xB0 && op <= 0xB7 {
		ins.Op = OpMOV
		imm := c.u8()
		ins.Dst, ins.Src = regOperand8(op-0xB0), Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}
		return
	}
	if op >= 0xB8 && op <= 0xBF {
		ins.Op = OpMOV
		if wide(ins) == 4 {
			imm := c.u32()
			ins.Dst, ins.Src = regOperand32(op-0xB8), Operand{Kind: OperKindImm, Imm: imm, Size: 4}
		} else {
			imm := c.u16()
			ins.Dst, ins.Src = regOperand16(op-0xB8), Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 2}
		}
		return
	}

	switch op {
	case 0xC0, 0xC1, 0xD0, 0xD1, 0xD2, 0xD3:
		decodeShiftGroup(c, ins, op)
		return
	case 0xC2:
		ins.Op = OpRET
		imm := c.u16()
		ins.Dst = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 2}
		return
	case 0xC3:
		ins.Op = OpRET
		return
	case 0xC4:
		m := c.readModRM()
		ins.Op = OpLES
		ins.Dst, ins.Src = decodeReg(ins, m.reg, 0), m.oper
		return
	case 0xC5:
		m := c.readModRM()
		ins.Op = OpLDS
		ins.Dst, ins.Src = decodeReg(ins, m.reg, 0), m.oper
		return
	case 0xC6:
		m := c.readModRM()
		ins.Op = OpMOV
		imm := c.u8()
		ins.Dst = decodeRM(ins, m, 1)
		ins.Src = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}
		return
	case 0xC7:
		m := c.readModRM()
		ins.Op = OpMOV
		ins.Dst = decodeRM(ins, m, 0)
		if wide(ins) == 4 {
			imm := c.u32()
			ins.Src = Operand{Kind: OperKindImm, Imm: imm, Size: 4}
		} else {
			imm := c.u16()
			ins.Src = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 2}
		}
		return
	case 0xC8:
		ins.Op = OpENTER
		size := c.u16()
		level := c.u8()
		ins.Dst = Operand{Kind: OperKindImm, Imm: uint32(size), Size: 2}
		ins.Src = Operand{Kind: OperKindImm, Imm: uint32(level), Size: 1}
		return
	case 0xC9:
		ins.Op = OpLEAVE
		return
	case 0xCA:
		ins.Op = OpRETF
		imm := c.u16()
		ins.Dst = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 2}
		return
	case 0xCB:
		ins.Op = OpRETF
		return
	case 0xCC:
		ins.Op = OpINT
		ins.Dst = Operand{Kind: OperKindImm, Imm: 3, Size: 1}
		return
	case 0xCD:
		ins.Op = OpINT
		imm := c.u8()
		ins.Dst = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}
		return
	case 0xCE:
		ins.Op = OpINTO
		return
	case 0xCF:
		ins.Op = OpIRET
		return
	}

	switch op {
	case 0xE0:
		ins.Op = OpLOOPNE
		decodeShortRel(c, ins)
		return
	case 0xE1:
		ins.Op = OpLOOPE
		decodeShortRel(c, ins)
		return
	case 0xE2:
		ins.Op = OpLOOP
		decodeShortRel(c, ins)
		return
	case 0xE3:
		ins.Op = OpJCXZ
		decodeShortRel(c, ins)
		return
	case 0xE4:
		ins.Op = OpIN
		imm := c.u8()
		ins.Dst, ins.Src = regOperand8(0), Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}
		return
	case 0xE5:
		ins.Op = OpIN
		imm := c.u8()
		ins.Dst, ins.Src = wordRegOperand(ins, 0), Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}
		return
	case 0xE6:
		ins.Op = OpOUT
		imm := c.u8()
		ins.Dst, ins.Src = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}, regOperand8(0)
		return
	case 0xE7:
		ins.Op = OpOUT
		imm := c.u8()
		ins.Dst, ins.Src = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}, wordRegOperand(ins, 0)
		return
	case 0xE8:
		ins.Op = OpCALL
		decodeShortRel16(c, ins)
		return
	case 0xE9:
		ins.Op = OpJMP
		decodeShortRel16(c, ins)
		return
	case 0xEA:
		ins.Op = OpJMPF
		off := c.u16()
		seg := c.u16()
		ins.Dst = Operand{Kind: OperKindRel, RelTarget: off, FarSeg: seg}
		return
	case 0xEB:
		ins.Op = OpJMP
		decodeShortRel(c, ins)
		return
	case 0xEC:
		ins.Op = OpIN
		ins.Dst, ins.Src = regOperand8(0), regOperand16(byte(RegDX))
		return
	case 0xED:
		ins.Op = OpIN
		ins.Dst, ins.Src = wordRegOperand(ins, 0), regOperand16(byte(RegDX))
		return
	case 0xEE:
		ins.Op = OpOUT
		ins.Dst, ins.Src = regOperand16(byte(RegDX)), regOperand8(0)
		return
	case 0xEF:
		ins.Op = OpOUT
		ins.Dst, ins.Src = regOperand16(byte(RegDX)), wordRegOperand(ins, 0)
		return
	}

	switch op {
	case 0xF4:
		ins.Op = OpHLT
		return
	case 0xF5:
		ins.Op = OpCMC
		return
	case 0xF6, 0xF7:
		decodeGroup3(c, ins, op)
		return
	case 0xF8:
		ins.Op = OpCLC
		return
	case 0xF9:
		ins.Op = OpSTC
		return
	case 0xFA:
		ins.Op = OpCLI
		return
	case 0xFB:
		ins.Op = OpSTI
		return
	case 0xFC:
		ins.Op = OpCLD
		return
	case 0xFD:
		ins.Op = OpSTD
		return
	case 0xFE:
		m := c.readModRM()
		ins.Dst = decodeRM(ins, m, 1)
		if m.reg == 0 {
			ins.Op = OpINC
		} else {
			ins.Op = OpDEC
		}
		return
	case 0xFF:
		decodeGroupFF(c, ins, m0FF(c))
		return
	case 0x0F:
		decodeTwoByte(c, ins)
		return
	}

	switch op {
	case 0xD4:
		ins.Op = OpAAM
		c.u8() // base, always 0x0A in practice; consumed but unused
		return
	case 0xD5:
		ins.Op = OpAAD
		c.u8() // base, always 0x0A in practice; consumed but unused
		return
	case 0xD6:
		ins.Op = OpSALC
		return
	case 0xD7:
		ins.Op = OpXLATB
		return
	}

	if op >= 0xD8 && op <= 0xDF {
		// FPU escape - consume the ModR/M (and any memory displacement)
		// so instruction length stays correct, but execute as a no-op
		// (Open Question #2, DESIGN.md: no coprocessor model in scope).
		c.readModRM()
		ins.Op = OpNOP
		return
	}

	ins.Op = OpInvalid
}

// m0FF reads and returns the ModR/M for 0xFF's group so decodeGroupFF can
// branch on the reg field before deciding the operand width of Dst.
func m0FF(c *decodeCursor) modRM { return c.readModRM() }

func decodeShortRel(c *decodeCursor, ins *Instruction) {
	rel := int8(c.u8())
	ins.Dst = Operand{Kind: OperKindRel, RelTarget: uint16(int32(ins.Off) + int32(c.n) + int32(rel))}
}

func decodeShortRel16(c *decodeCursor, ins *Instruction) {
	rel := int16(c.u16())
	ins.Dst = Operand{Kind: OperKindRel, RelTarget: uint16(int32(ins.Off) + int32(c.n) + int32(rel))}
}

// decodeReg/decodeRM build an Operand for a register or r/m ModR/M field
// given a size selector: 1 (8-bit), 0 (16/32-bit per ins.OperandSize).
func decodeReg(ins *Instruction, idx byte, sz byte) Operand {
	if sz == 1 {
		return regOperand8(idx)
	}
	return wordRegOperand(ins, idx)
}

func decodeRM(ins *Instruction, m modRM, sz byte) Operand {
	if m.isMem {
		return m.oper
	}
	return decodeReg(ins, m.rm, sz)
}

func decodeAluRow(c *decodeCursor, ins *Instruction, op byte) {
	row := op >> 3
	form := op & 0x07
	ins.Op = aluOps[row]
	switch form {
	case 0: // Eb, Gb
		m := c.readModRM()
		ins.Dst, ins.Src = decodeRM(ins, m, 1), decodeReg(ins, m.reg, 1)
	case 1: // Ev, Gv
		m := c.readModRM()
		ins.Dst, ins.Src = decodeRM(ins, m, 0), decodeReg(ins, m.reg, 0)
	case 2: // Gb, Eb
		m := c.readModRM()
		ins.Dst, ins.Src = decodeReg(ins, m.reg, 1), decodeRM(ins, m, 1)
	case 3: // Gv, Ev
		m := c.readModRM()
		ins.Dst, ins.Src = decodeReg(ins, m.reg, 0), decodeRM(ins, m, 0)
	case 4: // AL, Ib
		imm := c.u8()
		ins.Dst, ins.Src = regOperand8(0), Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}
	case 5: // AX/EAX, Iv
		if wide(ins) == 4 {
			imm := c.u32()
			ins.Dst, ins.Src = regOperand32(0), Operand{Kind: OperKindImm, Imm: imm, Size: 4}
		} else {
			imm := c.u16()
			ins.Dst, ins.Src = regOperand16(0), Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 2}
		}
	}
}

func decodeGroup1(c *decodeCursor, ins *Instruction, op byte) {
	m := c.readModRM()
	ins.Op = aluOps[m.reg]
	switch op {
	case 0x80:
		ins.Dst = decodeRM(ins, m, 1)
		imm := c.u8()
		ins.Src = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}
	case 0x81:
		ins.Dst = decodeRM(ins, m, 0)
		if wide(ins) == 4 {
			imm := c.u32()
			ins.Src = Operand{Kind: OperKindImm, Imm: imm, Size: 4}
		} else {
			imm := c.u16()
			ins.Src = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 2}
		}
	case 0x83:
		ins.Dst = decodeRM(ins, m, 0)
		imm := uint32(uint16(int16(int8(c.u8()))))
		sz := 2
		if wide(ins) == 4 {
			imm = uint32(int32(int8(byte(imm))))
			sz = 4
		}
		ins.Src = Operand{Kind: OperKindImm, Imm: imm, Size: sz}
	}
}

func decodeShiftGroup(c *decodeCursor, ins *Instruction, op byte) {
	m := c.readModRM()
	ins.Op = shiftOps[m.reg]
	sz := byte(1)
	if op == 0xC1 || op == 0xD1 || op == 0xD3 {
		sz = 0
	}
	ins.Dst = decodeRM(ins, m, sz)
	switch op {
	case 0xC0, 0xC1:
		imm := c.u8()
		ins.Src = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}
	case 0xD0, 0xD1:
		ins.Src = Operand{Kind: OperKindImm, Imm: 1, Size: 1}
	case 0xD2, 0xD3:
		ins.Src = regOperand8(byte(RegCL))
	}
}

func decodeGroup3(c *decodeCursor, ins *Instruction, op byte) {
	m := c.readModRM()
	sz := byte(1)
	if op == 0xF7 {
		sz = 0
	}
	dst := decodeRM(ins, m, sz)
	switch m.reg {
	case 0, 1:
		ins.Op = OpTEST
		ins.Dst = dst
		if sz == 1 {
			imm := c.u8()
			ins.Src = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}
		} else if wide(ins) == 4 {
			imm := c.u32()
			ins.Src = Operand{Kind: OperKindImm, Imm: imm, Size: 4}
		} else {
			imm := c.u16()
			ins.Src = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 2}
		}
	case 2:
		ins.Op, ins.Dst = OpNOT, dst
	case 3:
		ins.Op, ins.Dst = OpNEG, dst
	case 4:
		ins.Op, ins.Dst = OpMUL, dst
	case 5:
		ins.Op, ins.Dst = OpIMUL, dst
	case 6:
		ins.Op, ins.Dst = OpDIV, dst
	case 7:
		ins.Op, ins.Dst = OpIDIV, dst
	}
}

func decodeGroupFF(c *decodeCursor, ins *Instruction, m modRM) {
	switch m.reg {
	case 0:
		ins.Op = OpINC
		ins.Dst = decodeRM(ins, m, 0)
	case 1:
		ins.Op = OpDEC
		ins.Dst = decodeRM(ins, m, 0)
	case 2:
		ins.Op = OpCALL
		ins.Dst = decodeRM(ins, m, 0)
	case 3:
		ins.Op = OpCALLF
		ins.Dst = decodeRM(ins, m, 0)
	case 4:
		ins.Op = OpJMP
		ins.Dst = decodeRM(ins, m, 0)
	case 5:
		ins.Op = OpJMPF
		ins.Dst = decodeRM(ins, m, 0)
	case 6:
		ins.Op = OpPUSH
		ins.Dst = decodeRM(ins, m, 0)
	default:
		ins.Op = OpInvalid
	}
}

// btGroupOps lists the BT-family mnemonics for the 0x0F 0xBA group-8
// reg-field selector (slots 0-3 unused/invalid in real hardware).
var btGroupOps = [8]Op{OpInvalid, OpInvalid, OpInvalid, OpInvalid, OpBT, OpBTS, OpBTR, OpBTC}

// decodeTwoByte handles the 0x0F-prefixed extended opcode map: near Jcc
// (0x80-0x8F), SETcc (0x90-0x9F), FS/GS segment push/pop, the BT family,
// BSF, register-form IMUL, MOVZX/MOVSX and SHLD/SHRD, per spec.md's
// opcode-group breakdown. Anything else still unrecognized degrades to
// OpInvalid; its length covers both opcode bytes already consumed.
func decodeTwoByte(c *decodeCursor, ins *Instruction) {
	op2 := c.u8()
	switch {
	case op2 >= 0x80 && op2 <= 0x8F:
		ins.Op = OpJCC
		ins.Cond = jccConds[op2-0x80]
		decodeShortRel16(c, ins)
		return
	case op2 >= 0x90 && op2 <= 0x9F:
		m := c.readModRM()
		ins.Op = OpSETCC
		ins.Cond = jccConds[op2-0x90]
		ins.Dst = decodeRM(ins, m, 1)
		return
	}

	switch op2 {
	case 0xA0:
		ins.Op = OpPUSH
		ins.Dst = segOperand(byte(SegFS))
		return
	case 0xA1:
		ins.Op = OpPOP
		ins.Dst = segOperand(byte(SegFS))
		return
	case 0xA8:
		ins.Op = OpPUSH
		ins.Dst = segOperand(byte(SegGS))
		return
	case 0xA9:
		ins.Op = OpPOP
		ins.Dst = segOperand(byte(SegGS))
		return
	case 0xA3:
		m := c.readModRM()
		ins.Op = OpBT
		ins.Dst, ins.Src = decodeRM(ins, m, 0), decodeReg(ins, m.reg, 0)
		return
	case 0xAB:
		m := c.readModRM()
		ins.Op = OpBTS
		ins.Dst, ins.Src = decodeRM(ins, m, 0), decodeReg(ins, m.reg, 0)
		return
	case 0xB3:
		m := c.readModRM()
		ins.Op = OpBTR
		ins.Dst, ins.Src = decodeRM(ins, m, 0), decodeReg(ins, m.reg, 0)
		return
	case 0xBB:
		m := c.readModRM()
		ins.Op = OpBTC
		ins.Dst, ins.Src = decodeRM(ins, m, 0), decodeReg(ins, m.reg, 0)
		return
	case 0xBA:
		m := c.readModRM()
		ins.Op = btGroupOps[m.reg]
		ins.Dst = decodeRM(ins, m, 0)
		imm := c.u8()
		ins.Src = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}
		return
	case 0xBC:
		m := c.readModRM()
		ins.Op = OpBSF
		ins.Dst, ins.Src = decodeReg(ins, m.reg, 0), decodeRM(ins, m, 0)
		return
	case 0xAF:
		m := c.readModRM()
		ins.Op = OpIMUL
		ins.Dst, ins.Src = decodeReg(ins, m.reg, 0), decodeRM(ins, m, 0)
		return
	case 0xB6:
		m := c.readModRM()
		ins.Op = OpMOVZX
		ins.Dst, ins.Src = decodeReg(ins, m.reg, 0), decodeRM(ins, m, 1)
		return
	case 0xB7:
		m := c.readModRM()
		ins.Op = OpMOVZX
		ins.Dst, ins.Src = decodeReg(ins, m.reg, 0), decodeRM(ins, m, 0)
		return
	case 0xBE:
		m := c.readModRM()
		ins.Op = OpMOVSX
		ins.Dst, ins.Src = decodeReg(ins, m.reg, 0), decodeRM(ins, m, 1)
		return
	case 0xBF:
		m := c.readModRM()
		ins.Op = OpMOVSX
		ins.Dst, ins.Src = decodeReg(ins, m.reg, 0), decodeRM(ins, m, 0)
		return
	case 0xA4:
		m := c.readModRM()
		ins.Op = OpSHLD
		ins.Dst, ins.Src = decodeRM(ins, m, 0), decodeReg(ins, m.reg, 0)
		imm := c.u8()
		ins.Src2 = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}
		return
	case 0xA5:
		m := c.readModRM()
		ins.Op = OpSHLD
		ins.Dst, ins.Src = decodeRM(ins, m, 0), decodeReg(ins, m.reg, 0)
		ins.Src2 = regOperand8(byte(RegCL))
		return
	case 0xAC:
		m := c.readModRM()
		ins.Op = OpSHRD
		ins.Dst, ins.Src = decodeRM(ins, m, 0), decodeReg(ins, m.reg, 0)
		imm := c.u8()
		ins.Src2 = Operand{Kind: OperKindImm, Imm: uint32(imm), Size: 1}
		return
	case 0xAD:
		m := c.readModRM()
		ins.Op = OpSHRD
		ins.Dst, ins.Src = decodeRM(ins, m, 0), decodeReg(ins, m.reg, 0)
		ins.Src2 = regOperand8(byte(RegCL))
		return
	}

	ins.Op = OpInvalid
}
