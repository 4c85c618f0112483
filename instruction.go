// instruction.go - the decoded instruction IR shared by the execution
// engine and the static-analysis tracer.
//
// spec.md §4.3 mandates a side-effect-free Decode(mmu, seg, off) ->
// (Instruction, length) contract used by both the live CPU and the
// recursive-descent tracer - a deliberate split from the teacher's fused
// Step()/fetchModRM()-does-it-all design in cpu_x86.go, where decoding and
// execution happen in the same pass. The Op/Operand tagged union below is
// the structured replacement for that fused design; Amode mirrors
// cpu_x86.go's calcEffectiveAddress16 mode table, and RepPrefix/SegReg
// generalize the teacher's inline prefix-byte handling in Step() into
// named fields a non-executing consumer (the tracer) can also read.

package dos86

// Op identifies a decoded mnemonic.
type Op int

const (
	OpInvalid Op = iota

	OpADD
	OpOR
	OpADC
	OpSBB
	OpAND
	OpSUB
	OpXOR
	OpCMP
	OpTEST
	OpNOT
	OpNEG
	OpINC
	OpDEC
	OpMUL
	OpIMUL
	OpDIV
	OpIDIV

	OpSHL
	OpSHR
	OpSAR
	OpROL
	OpROR
	OpRCL
	OpRCR
	OpSHLD
	OpSHRD

	OpMOV
	OpLEA
	OpXCHG
	OpPUSH
	OpPOP
	OpPUSHF
	OpPOPF
	OpPUSHA
	OpPOPA
	OpLDS
	OpLES
	OpENTER
	OpLEAVE
	OpXLATB
	OpMOVZX
	OpMOVSX
	OpBOUND
	OpARPL
	OpSETCC
	OpBT
	OpBTS
	OpBTR
	OpBTC
	OpBSF

	OpJMP
	OpJMPF
	OpCALL
	OpCALLF
	OpRET
	OpRETF
	OpJCC
	OpLOOP
	OpLOOPE
	OpLOOPNE
	OpJCXZ

	OpINT
	OpINTO
	OpIRET

	OpCLC
	OpSTC
	OpCLI
	OpSTI
	OpCLD
	OpSTD
	OpCMC

	OpCBW
	OpCWD

	OpMOVSB
	OpMOVSW
	OpCMPSB
	OpCMPSW
	OpSTOSB
	OpSTOSW
	OpLODSB
	OpLODSW
	OpSCASB
	OpSCASW

	OpIN
	OpOUT
	OpINSB
	OpINSW
	OpOUTSB
	OpOUTSW

	OpHLT
	OpNOP
	OpWAIT

	OpDAA
	OpDAS
	OpAAA
	OpAAS
	OpAAM
	OpAAD
	OpSALC
)

// Cond identifies the condition predicate for a Jcc/loop-family opcode.
type Cond int

const (
	CondNone Cond = iota
	CondO
	CondNO
	CondB
	CondNB
	CondE
	CondNE
	CondBE
	CondNBE
	CondS
	CondNS
	CondP
	CondNP
	CondL
	CondNL
	CondLE
	CondNLE
)

// RepPrefix identifies a string-instruction repeat prefix.
type RepPrefix int

const (
	RepNone RepPrefix = iota
	RepRep            // 0xF3 with MOVS/STOS/LODS (unconditional)
	RepRepe           // 0xF3 with CMPS/SCAS (repeat while equal)
	RepRepne          // 0xF2 (repeat while not equal)
)

// Amode enumerates the eight 16-bit ModR/M memory addressing
// combinations, matching cpu_x86.go's calcEffectiveAddress16 mode table.
type Amode int

const (
	AmodeNone Amode = iota
	AmodeBxSi
	AmodeBxDi
	AmodeBpSi
	AmodeBpDi
	AmodeSi
	AmodeDi
	AmodeBp
	AmodeBx
)

// defaultAmodeSeg is the implicit segment for each addressing mode absent
// an override prefix: BP-based modes default to SS, everything else to DS
// (spec.md §4.3 "implicit segment" table).
var defaultAmodeSeg = map[Amode]SegReg{
	AmodeBxSi: SegDS,
	AmodeBxDi: SegDS,
	AmodeBpSi: SegSS,
	AmodeBpDi: SegSS,
	AmodeSi:   SegDS,
	AmodeDi:   SegDS,
	AmodeBp:   SegSS,
	AmodeBx:   SegDS,
}

// OperandKind tags the active field of an Operand.
type OperandKind int

const (
	OperKindNone OperandKind = iota
	OperKindReg8
	OperKindReg16
	OperKindReg32
	OperKindSeg
	OperKindImm
	OperKindMem  // amode-based: [amode + disp], segment-overridable
	OperKindAbs  // mod=00,rm=110 direct address / absolute displacement-only
	OperKindRel  // branch displacement, already sign-extended and IP-relative resolved by decoder
)

// Operand is the tagged union for one decoded instruction operand.
type Operand struct {
	Kind OperandKind

	Reg8  Reg8
	Reg16 Reg16
	Reg32 Reg32
	Seg   SegReg

	Imm uint32 // Imm8/16/32 value, or absolute address for OperKindAbs

	Amode Amode  // OperKindMem
	Disp  uint16 // displacement added to the amode's base/index sum

	Size int // operand width in bytes: 1, 2, or 4

	// RelTarget is the resolved absolute seg:offset target for
	// OperKindRel operands (JMP/CALL/Jcc/LOOP*). Offset only; CS is
	// unchanged for near branches and OpJMPF/OpCALLF supply FarSeg below.
	RelTarget uint16
	FarSeg    uint16 // far JMP/CALL target segment
}

// Instruction is the decoded, side-effect-free representation of one x86
// instruction, as returned by Decode.
type Instruction struct {
	Op   Op
	Cond Cond // valid when Op == OpJCC

	SegOverride    SegReg
	HasSegOverride bool

	Rep  RepPrefix
	Lock bool

	OperandSize int // 2 (16-bit, default) or 4 (66h prefix present)
	AddrSize    int // 2 (16-bit, default) or 4 (67h prefix present)

	Dst  Operand
	Src  Operand
	Src2 Operand // SHLD/SHRD's shift-count operand, IMUL's three-operand form

	// Len is the total encoded length in bytes including all prefixes,
	// opcode, ModR/M, SIB, displacement and immediate.
	Len int

	// Seg and Off are the segment:offset this instruction was decoded from,
	// recorded for the tracer's cross-reference bookkeeping.
	Seg uint16
	Off uint16
}

// EffectiveSeg returns the segment that applies to a memory operand,
// honoring a prefix override and otherwise falling back to the
// addressing mode's implicit default (spec.md §4.3), grounded on
// original_source/src/cpu/segment.rs's separate Segment resolution step
// rather than folding it inline per opcode as cpu_x86.go does.
func (ins *Instruction) EffectiveSeg(amode Amode) SegReg {
	if ins.HasSegOverride {
		return ins.SegOverride
	}
	if s, ok := defaultAmodeSeg[amode]; ok {
		return s
	}
	return SegDS
}
