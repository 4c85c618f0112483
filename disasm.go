// disasm.go - rendering decoded instructions and a Tracer's findings as
// human-readable assembly text.
//
// Grounded on debug_disasm_x86.go's x86Reg32/16/8 and x86SegRegs mnemonic
// tables (same register-name spelling convention) and
// original_source/disassembler/src/tracer.rs's listing format: db
// directives for unaccounted byte runs, and a blank line plus an xref
// comment line naming where it is reached from ahead of any address that
// is itself a jump/call target (marking a basic-block boundary).

package dos86

import (
	"fmt"
	"strings"
)

var reg16Names = [8]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}
var reg8Names = [8]string{"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"}
var reg32Names = [8]string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi"}
var segNames = [6]string{"es", "cs", "ss", "ds", "fs", "gs"}

var amodeNames = map[Amode]string{
	AmodeBxSi: "bx+si", AmodeBxDi: "bx+di", AmodeBpSi: "bp+si", AmodeBpDi: "bp+di",
	AmodeSi: "si", AmodeDi: "di", AmodeBp: "bp", AmodeBx: "bx",
}

var opMnemonics = map[Op]string{
	OpADD: "add", OpOR: "or", OpADC: "adc", OpSBB: "sbb", OpAND: "and",
	OpSUB: "sub", OpXOR: "xor", OpCMP: "cmp", OpTEST: "test", OpNOT: "not",
	OpNEG: "neg", OpINC: "inc", OpDEC: "dec", OpMUL: "mul", OpIMUL: "imul",
	OpDIV: "div", OpIDIV: "idiv", OpSHL: "shl", OpSHR: "shr", OpSAR: "sar",
	OpROL: "rol", OpROR: "ror", OpRCL: "rcl", OpRCR: "rcr", OpSHLD: "shld",
	OpSHRD: "shrd", OpMOV: "mov", OpLEA: "lea", OpXCHG: "xchg", OpPUSH: "push",
	OpPOP: "pop", OpPUSHF: "pushf", OpPOPF: "popf", OpJMP: "jmp", OpJMPF: "jmp far",
	OpCALL: "call", OpCALLF: "call far", OpRET: "ret", OpRETF: "retf",
	OpLOOP: "loop", OpLOOPE: "loope", OpLOOPNE: "loopne", OpJCXZ: "jcxz",
	OpINT: "int", OpINTO: "into", OpIRET: "iret", OpCLC: "clc", OpSTC: "stc",
	OpCLI: "cli", OpSTI: "sti", OpCLD: "cld", OpSTD: "std", OpCMC: "cmc",
	OpCBW: "cbw", OpCWD: "cwd", OpMOVSB: "movsb", OpMOVSW: "movsw",
	OpCMPSB: "cmpsb", OpCMPSW: "cmpsw", OpSTOSB: "stosb", OpSTOSW: "stosw",
	OpLODSB: "lodsb", OpLODSW: "lodsw", OpSCASB: "scasb", OpSCASW: "scasw",
	OpIN: "in", OpOUT: "out", OpHLT: "hlt", OpNOP: "nop", OpWAIT: "wait",
	OpDAA: "daa", OpDAS: "das", OpAAA: "aaa", OpAAS: "aas",
	OpPUSHA: "pusha", OpPOPA: "popa", OpLDS: "lds", OpLES: "les",
	OpENTER: "enter", OpLEAVE: "leave", OpXLATB: "xlatb",
	OpMOVZX: "movzx", OpMOVSX: "movsx", OpBOUND: "bound", OpARPL: "arpl",
	OpBT: "bt", OpBTS: "bts", OpBTR: "btr", OpBTC: "btc", OpBSF: "bsf",
	OpINSB: "insb", OpINSW: "insw", OpOUTSB: "outsb", OpOUTSW: "outsw",
	OpAAM: "aam", OpAAD: "aad", OpSALC: "salc",
}

var condSuffix = map[Cond]string{
	CondO: "o", CondNO: "no", CondB: "b", CondNB: "nb", CondE: "e", CondNE: "ne",
	CondBE: "be", CondNBE: "nbe", CondS: "s", CondNS: "ns", CondP: "p", CondNP: "np",
	CondL: "l", CondNL: "nl", CondLE: "le", CondNLE: "nle",
}

func formatOperand(op Operand) string {
	switch op.Kind {
	case OperKindReg8:
		return reg8Names[op.Reg8]
	case OperKindReg16:
		return reg16Names[op.Reg16]
	case OperKindReg32:
		return reg32Names[op.Reg32]
	case OperKindSeg:
		return segNames[op.Seg]
	case OperKindImm:
		return fmt.Sprintf("%#x", op.Imm)
	case OperKindAbs:
		return fmt.Sprintf("[%#x]", op.Imm)
	case OperKindMem:
		base := amodeNames[op.Amode]
		if op.Disp == 0 {
			return "[" + base + "]"
		}
		return fmt.Sprintf("[%s+%#x]", base, op.Disp)
	case OperKindRel:
		return fmt.Sprintf("%#x", op.RelTarget)
	}
	return "?"
}

// FormatInstruction renders one decoded instruction as a single line of
// assembly text, e.g. "mov ax, 0x1234" or "je 0x105".
func FormatInstruction(ins Instruction) string {
	mnemonic := opMnemonics[ins.Op]
	if ins.Op == OpJCC {
		mnemonic = "j" + condSuffix[ins.Cond]
	}
	if ins.Op == OpSETCC {
		mnemonic = "set" + condSuffix[ins.Cond]
	}
	if ins.Op == OpInvalid {
		return "(invalid)"
	}

	var operands []string
	if ins.Dst.Kind != OperKindNone {
		operands = append(operands, formatOperand(ins.Dst))
	}
	if ins.Src.Kind != OperKindNone {
		operands = append(operands, formatOperand(ins.Src))
	}

	line := mnemonic
	if len(operands) > 0 {
		line += " " + strings.Join(operands, ", ")
	}
	if ins.Rep == RepRep {
		line = "rep " + line
	} else if ins.Rep == RepRepe {
		line = "repe " + line
	} else if ins.Rep == RepRepne {
		line = "repne " + line
	}
	if ins.Lock {
		line = "lock " + line
	}
	return line
}

// Listing renders a tracer's findings as a full assembly listing:
// instructions in ascending offset order, xref comments on any address
// that is a branch target, a blank line ahead of each such target
// (basic-block separation), and "db" directives for unaccounted byte
// runs.
func (t *Tracer) Listing(rangeStart, rangeEnd uint16) string {
	var b strings.Builder
	off := rangeStart
	for off < rangeEnd {
		if refs := t.xrefs[off]; len(refs) > 0 {
			b.WriteString("\n")
			b.WriteString(formatXRefComment(refs))
		}
		switch t.kind[off] {
		case ByteInstructionStart:
			ins := t.instructions[off]
			fmt.Fprintf(&b, "%04X: %s\n", off, FormatInstruction(ins))
			off += uint16(ins.Len)
		case ByteInstructionContinuation:
			off++ // already rendered as part of its owning instruction
		default:
			start := off
			for off < rangeEnd && t.kind[off] == ByteUnaccounted {
				off++
			}
			fmt.Fprintf(&b, "%04X: db %s\n", start, formatDbRun(t.mmu, t.seg, start, off))
		}
	}
	return b.String()
}

func formatDbRun(mmu *MMU, seg uint16, start, end uint16) string {
	var parts []string
	for o := start; o < end; o++ {
		parts = append(parts, fmt.Sprintf("%#02x", mmu.ReadByte(seg, o)))
	}
	return strings.Join(parts, ", ")
}

func formatXRefComment(refs []XRef) string {
	var parts []string
	for _, r := range refs {
		kind := "jmp"
		switch r.Kind {
		case XRefCall:
			kind = "call"
		case XRefConditionalJump:
			kind = "jcc"
		}
		parts = append(parts, fmt.Sprintf("%s from %04X", kind, r.From))
	}
	return "; xref: " + strings.Join(parts, ", ") + "\n"
}
