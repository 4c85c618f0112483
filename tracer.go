// tracer.go - the recursive-descent static-analysis program tracer.
//
// Grounded on original_source/disassembler/src/tracer.rs's algorithm
// (worklist of destinations, visited-offset tracking, three-way byte
// classification) and decoder.go's side-effect-free Decode contract that
// makes this possible without a live CPU. One documented divergence: the
// original sorts its collected instruction offsets descending and then
// relies on a second pass to restore ascending order; this tracer just
// collects into a map and sorts ascending once, directly - the quirk in
// the original is not reproduced here because spec.md's §4.7 asks for
// ascending output, not the original's two-pass workaround for getting
// there.

package dos86

import "sort"

// ByteKind classifies one byte of the traced address range.
type ByteKind int

const (
	ByteUnaccounted ByteKind = iota
	ByteInstructionStart
	ByteInstructionContinuation
)

// XRefKind identifies why one address refers to another.
type XRefKind int

const (
	XRefCall XRefKind = iota
	XRefJump
	XRefConditionalJump
)

// XRef records a single cross-reference: From branches to the owning
// address via a CALL/JMP/Jcc.
type XRef struct {
	From uint16
	Kind XRefKind
}

// Tracer performs recursive-descent static disassembly over one code
// segment, starting from one or more entry points (spec.md §4.7).
type Tracer struct {
	mmu *MMU
	seg uint16

	kind         map[uint16]ByteKind
	instructions map[uint16]Instruction
	xrefs        map[uint16][]XRef
	worklist     []uint16
	queued       map[uint16]bool
}

// NewTracer builds a tracer over one code segment.
func NewTracer(mmu *MMU, seg uint16) *Tracer {
	return &Tracer{
		mmu:          mmu,
		seg:          seg,
		kind:         make(map[uint16]ByteKind),
		instructions: make(map[uint16]Instruction),
		xrefs:        make(map[uint16][]XRef),
		queued:       make(map[uint16]bool),
	}
}

// AddEntryPoint seeds the worklist with a starting offset to trace from,
// without yet running the trace (call Run to drain the worklist).
func (t *Tracer) AddEntryPoint(off uint16) {
	if !t.queued[off] {
		t.queued[off] = true
		t.worklist = append(t.worklist, off)
	}
}

// Run drains the worklist, decoding and following every instruction
// reachable from the seeded entry points until nothing new is found.
func (t *Tracer) Run() {
	for len(t.worklist) > 0 {
		off := t.worklist[0]
		t.worklist = t.worklist[1:]
		t.traceFrom(off)
	}
}

func (t *Tracer) enqueue(off uint16, from uint16, kind XRefKind) {
	t.xrefs[off] = append(t.xrefs[off], XRef{From: from, Kind: kind})
	if !t.queued[off] {
		t.queued[off] = true
		t.worklist = append(t.worklist, off)
	}
}

// traceFrom decodes instructions sequentially from off until it hits
// previously-visited territory or a control-flow instruction that
// doesn't fall through (JMP, RET, RETF, IRET, HLT), following any
// branch targets it discovers along the way by enqueuing them.
func (t *Tracer) traceFrom(off uint16) {
	for {
		if t.kind[off] == ByteInstructionStart {
			return // already traced from here
		}
		ins, n := Decode(t.mmu, t.seg, off)
		if ins.Op == OpInvalid {
			// Leave as unaccounted; do not keep decoding garbage.
			return
		}
		t.kind[off] = ByteInstructionStart
		for i := 1; i < n; i++ {
			t.kind[off+uint16(i)] = ByteInstructionContinuation
		}
		t.instructions[off] = ins

		next := off + uint16(n)
		switch ins.Op {
		case OpJMP:
			if ins.Dst.Kind == OperKindRel {
				t.enqueue(ins.Dst.RelTarget, off, XRefJump)
			}
			return
		case OpJMPF, OpRET, OpRETF, OpIRET, OpHLT:
			return
		case OpCALL:
			if ins.Dst.Kind == OperKindRel {
				t.enqueue(ins.Dst.RelTarget, off, XRefCall)
			}
			off = next
			continue
		case OpJCC, OpLOOP, OpLOOPE, OpLOOPNE, OpJCXZ:
			t.enqueue(ins.Dst.RelTarget, off, XRefConditionalJump)
			off = next
			continue
		default:
			off = next
			continue
		}
	}
}

// Instructions returns the traced instructions ordered ascending by
// offset.
func (t *Tracer) Instructions() []Instruction {
	offs := make([]uint16, 0, len(t.instructions))
	for o := range t.instructions {
		offs = append(offs, o)
	}
	sort.Slice(offs, func(i, j int) bool { return offs[i] < offs[j] })
	out := make([]Instruction, 0, len(offs))
	for _, o := range offs {
		out = append(out, t.instructions[o])
	}
	return out
}

// XRefsTo returns the cross-references pointing at off, if any.
func (t *Tracer) XRefsTo(off uint16) []XRef { return t.xrefs[off] }

// Kind reports how off was classified.
func (t *Tracer) Kind(off uint16) ByteKind { return t.kind[off] }
