// bda.go - named accessors for the BIOS Data Area.
//
// Grounded on spec.md §4.1's BDA field table; offsets are the standard
// IBM PC/MS-DOS BDA layout (segment 0x0040) rather than anything in the
// teacher, which has no BIOS concept - the closest teacher analogue is
// vga_constants.go's named-constant style for hardware register offsets,
// applied here to BDA fields instead of VGA registers.

package dos86

const bdaSeg = 0x0040

const (
	bdaEquipmentList    = 0x10
	bdaVideoMode        = 0x49
	bdaColumns          = 0x4A
	bdaPageSize         = 0x4C
	bdaCRTStartAddr     = 0x4E
	bdaCursorPosBase    = 0x50 // 8 words, one per video page
	bdaCursorShape      = 0x60
	bdaActivePage       = 0x62
	bdaCRTCPort         = 0x63
	bdaRows             = 0x84 // rows-1, EGA/VGA only
	bdaCharHeight       = 0x85
	bdaKeyboardHead     = 0x1A
	bdaKeyboardTail     = 0x1C
	bdaKeyboardBufStart = 0x80
	bdaKeyboardBufEnd   = 0x82
	bdaTimerLow         = 0x6C
	bdaTimerHigh        = 0x6E
	bdaTimerOverflow    = 0x71
)

// BDA is a thin, named-field view over the BIOS Data Area at linear
// segment 0x0040, backed by the same MMU the CPU uses.
type BDA struct {
	mmu *MMU
}

func NewBDA(mmu *MMU) *BDA { return &BDA{mmu: mmu} }

func (b *BDA) VideoMode() byte      { return b.mmu.ReadByte(bdaSeg, bdaVideoMode) }
func (b *BDA) SetVideoMode(v byte)  { b.mmu.WriteByte(bdaSeg, bdaVideoMode, v) }
func (b *BDA) Columns() uint16      { return b.mmu.ReadWord(bdaSeg, bdaColumns) }
func (b *BDA) SetColumns(v uint16)  { b.mmu.WriteWord(bdaSeg, bdaColumns, v) }
func (b *BDA) PageSize() uint16     { return b.mmu.ReadWord(bdaSeg, bdaPageSize) }
func (b *BDA) SetPageSize(v uint16) { b.mmu.WriteWord(bdaSeg, bdaPageSize, v) }
func (b *BDA) CRTStartAddr() uint16 { return b.mmu.ReadWord(bdaSeg, bdaCRTStartAddr) }
func (b *BDA) SetCRTStartAddr(v uint16) {
	b.mmu.WriteWord(bdaSeg, bdaCRTStartAddr, v)
}
func (b *BDA) ActivePage() byte     { return b.mmu.ReadByte(bdaSeg, bdaActivePage) }
func (b *BDA) SetActivePage(v byte) { b.mmu.WriteByte(bdaSeg, bdaActivePage, v) }
func (b *BDA) Rows() byte           { return b.mmu.ReadByte(bdaSeg, bdaRows) + 1 }
func (b *BDA) SetRows(v byte)       { b.mmu.WriteByte(bdaSeg, bdaRows, v-1) }
func (b *BDA) CharHeight() byte     { return b.mmu.ReadByte(bdaSeg, bdaCharHeight) }
func (b *BDA) SetCharHeight(v byte) { b.mmu.WriteByte(bdaSeg, bdaCharHeight, v) }

// CursorPosition returns the (col, row) cursor position for video page
// 0-7, stored as one word per page starting at 0x0040:0x0050.
func (b *BDA) CursorPosition(page byte) (col, row byte) {
	off := bdaCursorPosBase + uint16(page&7)*2
	v := b.mmu.ReadWord(bdaSeg, off)
	return byte(v), byte(v >> 8)
}

func (b *BDA) SetCursorPosition(page, col, row byte) {
	off := bdaCursorPosBase + uint16(page&7)*2
	b.mmu.WriteWord(bdaSeg, off, uint16(col)|uint16(row)<<8)
}

func (b *BDA) CursorShape() uint16     { return b.mmu.ReadWord(bdaSeg, bdaCursorShape) }
func (b *BDA) SetCursorShape(v uint16) { b.mmu.WriteWord(bdaSeg, bdaCursorShape, v) }

func (b *BDA) EquipmentList() uint16     { return b.mmu.ReadWord(bdaSeg, bdaEquipmentList) }
func (b *BDA) SetEquipmentList(v uint16) { b.mmu.WriteWord(bdaSeg, bdaEquipmentList, v) }

// Keyboard buffer: a 16-word circular ring at 0x0040:0x001E with head
// and tail pointers at 0x1A/0x1C.
func (b *BDA) KeyboardHead() uint16     { return b.mmu.ReadWord(bdaSeg, bdaKeyboardHead) }
func (b *BDA) SetKeyboardHead(v uint16) { b.mmu.WriteWord(bdaSeg, bdaKeyboardHead, v) }
func (b *BDA) KeyboardTail() uint16     { return b.mmu.ReadWord(bdaSeg, bdaKeyboardTail) }
func (b *BDA) SetKeyboardTail(v uint16) { b.mmu.WriteWord(bdaSeg, bdaKeyboardTail, v) }

func (b *BDA) TimerTicks() uint32 {
	lo := b.mmu.ReadWord(bdaSeg, bdaTimerLow)
	hi := b.mmu.ReadWord(bdaSeg, bdaTimerLow+2)
	return uint32(lo) | uint32(hi)<<16
}

func (b *BDA) SetTimerTicks(v uint32) {
	b.mmu.WriteWord(bdaSeg, bdaTimerLow, uint16(v))
	b.mmu.WriteWord(bdaSeg, bdaTimerLow+2, uint16(v>>16))
}

// Reset populates the BDA with the values MS-DOS expects at cold boot:
// an 80x25 16-color text mode, keyboard ring pointing at its own buffer.
func (b *BDA) Reset() {
	b.SetVideoMode(0x03)
	b.SetColumns(80)
	b.SetRows(25)
	b.SetPageSize(0x1000)
	b.SetCharHeight(16)
	b.mmu.WriteWord(bdaSeg, bdaKeyboardBufStart, 0x001E)
	b.mmu.WriteWord(bdaSeg, bdaKeyboardBufEnd, 0x003E)
	b.SetKeyboardHead(0x001E)
	b.SetKeyboardTail(0x001E)
}
