// interrupts_video.go - INT 0x10 video services.
//
// Grounded on video_vga.go's setMode/GetCursorPosition/SetPaletteEntry
// methods, called directly from the Go-native AH dispatch below instead
// of through guest-visible BIOS ROM code (see interrupts.go's package
// doc comment).

package dos86

func (b *BIOS) video(cpu *CPU) {
	ah := cpu.Regs.AH()
	switch ah {
	case 0x00: // set video mode
		mode := cpu.Regs.AL()
		b.VGA.SetMode(mode & 0x7F)
		b.BDA.SetVideoMode(mode & 0x7F)
		mb := b.VGA.ModeBlock()
		if mb.Text {
			b.BDA.SetColumns(uint16(mb.Columns))
		}
	case 0x01: // set cursor shape
		b.BDA.SetCursorShape(cpu.Regs.CX())
	case 0x02: // set cursor position
		b.BDA.SetCursorPosition(cpu.Regs.BH(), cpu.Regs.DL(), cpu.Regs.DH())
	case 0x03: // get cursor position
		col, row := b.BDA.CursorPosition(cpu.Regs.BH())
		cpu.Regs.SetDL(col)
		cpu.Regs.SetDH(row)
		cpu.Regs.SetCX(b.BDA.CursorShape())
	case 0x05: // set active display page
		b.BDA.SetActivePage(cpu.Regs.AL())
	case 0x08: // read character and attribute at cursor
		col, row := b.BDA.CursorPosition(cpu.Regs.BH())
		ch, attr := b.VGA.TextCell(int(col), int(row))
		cpu.Regs.SetAL(ch)
		cpu.Regs.SetAH(attr)
	case 0x09, 0x0A: // write character (and attribute) at cursor, no advance
		col, row := b.BDA.CursorPosition(cpu.Regs.BH())
		attr := cpu.Regs.BL()
		b.writeCell(int(col), int(row), cpu.Regs.AL(), attr)
	case 0x0E: // teletype output
		b.teletype(cpu.Regs.AL())
	case 0x0F: // get current video mode
		cpu.Regs.SetAL(b.VGA.Mode())
		cpu.Regs.SetAH(byte(b.BDA.Columns()))
		cpu.Regs.SetBH(0)
	case 0x10: // palette register set (subfunctions)
		b.palette(cpu)
	case 0x4F:
		b.Diag.WarnOnce("int10:vesa", "VESA (AH=4Fh) requested but not implemented")
		cpu.Regs.SetAH(0x01)
	default:
		b.Diag.WarnOnce("int10:unimplemented", "INT 10h AH=%#x not implemented", ah)
	}
}

func (b *BIOS) palette(cpu *CPU) {
	switch cpu.Regs.AL() {
	case 0x10: // set one palette register: accepted and ignored; DAC entries are set through ports 0x3C8/0x3C9
	case 0x12: // set block of DAC registers - left to direct port I/O
	case 0x1A: // get video display combination
		cpu.Regs.SetAL(0x1A)
		cpu.Regs.SetBL(0x08) // VGA with color analog display
	}
}

func (b *BIOS) writeCell(col, row int, ch, attr byte) {
	mb := b.VGA.ModeBlock()
	off := uint32(TextWindowColor) + uint32((row*mb.Columns+col)*2)
	b.VGA.mmu.WriteLinear(off, ch)
	b.VGA.mmu.WriteLinear(off+1, attr)
}

// teletype writes one character at the cursor and advances it, handling
// CR/LF/BS, matching the INT 10h AH=0Eh contract DOS's own console
// driver relies on.
func (b *BIOS) teletype(ch byte) {
	page := byte(0)
	col, row := b.BDA.CursorPosition(page)
	mb := b.VGA.ModeBlock()
	switch ch {
	case '\r':
		col = 0
	case '\n':
		row++
	case 0x08:
		if col > 0 {
			col--
		}
	default:
		b.writeCell(int(col), int(row), ch, 0x07)
		col++
	}
	if int(col) >= mb.Columns {
		col = 0
		row++
	}
	if int(row) >= 25 {
		row = 24
	}
	b.BDA.SetCursorPosition(page, col, row)
	if b.Out != nil {
		b.Out.WriteByte(ch)
		b.Out.Flush()
	}
}
