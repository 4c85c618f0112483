// vga_render.go - compositing the adapter's VRAM into an RGBA frame.
//
// Grounded on video_vga.go's renderMode13h/renderModeX/renderTextMode
// family: each mode has its own pixel-unpacking rule, but they all
// write into one caller-owned RGBA buffer. Text-mode rendering here
// draws a solid block for each non-space character cell in its
// foreground color rather than rasterizing a ROM font glyph-by-glyph, as
// no font ROM is modeled; no diagnostic is logged for this. TextCell
// gives the raw (char, attribute) pair of a cell.

package dos86

// Frame is a flat RGBA8888 pixel buffer the caller owns; RenderFrame
// fills it in place and never retains a reference to it.
type Frame struct {
	Width, Height int
	Pix           []byte // len == Width*Height*4, row-major RGBA
}

// NewFrame allocates a Frame sized for the adapter's active mode.
func (v *VGA) NewFrame() *Frame {
	w, h := v.frameDimensions()
	return &Frame{Width: w, Height: h, Pix: make([]byte, w*h*4)}
}

func (v *VGA) frameDimensions() (int, int) {
	if v.mode.Text {
		// Render text cells at a fixed 8x16 glyph cell, the standard
		// VGA text-mode font cell size.
		return v.mode.Columns * 8, 25 * 16
	}
	return v.mode.Width, v.mode.Height
}

// RenderFrame composites the current VRAM contents into f according to
// the active mode. f must have been sized by NewFrame for this adapter's
// current mode; a mismatched size logs once and is a no-op.
func (v *VGA) RenderFrame(f *Frame) {
	w, h := v.frameDimensions()
	if f.Width != w || f.Height != h || len(f.Pix) != w*h*4 {
		v.diag.WarnOnce("vga:framesize", "RenderFrame called with mismatched frame size")
		return
	}
	switch {
	case v.mode.Text:
		v.renderText(f)
	case v.mode.Mode == 0x13:
		v.renderMode13h(f)
	case v.mode.Planar:
		v.renderPlanar(f)
	}
}

func (v *VGA) setPixel(f *Frame, x, y int, c RGB) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	i := (y*f.Width + x) * 4
	f.Pix[i] = c.R
	f.Pix[i+1] = c.G
	f.Pix[i+2] = c.B
	f.Pix[i+3] = 0xFF
}

// renderMode13h unpacks mode 0x13's linear 320x200 byte-per-pixel
// framebuffer at 0xA0000 through the DAC palette.
func (v *VGA) renderMode13h(f *Frame) {
	for y := 0; y < v.mode.Height; y++ {
		for x := 0; x < v.mode.Width; x++ {
			lin := uint32(VRAMWindow) + uint32(y*v.mode.Width+x)
			idx := v.mmu.ReadLinear(lin)
			v.setPixel(f, x, y, v.palette[idx])
		}
	}
}

// renderPlanar unpacks a CGA even/odd-plane mode (0x04 4-color, 0x06
// 2-color) stored at 0xB8000 with even scanlines at offset 0 and odd
// scanlines at offset 0x2000, the classic CGA interleave.
func (v *VGA) renderPlanar(f *Frame) {
	bytesPerRow := v.mode.Width * v.mode.BitsPerPixel / 8
	pixPerByte := 8 / v.mode.BitsPerPixel
	mask := byte(1<<v.mode.BitsPerPixel) - 1

	cgaPalette := [4]RGB{
		v.palette[0], v.palette[11], v.palette[13], v.palette[15],
	}

	for y := 0; y < v.mode.Height; y++ {
		planeOff := uint32(0)
		if y%2 == 1 {
			planeOff = CGAPlaneSize
		}
		rowBase := uint32(TextWindowColor) + planeOff + uint32((y/2)*bytesPerRow)
		for bx := 0; bx < bytesPerRow; bx++ {
			b := v.mmu.ReadLinear(rowBase + uint32(bx))
			for p := 0; p < pixPerByte; p++ {
				shift := 8 - v.mode.BitsPerPixel*(p+1)
				val := (b >> uint(shift)) & mask
				x := bx*pixPerByte + p
				if v.mode.BitsPerPixel == 2 {
					v.setPixel(f, x, y, cgaPalette[val])
				} else {
					if val != 0 {
						v.setPixel(f, x, y, v.palette[15])
					} else {
						v.setPixel(f, x, y, v.palette[0])
					}
				}
			}
		}
	}
}

// renderText draws each character cell as a solid foreground-color block
// on a background-color fill, reading the (char, attribute) word pairs
// from the color text window at 0xB8000; the mono window at 0xB0000 is
// not read.
func (v *VGA) renderText(f *Frame) {
	base := uint32(TextWindowColor)
	const cellW, cellH = 8, 16
	for row := 0; row < 25; row++ {
		for col := 0; col < v.mode.Columns; col++ {
			off := base + uint32((row*v.mode.Columns+col)*2)
			ch := v.mmu.ReadLinear(off)
			attr := v.mmu.ReadLinear(off + 1)
			fg := v.palette[attr&0x0F]
			bg := v.palette[(attr>>4)&0x07]
			x0, y0 := col*cellW, row*cellH
			for yy := 0; yy < cellH; yy++ {
				for xx := 0; xx < cellW; xx++ {
					if ch != ' ' && ch != 0 {
						v.setPixel(f, x0+xx, y0+yy, fg)
					} else {
						v.setPixel(f, x0+xx, y0+yy, bg)
					}
				}
			}
		}
	}
}

// TextCell returns the (character, attribute) pair at a text-mode cell,
// read from the color text window; used by INT 10h AH=08h
// (interrupts_video.go).
func (v *VGA) TextCell(col, row int) (ch, attr byte) {
	off := uint32(TextWindowColor) + uint32((row*v.mode.Columns+col)*2)
	return v.mmu.ReadLinear(off), v.mmu.ReadLinear(off + 1)
}
