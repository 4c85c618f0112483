// vga.go - the VGA/CGA video adapter model: mode table, palette/DAC, and
// the CRTC register file.
//
// Grounded on video_vga.go's VGAEngine (DAC write-latch/phase state
// machine, CRTC register array, Expand6BitTo8Bit, GetPaletteRGBA,
// rebuildPaletteCache) and vga_constants.go's VGA_VRAM_WINDOW/
// VGA_TEXT_WINDOW constants - reused verbatim since they're real PC
// hardware addresses, not teacher-specific conventions. Unlike the
// teacher's VGA_BASE=0xF1000 memory-mapped-window scheme (a convenience
// specific to its own 32-bit flat bus), this model places the
// framebuffer windows at their real linear addresses within the 1 MiB
// address space, per spec.md §4.6.

package dos86

// Real PC video memory windows.
const (
	VRAMWindow     = 0xA0000
	VRAMWindowSize = 0x10000
	TextWindowColor = 0xB8000
	TextWindowMono  = 0xB0000
	TextWindowSize  = 0x8000
	CGAPlaneSize    = 0x2000 // even/odd plane offsets within the text window
)

// VideoModeBlock describes one supported BIOS video mode (INT 10h AH=00).
type VideoModeBlock struct {
	Mode    byte
	Width   int
	Height  int
	Columns int
	Rows    int
	Text    bool
	Planar  bool // CGA 4-color modes: even/odd plane split
	BitsPerPixel int
}

// videoModes is the subset of standard BIOS modes spec.md §4.6 requires:
// 80x25 16-color text, 320x200 4-color CGA, 640x200 2-color CGA (mode
// 0x06), and 320x200 256-color (mode 0x13), the modes real DOS software
// overwhelmingly targets.
var videoModes = map[byte]VideoModeBlock{
	0x03: {Mode: 0x03, Columns: 80, Rows: 25, Text: true},
	0x04: {Mode: 0x04, Width: 320, Height: 200, Planar: true, BitsPerPixel: 2},
	0x06: {Mode: 0x06, Width: 640, Height: 200, Planar: true, BitsPerPixel: 1},
	0x13: {Mode: 0x13, Width: 320, Height: 200, BitsPerPixel: 8},
}

// RGB is one 8-bit-per-channel palette entry.
type RGB struct{ R, G, B byte }

// VGA holds the adapter's port-visible and memory-visible state: the
// active mode, the 256-entry DAC palette, the write/read latch state
// machines for port 0x3C9, and the 25-register CRTC file.
type VGA struct {
	mmu  *MMU
	diag *Logger

	mode VideoModeBlock

	palette    [256]RGB
	dacWriteIx byte
	dacPhase   int // 0=R,1=G,2=B pending within the current index
	dacReadIx  byte
	dacReadPhase int

	crtcIndex byte
	crtc      [25]byte

	retraceCounter uint32
}

// NewVGA builds a VGA model over mmu, starting in 80x25 text mode with
// the standard 16-color EGA/VGA default palette expanded to greyscale
// placeholders for entries beyond the first 16 (spec.md doesn't mandate
// a particular default 256-color palette - DOS programs that care always
// load their own via INT 10h AH=10h).
func NewVGA(mmu *MMU, diag *Logger) *VGA {
	v := &VGA{mmu: mmu, diag: diag, mode: videoModes[0x03]}
	v.resetPalette()
	return v
}

func (v *VGA) resetPalette() {
	ega16 := [16]RGB{
		{0, 0, 0}, {0, 0, 170}, {0, 170, 0}, {0, 170, 170},
		{170, 0, 0}, {170, 0, 170}, {170, 85, 0}, {170, 170, 170},
		{85, 85, 85}, {85, 85, 255}, {85, 255, 85}, {85, 255, 255},
		{255, 85, 85}, {255, 85, 255}, {255, 255, 85}, {255, 255, 255},
	}
	for i := 0; i < 16; i++ {
		v.palette[i] = ega16[i]
	}
	for i := 16; i < 256; i++ {
		g := byte(i)
		v.palette[i] = RGB{g, g, g}
	}
}

// SetMode changes the active video mode. An unrecognized mode number
// logs once and leaves the adapter in its previous mode (spec.md §7
// error kind 3: unimplemented video mode degrades rather than aborts).
func (v *VGA) SetMode(mode byte) {
	m, ok := videoModes[mode]
	if !ok {
		v.diag.WarnOnce("vga:mode", "unimplemented video mode %#x, ignoring", mode)
		return
	}
	v.mode = m
}

func (v *VGA) Mode() byte { return v.mode.Mode }
func (v *VGA) ModeBlock() VideoModeBlock { return v.mode }

// Expand6BitTo8Bit scales a 6-bit VGA DAC channel value (0-63) to 8-bit
// (0-255), matching video_vga.go's Expand6BitTo8Bit.
func Expand6BitTo8Bit(v byte) byte {
	v &= 0x3F
	return byte((uint16(v)*255 + 31) / 63)
}

func compress8BitTo6Bit(v byte) byte {
	return byte((uint16(v) * 63) / 255)
}

// GetPaletteEntry returns palette index i as 8-bit RGB.
func (v *VGA) GetPaletteEntry(i byte) RGB { return v.palette[i] }

// SetPaletteEntry sets palette index i from 8-bit RGB components.
func (v *VGA) SetPaletteEntry(i byte, c RGB) { v.palette[i] = c }

// PulseRetrace advances the adapter's internal scanline counter, used to
// derive port 0x3DA's vertical-retrace/display-enable bits (vga_ports.go)
// - called once per rendered frame by Machine.ProgressScanline.
func (v *VGA) PulseRetrace() { v.retraceCounter++ }
