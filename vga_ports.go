// vga_ports.go - I/O port access for the VGA/CGA adapter.
//
// Grounded on video_vga.go's HandleRead/HandleWrite (index+data register
// pairs, a latch that advances through three writes for a palette entry)
// and vga_constants.go's port-number constants (reused directly - these
// are real PC I/O ports, not teacher inventions).

package dos86

const (
	portSequencerIndex = 0x3C4
	portSequencerData  = 0x3C5
	portPELMask        = 0x3C6
	portPELReadIndex   = 0x3C7
	portPELWriteIndex  = 0x3C8
	portPELData        = 0x3C9
	portCRTCIndex      = 0x3D4
	portCRTCData       = 0x3D5
	portCGAStatus      = 0x3DA
)

// CGA status register bits (port 0x3DA).
const (
	statusDisplayDisabled = 1 << 0 // set during horizontal/vertical retrace
	statusVRetrace        = 1 << 3
)

// In8 implements the PortBus interface for the VGA adapter's ports.
// Unrecognized ports return 0xFF (open bus), matching real hardware's
// floating-bus-read behavior and cpu_x86_runner.go's default read stub.
func (v *VGA) In8(port uint16) byte {
	switch port {
	case portPELData:
		return v.readDACData()
	case portCRTCIndex:
		return v.crtcIndex
	case portCRTCData:
		return v.crtc[v.crtcIndex%25]
	case portCGAStatus:
		return v.statusByte()
	}
	return 0xFF
}

func (v *VGA) In16(port uint16) uint16 { return uint16(v.In8(port)) }

// Out8 implements the PortBus interface.
func (v *VGA) Out8(port uint16, val byte) {
	switch port {
	case portPELWriteIndex:
		v.dacWriteIx = val
		v.dacPhase = 0
	case portPELReadIndex:
		v.dacReadIx = val
		v.dacReadPhase = 0
	case portPELData:
		v.writeDACData(val)
	case portCRTCIndex:
		v.crtcIndex = val % 25
	case portCRTCData:
		v.crtc[v.crtcIndex%25] = val
	}
}

func (v *VGA) Out16(port uint16, val uint16) { v.Out8(port, byte(val)) }

// writeDACData consumes one 6-bit R/G/B component per call, advancing
// the write phase and, after the third (blue) component, committing the
// assembled RGB value to the palette and auto-incrementing the write
// index - the real VGA DAC's documented latch behavior, matched by
// video_vga.go's writeDACData.
func (v *VGA) writeDACData(val byte) {
	c := v.palette[v.dacWriteIx]
	switch v.dacPhase {
	case 0:
		c.R = Expand6BitTo8Bit(val)
	case 1:
		c.G = Expand6BitTo8Bit(val)
	case 2:
		c.B = Expand6BitTo8Bit(val)
	}
	v.palette[v.dacWriteIx] = c
	v.dacPhase++
	if v.dacPhase == 3 {
		v.dacPhase = 0
		v.dacWriteIx++
	}
}

func (v *VGA) readDACData() byte {
	c := v.palette[v.dacReadIx]
	var out byte
	switch v.dacReadPhase {
	case 0:
		out = compress8BitTo6Bit(c.R)
	case 1:
		out = compress8BitTo6Bit(c.G)
	case 2:
		out = compress8BitTo6Bit(c.B)
	}
	v.dacReadPhase++
	if v.dacReadPhase == 3 {
		v.dacReadPhase = 0
		v.dacReadIx++
	}
	return out
}

// statusByte derives port 0x3DA's retrace bits from the host-driven
// scanline counter (each PulseRetrace call, made by
// Machine.ProgressScanline and once per ExecuteFrame, counts as one
// scanline) rather than real timing, since this core has no pixel
// clock - a guest polling for vertical retrace still sees the bit toggle
// at a plausible rate.
func (v *VGA) statusByte() byte {
	const linesPerFrame = 262 // NTSC CGA/VGA total scanlines including retrace
	const vretraceLines = 20
	line := v.retraceCounter % linesPerFrame
	var b byte
	if line >= linesPerFrame-vretraceLines {
		b |= statusVRetrace | statusDisplayDisabled
	} else if line%8 == 0 {
		b |= statusDisplayDisabled // brief horizontal-retrace pulse
	}
	return b
}
