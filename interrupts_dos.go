// interrupts_dos.go - INT 0x16 keyboard, INT 0x1A time, INT 0x21 DOS, and
// INT 0x33 mouse services.
//
// Grounded on original_source's documented INT 21h AH dispatch surface
// (dustbox-rs's debugger/tracer both special-case the common DOS calls
// by name) and spec.md §4.5's requirement that an unimplemented service
// log once and return a plausible default rather than aborting.

package dos86

func (b *BIOS) keyboard(cpu *CPU) {
	ah := cpu.Regs.AH()
	switch ah {
	case 0x00, 0x10: // wait for keystroke
		v, ok := b.Keyboard.Pop()
		if !ok {
			// No key available and nothing will ever arrive from a
			// batch-driven guest with no live input source - report a
			// plausible default (NUL) rather than spinning forever.
			cpu.Regs.SetAX(0)
			return
		}
		cpu.Regs.SetAX(v)
	case 0x01, 0x11: // check for keystroke
		v, ok := b.Keyboard.Peek()
		if !ok {
			cpu.Regs.SetFlag(FlagZF, true)
			return
		}
		cpu.Regs.SetAX(v)
		cpu.Regs.SetFlag(FlagZF, false)
	case 0x02, 0x12: // get shift flags
		cpu.Regs.SetAL(0)
	default:
		b.Diag.WarnOnce("int16:unimplemented", "INT 16h AH=%#x not implemented", ah)
	}
}

func (b *BIOS) time(cpu *CPU) {
	ah := cpu.Regs.AH()
	switch ah {
	case 0x00: // get system timer ticks
		ticks := b.BDA.TimerTicks()
		cpu.Regs.SetCX(uint16(ticks >> 16))
		cpu.Regs.SetDX(uint16(ticks))
		cpu.Regs.SetAL(0)
	case 0x01: // set system timer ticks
		ticks := uint32(cpu.Regs.CX())<<16 | uint32(cpu.Regs.DX())
		b.BDA.SetTimerTicks(ticks)
	case 0x02: // get real-time clock time
		t := b.Clock.Now()
		cpu.Regs.SetCH(byte(toBCD(t.Hour())))
		cpu.Regs.SetCL(byte(toBCD(t.Minute())))
		cpu.Regs.SetDH(byte(toBCD(t.Second())))
		cpu.Regs.SetDL(0)
		cpu.Regs.SetFlag(FlagCF, false)
	case 0x04: // get RTC date
		t := b.Clock.Now()
		cpu.Regs.SetCH(byte(toBCD(t.Year() / 100)))
		cpu.Regs.SetCL(byte(toBCD(t.Year() % 100)))
		cpu.Regs.SetDH(byte(toBCD(int(t.Month()))))
		cpu.Regs.SetDL(byte(toBCD(t.Day())))
		cpu.Regs.SetFlag(FlagCF, false)
	default:
		b.Diag.WarnOnce("int1a:unimplemented", "INT 1Ah AH=%#x not implemented", ah)
	}
}

func toBCD(v int) int { return (v/10)<<4 | (v % 10) }

// dos implements the handful of INT 21h functions DOS .COM/.EXE programs
// overwhelmingly depend on: console character I/O, string output, the
// program termination with exit code (AH=4Ch), and DOS version
// reporting. Anything else
// (file I/O, memory management, etc.) is an explicit spec.md Non-goal
// and logs once rather than faking a successful result that could mask
// a guest program's real failure.
func (b *BIOS) dos(cpu *CPU) {
	ah := cpu.Regs.AH()
	switch ah {
	case 0x01: // character input with echo
		v, _ := b.Keyboard.Pop()
		ch := byte(v)
		cpu.Regs.SetAL(ch)
		b.teletype(ch)
	case 0x02: // character output
		b.teletype(cpu.Regs.DL())
	case 0x06: // direct console I/O
		if cpu.Regs.DL() == 0xFF {
			v, ok := b.Keyboard.Pop()
			if !ok {
				cpu.Regs.SetFlag(FlagZF, true)
				cpu.Regs.SetAL(0)
				return
			}
			cpu.Regs.SetAL(byte(v))
			cpu.Regs.SetFlag(FlagZF, false)
		} else {
			b.teletype(cpu.Regs.DL())
		}
	case 0x09: // print $-terminated string at DS:DX
		seg, off := cpu.Regs.DS(), cpu.Regs.DX()
		for {
			ch := cpu.MMU.ReadByte(seg, off)
			if ch == '$' {
				break
			}
			b.teletype(ch)
			off++
		}
	case 0x0B: // check keyboard status
		if _, ok := b.Keyboard.Peek(); ok {
			cpu.Regs.SetAL(0xFF)
		} else {
			cpu.Regs.SetAL(0x00)
		}
	case 0x2C: // get system time
		t := b.Clock.Now()
		cpu.Regs.SetCH(byte(t.Hour()))
		cpu.Regs.SetCL(byte(t.Minute()))
		cpu.Regs.SetDH(byte(t.Second()))
		cpu.Regs.SetDL(byte(t.Nanosecond() / 10000000))
	case 0x30: // get DOS version
		cpu.Regs.SetAL(5)
		cpu.Regs.SetAH(0)
		cpu.Regs.SetBH(0xFF)
	case 0x4C: // terminate with exit code
		b.Terminated = true
		b.ExitCode = cpu.Regs.AL()
		cpu.Halted = true
	default:
		b.Diag.WarnOnce("int21:unimplemented", "INT 21h AH=%#x not implemented", ah)
	}
}

func (b *BIOS) mouse(cpu *CPU) {
	switch cpu.Regs.AX() {
	case 0x0000: // reset driver and read status
		b.Mouse = MouseState{Installed: true}
		cpu.Regs.SetAX(0xFFFF)
		cpu.Regs.SetBX(2) // two buttons
	case 0x0001: // show cursor
		b.Mouse.Visible = true
	case 0x0002: // hide cursor
		b.Mouse.Visible = false
	case 0x0003: // get position and button status
		cpu.Regs.SetBX(uint16(b.Mouse.Buttons))
		cpu.Regs.SetCX(uint16(b.Mouse.X))
		cpu.Regs.SetDX(uint16(b.Mouse.Y))
	case 0x0004: // set position
		cpu.Regs.SetAX(cpu.Regs.AX())
		b.Mouse.X = int16(cpu.Regs.CX())
		b.Mouse.Y = int16(cpu.Regs.DX())
	default:
		b.Diag.WarnOnce("int33:unimplemented", "INT 33h AX=%#x not implemented", cpu.Regs.AX())
	}
}
