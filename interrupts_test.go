package dos86

import (
	"bytes"
	"testing"
	"time"
)

func newTestBIOS(out *bytes.Buffer) (*BIOS, *CPU) {
	mem := NewMemory()
	mmu := NewMMU(mem)
	diag := NewLogger()
	vga := NewVGA(mmu, diag)
	bda := NewBDA(mmu)
	bda.Reset()
	clock := FixedClock{At: time.Date(2026, 7, 30, 12, 34, 56, 0, time.UTC)}
	bios := NewBIOS(vga, bda, clock, out, diag)
	cpu := NewCPU(mmu, vga, diag)
	cpu.Services = bios
	return bios, cpu
}

func TestBIOSHandleDispatchesKnownVectors(t *testing.T) {
	bios, cpu := newTestBIOS(&bytes.Buffer{})
	for _, v := range []byte{0x10, 0x13, 0x16, 0x1A, 0x21, 0x33} {
		if !bios.Handle(cpu, v) {
			t.Errorf("Handle(%#02x) = false, want true (recognized vector)", v)
		}
	}
	if bios.Handle(cpu, 0x80) {
		t.Error("Handle(0x80) = true, want false for an unrecognized vector")
	}
}

func TestBIOSTeletypeWritesCellAndAdvancesCursor(t *testing.T) {
	var out bytes.Buffer
	bios, cpu := newTestBIOS(&out)
	cpu.Regs.SetAH(0x0E)
	cpu.Regs.SetAL('A')
	bios.video(cpu)
	col, row := bios.BDA.CursorPosition(0)
	if col != 1 || row != 0 {
		t.Fatalf("cursor = (%d,%d) after one teletype char, want (1,0)", col, row)
	}
	ch, _ := bios.VGA.TextCell(0, 0)
	if ch != 'A' {
		t.Fatalf("TextCell(0,0) char = %q, want 'A'", ch)
	}
	if out.String() != "A" {
		t.Fatalf("stdout = %q, want \"A\"", out.String())
	}
}

func TestBIOSTeletypeCarriageReturnAndLinefeed(t *testing.T) {
	bios, cpu := newTestBIOS(&bytes.Buffer{})
	cpu.Regs.SetAH(0x0E)
	cpu.Regs.SetAL('X')
	bios.video(cpu)
	cpu.Regs.SetAL('\r')
	bios.video(cpu)
	cpu.Regs.SetAL('\n')
	bios.video(cpu)
	col, row := bios.BDA.CursorPosition(0)
	if col != 0 || row != 1 {
		t.Fatalf("cursor = (%d,%d) after X,CR,LF, want (0,1)", col, row)
	}
}

func TestBIOSSetGetCursorPosition(t *testing.T) {
	bios, cpu := newTestBIOS(&bytes.Buffer{})
	cpu.Regs.SetAH(0x02)
	cpu.Regs.SetBH(0)
	cpu.Regs.SetDL(40)
	cpu.Regs.SetDH(12)
	bios.video(cpu)
	cpu.Regs.SetAH(0x03)
	cpu.Regs.SetBH(0)
	bios.video(cpu)
	if cpu.Regs.DL() != 40 || cpu.Regs.DH() != 12 {
		t.Fatalf("cursor readback = (%d,%d), want (40,12)", cpu.Regs.DL(), cpu.Regs.DH())
	}
}

func TestBIOSKeyboardWaitReturnsZeroWhenEmpty(t *testing.T) {
	bios, cpu := newTestBIOS(&bytes.Buffer{})
	cpu.Regs.SetAH(0x00)
	bios.keyboard(cpu)
	if cpu.Regs.AX() != 0 {
		t.Fatalf("AX = %#04x on empty queue, want 0", cpu.Regs.AX())
	}
}

func TestBIOSKeyboardPopReturnsQueuedKey(t *testing.T) {
	bios, cpu := newTestBIOS(&bytes.Buffer{})
	bios.Keyboard.Push(0x1E61) // scancode 0x1E, ASCII 'a'
	cpu.Regs.SetAH(0x00)
	bios.keyboard(cpu)
	if cpu.Regs.AX() != 0x1E61 {
		t.Fatalf("AX = %#04x, want 0x1E61", cpu.Regs.AX())
	}
}

func TestBIOSKeyboardCheckSetsZFWhenEmpty(t *testing.T) {
	bios, cpu := newTestBIOS(&bytes.Buffer{})
	cpu.Regs.SetAH(0x01)
	bios.keyboard(cpu)
	if !cpu.Regs.ZF() {
		t.Fatal("expected ZF set when the keyboard buffer is empty")
	}
}

func TestBIOSTimeGetRTCTimeReportsBCD(t *testing.T) {
	bios, cpu := newTestBIOS(&bytes.Buffer{})
	cpu.Regs.SetAH(0x02)
	bios.time(cpu)
	if cpu.Regs.CH() != 0x12 { // hour 12 in BCD
		t.Fatalf("CH = %#02x, want BCD 0x12", cpu.Regs.CH())
	}
	if cpu.Regs.CL() != 0x34 { // minute 34 in BCD
		t.Fatalf("CL = %#02x, want BCD 0x34", cpu.Regs.CL())
	}
}

func TestBIOSDosPrintDollarString(t *testing.T) {
	var out bytes.Buffer
	bios, cpu := newTestBIOS(&out)
	msg := []byte("HELLO$")
	for i, b := range msg {
		cpu.MMU.WriteByte(cpu.Regs.DS(), uint16(i), b)
	}
	cpu.Regs.SetAH(0x09)
	cpu.Regs.SetDX(0)
	bios.dos(cpu)
	if out.String() != "HELLO" {
		t.Fatalf("stdout = %q, want %q", out.String(), "HELLO")
	}
}

func TestBIOSDosTerminateSetsHaltedAndExitCode(t *testing.T) {
	bios, cpu := newTestBIOS(&bytes.Buffer{})
	cpu.Regs.SetAH(0x4C)
	cpu.Regs.SetAL(7)
	bios.dos(cpu)
	if !cpu.Halted {
		t.Fatal("expected Halted set after DOS AH=4Ch")
	}
	if !bios.Terminated || bios.ExitCode != 7 {
		t.Fatalf("Terminated/ExitCode = %v/%d, want true/7", bios.Terminated, bios.ExitCode)
	}
}

func TestBIOSMouseResetReportsTwoButtons(t *testing.T) {
	bios, cpu := newTestBIOS(&bytes.Buffer{})
	cpu.Regs.SetAX(0x0000)
	bios.mouse(cpu)
	if cpu.Regs.AX() != 0xFFFF {
		t.Fatalf("AX = %#04x after mouse reset, want 0xFFFF (installed)", cpu.Regs.AX())
	}
	if cpu.Regs.BX() != 2 {
		t.Fatalf("BX = %d, want 2 buttons", cpu.Regs.BX())
	}
	if !bios.Mouse.Installed {
		t.Fatal("expected Mouse.Installed set after reset")
	}
}
