// machine.go - top-level wiring: the assembled DOS machine a host
// embeds.
//
// Grounded on cpu_x86_runner.go's CPUX86Runner/X86BusAdapter (the
// teacher's own "assemble CPU + bus + VGA into one thing the outside
// world drives" top-level type) and its execMu/execDone/execActive
// concurrency pattern for excluding a concurrent render from a running
// batch - generalized here to use golang.org/x/sync/singleflight so
// concurrent RenderFrame callers collapse onto one in-flight render
// instead of hand-rolled channel bookkeeping (spec.md §5).

package dos86

import (
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/singleflight"
)

// MachineConfig configures a new Machine. LoadSegment lets a test
// harness pin a deterministic load address; zero picks 0x1000.
type MachineConfig struct {
	LoadSegment uint16
	Clock       Clock
	Stdout      io.Writer
}

// Machine is the assembled CPU + memory + VGA + BIOS service table a
// host embeds to run a single DOS program.
type Machine struct {
	Mem  *Memory
	MMU  *MMU
	CPU  *CPU
	VGA  *VGA
	BDA  *BDA
	BIOS *BIOS
	Diag *Logger

	loadSeg uint16

	mu    sync.Mutex // guards CPU/memory state against a concurrent RenderFrame
	group singleflight.Group
}

// NewMachine builds a fully wired, freshly reset Machine.
func NewMachine(cfg MachineConfig) *Machine {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.Stdout == nil {
		cfg.Stdout = io.Discard
	}
	if cfg.LoadSegment == 0 {
		cfg.LoadSegment = 0x1000
	}

	diag := NewLogger()
	mem := NewMemory()
	mmu := NewMMU(mem)
	vga := NewVGA(mmu, diag)
	bda := NewBDA(mmu)
	bios := NewBIOS(vga, bda, cfg.Clock, cfg.Stdout, diag)
	cpu := NewCPU(mmu, vga, diag)
	cpu.Services = bios

	m := &Machine{
		Mem: mem, MMU: mmu, CPU: cpu, VGA: vga, BDA: bda, BIOS: bios,
		Diag: diag, loadSeg: cfg.LoadSegment,
	}
	m.HardReset()
	return m
}

// HardReset clears all machine state as if powered on cold: memory,
// registers, VGA mode/palette, and the BDA defaults.
func (m *Machine) HardReset() {
	m.Mem.Reset()
	m.CPU.Reset()
	*m.VGA = *NewVGA(m.MMU, m.Diag)
	m.BDA.Reset()
	m.BIOS.Terminated = false
	m.BIOS.ExitCode = 0
	m.MMU.WriteVec(0, 0, 0) // IVT starts zeroed; BIOS-claimed vectors never need a real target
}

// LoadCOM loads a .COM image and points CS:IP/SS:SP at its entry,
// spec.md §6's .COM lifecycle.
func (m *Machine) LoadCOM(image []byte) error {
	seg, ip, err := LoadCOM(m.MMU, image, m.loadSeg)
	if err != nil {
		return err
	}
	m.CPU.Regs.SetCS(seg)
	m.CPU.Regs.SetDS(seg)
	m.CPU.Regs.SetES(seg)
	m.CPU.Regs.SetSS(seg)
	m.CPU.Regs.IP = ip
	m.CPU.Regs.SetSP(0xFFFE)
	return nil
}

// LoadExecutable loads an MZ/.EXE image and points CS:IP/SS:SP at its
// entry per the header, spec.md §6's .EXE lifecycle.
func (m *Machine) LoadExecutable(data []byte) error {
	cs, ip, ss, sp, err := LoadExecutable(m.MMU, data, m.loadSeg)
	if err != nil {
		return err
	}
	m.CPU.Regs.SetCS(cs)
	m.CPU.Regs.IP = ip
	m.CPU.Regs.SetSS(ss)
	m.CPU.Regs.SetSP(sp)
	m.CPU.Regs.SetDS(m.loadSeg - 0x10) // PSP segment precedes the load segment
	m.CPU.Regs.SetES(m.loadSeg - 0x10)
	return nil
}

// Load auto-detects .EXE vs .COM by signature and loads accordingly.
func (m *Machine) Load(data []byte) error {
	if IsEXE(data) {
		return m.LoadExecutable(data)
	}
	return m.LoadCOM(data)
}

// ExecuteInstruction decodes and executes exactly one instruction,
// returning it for tracing/debugging callers. It is a no-op once the
// CPU has halted or hit a fatal error.
func (m *Machine) ExecuteInstruction() Instruction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CPU.Halted {
		return Instruction{Op: OpHLT}
	}
	return m.CPU.Step()
}

// ExecuteInstructions runs up to n instructions, stopping early if the
// CPU halts (HLT, a fatal error, or DOS AH=4Ch termination). It returns
// the number actually executed, the host-driven batching model spec.md
// §5 describes.
func (m *Machine) ExecuteInstructions(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := 0
	for ; i < n; i++ {
		if m.CPU.Halted {
			break
		}
		m.CPU.Step()
	}
	return i
}

// ExecuteFrame runs a fixed instruction budget representing one video
// frame's worth of guest execution and then advances the VGA's retrace
// counter, the unit a host's main loop typically drives the machine in.
func (m *Machine) ExecuteFrame(instructionsPerFrame int) int {
	n := m.ExecuteInstructions(instructionsPerFrame)
	m.ProgressScanline()
	return n
}

// ProgressScanline pulses the VGA's internal scanline counter, the
// source of port 0x3DA's retrace bits.
func (m *Machine) ProgressScanline() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VGA.PulseRetrace()
}

// RenderFrame composites the current VRAM into f. Concurrent callers
// requesting a render while one is already in flight are collapsed onto
// the same underlying render via singleflight, and all see the same
// result, rather than each re-walking VRAM (spec.md §5's framebuffer
// read concurrency note).
func (m *Machine) RenderFrame() (*Frame, error) {
	v, err, _ := m.group.Do("render", func() (interface{}, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		f := m.VGA.NewFrame()
		m.VGA.RenderFrame(f)
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Frame), nil
}

// InjectKey enqueues one scancode+ASCII keyboard event for INT 16h/21h
// to consume, the host's way of feeding guest keyboard input (spec.md
// §4.5).
func (m *Machine) InjectKey(scanAndAscii uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BIOS.Keyboard.Push(scanAndAscii)
}

// InjectMouse updates the mouse position and button mask INT 33h reports.
func (m *Machine) InjectMouse(x, y int16, buttons byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BIOS.Mouse.X = x
	m.BIOS.Mouse.Y = y
	m.BIOS.Mouse.Buttons = buttons
}

// Halted reports whether the guest has stopped executing (HLT, a fatal
// error, or DOS termination).
func (m *Machine) Halted() bool { return m.CPU.Halted }

// Terminated reports whether the guest called DOS AH=4Ch, and its exit
// code if so.
func (m *Machine) Terminated() (bool, byte) { return m.BIOS.Terminated, m.BIOS.ExitCode }

// Fatal reports whether the machine halted due to a fatal condition
// (e.g. divide by zero) rather than HLT or a clean DOS exit, and the
// triggering error if so.
func (m *Machine) Fatal() (bool, error) { return m.CPU.Fatal != nil, m.CPU.Fatal }

// String renders a brief machine-state summary for debugging output.
func (m *Machine) String() string {
	r := &m.CPU.Regs
	return fmt.Sprintf("CS:IP=%04X:%04X AX=%04X BX=%04X CX=%04X DX=%04X SP=%04X FLAGS=%04X halted=%v",
		r.CS(), r.IP, r.AX(), r.BX(), r.CX(), r.DX(), r.SP(), r.PackFlags(), m.CPU.Halted)
}
