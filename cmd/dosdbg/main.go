// dosdbg - an interactive debugger REPL over a loaded .COM/.EXE image.
//
// Command set (load/run/step into N/step over/reset/reg/bp/membp/
// hexdump/bindump/disasm/exit) and the breakpoint/watchpoint shapes are
// grounded on the teacher's debug_cpu_x86.go (ConditionalBreakpoint,
// Watchpoint) adapted from its 32-bit flat-address keys to segment:
// offset pairs, since this core has no flat address space. The raw-mode
// line editor is grounded on terminal_host.go's term.MakeRaw/term.Restore
// pairing, composed with golang.org/x/term's own term.NewTerminal reader
// for prompt/history handling rather than hand-rolling byte-at-a-time
// input.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/dos86vm/dos86"
)

// breakpoint mirrors the teacher's ConditionalBreakpoint, keyed by a
// CS:IP pair instead of a flat 32-bit address since this core has no
// single linear program counter.
type breakpoint struct {
	seg, off uint16
	hitCount uint64
}

// watchpoint mirrors the teacher's Watchpoint: a breakpoint that fires
// when one memory byte's value changes, checked after each instruction
// the run command executes.
type watchpoint struct {
	seg, off  uint16
	lastValue byte
}

// stdioReadWriter composes stdin/stdout into the io.ReadWriter
// term.NewTerminal requires for its line editor.
type stdioReadWriter struct {
	r *os.File
	w *os.File
}

func (s stdioReadWriter) Read(p []byte) (int, error)  { return s.r.Read(p) }
func (s stdioReadWriter) Write(p []byte) (int, error) { return s.w.Write(p) }

type debugger struct {
	m    *dos86.Machine
	term *term.Terminal
	bps  map[string]*breakpoint
	wps  map[string]*watchpoint
	path string
}

func main() {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		runPlain()
		return
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	t := term.NewTerminal(stdioReadWriter{os.Stdin, os.Stdout}, "dosdbg> ")
	d := &debugger{m: dos86.NewMachine(dos86.MachineConfig{Stdout: os.Stdout}), term: t, bps: map[string]*breakpoint{}, wps: map[string]*watchpoint{}}
	d.repl()
}

// runPlain is the fallback REPL used when stdin isn't a terminal (e.g.
// piped input in a test harness), reading plain lines instead of using
// term.NewTerminal's raw-mode editing.
func runPlain() {
	d := &debugger{m: dos86.NewMachine(dos86.MachineConfig{Stdout: os.Stdout}), bps: map[string]*breakpoint{}, wps: map[string]*watchpoint{}}
	d.replPlain()
}

func (d *debugger) repl() {
	for {
		line, err := d.term.ReadLine()
		if err != nil {
			return
		}
		if !d.dispatch(line) {
			return
		}
	}
}

func (d *debugger) replPlain() {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("dosdbg> ")
		if !scanner.Scan() {
			return
		}
		if !d.dispatch(scanner.Text()) {
			return
		}
	}
}

// dispatch runs one command line and reports whether the REPL should
// keep going.
func (d *debugger) dispatch(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	out := d.output()
	switch fields[0] {
	case "load":
		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: load <path>")
			return true
		}
		d.cmdLoad(fields[1])
	case "reset":
		d.m.HardReset()
		if d.path != "" {
			d.cmdLoad(d.path)
		}
		fmt.Fprintln(out, "reset")
	case "run":
		d.cmdRun()
	case "step":
		d.cmdStep(fields[1:])
	case "reg":
		fmt.Fprintln(out, d.m.String())
	case "bp":
		d.cmdBreak(fields[1:])
	case "membp":
		d.cmdWatch(fields[1:])
	case "hexdump":
		d.cmdHexdump(fields[1:])
	case "bindump":
		d.cmdBindump(fields[1:])
	case "disasm":
		d.cmdDisasm(fields[1:])
	case "exit", "quit":
		return false
	default:
		fmt.Fprintf(out, "unknown command: %s\n", fields[0])
	}
	return true
}

func (d *debugger) output() io.Writer {
	if d.term != nil {
		return d.term
	}
	return os.Stdout
}

func (d *debugger) cmdLoad(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(d.output(), "load: %v\n", err)
		return
	}
	if err := d.m.Load(data); err != nil {
		fmt.Fprintf(d.output(), "load: %v\n", err)
		return
	}
	d.path = path
	fmt.Fprintf(d.output(), "loaded %s (%d bytes), entry %04X:%04X\n", path, len(data), d.m.CPU.Regs.CS(), d.m.CPU.Regs.IP)
}

// cmdRun executes until a breakpoint/watchpoint fires, the machine
// halts, or a runaway instruction budget is hit.
func (d *debugger) cmdRun() {
	const budget = 50_000_000
	for i := 0; i < budget; i++ {
		if d.m.Halted() {
			fmt.Fprintln(d.output(), "halted: "+d.m.String())
			return
		}
		if bp := d.hitBreakpoint(); bp != nil {
			bp.hitCount++
			fmt.Fprintf(d.output(), "breakpoint hit at %04X:%04X (count=%d)\n", bp.seg, bp.off, bp.hitCount)
			return
		}
		d.m.ExecuteInstructions(1)
		if wp := d.hitWatchpoint(); wp != nil {
			fmt.Fprintf(d.output(), "watchpoint hit at %04X:%04X\n", wp.seg, wp.off)
			return
		}
	}
	fmt.Fprintln(d.output(), "run: instruction budget exhausted")
}

func (d *debugger) hitBreakpoint() *breakpoint {
	key := bpKey(d.m.CPU.Regs.CS(), d.m.CPU.Regs.IP)
	return d.bps[key]
}

func (d *debugger) hitWatchpoint() *watchpoint {
	for _, wp := range d.wps {
		v := d.m.MMU.ReadByte(wp.seg, wp.off)
		if v != wp.lastValue {
			wp.lastValue = v
			return wp
		}
	}
	return nil
}

// cmdStep implements "step into N" (default 1) and "step over", which
// runs to completion any CALL at the current IP rather than descending
// into it.
func (d *debugger) cmdStep(args []string) {
	if len(args) >= 1 && args[0] == "over" {
		ins, _ := dos86.Decode(d.m.MMU, d.m.CPU.Regs.CS(), d.m.CPU.Regs.IP)
		if ins.Op == dos86.OpCALL || ins.Op == dos86.OpCALLF {
			targetIP := d.m.CPU.Regs.IP + uint16(ins.Len)
			d.m.ExecuteInstruction()
			for !d.m.Halted() && d.m.CPU.Regs.IP != targetIP {
				d.m.ExecuteInstruction()
			}
		} else {
			d.m.ExecuteInstruction()
		}
		fmt.Fprintln(d.output(), d.m.String())
		return
	}

	n := 1
	if len(args) >= 1 {
		if parsed, err := strconv.Atoi(args[len(args)-1]); err == nil {
			n = parsed
		}
	}
	for i := 0; i < n && !d.m.Halted(); i++ {
		d.m.ExecuteInstruction()
	}
	fmt.Fprintln(d.output(), d.m.String())
}

func (d *debugger) cmdBreak(args []string) {
	if len(args) < 1 {
		for _, bp := range d.bps {
			fmt.Fprintf(d.output(), "  %04X:%04X (hits=%d)\n", bp.seg, bp.off, bp.hitCount)
		}
		return
	}
	seg, off, ok := parseSegOff(args[0], d.m.CPU.Regs.CS())
	if !ok {
		fmt.Fprintln(d.output(), "bp: expected seg:off or off")
		return
	}
	key := bpKey(seg, off)
	d.bps[key] = &breakpoint{seg: seg, off: off}
	fmt.Fprintf(d.output(), "breakpoint set at %04X:%04X\n", seg, off)
}

func (d *debugger) cmdWatch(args []string) {
	if len(args) < 1 {
		for _, wp := range d.wps {
			fmt.Fprintf(d.output(), "  %04X:%04X = %#02x\n", wp.seg, wp.off, wp.lastValue)
		}
		return
	}
	seg, off, ok := parseSegOff(args[0], d.m.CPU.Regs.DS())
	if !ok {
		fmt.Fprintln(d.output(), "membp: expected seg:off or off")
		return
	}
	v := d.m.MMU.ReadByte(seg, off)
	d.wps[bpKey(seg, off)] = &watchpoint{seg: seg, off: off, lastValue: v}
	fmt.Fprintf(d.output(), "watchpoint set at %04X:%04X (initial value %#02x)\n", seg, off, v)
}

func (d *debugger) cmdHexdump(args []string) {
	seg, off, length := d.dumpRange(args)
	buf := make([]byte, length)
	d.m.MMU.ReadBlock(seg, off, buf)
	for i := 0; i < len(buf); i += 16 {
		end := i + 16
		if end > len(buf) {
			end = len(buf)
		}
		fmt.Fprintf(d.output(), "%04X: % X\n", off+uint16(i), buf[i:end])
	}
}

func (d *debugger) cmdBindump(args []string) {
	seg, off, length := d.dumpRange(args)
	buf := make([]byte, length)
	d.m.MMU.ReadBlock(seg, off, buf)
	for i, b := range buf {
		fmt.Fprintf(d.output(), "%04X: %08b\n", off+uint16(i), b)
	}
}

func (d *debugger) dumpRange(args []string) (seg, off uint16, length int) {
	seg, off = d.m.CPU.Regs.DS(), 0
	length = 64
	if len(args) >= 1 {
		if s, o, ok := parseSegOff(args[0], d.m.CPU.Regs.DS()); ok {
			seg, off = s, o
		}
	}
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			length = n
		}
	}
	return seg, off, length
}

func (d *debugger) cmdDisasm(args []string) {
	seg := d.m.CPU.Regs.CS()
	off := d.m.CPU.Regs.IP
	count := 10
	if len(args) >= 1 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			count = n
		}
	}
	for i := 0; i < count; i++ {
		ins, n := dos86.Decode(d.m.MMU, seg, off)
		fmt.Fprintf(d.output(), "%04X: %s\n", off, dos86.FormatInstruction(ins))
		off += uint16(n)
	}
}

func bpKey(seg, off uint16) string { return fmt.Sprintf("%04X:%04X", seg, off) }

// parseSegOff parses either "SEG:OFF" or a bare "OFF" (using defaultSeg),
// both in hexadecimal.
func parseSegOff(s string, defaultSeg uint16) (seg, off uint16, ok bool) {
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		sv, err1 := strconv.ParseUint(s[:idx], 16, 16)
		ov, err2 := strconv.ParseUint(s[idx+1:], 16, 16)
		if err1 != nil || err2 != nil {
			return 0, 0, false
		}
		return uint16(sv), uint16(ov), true
	}
	ov, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, 0, false
	}
	return defaultSeg, uint16(ov), true
}
