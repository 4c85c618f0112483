// dostrace - recursive-descent disassembly listing for a .COM/.EXE
// image, without executing it.
//
// Grounded on the teacher's debug_disasm_x86.go mnemonic rendering,
// wired here to the static Tracer (tracer.go/disasm.go) instead of a
// live CPU.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dos86vm/dos86"
)

func main() {
	entry := flag.Uint("entry", 0x100, "entry point offset within the code segment")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: dostrace [-entry N] <program.com|program.exe>")
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "dostrace: %v\n", err)
		os.Exit(1)
	}

	m := dos86.NewMachine(dos86.MachineConfig{})
	if err := m.Load(data); err != nil {
		fmt.Fprintf(os.Stderr, "dostrace: %v\n", err)
		os.Exit(1)
	}

	seg := m.CPU.Regs.CS()
	tr := dos86.NewTracer(m.MMU, seg)
	tr.AddEntryPoint(uint16(*entry))
	tr.Run()

	fmt.Print(tr.Listing(0, 0xFFFF))
}
