// exeinfo - prints the header fields of an MZ/.EXE image, or reports a
// plain .COM image as such.
//
// New code with no direct teacher analogue (the teacher has no
// executable-format concept at all); follows the same flag-based CLI
// shape as the other cmd/ front ends for consistency.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dos86vm/dos86"
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: exeinfo <program.com|program.exe>")
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "exeinfo: %v\n", err)
		os.Exit(1)
	}

	if !dos86.IsEXE(data) {
		fmt.Printf("%s: plain .COM image, %d bytes\n", flag.Arg(0), len(data))
		return
	}

	m := dos86.NewMachine(dos86.MachineConfig{})
	if err := m.LoadExecutable(data); err != nil {
		fmt.Fprintf(os.Stderr, "exeinfo: %v\n", err)
		os.Exit(1)
	}

	r := &m.CPU.Regs
	fmt.Printf("%s: MZ executable\n", flag.Arg(0))
	fmt.Printf("  entry CS:IP = %04X:%04X\n", r.CS(), r.IP)
	fmt.Printf("  initial SS:SP = %04X:%04X\n", r.SS(), r.SP())
	fmt.Printf("  file size = %d bytes\n", len(data))
}
