// dosrun - runs a .COM/.EXE image to completion (HLT, a fatal error, or
// DOS AH=4Ch) and prints the final register state.
//
// A thin flag-based front end over the dos86 library, grounded on the
// teacher's own flag usage pattern in its test harnesses and its
// "boilerplate main, real work lives in the library" main.go shape.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dos86vm/dos86"
)

func main() {
	maxInstructions := flag.Int("max", 10_000_000, "maximum instructions to execute before giving up")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: dosrun [-max N] <program.com|program.exe>")
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "dosrun: %v\n", err)
		os.Exit(1)
	}

	m := dos86.NewMachine(dos86.MachineConfig{Stdout: os.Stdout})
	if err := m.Load(data); err != nil {
		fmt.Fprintf(os.Stderr, "dosrun: %v\n", err)
		os.Exit(1)
	}

	executed := 0
	for executed < *maxInstructions && !m.Halted() {
		executed += m.ExecuteInstructions(1)
	}

	fmt.Println(m.String())
	if fatal, err := m.Fatal(); fatal {
		fmt.Fprintf(os.Stderr, "dosrun: fatal: %v\n", err)
		os.Exit(1)
	}
	if done, code := m.Terminated(); done {
		os.Exit(int(code))
	}
	if !m.Halted() {
		fmt.Fprintf(os.Stderr, "dosrun: instruction budget exhausted after %d instructions\n", executed)
		os.Exit(1)
	}
}
