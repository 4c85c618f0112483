// diag.go - diagnostic logging for the emulation core.
//
// Grounded on the teacher's fmt.Printf/os.Create diagnostic pattern in
// video_vga.go (vgaDebugLog) and cpu_x86.go's undefined-opcode warning:
// the core never panics on guest input, it logs once and degrades.

package dos86

import (
	"log"
	"os"
)

// Logger is the sink for recoverable-error diagnostics (§7 error kinds
// 3-4: unimplemented modes and service stubs log once and return
// plausible defaults rather than aborting the batch).
type Logger struct {
	l      *log.Logger
	warned map[string]bool
}

// NewLogger returns the core's diagnostic sink, writing to os.Stderr.
func NewLogger() *Logger {
	return &Logger{
		l:      log.New(os.Stderr, "dos86: ", 0),
		warned: make(map[string]bool),
	}
}

// Warnf logs a message unconditionally.
func (d *Logger) Warnf(format string, args ...any) {
	if d == nil {
		return
	}
	d.l.Printf(format, args...)
}

// WarnOnce logs a message the first time a given key is seen and is
// silent on subsequent calls with the same key - used for "unimplemented
// video mode" (§7.3) and "unimplemented service" (§7.4) diagnostics that
// would otherwise spam every frame or every call.
func (d *Logger) WarnOnce(key, format string, args ...any) {
	if d == nil {
		return
	}
	if d.warned[key] {
		return
	}
	d.warned[key] = true
	d.l.Printf(format, args...)
}
