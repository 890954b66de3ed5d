// Package tracelog wraps the standard log package behind a boolean
// toggle: every call site checks the flag before paying for formatting.
package tracelog

import "log"

// Logger gates log.Printf-shaped output behind an Enabled flag, set once
// from emu.Config at startup.
type Logger struct {
	Enabled bool
	prefix  string
}

func New(prefix string) *Logger {
	return &Logger{prefix: prefix}
}

func (l *Logger) Printf(format string, args ...any) {
	if l == nil || !l.Enabled {
		return
	}
	log.Printf(l.prefix+format, args...)
}
