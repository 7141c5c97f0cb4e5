// Package diag is TinScript's diagnostic channel: structured logging on top
// of go.uber.org/zap, plus the single script_assert-style fault path every
// compile/link/runtime error in the module funnels through.
package diag

import (
	"fmt"

	"go.uber.org/zap"
)

// Log is the per-ScriptContext leveled logger: a mark-prefix convention
// backed by zap instead of a hand-rolled writer.
type Log struct {
	z *zap.Logger

	markWidth int
}

// NewLog wraps a zap core. Pass zap.NewNop() for a silent context.
func NewLog(z *zap.Logger) *Log {
	if z == nil {
		z = zap.NewNop()
	}
	return &Log{z: z}
}

// Tracef logs an opcode/compile step trace line, a per-instruction trace.
func (l *Log) Tracef(mark, format string, args ...interface{}) {
	l.z.Debug(l.prefix(mark) + fmt.Sprintf(format, args...))
}

// Diagf logs a non-fatal diagnostic (e.g. a schedule firing, a cache hit).
func (l *Log) Diagf(mark, format string, args ...interface{}) {
	l.z.Info(l.prefix(mark) + fmt.Sprintf(format, args...))
}

// Errorf logs a recovered or reported error without raising a Fault.
func (l *Log) Errorf(format string, args ...interface{}) {
	l.z.Error(fmt.Sprintf(format, args...))
}

func (l *Log) prefix(mark string) string {
	if n := l.markWidth - len(mark); n > 0 {
		l.markWidth = len(mark) + n
		for i := 0; i < n; i++ {
			mark = string(mark[0]) + mark
		}
	} else if n < 0 {
		l.markWidth = len(mark)
	}
	return mark + " "
}

// Sync flushes the underlying zap core, called around halts and reads the
// same way an output stream gets flushed before either.
func (l *Log) Sync() {
	_ = l.z.Sync()
}
