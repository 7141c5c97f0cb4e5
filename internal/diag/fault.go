package diag

import "fmt"

// Subsystem classifies which layer raised a Fault.
type Subsystem string

const (
	Compile    Subsystem = "compile"
	Link       Subsystem = "link"
	RuntimeType Subsystem = "runtime-type"
	Resolution Subsystem = "resolution"
	Resource   Subsystem = "resource"
	IOFault    Subsystem = "io"
)

// Fault is the single error shape every script_assert-style failure takes.
// It is always returned, never panicked, across an exported API boundary.
type Fault struct {
	Sub     Subsystem
	File    string
	Line    int
	Message string
	cause   error
}

func (f *Fault) Error() string {
	if f.File != "" {
		return fmt.Sprintf("%s:%d: [%s] %s", f.File, f.Line, f.Sub, f.Message)
	}
	return fmt.Sprintf("[%s] %s", f.Sub, f.Message)
}

func (f *Fault) Unwrap() error { return f.cause }

// New builds a Fault. file/line identify the TinScript source location (not
// the Go call site) when known; pass "" / 0 for link/resource errors that
// have no associated script line.
func New(sub Subsystem, file string, line int, format string, args ...interface{}) *Fault {
	return &Fault{Sub: sub, File: file, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a Fault, preserving errors.Is/As chains the way
// a wrapped runtime/halt error wraps its underlying cause.
func Wrap(sub Subsystem, file string, line int, cause error, format string, args ...interface{}) *Fault {
	f := New(sub, file, line, format, args...)
	f.cause = cause
	return f
}
