package diag

import (
	"fmt"
	"runtime/debug"
)

// Handler is the embedder-supplied callback every Fault is routed through,
// the Go equivalent of a script_assert(context, condition, file, line,
// fmt, ...) embedder hook. Returning true means "abort": the caller should
// stop executing the current statement/script.
type Handler func(f *Fault) (abort bool)

// DefaultHandler logs the fault via the given Log and always aborts.
func DefaultHandler(l *Log) Handler {
	return func(f *Fault) bool {
		l.Errorf("%v", f)
		return true
	}
}

// Assert reports cond as a fault if false, invoking handler. It returns an
// error (non-nil exactly when cond is false) so callers propagate it as an
// ordinary Go error rather than panicking, surfacing script faults through a
// sum-typed result instead of aborting the process.
func Assert(handler Handler, cond bool, sub Subsystem, file string, line int, format string, args ...interface{}) error {
	if cond {
		return nil
	}
	f := New(sub, file, line, format, args...)
	if handler != nil {
		handler(f)
	}
	return f
}

// internalError is panicked (never returned) for invariant violations that
// indicate a bug in the compiler/VM itself rather than a script error --
// e.g. the count-only and emit passes disagreeing on size. It is recovered
// exactly at the Isolate/Exec boundary.
type internalError struct {
	msg string
}

func (e internalError) Error() string { return "internal error: " + e.msg }

// Internal panics with an internalError; call this only for conditions that
// can never legitimately occur from script input, such as a two-pass
// compile size mismatch or a duplicate stack-var offset.
func Internal(format string, args ...interface{}) {
	panic(internalError{fmt.Sprintf(format, args...)})
}

// Isolate runs f, converting any panic (including runtime.Goexit and the
// internalError panics raised by Internal) into a returned error, keeping a
// single goroutine's panic from crashing the embedding host. name identifies
// the boundary for diagnostics (e.g. "exec_script", "exec_command",
// "scheduled-call").
func Isolate(name string, f func() error) (err error) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		completed := false
		defer func() {
			if e := recover(); e != nil {
				if ie, ok := e.(internalError); ok {
					err = fmt.Errorf("%s: %w", name, ie)
					return
				}
				err = fmt.Errorf("%s: panic: %v\n%s", name, e, debug.Stack())
				return
			}
			if !completed {
				err = fmt.Errorf("%s: goroutine exited via runtime.Goexit", name)
			}
		}()
		err = f()
		completed = true
	}()
	<-done
	return err
}
