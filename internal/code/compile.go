package code

import (
	"tinscript/internal/ast"
	"tinscript/internal/diag"
	"tinscript/internal/emit"
	"tinscript/internal/opcode"
	"tinscript/internal/types"
)

// Compile lowers root (a parsed program's compile tree) to bytecode inside
// a fresh Block. It runs the count-only pass to size the buffer, then the
// emit pass, and treats any size mismatch between them as a fatal internal
// error -- this function panics via diag.Internal rather than returning it,
// since it indicates a bug in an eval() implementation, not a malformed
// script.
func Compile(reg *Registry, filename string, filenameHash uint32, root *ast.Node) (*Block, error) {
	b := reg.Begin(filename, filenameHash)

	counter := emit.NewCounter()
	size, err := root.Eval(counter, types.Void)
	if err != nil {
		reg.Abort(b)
		return nil, diag.Wrap(diag.Compile, filename, 0, err, "count pass failed")
	}
	if size != counter.Count {
		reg.Abort(b)
		diag.Internal("code: count pass returned %d but cursor advanced %d", size, counter.Count)
	}

	emitter := emit.NewEmitter(size)
	size2, err := root.Eval(emitter, types.Void)
	if err != nil {
		reg.Abort(b)
		return nil, diag.Wrap(diag.Compile, filename, 0, err, "emit pass failed")
	}
	if size2 != size || len(emitter.Buf) != size {
		reg.Abort(b)
		diag.Internal("code: emit pass wrote %d words, count pass sized %d", len(emitter.Buf), size)
	}

	defined := scanDefinedFunctions(emitter.Buf)
	reg.Finish(b, emitter.Buf, emitter.Lines, defined)
	return b, nil
}

// scanDefinedFunctions linearly walks the emitted buffer looking for
// FuncDecl instructions. ast always emits a FuncDecl inline at the point
// its declaration occurs, with a fixed operand width, so this is a plain
// structural scan -- no execution, no branch-following required -- building
// the defined_functions list a CodeBlock owns.
func scanDefinedFunctions(buf []int32) []FuncDef {
	var out []FuncDef
	ip := 0
	for ip < len(buf) {
		op := opcode.Op(buf[ip])
		if op == opcode.FuncDecl && ip+3 < len(buf) {
			out = append(out, FuncDef{
				FuncHash:    uint32(buf[ip+1]),
				NSHash:      uint32(buf[ip+2]),
				InstrOffset: int(buf[ip+3]),
			})
		}
		ip += 1 + operandWords(op)
	}
	return out
}

func operandWords(op opcode.Op) int {
	if op < 0 || int(op) >= len(opcode.OperandWords) {
		return 0
	}
	return opcode.OperandWords[op]
}

// NearestLine resolves a bytecode offset to the source line whose entry's
// Offset is the greatest one not exceeding offset, for fault reporting and a
// future debug transport -- the socket protocol itself is out of scope, but
// the line resolution it would need is not the transport itself.
func (b *Block) NearestLine(offset int) int {
	line := 0
	for _, e := range b.Lines {
		if e.Offset > offset {
			break
		}
		line = e.Line
	}
	return line
}

// SetBreakpoint/ClearBreakpoint/Breakpoints track requested breakpoint
// lines; resolving them to executable offsets is ResolveBreakpoint's job.
func (b *Block) SetBreakpoint(line int)   { b.breakpoints[line] = true }
func (b *Block) ClearBreakpoint(line int) { delete(b.breakpoints, line) }

func (b *Block) Breakpoints() []int {
	out := make([]int, 0, len(b.breakpoints))
	for l := range b.breakpoints {
		out = append(out, l)
	}
	return out
}

// ResolveBreakpoint finds the smallest instruction offset whose nearest
// line is >= the requested line, i.e. the first executable instruction at
// or after that source line.
func (b *Block) ResolveBreakpoint(line int) (offset int, ok bool) {
	best := -1
	for _, e := range b.Lines {
		if e.Line >= line && (best == -1 || e.Offset < b.Lines[best].Offset) {
			best = indexOfOffset(b.Lines, e.Offset)
		}
	}
	if best == -1 {
		return 0, false
	}
	return b.Lines[best].Offset, true
}

func indexOfOffset(lines []emit.LineEntry, offset int) int {
	for i, e := range lines {
		if e.Offset == offset {
			return i
		}
	}
	return -1
}
