// Package funcs implements FunctionContext (the ordered parameter list plus
// local-variable table of a function, with parameter 0 always the return
// slot) and FunctionEntry (the script/native function binding that owns
// one).
package funcs

import (
	"fmt"

	"tinscript/internal/types"
	"tinscript/internal/vars"
)

const (
	// MaxParameters is the parameter-count limit, chosen alongside MaxLocals
	// as primes to size hash buckets; kept here purely as the stated
	// resource limit.
	MaxParameters = 16
	// MaxLocals is the local-variable count limit.
	MaxLocals = 37
)

// Context is a FunctionContext: parameters[0] is always the return slot,
// followed by the declared parameters; Locals is a name-hash-keyed table of
// additional local variables.
type Context struct {
	Parameters []*vars.Entry
	Locals     *vars.Table

	offsetsInitialized bool
	frameSize          int32
}

// NewContext allocates a Context with its return-value slot (parameter 0)
// already present, typed retType.
func NewContext(retType types.VarType) *Context {
	ret := vars.NewStackLocal("__return", 0, retType)
	return &Context{
		Parameters: []*vars.Entry{ret},
		Locals:     vars.NewTable(),
	}
}

// AddParameter appends a declared parameter, enforcing MaxParameters (a
// resource error once the parameter count exceeds 16).
func (c *Context) AddParameter(e *vars.Entry) error {
	if len(c.Parameters) > MaxParameters {
		return fmt.Errorf("parameter count exceeds limit of %d", MaxParameters)
	}
	c.Parameters = append(c.Parameters, e)
	return nil
}

// AddLocal adds a local variable, enforcing MaxLocals.
func (c *Context) AddLocal(e *vars.Entry) error {
	if c.Locals.Len() >= MaxLocals {
		return fmt.Errorf("local variable count exceeds limit of %d", MaxLocals)
	}
	c.Locals.Put(e)
	return nil
}

// ParameterCount excludes the return slot.
func (c *Context) ParameterCount() int { return len(c.Parameters) - 1 }

// InitStackVarOffsets assigns each parameter and local a consecutive
// frame-relative word offset. Idempotent: calling it twice is a no-op. A
// VariableEntry's type is immutable after creation; stack-locals have a
// non-negative stack_offset only after this has run.
func (c *Context) InitStackVarOffsets() {
	if c.offsetsInitialized {
		return
	}
	c.offsetsInitialized = true

	var offset int32
	for _, p := range c.Parameters {
		p.SetStackOffset(offset)
		offset += int32(types.WordSize[p.Type])
	}
	c.Locals.Each(func(e *vars.Entry) bool {
		e.SetStackOffset(offset)
		offset += int32(types.WordSize[e.Type])
		return true
	})
	c.frameSize = offset
}

// FindParameter returns the index (0 = return slot) of a declared parameter
// by name hash, used by the compiler to resolve PushParam / local scope.
func (c *Context) FindParameter(nameHash uint32) (int, bool) {
	for i, p := range c.Parameters {
		if p.NameHash == nameHash && i != 0 {
			return i, true
		}
	}
	return 0, false
}

// FrameSize is the total word count InitStackVarOffsets reserved, i.e. the
// exec-stack region every call to this function reserves (N_locals x
// MAX_TYPE_SIZE words, specialized per-entry rather than padded to a
// uniform max size since each Entry already knows its own word size).
func (c *Context) FrameSize() int32 { return c.frameSize }
