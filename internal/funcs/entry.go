package funcs

// Kind distinguishes a scripted function (bytecode lives in a CodeBlock)
// from a native one (a host dispatcher).
type Kind uint8

const (
	Script Kind = iota
	Native
)

// NativeDispatcher reads parameters out of ctx and invokes the host
// function, writing the return value back into ctx.Parameters[0] -- the
// polymorphic dispatcher a FunctionEntry wraps, minus the generated-macro
// wrapper shapes an external registration-macro generator would produce
// (out of scope here).
type NativeDispatcher func(ctx *Context) error

// Entry is a FunctionEntry: (namespace_hash, name_hash, kind, context,
// code_block_ref/instr_offset | native_dispatcher).
//
// CodeBlockID/InstrOffset (rather than a direct *code.Block pointer) keep
// this package a leaf with no dependency on internal/code; internal/vm
// resolves CodeBlockID through its own block registry at call time.
type Entry struct {
	NamespaceHash uint32
	NameHash      uint32
	Kind          Kind
	Context       *Context

	CodeBlockID int
	InstrOffset int

	Native NativeDispatcher

	// IsMethod marks entries bound to a namespace (register_method, or a
	// script FuncDecl inside a namespace); reported by the function listings
	// in package script.
	IsMethod bool
}

// NewScript builds a script FunctionEntry whose bytecode will live at
// instrOffset within codeBlockID once the CodeBlock finishes compiling.
func NewScript(nsHash, nameHash uint32, ctx *Context, codeBlockID, instrOffset int) *Entry {
	return &Entry{
		NamespaceHash: nsHash,
		NameHash:      nameHash,
		Kind:          Script,
		Context:       ctx,
		CodeBlockID:   codeBlockID,
		InstrOffset:   instrOffset,
	}
}

// NewNative builds a native FunctionEntry.
func NewNative(nsHash, nameHash uint32, ctx *Context, dispatcher NativeDispatcher, isMethod bool) *Entry {
	return &Entry{
		NamespaceHash: nsHash,
		NameHash:      nameHash,
		Kind:          Native,
		Context:       ctx,
		Native:        dispatcher,
		IsMethod:      isMethod,
	}
}
