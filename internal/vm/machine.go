package vm

import (
	"tinscript/internal/code"
	"tinscript/internal/diag"
	"tinscript/internal/funcs"
	"tinscript/internal/ns"
	"tinscript/internal/objreg"
	"tinscript/internal/opcode"
	"tinscript/internal/sched"
	"tinscript/internal/strtable"
	"tinscript/internal/types"
	"tinscript/internal/vars"
)

// declState is the in-progress FuncDecl builder slot: FuncDecl opens it,
// ParamDecl/VarDecl append to its Context, FuncDeclEnd closes it and
// registers the finished FunctionEntry. Modeled directly on
// internal/sched.Scheduler's "building *Record" Begin/Param/End pattern,
// since both are "one thing may be under construction at a time, fatal to
// start a second" state machines over a bytecode-driven sequence of ops.
type declState struct {
	NameHash uint32
	NSHash   uint32
	BodyOffset int32
	Context  *funcs.Context
}

// Machine is the VM: the owning struct binding ExecStack, CallStack, the
// string/namespace/object/scheduler registries, and the opcode dispatch
// loop together. The embeddable wrapper itself lives in package script;
// Machine is its execution core.
type Machine struct {
	Strings    *strtable.Table
	Namespaces *ns.Registry
	Global     *ns.Namespace
	Objects    *objreg.Registry
	Blocks     *code.Registry
	Scheduler  *sched.Scheduler

	Log     *diag.Log
	Handler diag.Handler

	Fold bool
	Now  int64

	funcsByHash map[uint32]*funcs.Entry

	exec  *ExecStack
	calls *CallStack

	block *code.Block
	ip    int

	declaring *declState

	hashtables    map[uint32]*vars.Table
	handleOf      map[*vars.Table]uint32
	nextHandle    uint32

	podCells []*vars.Entry
}

// New builds a Machine with a fresh string table, namespace/object
// registries and scheduler, wired against blocks (the same Registry
// internal/code.Compile used, so FunctionEntry.CodeBlockID resolves).
func New(blocks *code.Registry, log *diag.Log, handler diag.Handler, fold bool) *Machine {
	m := &Machine{
		Strings:     strtable.New(fold),
		Namespaces:  ns.NewRegistry(),
		Objects:     objreg.NewRegistry(),
		Blocks:      blocks,
		Scheduler:   sched.New(),
		Log:         log,
		Handler:     handler,
		Fold:        fold,
		funcsByHash: map[uint32]*funcs.Entry{},
		exec:        NewExecStack(),
		calls:       NewCallStack(),
		hashtables:  map[uint32]*vars.Table{},
		handleOf:    map[*vars.Table]uint32{},
	}
	m.Global = ns.New("", 0)
	m.Namespaces.Register(m.Global, 0)
	return m
}

// Exec/Calls expose the two stacks read-only-ish for tests; opcode handlers
// in this package reach the unexported fields directly.
func (m *Machine) Exec() *ExecStack   { return m.exec }
func (m *Machine) Calls() *CallStack  { return m.calls }

// RegisterNative installs a host-native function, the Machine-level
// counterpart of the register_function/register_method embedder API. The
// full macro-generated wrapper surface for arbitrary native signatures is
// out of scope; this covers dispatch through a fixed-arity adapter.
func (m *Machine) RegisterNative(nsHash, nameHash uint32, ctx *funcs.Context, dispatcher funcs.NativeDispatcher, isMethod bool) error {
	ctx.InitStackVarOffsets()
	entry := funcs.NewNative(nsHash, nameHash, ctx, dispatcher, isMethod)
	if nsHash == 0 {
		m.funcsByHash[nameHash] = entry
		return nil
	}
	namespace, ok := m.Namespaces.Lookup(nsHash)
	if !ok {
		return diag.New(diag.Link, "", 0, "register_method: unknown namespace %#x", nsHash)
	}
	namespace.Methods.Put(nameHash, entry)
	return nil
}

// RegisterNamespace adds ns to the machine's namespace registry, draining
// any now-resolvable parent links, mirroring the Context::LinkNamespaces
// host entry point.
func (m *Machine) RegisterNamespace(n *ns.Namespace, parentHash uint32) error {
	m.Namespaces.Register(n, parentHash)
	return m.Namespaces.Drain()
}

// EachGlobalFunction iterates every namespace-less registered function
// (RegisterFunction's targets), keyed by name hash; iteration order is
// unspecified. Backs the global branch of ListFunctions.
func (m *Machine) EachGlobalFunction(f func(*funcs.Entry) bool) {
	for _, e := range m.funcsByHash {
		if !f(e) {
			return
		}
	}
}

// LookupGlobalFunction returns a namespace-less registered function by name
// hash.
func (m *Machine) LookupGlobalFunction(nameHash uint32) (*funcs.Entry, bool) {
	e, ok := m.funcsByHash[nameHash]
	return e, ok
}

// Update advances the machine's clock and fires any scheduled calls now
// due -- the Context::Update tick an embedder's main loop drives so a
// scheduled call fires later during an Update(now) tick.
func (m *Machine) Update(now int64) error {
	m.Now = now
	return m.Scheduler.Update(now, m)
}

// dispatchTable is the opcode dispatch table: a function-pointer array
// indexed by opcode, keyed-literal rather than positional so it survives
// enum reordering. Handlers return an error instead of a bool so a failure
// never corrupts the stacks on the error path -- the caller unwinds through
// the returned error instead of continuing to execute.
var dispatchTable [opcode.NumOps]func(*Machine) error

func init() {
	dispatchTable[opcode.NOP] = func(m *Machine) error { return nil }

	dispatchTable[opcode.VarDecl] = (*Machine).opVarDecl
	dispatchTable[opcode.ParamDecl] = (*Machine).opParamDecl

	dispatchTable[opcode.Push] = (*Machine).opPush
	dispatchTable[opcode.PushParam] = (*Machine).opPushParam
	dispatchTable[opcode.PushLocalVar] = (*Machine).opPushLocalVar
	dispatchTable[opcode.PushLocalValue] = (*Machine).opPushLocalValue
	dispatchTable[opcode.PushGlobalVar] = (*Machine).opPushGlobalVar
	dispatchTable[opcode.PushGlobalValue] = (*Machine).opPushGlobalValue
	dispatchTable[opcode.PushArrayVar] = (*Machine).opPushArrayVar
	dispatchTable[opcode.PushArrayValue] = (*Machine).opPushArrayValue
	dispatchTable[opcode.PushMember] = (*Machine).opPushMember
	dispatchTable[opcode.PushMemberVal] = (*Machine).opPushMemberVal
	dispatchTable[opcode.PushPODMember] = (*Machine).opPushPODMember
	dispatchTable[opcode.PushPODMemberVal] = (*Machine).opPushPODMemberVal
	dispatchTable[opcode.PushSelf] = (*Machine).opPushSelf

	dispatchTable[opcode.Pop] = (*Machine).opPop

	dispatchTable[opcode.Add] = (*Machine).opAdd
	dispatchTable[opcode.Sub] = (*Machine).opSub
	dispatchTable[opcode.Mult] = (*Machine).opMult
	dispatchTable[opcode.Div] = (*Machine).opDiv
	dispatchTable[opcode.Mod] = (*Machine).opMod

	dispatchTable[opcode.Assign] = (*Machine).opAssign
	dispatchTable[opcode.AssignAdd] = (*Machine).opAssignAdd
	dispatchTable[opcode.AssignSub] = (*Machine).opAssignSub
	dispatchTable[opcode.AssignMult] = (*Machine).opAssignMult
	dispatchTable[opcode.AssignDiv] = (*Machine).opAssignDiv
	dispatchTable[opcode.AssignMod] = (*Machine).opAssignMod

	dispatchTable[opcode.BitAnd] = (*Machine).opBitAnd
	dispatchTable[opcode.BitOr] = (*Machine).opBitOr
	dispatchTable[opcode.BitXor] = (*Machine).opBitXor
	dispatchTable[opcode.BitShiftLeft] = (*Machine).opBitShiftLeft
	dispatchTable[opcode.BitShiftRight] = (*Machine).opBitShiftRight
	dispatchTable[opcode.AssignBitAnd] = (*Machine).opAssignBitAnd
	dispatchTable[opcode.AssignBitOr] = (*Machine).opAssignBitOr
	dispatchTable[opcode.AssignBitXor] = (*Machine).opAssignBitXor
	dispatchTable[opcode.AssignShiftLeft] = (*Machine).opAssignShiftLeft
	dispatchTable[opcode.AssignShiftRight] = (*Machine).opAssignShiftRight

	dispatchTable[opcode.CompareEqual] = (*Machine).opCompareEqual
	dispatchTable[opcode.CompareNotEqual] = (*Machine).opCompareNotEqual
	dispatchTable[opcode.CompareLess] = (*Machine).opCompareLess
	dispatchTable[opcode.CompareLessEqual] = (*Machine).opCompareLessEqual
	dispatchTable[opcode.CompareGreater] = (*Machine).opCompareGreater
	dispatchTable[opcode.CompareGreaterEqual] = (*Machine).opCompareGreaterEqual

	dispatchTable[opcode.BooleanAnd] = (*Machine).opBooleanAnd
	dispatchTable[opcode.BooleanOr] = (*Machine).opBooleanOr

	dispatchTable[opcode.UnaryPreInc] = (*Machine).opUnaryPreInc
	dispatchTable[opcode.UnaryPreDec] = (*Machine).opUnaryPreDec
	dispatchTable[opcode.UnaryNeg] = (*Machine).opUnaryNeg
	dispatchTable[opcode.UnaryPos] = (*Machine).opUnaryPos
	dispatchTable[opcode.UnaryBitInvert] = (*Machine).opUnaryBitInvert
	dispatchTable[opcode.UnaryNot] = (*Machine).opUnaryNot

	dispatchTable[opcode.Branch] = (*Machine).opBranch
	dispatchTable[opcode.BranchTrue] = (*Machine).opBranchTrue
	dispatchTable[opcode.BranchFalse] = (*Machine).opBranchFalse

	dispatchTable[opcode.FuncDecl] = (*Machine).opFuncDecl
	dispatchTable[opcode.FuncDeclEnd] = (*Machine).opFuncDeclEnd
	dispatchTable[opcode.FuncCallArgs] = (*Machine).opFuncCallArgs
	dispatchTable[opcode.MethodCallArgs] = (*Machine).opMethodCallArgs
	dispatchTable[opcode.FuncCall] = (*Machine).opFuncCall
	dispatchTable[opcode.FuncReturn] = (*Machine).opFuncReturn

	dispatchTable[opcode.ArrayHash] = (*Machine).opArrayHash
	dispatchTable[opcode.ArrayVarDecl] = (*Machine).opArrayVarDecl
	dispatchTable[opcode.SelfVarDecl] = (*Machine).opSelfVarDecl

	dispatchTable[opcode.ScheduleBegin] = (*Machine).opScheduleBegin
	dispatchTable[opcode.ScheduleParam] = (*Machine).opScheduleParam
	dispatchTable[opcode.ScheduleEnd] = (*Machine).opScheduleEnd

	dispatchTable[opcode.CreateObject] = (*Machine).opCreateObject
	dispatchTable[opcode.DestroyObject] = (*Machine).opDestroyObject
}

// fetch reads the next instruction word and advances ip.
func (m *Machine) fetch() int32 {
	w := m.block.Instructions[m.ip]
	m.ip++
	return w
}

func (m *Machine) fetchUint() uint32 { return uint32(m.fetch()) }

// fault builds a Fault at the current block/line, routing it through
// Handler exactly like diag.Assert, and always returns it as an error --
// the shared path every opcode handler's failure goes through.
func (m *Machine) fault(sub diag.Subsystem, format string, args ...interface{}) error {
	line := 0
	if m.block != nil {
		line = m.block.NearestLine(m.ip)
	}
	file := ""
	if m.block != nil {
		file = m.block.Filename
	}
	f := diag.New(sub, file, line, format, args...)
	if m.Handler != nil {
		m.Handler(f)
	}
	return f
}

// Run executes b's bytecode starting at offset 0 until FuncReturn unwinds
// the call stack below the depth Run started at, or EOF is reached. Block
// and ip are tracked together (rather than a single flat program counter)
// since TinScript functions may live in different CodeBlocks.
func (m *Machine) Run(b *code.Block) error {
	return m.runFrom(b, 0)
}

func (m *Machine) runFrom(b *code.Block, ip int) error {
	prevBlock, prevIP := m.block, m.ip
	m.block, m.ip = b, ip
	baseDepth := m.calls.Depth()

	defer func() { m.block, m.ip = prevBlock, prevIP }()

	for m.ip < len(m.block.Instructions) {
		op := opcode.Op(m.fetch())
		if op == opcode.EOF {
			return nil
		}
		h := dispatchTable[op]
		if h == nil {
			return m.fault(diag.RuntimeType, "unimplemented opcode %v", op)
		}
		if m.Log != nil {
			m.Log.Tracef(op.String(), "ip=%d depth=%d", m.ip-1, m.calls.Depth())
		}
		if err := h(m); err != nil {
			return err
		}
		if op == opcode.FuncReturn && m.calls.Depth() < baseDepth {
			return nil
		}
	}
	return nil
}

// ExecuteScheduledFunction re-enters the call path for a scheduled
// invocation, implementing sched.Executor. It looks up the target function
// (on objectID's namespace chain if objectID != 0, else the flat function
// registry), builds a call frame exactly as FuncCallArgs/FuncCall would,
// copies ctx's already-typed parameters into the reserved frame, and runs
// the body to completion.
func (m *Machine) ExecuteScheduledFunction(objectID, funcHash uint32, ctx *funcs.Context) (types.Value, error) {
	entry, err := m.lookupScheduledEntry(objectID, funcHash)
	if err != nil {
		return types.Value{}, err
	}

	frame := &Frame{Function: entry, Object: objectID, IsExecuting: true}
	frame.FrameBase = m.exec.Reserve(int(entry.Context.FrameSize()))
	for i, p := range entry.Context.Parameters {
		if i == 0 || i >= len(ctx.Parameters) {
			continue
		}
		v := ctx.Parameters[i].Get()
		if err := m.writeStackSlot(frame.FrameBase+int(p.StackOffset()), p.Type, v); err != nil {
			return types.Value{}, err
		}
	}
	m.calls.Push(frame)

	if entry.Kind == funcs.Native {
		return m.callNative(frame)
	}

	block, ok := m.Blocks.Lookup(entry.CodeBlockID)
	if !ok {
		return types.Value{}, m.fault(diag.Link, "scheduled call: unknown code block %d", entry.CodeBlockID)
	}
	if err := m.runFrom(block, entry.InstrOffset); err != nil {
		return types.Value{}, err
	}
	v, err := m.exec.Pop()
	return v, err
}

func (m *Machine) lookupScheduledEntry(objectID, funcHash uint32) (*funcs.Entry, error) {
	if objectID != 0 {
		obj, ok := m.Objects.ByID(objectID)
		if !ok {
			return nil, m.fault(diag.Resolution, "scheduled call: unknown object %d", objectID)
		}
		entry, ok := obj.Namespace.LookupMethod(funcHash)
		if !ok {
			return nil, m.fault(diag.Resolution, "scheduled call: no method %#x on object %d", funcHash, objectID)
		}
		return entry, nil
	}
	entry, ok := m.funcsByHash[funcHash]
	if !ok {
		return nil, m.fault(diag.Resolution, "scheduled call: unknown function %#x", funcHash)
	}
	return entry, nil
}
