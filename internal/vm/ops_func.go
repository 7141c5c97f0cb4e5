package vm

import (
	"tinscript/internal/diag"
	"tinscript/internal/funcs"
	"tinscript/internal/ns"
	"tinscript/internal/types"
	"tinscript/internal/vars"
)

// opVarDecl handles VarDecl both inside an in-progress FuncDecl (adds a
// local to the function being built) and at top level (adds a global to
// the current block's Global namespace): it always adds to whatever scope
// is current, function-local or global.
func (m *Machine) opVarDecl() error {
	varHash := m.fetchUint()
	declType := types.VarType(m.fetchUint())

	if m.declaring != nil {
		e := vars.NewStackLocal("", varHash, declType)
		e.NameHash = varHash
		if err := m.declaring.Context.AddLocal(e); err != nil {
			return m.fault(diag.Resource, "%v", err)
		}
		return nil
	}

	e := vars.NewScriptOwned("", varHash, declType)
	m.Global.Members.Put(e)
	return nil
}

func (m *Machine) opParamDecl() error {
	varHash := m.fetchUint()
	declType := types.VarType(m.fetchUint())

	if m.declaring == nil {
		return m.fault(diag.Compile, "ParamDecl outside a function declaration")
	}
	e := vars.NewStackLocal("", varHash, declType)
	if err := m.declaring.Context.AddParameter(e); err != nil {
		return m.fault(diag.Resource, "%v", err)
	}
	return nil
}

// opFuncDecl opens the declState builder slot; ParamDecl/VarDecl append to
// it until FuncDeclEnd closes it and registers the FunctionEntry.
func (m *Machine) opFuncDecl() error {
	nameHash := m.fetchUint()
	nsHash := m.fetchUint()
	bodyOffset := m.fetch()

	if m.declaring != nil {
		return m.fault(diag.Compile, "FuncDecl for %#x while %#x is still being declared", nameHash, m.declaring.NameHash)
	}
	m.declaring = &declState{
		NameHash:   nameHash,
		NSHash:     nsHash,
		BodyOffset: bodyOffset,
		Context:    funcs.NewContext(types.Void),
	}
	return nil
}

func (m *Machine) opFuncDeclEnd() error {
	d := m.declaring
	if d == nil {
		return m.fault(diag.Compile, "FuncDeclEnd with no function being declared")
	}
	m.declaring = nil
	d.Context.InitStackVarOffsets()

	entry := funcs.NewScript(d.NSHash, d.NameHash, d.Context, m.block.ID, int(d.BodyOffset))

	if d.NSHash == 0 {
		if existing, ok := m.funcsByHash[d.NameHash]; ok && existing.Kind == funcs.Native {
			return m.fault(diag.Link, "cannot redeclare native function %#x", d.NameHash)
		}
		m.funcsByHash[d.NameHash] = entry
	} else {
		namespace, ok := m.Namespaces.Lookup(d.NSHash)
		if !ok {
			return m.fault(diag.Link, "FuncDecl: unknown namespace %#x", d.NSHash)
		}
		if existing, ok := namespace.Methods.Get(d.NameHash); ok && existing.Kind == funcs.Native {
			return m.fault(diag.Link, "cannot redeclare native method %#x", d.NameHash)
		}
		entry.IsMethod = true
		namespace.Methods.Put(d.NameHash, entry)
	}

	if block, ok := m.Blocks.Lookup(entry.CodeBlockID); ok {
		block.Retain()
	}
	return nil
}

// beginCall resolves the target FunctionEntry, reserves its frame on the
// exec stack, and pushes a not-yet-executing Frame: FuncCallArgs and
// MethodCallArgs both push a new call-stack frame with IsExecuting false
// and reserve local-variable space ahead of the FuncCall that runs it.
func (m *Machine) beginCall(isMethod bool) error {
	nsHash := m.fetchUint()
	funcHash := m.fetchUint()

	var objectID uint32
	var entry *funcs.Entry

	if isMethod {
		v, err := m.exec.Pop()
		if err != nil {
			return err
		}
		objectID = v.ObjectID()
		obj, ok := m.Objects.ByID(objectID)
		if !ok {
			return m.fault(diag.Resolution, "method call on unknown object %d", objectID)
		}
		var namespace *ns.Namespace
		if nsHash != 0 {
			namespace, ok = m.Namespaces.Lookup(nsHash)
			if !ok {
				return m.fault(diag.Link, "unknown namespace %#x", nsHash)
			}
		} else {
			namespace = obj.Namespace
		}
		entry, ok = namespace.LookupMethod(funcHash)
		if !ok {
			return m.fault(diag.Resolution, "no method %#x resolvable on object %d", funcHash, objectID)
		}
	} else {
		var ok bool
		entry, ok = m.funcsByHash[funcHash]
		if !ok {
			return m.fault(diag.Resolution, "unknown function %#x", funcHash)
		}
	}

	frame := &Frame{Function: entry, Object: objectID}
	frame.FrameBase = m.exec.Reserve(int(entry.Context.FrameSize()))
	m.calls.Push(frame)
	return nil
}

func (m *Machine) opFuncCallArgs() error   { return m.beginCall(false) }
func (m *Machine) opMethodCallArgs() error { return m.beginCall(true) }

// opFuncCall flips the pending frame to executing, then either redirects
// (block, ip) into the scripted body or dispatches the native function
// directly.
func (m *Machine) opFuncCall() error {
	frame := m.calls.Top()
	if frame == nil {
		return m.fault(diag.Resolution, "FuncCall with no pending call frame")
	}
	frame.IsExecuting = true
	entry := frame.Function

	if entry.Kind == funcs.Native {
		return m.callNative(frame)
	}

	block, ok := m.Blocks.Lookup(entry.CodeBlockID)
	if !ok {
		return m.fault(diag.Link, "unknown code block %d", entry.CodeBlockID)
	}
	frame.SavedBlockID = m.block.ID
	frame.SavedIP = m.ip
	frame.Redirected = true
	m.block = block
	m.ip = entry.InstrOffset
	return nil
}

// callNative builds a throwaway Context, reading each parameter's value
// directly out of the reserved ExecStack frame, invokes the dispatcher,
// then pops the frame and pushes its return value itself -- native calls
// never go through FuncReturn: they perform dispatch, push the return
// value, and pop their own frame.
func (m *Machine) callNative(frame *Frame) error {
	entry := frame.Function
	ctx := funcs.NewContext(types.Void)
	ctx.Parameters = make([]*vars.Entry, len(entry.Context.Parameters))
	for i, p := range entry.Context.Parameters {
		e := vars.NewScriptOwned(p.Name, p.NameHash, p.Type)
		if i > 0 {
			words, err := m.exec.Read(frame.FrameBase+int(p.StackOffset()), types.WordSize[p.Type])
			if err != nil {
				return err
			}
			e.Set(types.FromWords(p.Type, words))
		}
		ctx.Parameters[i] = e
	}

	if err := entry.Native(ctx); err != nil {
		return err
	}

	if _, err := m.calls.Pop(); err != nil {
		return err
	}
	if err := m.exec.Unreserve(int(entry.Context.FrameSize())); err != nil {
		return err
	}
	m.exec.Push(ctx.Parameters[0].Get())
	return nil
}

// writeStackSlot converts v to t and writes its words directly into the
// reserved exec-stack region at addr, used by ExecuteScheduledFunction to
// seed a scheduled call's frame before re-entering the shared execution
// loop (the same conversion Assign applies, but targeting a raw address
// instead of a resolved Cell since no frame is executing yet to resolve
// a __stackvar reference against).
func (m *Machine) writeStackSlot(addr int, t types.VarType, v types.Value) error {
	converted, err := types.Convert(v, t, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	return m.exec.Write(addr, converted.Words())
}

// opFuncReturn pops the one tagged value the body's last action always
// leaves above its locals region, discards the locals region, pops the
// call frame, and restores the caller's (block, ip): it preserves the
// return value across an UnReserve of the locals region and then
// continues in the caller.
func (m *Machine) opFuncReturn() error {
	v, err := m.exec.Pop()
	if err != nil {
		return err
	}
	frame, err := m.calls.Pop()
	if err != nil {
		return err
	}
	if err := m.exec.Unreserve(int(frame.Function.Context.FrameSize())); err != nil {
		return err
	}
	m.exec.Push(v)

	if !frame.Redirected {
		// Entered via a fresh runFrom (ExecuteScheduledFunction) rather than
		// an in-loop FuncCall jump; that runFrom's own deferred restore
		// already returns (block, ip) to the right place.
		return nil
	}
	block, ok := m.Blocks.Lookup(frame.SavedBlockID)
	if !ok {
		return m.fault(diag.Link, "unknown saved code block %d", frame.SavedBlockID)
	}
	m.block = block
	m.ip = frame.SavedIP
	return nil
}
