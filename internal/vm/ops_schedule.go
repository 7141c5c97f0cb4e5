package vm

import (
	"tinscript/internal/diag"
	"tinscript/internal/funcs"
	"tinscript/internal/types"
	"tinscript/internal/vars"
)

// opScheduleBegin pops (func_name, object, delay) in reverse-push order,
// resolves the target function (the popped string's interned hash doubles
// as func_hash, since both go through the identical hash function), and
// opens the scheduler's single in-progress construction slot against a
// throwaway Context pre-sized to the target's parameter count so
// ScheduleParam's index-based Set has somewhere to land.
func (m *Machine) opScheduleBegin() error {
	immediate := m.fetchUint() != 0

	nameV, err := m.exec.Pop()
	if err != nil {
		return err
	}
	objV, err := m.exec.Pop()
	if err != nil {
		return err
	}
	delayV, err := m.exec.Pop()
	if err != nil {
		return err
	}

	funcHash := nameV.StringHash()
	objectID := objV.ObjectID()

	entry, err := m.lookupScheduledEntry(objectID, funcHash)
	if err != nil {
		return err
	}

	ctx := funcs.NewContext(types.Void)
	ctx.Parameters = make([]*vars.Entry, len(entry.Context.Parameters))
	for i, p := range entry.Context.Parameters {
		ctx.Parameters[i] = vars.NewScriptOwned(p.Name, p.NameHash, p.Type)
	}

	if err := m.Scheduler.Begin(int64(delayV.Int()), m.Now, objectID, funcHash, immediate, ctx); err != nil {
		return m.fault(diag.Resource, "%v", err)
	}
	return nil
}

// opScheduleParam copies the popped value into the in-progress schedule's
// parameter i: ScheduleParam i copies the top-of-stack into parameter i.
func (m *Machine) opScheduleParam() error {
	i := int(m.fetchUint())
	v, err := m.exec.Pop()
	if err != nil {
		return err
	}
	if err := m.Scheduler.Param(i, v); err != nil {
		return m.fault(diag.Resource, "%v", err)
	}
	return nil
}

// opScheduleEnd fires the in-progress schedule (immediately, or by
// enqueueing) and pushes whatever it returns -- the executed return value,
// or the request id.
func (m *Machine) opScheduleEnd() error {
	v, err := m.Scheduler.End(m)
	if err != nil {
		return m.fault(diag.Resource, "%v", err)
	}
	m.exec.Push(v)
	return nil
}
