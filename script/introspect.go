package script

import (
	"fmt"

	"tinscript/internal/funcs"
	"tinscript/internal/objreg"
	"tinscript/internal/sched"
	"tinscript/internal/vars"
)

// ObjectSummary is one row of ListObjects: an object's id, name and the
// namespace it was created from.
type ObjectSummary struct {
	ID        uint32
	Name      string
	Namespace string
}

// ListObjects implements Context::ListObjects(): every live object's id,
// name and namespace, the dump the original prints to the debug console
// with no argument (all objects) or filtered by an object id.
func (c *ScriptContext) ListObjects() []ObjectSummary {
	var out []ObjectSummary
	c.M.Objects.Each(func(e *objreg.Entry) bool {
		out = append(out, ObjectSummary{ID: e.ID, Name: e.Name, Namespace: e.Namespace.Name})
		return true
	})
	return out
}

// GetObjectNamespace implements Context::GetObjectNamespace(object_id): the
// name of the namespace an object was constructed from.
func (c *ScriptContext) GetObjectNamespace(objectID uint32) (string, error) {
	obj, ok := c.M.Objects.ByID(objectID)
	if !ok {
		return "", fmt.Errorf("script: get_object_namespace: unknown object id %d", objectID)
	}
	return obj.Namespace.Name, nil
}

// GetObjectID is the default per-object introspection method every live
// object exposes: it simply confirms objectID still names a live object,
// mirroring the original's IMPLEMENT_DEFAULT_METHODS-generated accessor of
// the same name.
func (c *ScriptContext) GetObjectID(objectID uint32) (uint32, error) {
	if !c.M.Objects.IsObject(objectID) {
		return 0, fmt.Errorf("script: get_object_id: unknown object id %d", objectID)
	}
	return objectID, nil
}

// GetObjectName is the default per-object introspection method returning
// the name an object was created under.
func (c *ScriptContext) GetObjectName(objectID uint32) (string, error) {
	obj, ok := c.M.Objects.ByID(objectID)
	if !ok {
		return "", fmt.Errorf("script: get_object_name: unknown object id %d", objectID)
	}
	return obj.Name, nil
}

// VariableSummary is one row of ListVariables/ListMembers: a variable's
// name and declared type.
type VariableSummary struct {
	Name string
	Type string
}

// ListVariables implements Context::ListVariables(object_id): dumps the
// global variable table when objectID is 0, otherwise a live object's
// dynamic-variable bag (the Go analog of DumpVarTable, since static
// MemberOffset members live in the namespace's Members table instead and
// are reachable via the class descriptor the embedder already holds).
func (c *ScriptContext) ListVariables(objectID uint32) ([]VariableSummary, error) {
	var table *vars.Table
	if objectID == 0 {
		table = c.M.Global.Members
	} else {
		obj, ok := c.M.Objects.ByID(objectID)
		if !ok {
			return nil, fmt.Errorf("script: list_variables: unknown object id %d", objectID)
		}
		table = obj.Dynamic()
	}
	var out []VariableSummary
	table.Each(func(e *vars.Entry) bool {
		out = append(out, VariableSummary{Name: e.Name, Type: e.Type.String()})
		return true
	})
	return out, nil
}

// ListMembers is ListVariables scoped to a required live object, the
// default per-object introspection method every object exposes.
func (c *ScriptContext) ListMembers(objectID uint32) ([]VariableSummary, error) {
	if objectID == 0 {
		return nil, fmt.Errorf("script: list_members: requires a live object id")
	}
	return c.ListVariables(objectID)
}

// FunctionSummary is one row of ListFunctions/ListMethods: a function's
// name hash (resolved to a readable name when the string table happens to
// carry it) and whether it's a registered method.
type FunctionSummary struct {
	NameHash uint32
	Name     string
	IsMethod bool
}

func (c *ScriptContext) summarize(e *funcs.Entry) FunctionSummary {
	name, _ := c.M.Strings.Lookup(e.NameHash)
	return FunctionSummary{NameHash: e.NameHash, Name: name, IsMethod: e.IsMethod}
}

// ListFunctions implements Context::ListFunctions(object_id): dumps every
// namespace-less registered function when objectID is 0 (the analog of
// DumpFuncTable's global branch), otherwise every method reachable through
// the object's namespace inheritance chain.
func (c *ScriptContext) ListFunctions(objectID uint32) ([]FunctionSummary, error) {
	var out []FunctionSummary
	if objectID == 0 {
		c.M.EachGlobalFunction(func(e *funcs.Entry) bool {
			out = append(out, c.summarize(e))
			return true
		})
		return out, nil
	}
	obj, ok := c.M.Objects.ByID(objectID)
	if !ok {
		return nil, fmt.Errorf("script: list_functions: unknown object id %d", objectID)
	}
	for n := obj.Namespace; n != nil; n = n.Parent {
		n.Methods.Iter(func(_ uint32, e *funcs.Entry) bool {
			out = append(out, c.summarize(e))
			return true
		})
	}
	return out, nil
}

// ListMethods is ListFunctions scoped to a required live object, the
// default per-object introspection method every object exposes.
func (c *ScriptContext) ListMethods(objectID uint32) ([]FunctionSummary, error) {
	if objectID == 0 {
		return nil, fmt.Errorf("script: list_methods: requires a live object id")
	}
	return c.ListFunctions(objectID)
}

// ScheduleSummary is one row of ListSchedules: a pending deferred call.
type ScheduleSummary struct {
	RequestID uint64
	AtTime    int64
	ObjectID  uint32
	Repeat    bool
}

// ListSchedules implements Context::ListSchedules(): every pending
// scheduled call, the debug-console analog of walking the scheduler queue.
func (c *ScriptContext) ListSchedules() []ScheduleSummary {
	var out []ScheduleSummary
	c.M.Scheduler.Each(func(r *sched.Record) bool {
		out = append(out, ScheduleSummary{
			RequestID: r.RequestID,
			AtTime:    r.AtTime,
			ObjectID:  r.ObjectID,
			Repeat:    r.Repeat,
		})
		return true
	})
	return out
}

// ScheduleCancel implements Context::ScheduleCancel(request_id), cancelling
// a single pending scheduled call by the id ScheduleEnd returned.
func (c *ScriptContext) ScheduleCancel(requestID uint64) {
	c.M.Scheduler.CancelByRequestID(requestID)
}

// ScheduleCancelObject implements Context::ScheduleCancelObject(object_id),
// cancelling every pending scheduled call owned by objectID -- the cleanup
// a host runs when an object is about to be destroyed, so its deferred
// calls don't fire against a now-dead address.
func (c *ScriptContext) ScheduleCancelObject(objectID uint32) {
	c.M.Scheduler.CancelByObjectID(objectID)
}
