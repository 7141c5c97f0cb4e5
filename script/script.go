// Package script implements Context: the one entry point a host program
// builds to load and run TinScript source, register native functions, and
// drive object lifecycle and the scheduler. internal/vm.Machine is the
// execution core; ScriptContext adds the around-it surface the lexer/
// parser (supplied by the host), the .cso cache and the host.Registry all
// plug into.
package script

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"tinscript/internal/ast"
	"tinscript/internal/cache"
	"tinscript/internal/code"
	"tinscript/internal/diag"
	"tinscript/internal/funcs"
	"tinscript/internal/hash"
	"tinscript/internal/ns"
	"tinscript/internal/objreg"
	"tinscript/internal/objset"
	"tinscript/internal/types"
	"tinscript/internal/vars"
	"tinscript/internal/vm"
)

// Parser is the external collaborator that turns script source text into
// the AST internal/code.Compile consumes. Lexing and parsing are left to
// the host; any concrete lexer/parser satisfies this by implementing
// Parse.
type Parser interface {
	Parse(filename string, source []byte) (*ast.Node, error)
}

// ScriptContext is the Go realization of Context: one owned Machine plus
// the parser, cache directory and print/assert hooks the embedder
// supplied at Create time.
type ScriptContext struct {
	ID         uuid.UUID
	ThreadName string

	M      *vm.Machine
	Blocks *code.Registry

	parser   Parser
	printFn  func(string)
	cacheDir string
	buildID  uuid.UUID

	// nativeGlobalAddrs holds the opaque host-side addr metadata passed to
	// RegisterGlobal, keyed by name hash; see RegisterGlobal's doc comment.
	nativeGlobalAddrs map[uint32]uint64

	// objSets/objGroups hold the ObjectSet/ObjectGroup backing each id
	// CreateObjectSet/CreateObjectGroup allocated; see script/objset.go.
	objSets   map[uint32]*objset.Set
	objGroups map[uint32]*objset.Group
}

// Option configures a ScriptContext at Create time via the small
// functional-options pattern.
type Option func(*config)

type config struct {
	fold     bool
	cacheDir string
	log      *diag.Log
	buildID  uuid.UUID
}

// WithFold turns on case-insensitive hashing, off by default.
func WithFold() Option {
	return func(c *config) { c.fold = true }
}

// WithCacheDir enables the .cso on-disk cache under dir; ExecScript then
// consults it before invoking the parser.
func WithCacheDir(dir string) Option {
	return func(c *config) { c.cacheDir = dir }
}

// WithLog attaches a diagnostic logger; the default is a silent Log.
func WithLog(l *diag.Log) Option {
	return func(c *config) { c.log = l }
}

// WithBuildID pins the build identifier stamped into .cso cache entries.
// Entries stamped with a different id are still loaded -- Stale only
// compares mtimes -- but a caller driving its own cache invalidation can
// check it. Defaults to a fresh random id per ScriptContext.
func WithBuildID(id uuid.UUID) Option {
	return func(c *config) { c.buildID = id }
}

// Create builds a ScriptContext: Context::Create(name, printFn, assertFn).
// printFn receives script print() output; assertFn is the script_assert
// handler (diag.DefaultHandler if nil).
func Create(threadName string, parser Parser, printFn func(string), assertFn diag.Handler, opts ...Option) *ScriptContext {
	cfg := config{buildID: uuid.New()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = diag.NewLog(nil)
	}
	if assertFn == nil {
		assertFn = diag.DefaultHandler(cfg.log)
	}

	blocks := code.NewRegistry()
	m := vm.New(blocks, cfg.log, assertFn, cfg.fold)

	return &ScriptContext{
		ID:                uuid.New(),
		ThreadName:        threadName,
		M:                 m,
		Blocks:            blocks,
		parser:            parser,
		printFn:           printFn,
		cacheDir:          cfg.cacheDir,
		buildID:           cfg.buildID,
		nativeGlobalAddrs: map[uint32]uint64{},
		objSets:           map[uint32]*objset.Set{},
		objGroups:         map[uint32]*objset.Group{},
	}
}

// Print routes s to the embedder-supplied print hook, the backing for the
// script builtin print(). Safe to call with a nil printFn (no-op).
func (c *ScriptContext) Print(s string) {
	if c.printFn != nil {
		c.printFn(s)
	}
}

// Update drives one Context::update(now_ms) tick, firing any scheduled
// calls due by now.
func (c *ScriptContext) Update(nowMs int64) error {
	return c.M.Update(nowMs)
}

func (c *ScriptContext) cachePath(sourcePath string) string {
	if c.cacheDir == "" {
		return sourcePath + "o"
	}
	return filepath.Join(c.cacheDir, filepath.Base(sourcePath)+"o")
}

// ExecScript implements Context::exec_script(path) -> bool: compile (or
// load from the .cso cache, if WithCacheDir was set and the cache is
// fresher than the source) and run path, returning whether it ran without
// a fault.
func (c *ScriptContext) ExecScript(path string) (bool, error) {
	err := diag.Isolate("exec_script", func() error {
		filenameHash := hash.Of(path, c.M.Fold)

		if c.cacheDir != "" {
			cp := c.cachePath(path)
			if entry, loadErr := cache.LoadFile(cp, path); loadErr == nil {
				block := entry.Install(c.Blocks)
				return c.M.Run(block)
			}
		}

		source, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("script: read %s: %w", path, readErr)
		}
		block, compileErr := c.compileSource(path, filenameHash, source)
		if compileErr != nil {
			return compileErr
		}
		if runErr := c.M.Run(block); runErr != nil {
			return runErr
		}

		if c.cacheDir != "" {
			if mkErr := os.MkdirAll(c.cacheDir, 0o755); mkErr == nil {
				_ = cache.SaveFile(c.cachePath(path), block, c.buildID, path)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// ExecCommand implements Context::exec_command(source) -> bool: parse and
// run an ad-hoc source snippet (the REPL entry point), never cached.
func (c *ScriptContext) ExecCommand(source string) (bool, error) {
	err := diag.Isolate("exec_command", func() error {
		filenameHash := hash.Of("<command>", c.M.Fold)
		block, compileErr := c.compileSource("<command>", filenameHash, []byte(source))
		if compileErr != nil {
			return compileErr
		}
		return c.M.Run(block)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *ScriptContext) compileSource(filename string, filenameHash uint32, source []byte) (*code.Block, error) {
	if c.parser == nil {
		return nil, fmt.Errorf("script: no parser configured")
	}
	root, err := c.parser.Parse(filename, source)
	if err != nil {
		return nil, fmt.Errorf("script: parse %s: %w", filename, err)
	}
	return code.Compile(c.Blocks, filename, filenameHash, root)
}

// FindObjectByID implements the id branch of Context::find_object.
func (c *ScriptContext) FindObjectByID(id uint32) (*objreg.Entry, bool) {
	return c.M.Objects.ByID(id)
}

// FindObjectByName implements the name branch of Context::find_object.
// Ambiguous names resolve to the last-registered object.
func (c *ScriptContext) FindObjectByName(name string) (*objreg.Entry, bool) {
	return c.M.Objects.ByName(hash.Of(name, c.M.Fold))
}

// FindObjectByAddress implements the address branch of
// Context::find_object.
func (c *ScriptContext) FindObjectByAddress(addr objreg.Address) (*objreg.Entry, bool) {
	return c.M.Objects.ByAddress(addr)
}

// AddDynamicVariable implements Context::add_dynamic_variable(object_id,
// name, type): the host-driven twin of the SelfVarDecl opcode, letting an
// embedder attach a per-instance variable to an already-live object.
func (c *ScriptContext) AddDynamicVariable(objectID uint32, name string, t types.VarType) error {
	obj, ok := c.M.Objects.ByID(objectID)
	if !ok {
		return fmt.Errorf("script: add_dynamic_variable: unknown object id %d", objectID)
	}
	obj.Dynamic().Put(vars.NewDynamic(name, hash.Of(name, c.M.Fold), t))
	return nil
}

// LinkNamespaces implements Context::link_namespaces(child, parent): wires
// an inheritance edge between two already-registered namespaces and drains
// it immediately.
func (c *ScriptContext) LinkNamespaces(childName, parentName string) error {
	childHash := hash.Of(childName, c.M.Fold)
	parentHash := hash.Of(parentName, c.M.Fold)
	if err := c.M.Namespaces.Link(childHash, parentHash); err != nil {
		return err
	}
	return c.M.Namespaces.Drain()
}

// Signature describes a native function/method's parameter and return
// types. Signatures support 0-8 parameters; return and each parameter is
// one of the seven concrete types.
type Signature struct {
	Return     types.VarType
	Parameters []types.VarType
}

const maxNativeParameters = 8

func (s Signature) validate() error {
	if len(s.Parameters) > maxNativeParameters {
		return fmt.Errorf("script: signature has %d parameters, limit is %d", len(s.Parameters), maxNativeParameters)
	}
	return nil
}

func (s Signature) buildContext() *funcs.Context {
	ctx := funcs.NewContext(s.Return)
	for i, t := range s.Parameters {
		name := fmt.Sprintf("arg%d", i)
		_ = ctx.AddParameter(vars.NewStackLocal(name, hash.Of(name, false), t))
	}
	return ctx
}

// RegisterFunction implements register_function(name, fn_ptr, signature):
// a free (namespace-less) native function.
func (c *ScriptContext) RegisterFunction(name string, sig Signature, dispatcher funcs.NativeDispatcher) error {
	if err := sig.validate(); err != nil {
		return err
	}
	return c.M.RegisterNative(0, hash.Of(name, c.M.Fold), sig.buildContext(), dispatcher, false)
}

// RegisterMethod implements register_method(class, name, fn_ptr,
// signature): a native method bound to an already-registered class
// namespace.
func (c *ScriptContext) RegisterMethod(className, name string, sig Signature, dispatcher funcs.NativeDispatcher) error {
	if err := sig.validate(); err != nil {
		return err
	}
	return c.M.RegisterNative(hash.Of(className, c.M.Fold), hash.Of(name, c.M.Fold), sig.buildContext(), dispatcher, true)
}

// ClassDescriptor bundles register_class's arguments: the constructor and
// destructor every object of this class runs, its optional parent, and the
// member-variable templates cloned into every new instance.
type ClassDescriptor struct {
	Parent  string
	Create  ns.CreateFunc
	Destroy ns.DestroyFunc
	Members []MemberDescriptor
}

// MemberDescriptor is one entry of register_class's member_descriptors
// list: a declared member name and type, the class-level template
// CreateObject clones into each new instance's dynamic-variable table.
type MemberDescriptor struct {
	Name string
	Type types.VarType
}

// RegisterClass implements register_class(name, parent, create_fn,
// destroy_fn, member_descriptors): declares a namespace, its constructor
// and destructor, and its member templates, linking it under parent if
// given.
func (c *ScriptContext) RegisterClass(name string, desc ClassDescriptor) error {
	namespace := ns.New(name, hash.Of(name, c.M.Fold))
	namespace.Create = desc.Create
	namespace.Destroy = desc.Destroy
	for _, md := range desc.Members {
		namespace.Members.Put(vars.NewScriptOwned(md.Name, hash.Of(md.Name, c.M.Fold), md.Type))
	}

	var parentHash uint32
	if desc.Parent != "" {
		parentHash = hash.Of(desc.Parent, c.M.Fold)
	}
	return c.M.RegisterNamespace(namespace, parentHash)
}

// RegisterGlobal implements register_global(name, addr, type): a
// script-visible global variable backed by a host-owned value. addr is
// carried as opaque host metadata only (e.g. an index into the embedder's
// own table) -- TinScript never dereferences it directly, since the Go
// port has no unsafe-pointer equivalent of the original's raw memory
// address. The variable itself lives in the same Global.Members table
// VarDecl's global branch writes into, so script reads/writes of it behave
// exactly like any other global.
func (c *ScriptContext) RegisterGlobal(name string, addr uint64, t types.VarType) error {
	nameHash := hash.Of(name, c.M.Fold)
	if _, ok := c.M.Global.Members.Get(nameHash); ok {
		return fmt.Errorf("script: register_global: %q already registered", name)
	}
	entry := vars.NewScriptOwned(name, nameHash, t)
	c.M.Global.Members.Put(entry)
	c.nativeGlobalAddrs[nameHash] = addr
	return nil
}

// NativeGlobalAddr returns the addr metadata a prior RegisterGlobal call
// stored for name, if any.
func (c *ScriptContext) NativeGlobalAddr(name string) (uint64, bool) {
	addr, ok := c.nativeGlobalAddrs[hash.Of(name, c.M.Fold)]
	return addr, ok
}
