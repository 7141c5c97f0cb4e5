// Package registry loads a declarative YAML manifest describing namespaces,
// their parent links and declared members, and top-level global variables,
// wiring each through the same storage shapes the programmatic
// RegisterNamespace call and VarDecl opcode use -- a data-driven alternative
// to hand-written registration code for content that needs no native
// function pointer.
package registry

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"tinscript/internal/hash"
	"tinscript/internal/ns"
	"tinscript/internal/types"
	"tinscript/internal/vars"
	"tinscript/internal/vm"
)

// Manifest is the top-level YAML document shape.
type Manifest struct {
	Namespaces []NamespaceDef `yaml:"namespaces"`
	Globals    []VarDef       `yaml:"globals"`
}

// NamespaceDef declares one namespace and its instance-variable template;
// the template members are what CreateObject clones into each new
// instance's dynamic-variable bag.
type NamespaceDef struct {
	Name    string   `yaml:"name"`
	Parent  string   `yaml:"parent,omitempty"`
	Members []VarDef `yaml:"members,omitempty"`
}

// VarDef is one (name, declared type) pair, shared by globals and
// namespace members.
type VarDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

var typeNames = map[string]types.VarType{
	"void":      types.Void,
	"bool":      types.Bool,
	"int":       types.Int,
	"float":     types.Float,
	"string":    types.String,
	"object":    types.Object,
	"hashtable": types.Hashtable,
}

func parseVarType(s string) (types.VarType, error) {
	t, ok := typeNames[s]
	if !ok {
		return types.Void, fmt.Errorf("registry: unknown variable type %q", s)
	}
	return t, nil
}

// Load parses a manifest document from r.
func Load(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("registry: parse manifest: %w", err)
	}
	return &m, nil
}

// Apply wires every namespace (and its member templates) and every global
// in m into machine. Namespaces are registered in two passes -- Register
// every entry first, queuing parent links, then Drain once -- so a child
// may appear before its parent in the document, matching
// ns.Registry.Register/Drain's own queued-link contract.
func Apply(m *vm.Machine, doc *Manifest) error {
	fold := m.Fold

	for _, nd := range doc.Namespaces {
		namespace := ns.New(nd.Name, hash.Of(nd.Name, fold))
		for _, vd := range nd.Members {
			t, err := parseVarType(vd.Type)
			if err != nil {
				return err
			}
			namespace.Members.Put(vars.NewScriptOwned(vd.Name, hash.Of(vd.Name, fold), t))
		}
		var parentHash uint32
		if nd.Parent != "" {
			parentHash = hash.Of(nd.Parent, fold)
		}
		m.Namespaces.Register(namespace, parentHash)
	}
	if err := m.Namespaces.Drain(); err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	for _, vd := range doc.Globals {
		t, err := parseVarType(vd.Type)
		if err != nil {
			return err
		}
		m.Global.Members.Put(vars.NewScriptOwned(vd.Name, hash.Of(vd.Name, fold), t))
	}

	return nil
}

// LoadAndApply is the one-shot convenience combining Load and Apply.
func LoadAndApply(m *vm.Machine, r io.Reader) error {
	doc, err := Load(r)
	if err != nil {
		return err
	}
	return Apply(m, doc)
}
