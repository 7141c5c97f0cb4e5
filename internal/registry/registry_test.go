package registry_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tinscript/internal/code"
	"tinscript/internal/hash"
	"tinscript/internal/registry"
	"tinscript/internal/types"
	"tinscript/internal/vm"
)

const manifestYAML = `
namespaces:
  - name: Base
    members:
      - name: health
        type: int
  - name: Widget
    parent: Base
    members:
      - name: label
        type: string
globals:
  - name: score
    type: int
`

func newMachine(t *testing.T) *vm.Machine {
	t.Helper()
	return vm.New(code.NewRegistry(), nil, nil, false)
}

func TestLoadAndApplyWiresNamespacesAndGlobals(t *testing.T) {
	m := newMachine(t)
	require.NoError(t, registry.LoadAndApply(m, strings.NewReader(manifestYAML)))

	base, ok := m.Namespaces.Lookup(hash.Of("Base", false))
	require.True(t, ok)
	widget, ok := m.Namespaces.Lookup(hash.Of("Widget", false))
	require.True(t, ok)
	require.Same(t, base, widget.Parent)

	healthHash := hash.Of("health", false)
	_, onWidgetDirectly := widget.Members.Get(healthHash)
	require.False(t, onWidgetDirectly, "health is declared on Base, not copied onto Widget")
	e, found := widget.LookupMember(healthHash)
	require.True(t, found, "member lookup walks the parent chain")
	require.Equal(t, types.Int, e.Type)

	labelEntry, found := widget.Members.Get(hash.Of("label", false))
	require.True(t, found)
	require.Equal(t, types.String, labelEntry.Type)

	scoreEntry, found := m.Global.Members.Get(hash.Of("score", false))
	require.True(t, found)
	require.Equal(t, types.Int, scoreEntry.Type)
}

func TestApplyResolvesChildBeforeParentInDocumentOrder(t *testing.T) {
	doc, err := registry.Load(strings.NewReader(`
namespaces:
  - name: Widget
    parent: Base
  - name: Base
`))
	require.NoError(t, err)

	m := newMachine(t)
	require.NoError(t, registry.Apply(m, doc))

	widget, ok := m.Namespaces.Lookup(hash.Of("Widget", false))
	require.True(t, ok)
	base, ok := m.Namespaces.Lookup(hash.Of("Base", false))
	require.True(t, ok)
	require.Same(t, base, widget.Parent)
}

func TestApplyRejectsUnknownParent(t *testing.T) {
	doc, err := registry.Load(strings.NewReader(`
namespaces:
  - name: Widget
    parent: Ghost
`))
	require.NoError(t, err)

	m := newMachine(t)
	require.Error(t, registry.Apply(m, doc))
}

func TestApplyRejectsUnknownType(t *testing.T) {
	doc, err := registry.Load(strings.NewReader(`
globals:
  - name: score
    type: double
`))
	require.NoError(t, err)

	m := newMachine(t)
	require.Error(t, registry.Apply(m, doc))
}

func TestLoadRejectsUnknownField(t *testing.T) {
	_, err := registry.Load(strings.NewReader(`
unknownSection: true
`))
	require.Error(t, err)
}
