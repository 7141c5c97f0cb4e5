package ns

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// DumpChain renders ns's inheritance chain (nearest ancestor first) as a
// tree, as a diagnostics aid -- a debugger UI is out of scope, but the
// underlying chain walk it would consume is still worth exercising directly.
func DumpChain(n *Namespace) string {
	if n == nil {
		return "<nil namespace>"
	}
	chain := n.Chain()
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("%s (#%#x)", chain[0].Name, chain[0].NameHash))
	cur := tree
	for _, anc := range chain[1:] {
		cur = cur.AddBranch(fmt.Sprintf("%s (#%#x)", anc.Name, anc.NameHash))
	}
	return tree.String()
}
