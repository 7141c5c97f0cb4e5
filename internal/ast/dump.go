package ast

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Dump renders n and its statement/operand children as a tree. A plain
// compile-tree dump is not a debugger transport, just a diagnostics aid. A
// nil root renders as "<nil>".
func Dump(n *Node) string {
	tree := treeprint.New()
	if n == nil {
		return "<nil>"
	}
	tree.SetValue(label(n))
	addChildren(tree, n)
	return tree.String()
}

func label(n *Node) string {
	switch n.Kind {
	case Value:
		switch n.VarKind {
		case Literal:
			return fmt.Sprintf("Value(literal %s)", n.Lit.Type)
		case LocalVar:
			return fmt.Sprintf("Value(local #%d %s)", n.FrameOffset, n.DeclType)
		case GlobalVar:
			return fmt.Sprintf("Value(global func=%#x var=%#x)", n.FuncHash, n.VarHash)
		case ArrayVar:
			return fmt.Sprintf("Value(array func=%#x var=%#x)", n.FuncHash, n.VarHash)
		}
	case BinaryOp, UnaryOp:
		return fmt.Sprintf("%v(%v)", n.Kind, n.Op)
	case FuncDecl:
		return fmt.Sprintf("FuncDecl(#%#x in ns #%#x)", n.NameHash, n.NSHash)
	case FuncCall:
		return fmt.Sprintf("FuncCall(#%#x in ns #%#x method=%v)", n.FuncHash, n.NSHash, n.IsMethod)
	}
	return n.Kind.String()
}

func (k Kind) String() string {
	names := [...]string{
		"NOP", "Value", "Self", "ObjMember", "PODMember", "BinaryOp", "UnaryOp",
		"If", "WhileLoop", "VarDeclStmt", "FuncDecl", "FuncCall", "FuncReturn",
		"ObjMethod", "ArrayHash", "ArrayVarDecl", "SelfVarDecl", "Schedule",
		"CreateObject", "DestroyObject",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "<invalid kind>"
}

func addChildren(tree treeprint.Tree, n *Node) {
	if n.Left != nil {
		addBranch(tree, "left", n.Left)
	}
	if n.Right != nil {
		addBranch(tree, "right", n.Right)
	}
	if n.Else != nil {
		addBranch(tree, "else", n.Else)
	}
	if n.Body != nil {
		addBranch(tree, "body", n.Body)
	}
	for i, a := range n.Args {
		addBranch(tree, fmt.Sprintf("arg[%d]", i), a)
	}
	for s := n.Next; s != nil; s = s.Next {
		addBranch(tree, "next", s)
	}
}

func addBranch(tree treeprint.Tree, tag string, n *Node) {
	b := tree.AddBranch(fmt.Sprintf("%s: %s", tag, label(n)))
	addChildren(b, n)
}
