package ast

// Visitor's Visit method is invoked for each node encountered by Walk. If
// the returned Visitor w is not nil, Walk visits each child of node with w,
// followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

func walkMany(v Visitor, nodes []Node) {
	for _, n := range nodes {
		if n != nil {
			Walk(v, n)
		}
	}
}

func walkRedirects(v Visitor, redirects []*Redirect) {
	for _, r := range redirects {
		Walk(v, r)
	}
}

// Walk traverses an AST in depth-first order. If node is nil, Walk panics
// unless v.Visit(nil) returns a nil Visitor.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch x := node.(type) {
	case *List:
		walkMany(v, x.Statements)
	case *Command:
		if x.Name != nil {
			Walk(v, x.Name)
		}
		walkMany(v, x.Args)
		for _, a := range x.Assignments {
			Walk(v, a)
		}
		for _, r := range x.Redirects {
			Walk(v, r)
		}
	case *Pipeline:
		walkMany(v, x.Commands)
	case *Assignment:
		if x.Value != nil {
			Walk(v, x.Value)
		}
		if x.Index != nil {
			Walk(v, x.Index)
		}
	case *If:
		Walk(v, x.Condition)
		Walk(v, x.ThenBranch)
		for _, e := range x.ElifBranches {
			Walk(v, e.Condition)
			Walk(v, e.Body)
		}
		if x.ElseBranch != nil {
			Walk(v, x.ElseBranch)
		}
		walkRedirects(v, x.Redirects)
	case *Case:
		Walk(v, x.Word)
		for _, arm := range x.Arms {
			walkMany(v, arm.Patterns)
			Walk(v, arm.Body)
		}
		walkRedirects(v, x.Redirects)
	case *For:
		walkMany(v, x.Words)
		Walk(v, x.Body)
		walkRedirects(v, x.Redirects)
	case *ForC:
		if x.Init != nil {
			Walk(v, x.Init)
		}
		if x.Cond != nil {
			Walk(v, x.Cond)
		}
		if x.Update != nil {
			Walk(v, x.Update)
		}
		Walk(v, x.Body)
		walkRedirects(v, x.Redirects)
	case *While:
		Walk(v, x.Cond)
		Walk(v, x.Body)
		walkRedirects(v, x.Redirects)
	case *Until:
		Walk(v, x.Cond)
		Walk(v, x.Body)
		walkRedirects(v, x.Redirects)
	case *Function:
		Walk(v, x.Body)
	case *Subshell:
		Walk(v, x.List)
		walkRedirects(v, x.Redirects)
	case *Group:
		Walk(v, x.List)
		walkRedirects(v, x.Redirects)
	case *Redirect:
		if x.Target != nil {
			Walk(v, x.Target)
		}
		if x.List != nil {
			Walk(v, x.List)
		}
	case *Word:
		walkMany(v, x.Parts)
	case *StringLiteral, *Comment:
		// leaves
	case *ParamExpansion:
		if x.Index != nil {
			Walk(v, x.Index)
		}
		if x.Op.Word != nil {
			Walk(v, x.Op.Word)
		}
		if x.Op.Word2 != nil {
			Walk(v, x.Op.Word2)
		}
	case *CommandSubstitution:
		Walk(v, x.List)
	case *Arithmetic:
		// leaf: Expr is raw text, re-lexed by the expander
	case *BraceExpansion:
		walkMany(v, x.Items)
	case *ExtGlobPattern:
		// leaf: Patterns are raw glob text
	case *ArrayLiteral:
		walkMany(v, x.Elements)
	case *Test:
		Walk(v, x.Expr)
	case *TestBinary:
		Walk(v, x.Left)
		Walk(v, x.Right)
	case *TestUnary:
		Walk(v, x.Operand)
	case *TestGroup:
		Walk(v, x.Expr)
	case *Negation:
		Walk(v, x.Node)
	default:
		panic("ast.Walk: unexpected node type")
	}

	v.Visit(nil)
}
