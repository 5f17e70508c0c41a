package expand

import "github.com/flashsh/flash/ast"

// Braces expands an ast.BraceExpansion into its literal alternatives, each
// still carrying the surrounding Prefix/Suffix text (spec §4.4 step 1). The
// parser has already split "prefix{a,b,c}suffix" into Items; this just
// stitches prefix/item/suffix back together for each alternative, the same
// division of labor as mvdan-sh's own expand.Braces, which is a thin
// wrapper over a parser-side expansion (syntax.ExpandBraces) rather than a
// standalone brace grammar living in this package.
func Braces(b *ast.BraceExpansion) []string {
	if len(b.Items) == 0 {
		return []string{b.Prefix + b.Suffix}
	}
	out := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		out = append(out, b.Prefix+literalText(item)+b.Suffix)
	}
	return out
}

func literalText(n ast.Node) string {
	switch x := n.(type) {
	case *ast.StringLiteral:
		return x.Text
	case *ast.BraceExpansion:
		var joined string
		for _, alt := range Braces(x) {
			joined += alt
		}
		return joined
	default:
		return ""
	}
}
